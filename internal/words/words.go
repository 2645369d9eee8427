// Package words manages the solution and allowed-guess word lists. Lists are
// loaded from files named by WORDS_SOLUTIONS_FILE / WORDS_ALLOWED_FILE, with
// embedded defaults when neither is set. Every solution is always an allowed
// guess.
package words

import (
	"bufio"
	_ "embed"
	"errors"
	"os"
	"strings"

	"github.com/crankword/crankword/internal/game"
)

//go:embed solutions.txt
var embeddedSolutions string

//go:embed allowed.txt
var embeddedAllowed string

// ErrEmpty is returned when loading yields no usable solution words.
var ErrEmpty = errors.New("words: solutions list is empty")

// Dictionary answers membership queries and draws random solutions.
type Dictionary struct {
	solutions []string
	allowed   map[string]struct{}
	rng       game.RandomSource
}

// Load builds a Dictionary from the environment-named files, or from the
// embedded defaults when WORDS_SOLUTIONS_FILE is unset.
func Load(rng game.RandomSource) (*Dictionary, error) {
	var solutions, allowed []string

	solutionsPath := os.Getenv("WORDS_SOLUTIONS_FILE")
	allowedPath := os.Getenv("WORDS_ALLOWED_FILE")

	switch {
	case solutionsPath != "":
		var err error
		solutions, err = readWordFile(solutionsPath)
		if err != nil {
			return nil, err
		}
		if allowedPath != "" {
			allowed, err = readWordFile(allowedPath)
			if err != nil {
				return nil, err
			}
		}
	default:
		solutions = normalizeLines(embeddedSolutions)
		allowed = normalizeLines(embeddedAllowed)
	}

	return NewDictionary(solutions, allowed, rng)
}

// NewDictionary builds a Dictionary from explicit lists. Solutions are folded
// into the allowed set.
func NewDictionary(solutions, allowed []string, rng game.RandomSource) (*Dictionary, error) {
	if len(solutions) == 0 {
		return nil, ErrEmpty
	}
	if rng == nil {
		rng = game.NewRandomSource()
	}
	set := make(map[string]struct{}, len(solutions)+len(allowed))
	for _, w := range solutions {
		set[w] = struct{}{}
	}
	for _, w := range allowed {
		set[w] = struct{}{}
	}
	return &Dictionary{solutions: solutions, allowed: set, rng: rng}, nil
}

// IsRealWord reports whether w may be played as a guess.
func (d *Dictionary) IsRealWord(w string) bool {
	_, ok := d.allowed[strings.ToLower(w)]
	return ok
}

// RandomSolution draws a solution word, uppercased for storage.
func (d *Dictionary) RandomSolution() string {
	return strings.ToUpper(d.solutions[d.rng.IntN(len(d.solutions))])
}

// Stats returns the loaded list sizes: solutions, allowed.
func (d *Dictionary) Stats() (int, int) {
	return len(d.solutions), len(d.allowed)
}

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w, ok := normalizeWord(sc.Text()); ok {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

func normalizeLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if w, ok := normalizeWord(line); ok {
			out = append(out, w)
		}
	}
	return out
}

// normalizeWord lowercases and keeps only exact-length alphabetic words.
func normalizeWord(raw string) (string, bool) {
	w := strings.TrimSpace(strings.ToLower(raw))
	if len(w) != game.WordLength {
		return "", false
	}
	for _, r := range w {
		if r < 'a' || r > 'z' {
			return "", false
		}
	}
	return w, true
}
