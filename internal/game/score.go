package game

import "strings"

// Score compares a guess against the solution and classifies every guess
// letter. Both words are uppercased before comparison; callers must reject
// length mismatches upstream.
//
// Two passes over a shared letter budget seeded from the solution's letter
// frequencies. Pass one credits exact positions and consumes budget; pass two
// credits misplaced letters from whatever budget remains. Budget consumed in
// pass one is deliberately not restored, so a letter already credited in its
// right spot cannot also be credited as misplaced elsewhere once the
// solution's occurrences are used up.
func Score(guess, solution string) []LetterScore {
	guess = strings.ToUpper(guess)
	solution = strings.ToUpper(solution)

	guessRunes := []rune(guess)
	solutionRunes := []rune(solution)

	scores := make([]LetterScore, len(guessRunes))
	for i := range scores {
		scores[i] = Dud
	}

	budget := make(map[rune]int, len(solutionRunes))
	for _, r := range solutionRunes {
		budget[r]++
	}

	// Exact positions first.
	for i, r := range guessRunes {
		if i < len(solutionRunes) && solutionRunes[i] == r && budget[r] > 0 {
			scores[i] = RightSpot
			budget[r]--
		}
	}

	// Misplaced letters from the remaining budget.
	for i, r := range guessRunes {
		if scores[i] == RightSpot {
			continue
		}
		if budget[r] > 0 {
			scores[i] = WrongSpot
			budget[r]--
		}
	}

	return scores
}

// AllRightSpot reports whether every position scored RightSpot, i.e. a
// winning guess.
func AllRightSpot(scores []LetterScore) bool {
	if len(scores) == 0 {
		return false
	}
	for _, s := range scores {
		if s != RightSpot {
			return false
		}
	}
	return true
}
