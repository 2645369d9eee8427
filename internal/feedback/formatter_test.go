package feedback

import (
	"strings"
	"testing"

	"github.com/crankword/crankword/internal/msgcat"
	"github.com/crankword/crankword/pkg/gamedto"
)

func newFormatter(t *testing.T) *Formatter {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	return New(cat)
}

func TestGuessVerdicts(t *testing.T) {
	f := newFormatter(t)
	cases := []struct {
		res  *gamedto.GuessResult
		want string
	}{
		{&gamedto.GuessResult{Verdict: gamedto.VerdictWrongTurn}, "not your turn"},
		{&gamedto.GuessResult{Verdict: gamedto.VerdictMaxGuesses}, "no guesses left"},
		{&gamedto.GuessResult{Verdict: gamedto.VerdictNotARealWord}, "isn't in the word list"},
		{&gamedto.GuessResult{Verdict: gamedto.VerdictNotAParticipant}, "not playing"},
		{&gamedto.GuessResult{Verdict: gamedto.VerdictScored}, "recorded"},
		{&gamedto.GuessResult{Verdict: gamedto.VerdictScored, IsWinner: true, GameOver: true}, "wins"},
		{&gamedto.GuessResult{Verdict: gamedto.VerdictScored, GameOver: true}, "Nobody found"},
	}
	for _, c := range cases {
		got := f.Guess(c.res, "alice", "SLATE")
		if !strings.Contains(got, c.want) {
			t.Errorf("Guess(%+v) = %q, want substring %q", c.res, got, c.want)
		}
	}
}

func TestJoinAndQuitReasonsAreKeys(t *testing.T) {
	f := newFormatter(t)

	got := f.Join(&gamedto.JoinResult{Reason: "game_full"}, "bob")
	if got == fallback {
		t.Fatalf("join reason fell back: %q", got)
	}
	got = f.Quit(&gamedto.QuitResult{Reason: "recently_active"}, "bob")
	if got == fallback {
		t.Fatalf("quit reason fell back: %q", got)
	}
	got = f.Quit(&gamedto.QuitResult{Success: true}, "bob")
	if !strings.Contains(got, "bob") {
		t.Fatalf("quit.ok = %q", got)
	}
}

func TestUnknownKeyFallsBack(t *testing.T) {
	f := newFormatter(t)
	if got := f.Join(&gamedto.JoinResult{Reason: "nonsense_reason"}, "bob"); got != fallback {
		t.Fatalf("unknown reason = %q, want fallback", got)
	}
}

func TestAnnouncements(t *testing.T) {
	f := newFormatter(t)
	if got := f.Created(&gamedto.CreateResult{JoinCode: "abc-123"}); !strings.Contains(got, "abc-123") {
		t.Fatalf("Created = %q", got)
	}
	if got := f.Started("carol"); !strings.Contains(got, "carol") {
		t.Fatalf("Started = %q", got)
	}
	if got := f.Timeout("dave"); !strings.Contains(got, "dave") {
		t.Fatalf("Timeout = %q", got)
	}
	if got := f.Cancelled(); got == fallback {
		t.Fatalf("Cancelled fell back")
	}
	if got := f.Failure(); got == "" {
		t.Fatal("Failure returned empty text")
	}
}
