package session

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"minesweeper/game"
)

func init() {
	Log.SetOutput(io.Discard)
}

type fixedPlacer struct{ layout game.Layout }

func (p fixedPlacer) PlaceMines(rows, cols, mineCount, safeRow, safeCol int) (game.Layout, error) {
	return p.layout.Clone(), nil
}

type failingPlacer struct{}

func (failingPlacer) PlaceMines(rows, cols, mineCount, safeRow, safeCol int) (game.Layout, error) {
	return nil, game.ErrTooManyMines
}

var line = game.Preset{Name: "line", Rows: 1, Cols: 8, Mines: 3}

func lineSession() *Session {
	layout := game.Layout{{game.Mine, 1, 0, 1, game.Mine, 1, 1, game.Mine}}
	return New(func() game.MinePlacer { return fixedPlacer{layout} }, nil)
}

func TestSession_NoGame(t *testing.T) {
	s := lineSession()
	if _, err := s.Reveal(0, 0); !errors.Is(err, ErrNoGame) {
		t.Errorf("expected ErrNoGame, got %v", err)
	}
	if _, err := s.State(); !errors.Is(err, ErrNoGame) {
		t.Errorf("expected ErrNoGame, got %v", err)
	}
	if _, _, err := s.BotStep(); !errors.Is(err, ErrNoGame) {
		t.Errorf("expected ErrNoGame, got %v", err)
	}
	if s.ID() != "" || s.Board() != nil {
		t.Error("expected empty session")
	}
}

func TestSession_Intents(t *testing.T) {
	s := lineSession()
	v, err := s.NewGame(line)
	if err != nil {
		t.Fatal(err)
	}
	firstID := v.GameID
	if firstID == "" || firstID != s.ID() {
		t.Errorf("expected game id, got %q", firstID)
	}

	if v, err = s.Reveal(0, 1); err != nil {
		t.Fatal(err)
	}
	if v.Cells[0][1].State != "opened" || v.Cells[0][0].State != "opened" {
		t.Errorf("unexpected cells %+v", v.Cells[0])
	}

	if v, err = s.ToggleFlag(0, 6); err != nil {
		t.Fatal(err)
	}
	if v.MinesRemaining != 2 {
		t.Errorf("expected 2 mines remaining, got %d", v.MinesRemaining)
	}

	before := s.Board()
	if _, err = s.Chord(0, 1); err != nil {
		t.Fatal(err)
	}
	if s.Board() != before {
		t.Error("chord with mismatched flags should keep the same board")
	}

	if v, _ = s.Reveal(0, 4); !v.ForgivenessUsed || v.IsGameOver {
		t.Errorf("expected forgiven strike, got %+v", v)
	}

	v, err = s.NewGame(line)
	if err != nil {
		t.Fatal(err)
	}
	if v.GameID == firstID {
		t.Error("new game should get a new id")
	}
	if v.ForgivenessUsed {
		t.Error("new game should start fresh")
	}
}

func TestSession_Errors(t *testing.T) {
	s := New(func() game.MinePlacer { return failingPlacer{} }, nil)
	if _, err := s.NewGame(game.Preset{Rows: 0, Cols: 3}); !errors.Is(err, game.ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
	if _, err := s.NewGame(game.Beginner); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Reveal(0, 0); !errors.Is(err, game.ErrTooManyMines) {
		t.Errorf("expected placer error, got %v", err)
	}
	if s.Board().HasLayout() {
		t.Error("failed placement must not replace the board")
	}
}

func TestSession_FailuresAreLogged(t *testing.T) {
	hook := test.NewLocal(Log)
	defer hook.Reset()

	s := New(func() game.MinePlacer { return failingPlacer{} }, nil)
	if _, err := s.NewGame(game.Beginner); err != nil {
		t.Fatal(err)
	}

	for _, step := range []struct {
		intent string
		run    func() error
	}{
		{"reveal", func() error { _, err := s.Reveal(0, 0); return err }},
		{"bot:open", func() error { _, _, err := s.BotStep(); return err }},
	} {
		hook.Reset()
		if err := step.run(); !errors.Is(err, game.ErrTooManyMines) {
			t.Fatalf("%s: expected placer error, got %v", step.intent, err)
		}
		entry := hook.LastEntry()
		if entry == nil || entry.Level != logrus.ErrorLevel || entry.Message != "intent failed" {
			t.Fatalf("%s: expected an error log, got %+v", step.intent, entry)
		}
		if got := entry.Data["intent"]; got != step.intent {
			t.Errorf("expected intent %q, got %v", step.intent, got)
		}
		if !errors.Is(entry.Data[logrus.ErrorKey].(error), game.ErrTooManyMines) {
			t.Errorf("%s: expected the placer error in the log entry", step.intent)
		}
	}
}

func TestSession_BotStep(t *testing.T) {
	s := New(RandomPlacers(5), nil)
	if _, err := s.NewGame(game.Beginner); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 200; i++ {
		v, move, err := s.BotStep()
		if err != nil {
			t.Fatal(err)
		}
		if move == nil {
			if !v.IsGameClear && !v.IsGameOver {
				t.Fatal("bot stopped before the game finished")
			}
			return
		}
	}
	t.Fatal("bot did not finish the game")
}

func TestSession_ConcurrentIntents(t *testing.T) {
	s := New(RandomPlacers(1), nil)
	if _, err := s.NewGame(game.Advanced); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for c := 0; c < 30; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			if _, err := s.ToggleFlag(0, c); err != nil {
				t.Error(err)
			}
			_, _ = s.State()
		}(c)
	}
	wg.Wait()

	if got := s.Board().FlaggedCount(); got != 30 {
		t.Errorf("expected 30 flags, got %d", got)
	}
}

func TestRandomPlacers(t *testing.T) {
	f := RandomPlacers(10)
	a, _ := f().PlaceMines(9, 9, 10, 4, 4)
	b, _ := f().PlaceMines(9, 9, 10, 4, 4)
	a2, _ := RandomPlacers(10)().PlaceMines(9, 9, 10, 4, 4)

	same := func(x, y game.Layout) bool {
		for r := range x {
			for c := range x[r] {
				if x[r][c] != y[r][c] {
					return false
				}
			}
		}
		return true
	}
	if !same(a, a2) {
		t.Error("same seed should reproduce the first game")
	}
	if same(a, b) {
		t.Error("consecutive games should use different seeds")
	}
}
