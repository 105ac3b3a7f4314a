package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minesweeper/game"
	"minesweeper/session"
	"minesweeper/viewmodel"
)

func init() {
	Log.SetOutput(io.Discard)
	session.Log.SetOutput(io.Discard)
}

type fixedPlacer struct{ layout game.Layout }

func (p fixedPlacer) PlaceMines(rows, cols, mineCount, safeRow, safeCol int) (game.Layout, error) {
	return p.layout.Clone(), nil
}

var line = game.Preset{Name: "line", Rows: 1, Cols: 8, Mines: 3}

func newTestServer(t *testing.T, staticDir string) http.Handler {
	t.Helper()
	layout := game.Layout{{game.Mine, 1, 0, 1, game.Mine, 1, 1, game.Mine}}
	sess := session.New(func() game.MinePlacer { return fixedPlacer{layout} }, nil)
	srv, err := NewServer(sess, line, staticDir)
	if err != nil {
		t.Fatal(err)
	}
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) viewmodel.GameView {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var v viewmodel.GameView
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestHandleState(t *testing.T) {
	h := newTestServer(t, "")
	v := decodeView(t, do(t, h, http.MethodGet, "/api/state"))
	if v.Rows != 1 || v.Cols != 8 || v.GameID == "" {
		t.Errorf("unexpected state %+v", v)
	}
}

func TestHandleIntents(t *testing.T) {
	h := newTestServer(t, "")

	v := decodeView(t, do(t, h, http.MethodPost, "/api/open?row=0&col=1"))
	if v.Cells[0][1].State != viewmodel.StateOpened || v.Cells[0][1].Count != 1 {
		t.Errorf("unexpected cell %+v", v.Cells[0][1])
	}

	v = decodeView(t, do(t, h, http.MethodPost, "/api/flag?row=0&col=6"))
	if v.Cells[0][6].State != viewmodel.StateFlagged || v.MinesRemaining != 2 {
		t.Errorf("unexpected flag result %+v", v)
	}

	v = decodeView(t, do(t, h, http.MethodPost, "/api/chord?row=0&col=1"))
	if v.Cells[0][2].State != viewmodel.StateHidden {
		t.Error("chord with mismatched flags should change nothing")
	}

	v = decodeView(t, do(t, h, http.MethodPost, "/api/open?row=0&col=4"))
	if !v.ForgivenessUsed || v.IsGameOver {
		t.Errorf("expected forgiven strike, got %+v", v)
	}
	v = decodeView(t, do(t, h, http.MethodPost, "/api/open?row=0&col=99"))
	if v.IsGameOver {
		t.Error("out-of-bounds reveal should be ignored")
	}
}

func TestHandleIntents_BadParams(t *testing.T) {
	h := newTestServer(t, "")
	for _, target := range []string{"/api/open?row=x&col=1", "/api/flag?col=1", "/api/chord?row=1"} {
		if rec := do(t, h, http.MethodPost, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
	if rec := do(t, h, http.MethodGet, "/api/open?row=0&col=0"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHandleNew(t *testing.T) {
	h := newTestServer(t, "")
	first := decodeView(t, do(t, h, http.MethodGet, "/api/state"))

	v := decodeView(t, do(t, h, http.MethodPost, "/api/new?preset=beginner"))
	if v.Rows != 9 || v.Cols != 9 || v.TotalMines != 10 {
		t.Errorf("expected beginner board, got %dx%d/%d", v.Rows, v.Cols, v.TotalMines)
	}
	if v.GameID == first.GameID {
		t.Error("expected a new game id")
	}

	v = decodeView(t, do(t, h, http.MethodPost, "/api/new?rows=4&cols=5&mines=3"))
	if v.Rows != 4 || v.Cols != 5 || v.TotalMines != 3 {
		t.Errorf("expected custom board, got %dx%d/%d", v.Rows, v.Cols, v.TotalMines)
	}

	v = decodeView(t, do(t, h, http.MethodPost, "/api/new"))
	if v.Rows != 1 || v.Cols != 8 {
		t.Errorf("expected default board, got %dx%d", v.Rows, v.Cols)
	}

	tests := []struct {
		target string
		want   int
	}{
		{"/api/new?preset=expert", http.StatusBadRequest},
		{"/api/new?rows=4&cols=x&mines=3", http.StatusBadRequest},
		{"/api/new?rows=3&cols=3&mines=9", http.StatusUnprocessableEntity},
		{"/api/new?rows=0&cols=3&mines=1", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		if rec := do(t, h, http.MethodPost, tt.target); rec.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.target, tt.want, rec.Code)
		}
	}
}

func TestHandleBot(t *testing.T) {
	h := newTestServer(t, "")
	do(t, h, http.MethodPost, "/api/open?row=0&col=1")

	rec := do(t, h, http.MethodPost, "/api/bot")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp BotResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Move == nil || resp.Move.Type != "open" {
		t.Fatalf("expected an open move, got %+v", resp.Move)
	}
	if resp.Move.Col != 2 || resp.Move.Strategy != "Logic" {
		t.Errorf("expected logic open at (0,2), got %+v", resp.Move)
	}
	if resp.Game.Cells[0][2].State != viewmodel.StateOpened {
		t.Error("bot move should be applied")
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>mines</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := newTestServer(t, dir)
	rec := do(t, h, http.MethodGet, "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "mines") {
		t.Errorf("expected index.html, got %d %s", rec.Code, rec.Body.String())
	}
}
