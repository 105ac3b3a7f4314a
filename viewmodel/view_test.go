package viewmodel

import (
	"encoding/json"
	"testing"

	"minesweeper/game"
)

type fixedPlacer struct{ layout game.Layout }

func (p fixedPlacer) PlaceMines(rows, cols, mineCount, safeRow, safeCol int) (game.Layout, error) {
	return p.layout.Clone(), nil
}

// 1x8、地雷は (0,0) (0,4) (0,7)
func lineBoard(t *testing.T) *game.Board {
	t.Helper()
	layout := game.Layout{{game.Mine, 1, 0, 1, game.Mine, 1, 1, game.Mine}}
	b, err := game.NewBoard(1, 8, 3, fixedPlacer{layout})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestNew(t *testing.T) {
	b := lineBoard(t)
	b, err := b.Reveal(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	b = b.ToggleFlag(0, 6)

	v := New(b, "game-1")
	if v.GameID != "game-1" || v.Rows != 1 || v.Cols != 8 {
		t.Errorf("unexpected header %+v", v)
	}
	if v.MinesRemaining != 2 {
		t.Errorf("expected 2 mines remaining, got %d", v.MinesRemaining)
	}
	want := []CellView{
		{State: StateOpened, IsMine: true},
		{State: StateOpened, Count: 1},
		{State: StateHidden},
		{State: StateHidden},
		{State: StateHidden},
		{State: StateHidden},
		{State: StateFlagged},
		{State: StateHidden},
	}
	for c, w := range want {
		if v.Cells[0][c] != w {
			t.Errorf("cell %d: expected %+v, got %+v", c, w, v.Cells[0][c])
		}
	}
	if v.IsGameOver || v.IsGameClear || v.ForgivenessUsed {
		t.Errorf("unexpected status %+v", v)
	}
}

func TestNew_HiddenMinesStayHidden(t *testing.T) {
	b, err := lineBoard(t).Reveal(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	v := New(b, "")
	if v.Cells[0][4].IsMine || v.Cells[0][4].State != StateHidden {
		t.Error("hidden mine must not leak into the view")
	}
}

func TestNew_Forgiveness(t *testing.T) {
	b, _ := lineBoard(t).Reveal(0, 1)
	b, _ = b.Reveal(0, 4)
	v := New(b, "")
	if !v.ForgivenessUsed || v.IsGameOver {
		t.Errorf("expected forgiveness without game over, got %+v", v)
	}

	b, _ = b.Reveal(0, 7)
	v = New(b, "")
	if !v.IsGameOver {
		t.Error("expected game over")
	}
	for _, c := range []int{0, 4, 7} {
		if !v.Cells[0][c].IsMine || v.Cells[0][c].State != StateOpened {
			t.Errorf("mine %d should be shown after game over", c)
		}
	}
}

func TestNew_ClearFlagsMines(t *testing.T) {
	// (0,1) は (0,0) を開けたときに見える地雷、(0,2) は未開封のまま
	layout := game.Layout{{1, game.Mine, game.Mine}}
	b, err := game.NewBoard(1, 3, 2, fixedPlacer{layout})
	if err != nil {
		t.Fatal(err)
	}
	b, err = b.Reveal(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !b.VisibleAt(0, 1).IsRevealed() || !b.VisibleAt(0, 2).IsHidden() {
		t.Fatal("expected one exposed and one hidden mine")
	}
	v := New(b, "")
	if !v.IsGameClear {
		t.Fatal("expected clear")
	}
	for _, c := range []int{1, 2} {
		if got := v.Cells[0][c]; got.State != StateFlagged || got.IsMine {
			t.Errorf("expected mine (0,%d) to show as a flag, got %+v", c, got)
		}
	}
	if got := v.Cells[0][0]; got.State != StateOpened || got.Count != 1 {
		t.Errorf("expected opened 1 at (0,0), got %+v", got)
	}
}

func TestNewGameView(t *testing.T) {
	if got := NewGameView(nil, ""); got != "{}" {
		t.Errorf("expected {}, got %s", got)
	}

	var v GameView
	if err := json.Unmarshal([]byte(NewGameView(lineBoard(t), "abc")), &v); err != nil {
		t.Fatal(err)
	}
	if v.GameID != "abc" || len(v.Cells) != 1 || len(v.Cells[0]) != 8 {
		t.Errorf("unexpected view %+v", v)
	}
}
