package viewmodel

import (
	"encoding/json"

	"minesweeper/game"
)

const (
	StateHidden  = "hidden"
	StateFlagged = "flagged"
	StateOpened  = "opened"
)

type CellView struct {
	State  string `json:"state"`
	Count  int    `json:"count"`
	IsMine bool   `json:"is_mine"`
}

type GameView struct {
	GameID          string       `json:"game_id,omitempty"`
	Rows            int          `json:"rows"`
	Cols            int          `json:"cols"`
	Cells           [][]CellView `json:"cells"`
	TotalMines      int          `json:"total_mines"`
	MinesRemaining  int          `json:"mines_remaining"`
	IsGameOver      bool         `json:"is_game_over"`
	IsGameClear     bool         `json:"is_game_clear"`
	ForgivenessUsed bool         `json:"forgiveness_used"`
}

// New は盤面から描画用のビューを作ります
// 地雷かどうかは開いているマスについてだけ出します
func New(b *game.Board, gameID string) GameView {
	isClear := b.IsWon()

	grid := make([][]CellView, b.Rows())
	for r := range grid {
		grid[r] = make([]CellView, b.Cols())
		for c := range grid[r] {
			v := CellView{State: StateHidden}

			switch vis := b.VisibleAt(r, c); {
			case vis.IsRevealed():
				v.State = StateOpened
				v.IsMine = b.IsMine(r, c)
				if !v.IsMine {
					v.Count = b.AdjacentMines(r, c)
				}
			case vis.IsFlagged():
				v.State = StateFlagged
			}

			// クリアしたら地雷はすべて旗で表示する
			if isClear && b.IsMine(r, c) {
				v = CellView{State: StateFlagged}
			}
			grid[r][c] = v
		}
	}

	return GameView{
		GameID:          gameID,
		Rows:            b.Rows(),
		Cols:            b.Cols(),
		Cells:           grid,
		TotalMines:      b.TotalMines(),
		MinesRemaining:  b.TotalMines() - b.FlaggedCount(),
		IsGameOver:      b.IsLost(),
		IsGameClear:     isClear,
		ForgivenessUsed: b.MineHits() > 0,
	}
}

// NewGameView は安全にJSONを返します
func NewGameView(b *game.Board, gameID string) string {
	// nilの場合は空のJSONオブジェクトを返す
	if b == nil {
		return "{}"
	}
	bytes, err := json.Marshal(New(b, gameID))
	if err != nil {
		return "{}"
	}
	return string(bytes)
}
