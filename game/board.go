package game

import (
	"errors"
	"fmt"
	"io"
	"slices"
)

var (
	ErrInvalidSize      = errors.New("board size must be positive")
	ErrInvalidMineCount = errors.New("mine count must be in [0, rows*cols)")
	ErrTooManyMines     = errors.New("too many mines for board size and safe zone")
	ErrInvalidLayout    = errors.New("placer returned an invalid layout")
	ErrNilPlacer        = errors.New("mine placer is nil")
)

// NewBoard は指定されたサイズと地雷数で盤面を初期化して返します
// 地雷は最初の Reveal まで配置されません
func NewBoard(rows, cols, mineCount int, placer MinePlacer) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("new board %dx%d: %w", rows, cols, ErrInvalidSize)
	}
	if mineCount < 0 || mineCount >= rows*cols {
		return nil, fmt.Errorf("new board %dx%d with %d mines: %w", rows, cols, mineCount, ErrInvalidMineCount)
	}
	if placer == nil {
		return nil, ErrNilPlacer
	}
	return &Board{
		rows:      rows,
		cols:      cols,
		mineCount: mineCount,
		placer:    placer,
		visible:   make([]Visibility, rows*cols),
	}, nil
}

func (b *Board) Rows() int { return b.rows }
func (b *Board) Cols() int { return b.cols }

func (b *Board) InBounds(r, c int) bool {
	return r >= 0 && r < b.rows && c >= 0 && c < b.cols
}

// IsMine は配置前や範囲外なら false を返します
func (b *Board) IsMine(r, c int) bool {
	return b.layout != nil && b.InBounds(r, c) && b.layout[r][c] == Mine
}

// AdjacentMines は周囲の地雷数を返します（地雷なら Mine）
// 配置前や範囲外なら 0 です
func (b *Board) AdjacentMines(r, c int) int {
	if b.layout == nil || !b.InBounds(r, c) {
		return 0
	}
	return b.layout[r][c]
}

func (b *Board) VisibleAt(r, c int) Visibility {
	if !b.InBounds(r, c) {
		return Hidden
	}
	return b.visible[r*b.cols+c]
}

func (b *Board) IsLost() bool { return b.lost }

// IsWon は地雷以外の全マスが開いていれば true です（フラッグは関係ない）
func (b *Board) IsWon() bool {
	return !b.lost && b.revealedCount == b.rows*b.cols-b.mineCount
}

func (b *Board) TotalMines() int    { return b.mineCount }
func (b *Board) FlaggedCount() int  { return b.flaggedCount }
func (b *Board) RevealedCount() int { return b.revealedCount }
func (b *Board) MineHits() int      { return b.mineHits }
func (b *Board) HasLayout() bool    { return b.layout != nil }

// Reveal は指定されたマスを開けた盤面を返します
//
// 最初の呼び出しで地雷を配置するため、MinePlacer の失敗だけがエラーになります。
// 範囲外・ゲームオーバー後・未開封でないマスへの操作は b をそのまま返します。
func (b *Board) Reveal(r, c int) (*Board, error) {
	if !b.InBounds(r, c) || b.lost || !b.visible[r*b.cols+c].IsHidden() {
		return b, nil
	}
	if b.layout == nil {
		placed, err := b.place(r, c)
		if err != nil {
			return nil, err
		}
		return placed.reveal(r, c), nil
	}
	return b.reveal(r, c), nil
}

// ToggleFlag は未開封のマスのフラッグを切り替えます
func (b *Board) ToggleFlag(r, c int) *Board {
	if !b.InBounds(r, c) || b.lost {
		return b
	}
	i := r*b.cols + c
	current := b.visible[i]
	if current.IsRevealed() {
		return b
	}

	next := b.clone()
	if current.IsFlagged() {
		next.visible[i] = Hidden
		next.flaggedCount = max(0, next.flaggedCount-1)
	} else {
		next.visible[i] = Flagged
		next.flaggedCount++
	}
	return next
}

// Chord は数字マスの周囲のフラッグ数が数字と一致するとき、
// 残りの未開封の隣接マスをまとめて開けます
func (b *Board) Chord(r, c int) *Board {
	if !b.InBounds(r, c) || b.lost || b.layout == nil {
		return b
	}
	if !b.visible[r*b.cols+c].IsRevealed() {
		return b
	}
	required := b.layout[r][c]
	if required <= 0 {
		return b
	}

	flagged := 0
	var hidden []point
	b.eachNeighbor(r, c, func(nr, nc int) {
		switch v := b.visible[nr*b.cols+nc]; {
		case v.IsFlagged():
			flagged++
		case v.IsHidden():
			hidden = append(hidden, point{nr, nc})
		}
	})
	if flagged != required {
		return b
	}

	current := b
	for _, p := range hidden {
		current = current.reveal(p.r, p.c)
	}
	return current
}

// place は placer で地雷を配置した盤面を返します（visible は共有のまま）
func (b *Board) place(safeRow, safeCol int) (*Board, error) {
	layout, err := b.placer.PlaceMines(b.rows, b.cols, b.mineCount, safeRow, safeCol)
	if err != nil {
		return nil, fmt.Errorf("place mines around (%d,%d): %w", safeRow, safeCol, err)
	}
	if err := validateLayout(layout, b.rows, b.cols, b.mineCount); err != nil {
		return nil, err
	}
	next := *b
	next.layout = layout
	return &next, nil
}

// reveal は配置済みの盤面で1マス開けます
func (b *Board) reveal(r, c int) *Board {
	if !b.InBounds(r, c) || b.lost || !b.visible[r*b.cols+c].IsHidden() {
		return b
	}
	if b.layout[r][c] == Mine {
		return b.revealMine(r, c)
	}
	return b.floodReveal(r, c)
}

// floodReveal は 0 のマスを通して連結した領域を開けます
// 開いた領域に接する地雷もゲームを終わらせずに表示します
func (b *Board) floodReveal(startR, startC int) *Board {
	next := b.clone()
	var opened []point
	queue := []point{{startR, startC}}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if !next.InBounds(p.r, p.c) {
			continue
		}
		i := p.r*next.cols + p.c
		if !next.visible[i].IsHidden() {
			continue
		}
		next.visible[i] = Revealed
		next.revealedCount++
		opened = append(opened, p)

		if next.layout[p.r][p.c] == 0 {
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if dr != 0 || dc != 0 {
						queue = append(queue, point{p.r + dr, p.c + dc})
					}
				}
			}
		}
	}

	for _, p := range opened {
		next.eachNeighbor(p.r, p.c, func(nr, nc int) {
			if next.layout[nr][nc] == Mine {
				next.exposeMine(nr, nc)
			}
		})
	}
	return next
}

// revealMine は地雷を踏んだときの処理です
// 1回目は許され、そのマスだけが開きます。2回目で負けになります
func (b *Board) revealMine(r, c int) *Board {
	next := b.clone()
	if b.mineHits == 0 {
		next.exposeMine(r, c)
		next.mineHits = 1
		return next
	}

	for mr := 0; mr < next.rows; mr++ {
		for mc := 0; mc < next.cols; mc++ {
			if next.layout[mr][mc] == Mine {
				next.exposeMine(mr, mc)
			}
		}
	}
	next.lost = true
	next.mineHits++
	return next
}

// exposeMine は地雷マスを開きます（revealedCount には数えない）
// clone 済みの盤面にだけ呼んでください
func (b *Board) exposeMine(r, c int) {
	i := r*b.cols + c
	switch b.visible[i] {
	case Revealed:
		return
	case Flagged:
		b.flaggedCount = max(0, b.flaggedCount-1)
	}
	b.visible[i] = Revealed
}

// clone は visible だけをコピーした盤面を返します。layout は共有します
func (b *Board) clone() *Board {
	next := *b
	next.visible = slices.Clone(b.visible)
	return &next
}

func (b *Board) eachNeighbor(r, c int, fn func(nr, nc int)) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if nr, nc := r+dr, c+dc; b.InBounds(nr, nc) {
				fn(nr, nc)
			}
		}
	}
}

func validateLayout(l Layout, rows, cols, mineCount int) error {
	if len(l) != rows {
		return fmt.Errorf("layout has %d rows, want %d: %w", len(l), rows, ErrInvalidLayout)
	}
	for r := range l {
		if len(l[r]) != cols {
			return fmt.Errorf("layout row %d has %d cols, want %d: %w", r, len(l[r]), cols, ErrInvalidLayout)
		}
	}
	if n := l.Mines(); n != mineCount {
		return fmt.Errorf("layout has %d mines, want %d: %w", n, mineCount, ErrInvalidLayout)
	}
	for r := range l {
		for c, v := range l[r] {
			if v == Mine {
				continue
			}
			if want := countAround(l, r, c); v != want {
				return fmt.Errorf("layout (%d,%d) is %d, want %d: %w", r, c, v, want, ErrInvalidLayout)
			}
		}
	}
	return nil
}

// Fprint は現在の盤面を w に表示します
// 未開封は「-」、フラッグは「F」、地雷は「*」、0は「.」、数字はそのまま
func (b *Board) Fprint(w io.Writer) {
	fmt.Fprint(w, "   ")
	for c := 0; c < b.cols; c++ {
		fmt.Fprintf(w, "%d ", c%10)
	}
	fmt.Fprintln(w)

	for r := 0; r < b.rows; r++ {
		fmt.Fprintf(w, "%2d ", r)
		for c := 0; c < b.cols; c++ {
			switch v := b.visible[r*b.cols+c]; {
			case v.IsFlagged():
				fmt.Fprint(w, "F ")
			case v.IsHidden():
				fmt.Fprint(w, "- ")
			case b.layout[r][c] == Mine:
				fmt.Fprint(w, "* ")
			case b.layout[r][c] == 0:
				fmt.Fprint(w, ". ")
			default:
				fmt.Fprintf(w, "%d ", b.layout[r][c])
			}
		}
		fmt.Fprintln(w)
	}
}
