package game

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"
)

// MinePlacer は安全なマス (safeRow, safeCol) を指定して地雷配置を作ります
//
// 返す Layout はちょうど mineCount 個の Mine を含み、それ以外のマスには
// 周囲の地雷数が入っていなければなりません。盤面に余裕がある限り、
// 安全なマスの周囲8マスには地雷を置かないでください。
type MinePlacer interface {
	PlaceMines(rows, cols, mineCount, safeRow, safeCol int) (Layout, error)
}

// RandomPlacer は一様ランダムに地雷を配置します
type RandomPlacer struct {
	rng *rand.Rand
}

// NewRandomPlacer は rng を乱数源にした RandomPlacer を返します
// rng が nil なら現在時刻で初期化します
func NewRandomPlacer(rng *rand.Rand) *RandomPlacer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &RandomPlacer{rng: rng}
}

// NewSeededPlacer は再現可能な RandomPlacer を返します
func NewSeededPlacer(seed uint64) *RandomPlacer {
	return NewRandomPlacer(rand.New(rand.NewPCG(seed, seed)))
}

type point struct{ r, c int }

// PlaceMines は MinePlacer を実装します
func (p *RandomPlacer) PlaceMines(rows, cols, mineCount, safeRow, safeCol int) (Layout, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("place %dx%d: %w", rows, cols, ErrInvalidSize)
	}
	if mineCount < 0 || mineCount >= rows*cols {
		return nil, fmt.Errorf("place %d mines on %dx%d: %w", mineCount, rows, cols, ErrInvalidMineCount)
	}

	// 1. 安全地帯: 最初のマスとその周囲（盤面内のみ）
	safe := make([]point, 0, 9)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			r, c := safeRow+dr, safeCol+dc
			if r >= 0 && r < rows && c >= 0 && c < cols {
				safe = append(safe, point{r, c})
			}
		}
	}

	// 2. 地雷が入りきらない場合は遠いマスから安全地帯を削る
	maxSafe := max(1, rows*cols-mineCount)
	if len(safe) > maxSafe {
		slices.SortStableFunc(safe, func(a, b point) int {
			return distanceSquared(b, safeRow, safeCol) - distanceSquared(a, safeRow, safeCol)
		})
		safe = safe[len(safe)-maxSafe:]
	}

	inSafe := make([]bool, rows*cols)
	for _, s := range safe {
		inSafe[s.r*cols+s.c] = true
	}

	// 3. 候補 = 安全地帯以外の全マス
	candidates := make([]point, 0, rows*cols-len(safe))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if !inSafe[r*cols+c] {
				candidates = append(candidates, point{r, c})
			}
		}
	}
	if mineCount > len(candidates) {
		return nil, fmt.Errorf("place %d mines with %d candidates: %w", mineCount, len(candidates), ErrTooManyMines)
	}

	// 4. シャッフルして先頭から mineCount 個
	p.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	layout := make(Layout, rows)
	for r := range layout {
		layout[r] = make([]int, cols)
	}
	for _, m := range candidates[:mineCount] {
		layout[m.r][m.c] = Mine
	}
	fillCounts(layout)
	return layout, nil
}

func distanceSquared(p point, r, c int) int {
	dr, dc := p.r-r, p.c-c
	return dr*dr + dc*dc
}

// fillCounts は地雷以外の全マスに周囲の地雷数を書き込みます
func fillCounts(l Layout) {
	for r := range l {
		for c := range l[r] {
			if l[r][c] == Mine {
				continue
			}
			l[r][c] = countAround(l, r, c)
		}
	}
}

func countAround(l Layout, r, c int) int {
	count := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			nr, nc := r+dr, c+dc
			if nr >= 0 && nr < len(l) && nc >= 0 && nc < len(l[nr]) && l[nr][nc] == Mine {
				count++
			}
		}
	}
	return count
}
