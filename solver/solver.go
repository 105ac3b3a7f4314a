package solver

import (
	"math/rand/v2"
	"time"

	"minesweeper/ai"
	"minesweeper/game"
)

type MoveType int

const (
	MoveOpen MoveType = iota
	MoveFlag
)

func (t MoveType) String() string {
	if t == MoveFlag {
		return "flag"
	}
	return "open"
}

type Move struct {
	Row, Col   int
	Type       MoveType
	IsGuess    bool    // 運任せかどうか
	Strategy   string  // "Logic", "AI", "Random"
	Confidence float64 // 0.0 ~ 1.0 (安全確率)
}

type Solver struct {
	Board *game.Board
	AiNet *ai.Network
	rng   *rand.Rand
}

// New は盤面を読むだけの Solver を返します
// net が nil なら AI は使いません。rng が nil なら現在時刻で初期化します
func New(b *game.Board, net *ai.Network, rng *rand.Rand) *Solver {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Solver{Board: b, AiNet: net, rng: rng}
}

// NextMove は次の一手を返します。打つ手がなければ nil です
//
// 開いた領域に接する地雷は必ず見えているので、数字マスの周りの未開封マスは
// 常に安全です。推測が必要になるのは地雷の壁の向こう側だけです。
func (s *Solver) NextMove() *Move {
	if s.Board.IsLost() || s.Board.IsWon() {
		return nil
	}

	// 1. 論理的に「絶対に安全」
	if move := s.findSafeMove(); move != nil {
		return logic(move)
	}

	// 2. 間違った旗を外す
	if move := s.findWrongFlag(); move != nil {
		return logic(move)
	}

	// 3. 残りの地雷数から決まる手
	if move := s.findCountMove(); move != nil {
		return logic(move)
	}

	// 4. 未開封マスが全部旗なら旗を外す
	if move := s.findStuckFlag(); move != nil {
		return logic(move)
	}

	// 5. AI または ランダム
	move := s.findRandomMove()
	if move != nil {
		move.IsGuess = true
	}
	return move
}

func logic(m *Move) *Move {
	m.Strategy = "Logic"
	m.Confidence = 1.0
	return m
}

func (s *Solver) findSafeMove() *Move {
	b := s.Board
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			n, ok := clue(b, r, c)
			if !ok {
				continue
			}
			mines, _, hidden := neighborsInfo(b, r, c)
			if mines == n && len(hidden) > 0 {
				target := hidden[0]
				return &Move{Row: target.r, Col: target.c, Type: MoveOpen}
			}
		}
	}
	return nil
}

// findWrongFlag は見えている地雷だけで数字が埋まっている数字マスの隣の旗を探します
func (s *Solver) findWrongFlag() *Move {
	b := s.Board
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			n, ok := clue(b, r, c)
			if !ok {
				continue
			}
			mines, flags, _ := neighborsInfo(b, r, c)
			if mines == n && len(flags) > 0 {
				target := flags[0]
				return &Move{Row: target.r, Col: target.c, Type: MoveFlag}
			}
		}
	}
	return nil
}

// findCountMove は見えていない地雷が残っていないときに未開封マスを開けます
func (s *Solver) findCountMove() *Move {
	remaining, hidden := s.remaining()
	if remaining > 0 || len(hidden) == 0 {
		return nil
	}
	return &Move{Row: hidden[0].r, Col: hidden[0].c, Type: MoveOpen}
}

// findStuckFlag は旗のない未開封マスが残っていないときに最初の旗を返します
// 開けられるマスがないまま止まらないように、旗を外して候補を作ります
func (s *Solver) findStuckFlag() *Move {
	b := s.Board
	var flag *pos
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			switch v := b.VisibleAt(r, c); {
			case v.IsHidden():
				return nil
			case v.IsFlagged() && flag == nil:
				flag = &pos{r, c}
			}
		}
	}
	if flag == nil {
		return nil
	}
	return &Move{Row: flag.r, Col: flag.c, Type: MoveFlag}
}

// remaining は見えていない地雷の数と、旗のない未開封マスを返します
func (s *Solver) remaining() (int, []pos) {
	b := s.Board
	mines := b.TotalMines()
	var hidden []pos
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			switch v := b.VisibleAt(r, c); {
			case v.IsHidden():
				hidden = append(hidden, pos{r, c})
			case v.IsRevealed() && b.IsMine(r, c):
				mines--
			}
		}
	}
	return mines, hidden
}

// unknownCells は開いていないマス（旗を含む）の数です
func (s *Solver) unknownCells() int {
	b := s.Board
	n := 0
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			if !b.VisibleAt(r, c).IsRevealed() {
				n++
			}
		}
	}
	return n
}

func (s *Solver) findRandomMove() *Move {
	b := s.Board
	// AIが使える場合
	if s.AiNet != nil {
		bestProb := 1.0 // 地雷確率（低いほうが良い）
		var bestMove *Move

		for r := 0; r < b.Rows(); r++ {
			for c := 0; c < b.Cols(); c++ {
				if !b.VisibleAt(r, c).IsHidden() {
					continue
				}
				prob := s.AiNet.Predict(AiInput(b, r, c))

				// より安全なマスが見つかったら更新
				if prob < bestProb {
					bestProb = prob
					bestMove = &Move{
						Row: r, Col: c,
						Type:       MoveOpen,
						Strategy:   "AI",
						Confidence: 1.0 - prob, // 安全確率
					}
				}
			}
		}
		if bestMove != nil {
			return bestMove
		}
	}

	return s.findPureRandomMove()
}

func (s *Solver) findPureRandomMove() *Move {
	b := s.Board
	var candidates []pos
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			if b.VisibleAt(r, c).IsHidden() {
				candidates = append(candidates, pos{r, c})
			}
		}
	}

	if len(candidates) == 0 {
		return nil
	}
	choice := candidates[s.rng.IntN(len(candidates))]
	// 配置前の最初の一手は必ず安全
	confidence := 1.0
	if b.HasLayout() {
		remaining, _ := s.remaining()
		confidence = 1.0 - float64(remaining)/float64(s.unknownCells())
	}
	return &Move{
		Row: choice.r, Col: choice.c,
		Type:       MoveOpen,
		Strategy:   "Random",
		Confidence: confidence,
	}
}

// 5x5 窓の特徴量で使う値
const (
	inputWall   = 9.0
	inputHidden = -1.0
	inputFlag   = -2.0
	inputMine   = -3.0
)

// AiInput は (row, col) を中心とした 5x5 の特徴量を返します
// 未開封 -1、旗 -2、見えている地雷 -3、範囲外 9、それ以外は周囲の地雷数
func AiInput(b *game.Board, tr, tc int) []float64 {
	input := make([]float64, 0, 25)
	for dr := -2; dr <= 2; dr++ {
		for dc := -2; dc <= 2; dc++ {
			r, c := tr+dr, tc+dc
			val := inputWall
			if b.InBounds(r, c) {
				switch v := b.VisibleAt(r, c); {
				case v.IsFlagged():
					val = inputFlag
				case v.IsHidden():
					val = inputHidden
				case b.IsMine(r, c):
					val = inputMine
				default:
					val = float64(b.AdjacentMines(r, c))
				}
			}
			input = append(input, val)
		}
	}
	return input
}

type pos struct{ r, c int }

// clue は開いている数字マスならその数字を返します
func clue(b *game.Board, r, c int) (int, bool) {
	if !b.VisibleAt(r, c).IsRevealed() {
		return 0, false
	}
	n := b.AdjacentMines(r, c)
	return n, n > 0
}

// neighborsInfo は周囲の見えている地雷の数、旗、旗のない未開封マスを返します
// 旗は間違っていることがあるので地雷として数えません
func neighborsInfo(b *game.Board, cr, cc int) (mines int, flags, hidden []pos) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := cr+dr, cc+dc
			if !b.InBounds(r, c) {
				continue
			}
			switch v := b.VisibleAt(r, c); {
			case v.IsFlagged():
				flags = append(flags, pos{r, c})
			case v.IsHidden():
				hidden = append(hidden, pos{r, c})
			case b.IsMine(r, c):
				mines++
			}
		}
	}
	return
}
