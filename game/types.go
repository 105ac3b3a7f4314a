package game

// Visibility はプレイヤーから見たマスの状態です
type Visibility uint8

const (
	Hidden   Visibility = iota // 未開封（ゼロ値）
	Revealed                   // 開封済み
	Flagged                    // フラッグ
)

func (v Visibility) IsHidden() bool   { return v == Hidden }
func (v Visibility) IsRevealed() bool { return v == Revealed }
func (v Visibility) IsFlagged() bool  { return v == Flagged }

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case Revealed:
		return "revealed"
	case Flagged:
		return "flagged"
	default:
		return "unknown"
	}
}

// Mine は Layout 上で地雷を表す値です
const Mine = -1

// Layout は rows×cols の地雷配置です
// Mine(-1) が地雷、それ以外は周囲8マスの地雷数(0〜8)
type Layout [][]int

// Clone は Layout の深いコピーを返します
func (l Layout) Clone() Layout {
	out := make(Layout, len(l))
	for r := range l {
		out[r] = append([]int(nil), l[r]...)
	}
	return out
}

// Mines は地雷の数を数えます
func (l Layout) Mines() int {
	n := 0
	for _, row := range l {
		for _, v := range row {
			if v == Mine {
				n++
			}
		}
	}
	return n
}

// Board はゲーム盤面全体を持ちます
// 一度作られた Board は変更されません。操作は新しい Board を返します
type Board struct {
	rows      int
	cols      int
	mineCount int
	placer    MinePlacer

	layout  Layout       // 最初の Reveal まで nil。以降は全ての子孫で共有
	visible []Visibility // rows*cols。変更時はコピーしてから書き換える

	lost          bool
	revealedCount int
	flaggedCount  int
	mineHits      int
}
