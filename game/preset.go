package game

import (
	"fmt"
	"strings"
)

// Preset は標準の難易度設定です
type Preset struct {
	Name  string
	Rows  int
	Cols  int
	Mines int
}

var (
	Beginner     = Preset{Name: "beginner", Rows: 9, Cols: 9, Mines: 10}
	Intermediate = Preset{Name: "intermediate", Rows: 16, Cols: 16, Mines: 40}
	Advanced     = Preset{Name: "advanced", Rows: 16, Cols: 30, Mines: 99}
)

// DefaultPreset は引数なしで起動したときの難易度です
var DefaultPreset = Intermediate

func Presets() []Preset {
	return []Preset{Beginner, Intermediate, Advanced}
}

// PresetByName は名前（大文字小文字を区別しない）からプリセットを探します
func PresetByName(name string) (Preset, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range Presets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

func (p Preset) String() string {
	return fmt.Sprintf("%s (%dx%d, %d mines)", p.Name, p.Rows, p.Cols, p.Mines)
}

// NewBoard はプリセットのサイズで盤面を作ります
func (p Preset) NewBoard(placer MinePlacer) (*Board, error) {
	return NewBoard(p.Rows, p.Cols, p.Mines, placer)
}
