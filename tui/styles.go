package tui

import "github.com/charmbracelet/lipgloss"

// Theme はマスの描画スタイルです
type Theme struct {
	Hidden  lipgloss.Style
	Flag    lipgloss.Style
	Mine    lipgloss.Style
	Empty   lipgloss.Style
	Numbers [9]lipgloss.Style
	Cursor  lipgloss.Style
	Status  lipgloss.Style
	Alert   lipgloss.Style
	Box     lipgloss.Style
}

// 数字ごとの色（1:青, 2:緑, 3:赤, ...）
var numberColors = [9]string{"", "#5f87ff", "#5faf5f", "#ff5f5f", "#8787ff", "#af5f00", "#00afaf", "#d0d0d0", "#8a8a8a"}

func newTheme(fg, dim, hidden string) Theme {
	t := Theme{
		Hidden: lipgloss.NewStyle().Foreground(lipgloss.Color(hidden)),
		Flag:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4500")).Bold(true),
		Mine:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
		Empty:  lipgloss.NewStyle().Foreground(lipgloss.Color(dim)),
		Cursor: lipgloss.NewStyle().Background(lipgloss.Color("#FFD700")).Foreground(lipgloss.Color("#000000")).Bold(true),
		Status: lipgloss.NewStyle().Foreground(lipgloss.Color(fg)),
		Alert:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(dim)).
			Padding(0, 1),
	}
	for i, c := range numberColors {
		if c == "" {
			c = fg
		}
		t.Numbers[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
	}
	return t
}

var (
	DarkTheme  = newTheme("#e4e4e4", "#585858", "#a8a8a8")
	LightTheme = newTheme("#1c1c1c", "#bcbcbc", "#4e4e4e")
)
