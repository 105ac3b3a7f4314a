// Package tui はターミナル版のフロントエンドです
//
// 盤面の状態は session が持ち、Model はカーソルと描画だけを管理します。
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"minesweeper/game"
	"minesweeper/session"
	"minesweeper/solver"
	"minesweeper/viewmodel"
)

type coordinate struct {
	row, col int
}

type Model struct {
	KeyMap KeyMap
	Theme  Theme

	sess          *session.Session
	preset        game.Preset
	view          viewmodel.GameView
	cursor        coordinate
	lastMove      *solver.Move
	err           error
	help          help.Model
	width, height int
}

// NewModel は最初のゲームを開始した Model を返します
func NewModel(sess *session.Session, p game.Preset, theme Theme) (*Model, error) {
	m := &Model{
		KeyMap: Keys,
		Theme:  theme,
		sess:   sess,
		help:   help.New(),
	}
	if err := m.newGame(p); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.KeyMap.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.KeyMap.Up):
			m.moveCursor(-1, 0)
		case key.Matches(msg, m.KeyMap.Down):
			m.moveCursor(1, 0)
		case key.Matches(msg, m.KeyMap.Left):
			m.moveCursor(0, -1)
		case key.Matches(msg, m.KeyMap.Right):
			m.moveCursor(0, 1)

		case key.Matches(msg, m.KeyMap.Reveal):
			m.apply(m.sess.Reveal)
		case key.Matches(msg, m.KeyMap.Flag):
			m.apply(m.sess.ToggleFlag)
		case key.Matches(msg, m.KeyMap.Chord):
			m.apply(m.sess.Chord)

		case key.Matches(msg, m.KeyMap.Bot):
			m.botStep()

		case key.Matches(msg, m.KeyMap.New):
			m.err = m.newGame(m.preset)
		case key.Matches(msg, m.KeyMap.Preset):
			m.err = m.newGame(nextPreset(m.preset))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

// Cursor は現在のカーソル位置を返します
func (m *Model) Cursor() (row, col int) {
	return m.cursor.row, m.cursor.col
}

// GameView は最後に描画した盤面です
func (m *Model) GameView() viewmodel.GameView {
	return m.view
}

func (m *Model) newGame(p game.Preset) error {
	view, err := m.sess.NewGame(p)
	if err != nil {
		return err
	}
	m.preset = p
	m.view = view
	m.cursor = coordinate{p.Rows / 2, p.Cols / 2}
	m.lastMove = nil
	return nil
}

func (m *Model) moveCursor(dr, dc int) {
	m.cursor.row = clamp(m.cursor.row+dr, 0, m.view.Rows-1)
	m.cursor.col = clamp(m.cursor.col+dc, 0, m.view.Cols-1)
}

func (m *Model) apply(intent func(r, c int) (viewmodel.GameView, error)) {
	view, err := intent(m.cursor.row, m.cursor.col)
	m.err = err
	if err == nil {
		m.view = view
	}
	m.lastMove = nil
}

func (m *Model) botStep() {
	view, move, err := m.sess.BotStep()
	m.err = err
	if err != nil {
		return
	}
	m.view = view
	m.lastMove = move
	if move != nil {
		m.cursor = coordinate{move.Row, move.Col}
	}
}

func (m *Model) View() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.renderInfo(),
		m.Theme.Box.Render(m.renderBoard()),
		m.renderStatus(),
		m.help.View(m.KeyMap),
	)
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) renderInfo() string {
	return m.Theme.Status.Render(fmt.Sprintf("Minesweeper - %s   Mines: %d", m.preset, m.view.MinesRemaining))
}

func (m *Model) renderBoard() string {
	var sb strings.Builder
	for r, row := range m.view.Cells {
		for c, cell := range row {
			glyph, style := m.cellGlyph(cell)
			if r == m.cursor.row && c == m.cursor.col {
				style = m.Theme.Cursor
			}
			sb.WriteString(style.Render(" " + glyph + " "))
		}
		if r < len(m.view.Cells)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// cellGlyph は未開封「·」、フラッグ「F」、地雷「*」、0は空白、数字はそのまま
func (m *Model) cellGlyph(cell viewmodel.CellView) (string, lipgloss.Style) {
	switch {
	case cell.State == viewmodel.StateFlagged:
		return "F", m.Theme.Flag
	case cell.State == viewmodel.StateHidden:
		return "·", m.Theme.Hidden
	case cell.IsMine:
		return "*", m.Theme.Mine
	case cell.Count == 0:
		return " ", m.Theme.Empty
	default:
		return strconv.Itoa(cell.Count), m.Theme.Numbers[cell.Count]
	}
}

func (m *Model) renderStatus() string {
	switch {
	case m.err != nil:
		return m.Theme.Alert.Render("Error: " + m.err.Error())
	case m.view.IsGameOver:
		return m.Theme.Alert.Render("Game over! Press n for a new game")
	case m.view.IsGameClear:
		return m.Theme.Flag.Render("You win!!! Press n for a new game")
	case m.lastMove != nil:
		mv := m.lastMove
		return m.Theme.Status.Render(fmt.Sprintf("Bot: %s (%d,%d) by %s, %.0f%% safe",
			mv.Type, mv.Row, mv.Col, mv.Strategy, mv.Confidence*100))
	case m.view.ForgivenessUsed:
		return m.Theme.Alert.Render("Boom! That one was forgiven, the next mine ends the game")
	default:
		return ""
	}
}

func nextPreset(p game.Preset) game.Preset {
	presets := game.Presets()
	for i, q := range presets {
		if q == p {
			return presets[(i+1)%len(presets)]
		}
	}
	return presets[0]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
