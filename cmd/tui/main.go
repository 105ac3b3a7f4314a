package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"

	"minesweeper/ai"
	"minesweeper/config"
	"minesweeper/session"
	"minesweeper/tui"
)

var log = logrus.New()

func main() {
	configPath := flag.String("config", "", "YAML設定ファイル")
	logFile := flag.String("log", "", "ログの出力先（画面が崩れるので標準エラーには出しません）")
	flag.Parse()

	if err := run(*configPath, *logFile, flag.Args()); err != nil {
		log.WithError(err).Fatal("tui")
	}
}

// run はログファイルを閉じてから戻るので、エラーは main で処理します
func run(configPath, logFile string, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ログは画面に出さない
	level, _ := cfg.Level()
	session.Log.SetLevel(level)
	session.Log.SetOutput(io.Discard)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer func() {
			session.Log.SetOutput(io.Discard)
			f.Close()
		}()
		session.Log.SetOutput(f)
	}

	p, err := cfg.Game()
	if err != nil {
		return fmt.Errorf("invalid game size: %w", err)
	}
	if len(args) > 0 {
		if p, err = config.ParseGameArgs(args); err != nil {
			session.Log.WithError(err).Warn("using default game")
		}
	}

	var net *ai.Network
	if cfg.Weights != "" {
		if net, err = ai.LoadFile(cfg.Weights); err != nil {
			session.Log.WithError(err).Warn("AI weights not loaded")
			net = nil
		}
	}

	theme := tui.DarkTheme
	if !termenv.HasDarkBackground() {
		theme = tui.LightTheme
	}

	sess := session.New(session.RandomPlacers(cfg.Seed), net)
	m, err := tui.NewModel(sess, p, theme)
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}
