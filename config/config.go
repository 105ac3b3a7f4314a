// Package config は設定ファイルと起動引数を読み込みます
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"minesweeper/game"
)

var (
	ErrUnknownPreset = errors.New("unknown preset")
	ErrBadArgs       = errors.New("invalid custom args, use: <rows> <cols> <mines>")
)

type Config struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	Preset    string `yaml:"preset"`
	// Rows/Cols/Mines を指定すると Preset より優先されます
	Rows     int    `yaml:"rows"`
	Cols     int    `yaml:"cols"`
	Mines    int    `yaml:"mines"`
	Seed     uint64 `yaml:"seed"` // 0 なら毎回ランダム
	Weights  string `yaml:"weights"`
	LogLevel string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Addr:      ":8080",
		StaticDir: "static",
		Preset:    game.DefaultPreset.Name,
		LogLevel:  "info",
	}
}

// Load は YAML ファイルを読み込みます。path が空ならデフォルト値を返します
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := c.Game(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Game は設定された盤面サイズを返します
func (c Config) Game() (game.Preset, error) {
	if c.Rows != 0 || c.Cols != 0 || c.Mines != 0 {
		p := game.Preset{Name: "custom", Rows: c.Rows, Cols: c.Cols, Mines: c.Mines}
		if p.Rows <= 0 || p.Cols <= 0 {
			return p, fmt.Errorf("%dx%d: %w", p.Rows, p.Cols, game.ErrInvalidSize)
		}
		if p.Mines < 0 || p.Mines >= p.Rows*p.Cols {
			return p, fmt.Errorf("%d mines: %w", p.Mines, game.ErrInvalidMineCount)
		}
		return p, nil
	}
	p, ok := game.PresetByName(c.Preset)
	if !ok {
		return p, fmt.Errorf("%q: %w", c.Preset, ErrUnknownPreset)
	}
	return p, nil
}

func (c Config) Level() (logrus.Level, error) {
	return logrus.ParseLevel(c.LogLevel)
}

// ParseGameArgs は起動引数から盤面サイズを決めます
//
//	beginner | intermediate | advanced   プリセット（知らない名前ならデフォルト）
//	<rows> <cols> <mines>                カスタム
//
// それ以外の個数の引数はデフォルトになります
func ParseGameArgs(args []string) (game.Preset, error) {
	switch len(args) {
	case 1:
		if p, ok := game.PresetByName(args[0]); ok {
			return p, nil
		}
		return game.DefaultPreset, nil
	case 3:
		var nums [3]int
		for i, a := range args {
			n, err := strconv.Atoi(a)
			if err != nil {
				return game.DefaultPreset, fmt.Errorf("%q: %w", a, ErrBadArgs)
			}
			nums[i] = n
		}
		return game.Preset{Name: "custom", Rows: nums[0], Cols: nums[1], Mines: nums[2]}, nil
	default:
		return game.DefaultPreset, nil
	}
}
