// gen はBotに自己対戦させて、AI学習用のデータセットを CSV に書き出します
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"minesweeper/ai"
	"minesweeper/config"
	"minesweeper/game"
	"minesweeper/session"
	"minesweeper/solver"
)

var log = logrus.New()

func main() {
	games := flag.Int("games", 10000, "対戦数")
	out := flag.String("out", "dataset.csv", "出力ファイル")
	seed := flag.Uint64("seed", 1, "最初のゲームのシード（0ならランダム）")
	debug := flag.Bool("debug", false, "各ゲームの最終盤面を表示する")
	flag.Parse()

	// AI学習用には「初級」程度の密度が良い
	p, err := config.ParseGameArgs(flag.Args())
	if err != nil {
		log.WithError(err).Warn("using default game")
	}
	if flag.NArg() == 0 {
		p = game.Beginner
	}

	file, err := os.Create(*out)
	if err != nil {
		log.WithError(err).Fatal("create dataset")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// CSVヘッダー: 周囲5x5マスの情報(25個) + 正解ラベル
	header := make([]string, 0, ai.InputSize+1)
	for i := 0; i < ai.InputSize; i++ {
		header = append(header, fmt.Sprintf("cell_%d", i))
	}
	header = append(header, "is_mine")
	if err := writer.Write(header); err != nil {
		log.WithError(err).Fatal("write header")
	}

	log.WithFields(logrus.Fields{"games": *games, "game": p.String()}).Info("generating dataset")
	placers := session.RandomPlacers(*seed)
	var rows, wins int
	for i := 0; i < *games; i++ {
		b, n, err := playGameAndRecord(writer, p, placers())
		if err != nil {
			log.WithError(err).Fatal("play game")
		}
		rows += n
		if b.IsWon() {
			wins++
		}
		if *debug {
			b.Fprint(os.Stdout)
		}
		if i%1000 == 0 {
			log.WithFields(logrus.Fields{"game": i, "rows": rows}).Debug("progress")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.WithError(err).Fatal("write dataset")
	}
	log.WithFields(logrus.Fields{"file": *out, "rows": rows, "wins": wins}).Info("done")
}

// playGameAndRecord は1ゲーム遊んで、推測した場面の数を返します
func playGameAndRecord(writer *csv.Writer, p game.Preset, placer game.MinePlacer) (*game.Board, int, error) {
	b, err := p.NewBoard(placer)
	if err != nil {
		return nil, 0, err
	}

	recorded := 0
	for {
		move := solver.New(b, nil, nil).NextMove()
		if move == nil {
			return b, recorded, nil
		}

		// ★重要: 「運任せ（Guess）」の場面だけを記録する
		// ロジックで解ける場面を学習させても意味がないため
		// 配置前の最初の一手は正解ラベルがないので除く
		if move.IsGuess && b.HasLayout() {
			if err := recordState(writer, b, move.Row, move.Col); err != nil {
				return b, recorded, err
			}
			recorded++
		}

		switch move.Type {
		case solver.MoveOpen:
			if b, err = b.Reveal(move.Row, move.Col); err != nil {
				return nil, recorded, err
			}
		case solver.MoveFlag:
			b = b.ToggleFlag(move.Row, move.Col)
		}
	}
}

func recordState(writer *csv.Writer, b *game.Board, r, c int) error {
	input := solver.AiInput(b, r, c)
	row := make([]string, 0, len(input)+1)
	for _, v := range input {
		row = append(row, strconv.Itoa(int(v)))
	}

	// 正解ラベル（0:安全, 1:地雷）
	label := "0"
	if b.IsMine(r, c) {
		label = "1"
	}
	return writer.Write(append(row, label))
}
