package main

import (
	"flag"
	"net/http"

	"github.com/sirupsen/logrus"

	"minesweeper/ai"
	"minesweeper/config"
	"minesweeper/server"
	"minesweeper/session"
)

var log = logrus.New()

func main() {
	configPath := flag.String("config", "", "YAML設定ファイル")
	addr := flag.String("addr", "", "待ち受けアドレス（設定ファイルより優先）")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	level, _ := cfg.Level()
	for _, l := range []*logrus.Logger{log, session.Log, server.Log} {
		l.SetLevel(level)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	// 引数があれば設定ファイルの盤面より優先する
	def, err := cfg.Game()
	if err != nil {
		log.WithError(err).Fatal("invalid game size")
	}
	if flag.NArg() > 0 {
		p, err := config.ParseGameArgs(flag.Args())
		if err != nil {
			log.WithError(err).Warn("using default game")
		}
		def = p
	}

	var net *ai.Network
	if cfg.Weights != "" {
		net, err = ai.LoadFile(cfg.Weights)
		if err != nil {
			log.WithError(err).Warn("AI weights not loaded, bot falls back to random guesses")
			net = nil
		}
	}

	sess := session.New(session.RandomPlacers(cfg.Seed), net)
	srv, err := server.NewServer(sess, def, cfg.StaticDir)
	if err != nil {
		log.WithError(err).Fatal("start game")
	}

	log.WithFields(logrus.Fields{
		"addr":   cfg.Addr,
		"static": cfg.StaticDir,
		"game":   def.String(),
		"ai":     net != nil,
	}).Info("server starting")
	log.Fatal(http.ListenAndServe(cfg.Addr, srv.Handler()))
}
