// Package session は「現在の盤面」を1つだけ持つコントローラです
//
// Board は不変なので、操作ごとに返ってきた盤面で参照を差し替えます。
// 差し替えは mu の中で行い、書き込みは常に1つずつ順番に処理されます。
package session

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"minesweeper/ai"
	"minesweeper/game"
	"minesweeper/solver"
	"minesweeper/viewmodel"
)

var Log = logrus.New()

var ErrNoGame = errors.New("no game in progress")

// PlacerFactory はゲームごとに新しい MinePlacer を作ります
type PlacerFactory func() game.MinePlacer

// RandomPlacers は seed が 0 なら毎回ランダム、それ以外はゲームごとに seed, seed+1, ... を使います
func RandomPlacers(seed uint64) PlacerFactory {
	var mu sync.Mutex
	next := seed
	return func() game.MinePlacer {
		if seed == 0 {
			return game.NewRandomPlacer(nil)
		}
		mu.Lock()
		defer mu.Unlock()
		p := game.NewSeededPlacer(next)
		next++
		return p
	}
}

type Session struct {
	mu        sync.Mutex
	board     *game.Board
	id        uuid.UUID
	newPlacer PlacerFactory
	net       *ai.Network
	rng       *rand.Rand
}

// New は空のセッションを返します。net は nil でも構いません
func New(newPlacer PlacerFactory, net *ai.Network) *Session {
	if newPlacer == nil {
		newPlacer = RandomPlacers(0)
	}
	seed := uint64(time.Now().UnixNano())
	return &Session{
		newPlacer: newPlacer,
		net:       net,
		rng:       rand.New(rand.NewPCG(seed, seed>>1)),
	}
}

// NewGame は新しいゲームを開始します
func (s *Session) NewGame(p game.Preset) (viewmodel.GameView, error) {
	b, err := p.NewBoard(s.newPlacer())
	if err != nil {
		return viewmodel.GameView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = b
	s.id = uuid.New()
	Log.WithFields(logrus.Fields{
		"game_id": s.id.String(),
		"rows":    p.Rows,
		"cols":    p.Cols,
		"mines":   p.Mines,
	}).Info("new game")
	return s.view(), nil
}

// Board は現在の盤面を返します（不変なのでそのまま読めます）
func (s *Session) Board() *game.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return ""
	}
	return s.id.String()
}

func (s *Session) State() (viewmodel.GameView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return viewmodel.GameView{}, ErrNoGame
	}
	return s.view(), nil
}

// Reveal は指定されたセルを開きます
func (s *Session) Reveal(r, c int) (viewmodel.GameView, error) {
	return s.apply("reveal", r, c, func(b *game.Board) (*game.Board, error) {
		return b.Reveal(r, c)
	})
}

// ToggleFlag はフラグを切り替えます
func (s *Session) ToggleFlag(r, c int) (viewmodel.GameView, error) {
	return s.apply("flag", r, c, func(b *game.Board) (*game.Board, error) {
		return b.ToggleFlag(r, c), nil
	})
}

func (s *Session) Chord(r, c int) (viewmodel.GameView, error) {
	return s.apply("chord", r, c, func(b *game.Board) (*game.Board, error) {
		return b.Chord(r, c), nil
	})
}

// BotStep はBotに1手進めさせます。打つ手がなければ move は nil です
func (s *Session) BotStep() (viewmodel.GameView, *solver.Move, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return viewmodel.GameView{}, nil, ErrNoGame
	}

	move := solver.New(s.board, s.net, s.rng).NextMove()
	if move == nil {
		return s.view(), nil, nil
	}

	var (
		next = s.board
		err  error
	)
	switch move.Type {
	case solver.MoveOpen:
		next, err = s.board.Reveal(move.Row, move.Col)
	case solver.MoveFlag:
		next = s.board.ToggleFlag(move.Row, move.Col)
	}
	intent := "bot:" + move.Type.String()
	if err != nil {
		s.logFailure(intent, move.Row, move.Col, err)
		return s.view(), move, err
	}
	s.replace(intent, move.Row, move.Col, next)
	return s.view(), move, nil
}

func (s *Session) apply(intent string, r, c int, fn func(*game.Board) (*game.Board, error)) (viewmodel.GameView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return viewmodel.GameView{}, ErrNoGame
	}
	next, err := fn(s.board)
	if err != nil {
		s.logFailure(intent, r, c, err)
		return s.view(), err
	}
	s.replace(intent, r, c, next)
	return s.view(), nil
}

func (s *Session) logFailure(intent string, r, c int, err error) {
	Log.WithFields(logrus.Fields{
		"game_id": s.id.String(), "intent": intent, "row": r, "col": c,
	}).WithError(err).Error("intent failed")
}

// replace は mu を持った状態で呼んでください
func (s *Session) replace(intent string, r, c int, next *game.Board) {
	prev := s.board
	s.board = next

	entry := Log.WithFields(logrus.Fields{
		"game_id": s.id.String(), "intent": intent, "row": r, "col": c,
	})
	switch {
	case next == prev:
		entry.Debug("no-op")
	case next.IsLost() && !prev.IsLost():
		entry.Info("game lost")
	case next.IsWon() && !prev.IsWon():
		entry.Info("game won")
	case next.MineHits() > prev.MineHits():
		entry.Info("mine hit forgiven")
	default:
		entry.WithField("revealed", next.RevealedCount()).Debug("applied")
	}
}

func (s *Session) view() viewmodel.GameView {
	return viewmodel.New(s.board, s.id.String())
}
