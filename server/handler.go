package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"minesweeper/config"
	"minesweeper/game"
	"minesweeper/session"
	"minesweeper/solver"
	"minesweeper/viewmodel"
)

var Log = logrus.New()

// Server は Session を HTTP で公開します
type Server struct {
	Session   *session.Session
	Default   game.Preset
	StaticDir string
}

// NewServer はサーバーインスタンスを初期化し、最初のゲームを作ります
func NewServer(s *session.Session, def game.Preset, staticDir string) (*Server, error) {
	srv := &Server{Session: s, Default: def, StaticDir: staticDir}
	if _, err := s.NewGame(def); err != nil {
		return nil, err
	}
	return srv, nil
}

func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/state", s.HandleState)
	mux.HandleFunc("POST /api/new", s.HandleNew)
	mux.HandleFunc("POST /api/open", s.HandleOpen)
	mux.HandleFunc("POST /api/flag", s.HandleFlag)
	mux.HandleFunc("POST /api/chord", s.HandleChord)
	mux.HandleFunc("POST /api/bot", s.HandleBot)
	if s.StaticDir != "" {
		// staticフォルダの中身（html, js, wasm）をそのまま配信する
		mux.Handle("GET /", http.FileServer(http.Dir(s.StaticDir)))
	}
}

// Handler はログ付きの http.Handler を返します
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Routes(mux)
	return WithLogging(mux)
}

// MoveView はBotの手のレスポンスです
type MoveView struct {
	Row        int     `json:"row"`
	Col        int     `json:"col"`
	Type       string  `json:"type"`
	Strategy   string  `json:"strategy"`
	IsGuess    bool    `json:"is_guess"`
	Confidence float64 `json:"confidence"`
}

type BotResponse struct {
	Game viewmodel.GameView `json:"game"`
	Move *MoveView          `json:"move,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	view, err := s.Session.State()
	s.respond(w, view, err)
}

// HandleNew はゲームリセットAPI
// preset=beginner などのプリセットか、rows/cols/mines で指定します
func (s *Server) HandleNew(w http.ResponseWriter, r *http.Request) {
	p, err := s.presetFrom(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}
	view, err := s.Session.NewGame(p)
	s.respond(w, view, err)
}

// HandleOpen はマスを開けるAPI
func (s *Server) HandleOpen(w http.ResponseWriter, r *http.Request) {
	s.handleIntent(w, r, s.Session.Reveal)
}

func (s *Server) HandleFlag(w http.ResponseWriter, r *http.Request) {
	s.handleIntent(w, r, s.Session.ToggleFlag)
}

func (s *Server) HandleChord(w http.ResponseWriter, r *http.Request) {
	s.handleIntent(w, r, s.Session.Chord)
}

// HandleBot はBotに1手進めさせるAPI
func (s *Server) HandleBot(w http.ResponseWriter, r *http.Request) {
	view, move, err := s.Session.BotStep()
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{err.Error()})
		return
	}
	resp := BotResponse{Game: view}
	if move != nil {
		resp.Move = NewMoveView(move)
	}
	writeJSON(w, http.StatusOK, resp)
}

// NewMoveView は solver.Move をレスポンス用に変換します
func NewMoveView(m *solver.Move) *MoveView {
	return &MoveView{
		Row:        m.Row,
		Col:        m.Col,
		Type:       m.Type.String(),
		Strategy:   m.Strategy,
		IsGuess:    m.IsGuess,
		Confidence: m.Confidence,
	}
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request, intent func(r, c int) (viewmodel.GameView, error)) {
	row, err := intParam(r, "row")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}
	col, err := intParam(r, "col")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}
	view, err := intent(row, col)
	s.respond(w, view, err)
}

func (s *Server) presetFrom(r *http.Request) (game.Preset, error) {
	q := r.URL.Query()
	if name := q.Get("preset"); name != "" {
		p, ok := game.PresetByName(name)
		if !ok {
			return p, fmt.Errorf("%q: %w", name, config.ErrUnknownPreset)
		}
		return p, nil
	}
	if q.Get("rows") == "" && q.Get("cols") == "" && q.Get("mines") == "" {
		return s.Default, nil
	}
	args := []string{q.Get("rows"), q.Get("cols"), q.Get("mines")}
	return config.ParseGameArgs(args)
}

func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return n, nil
}

func (s *Server) respond(w http.ResponseWriter, view viewmodel.GameView, err error) {
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// statusFor は設定エラーを 422、ゲームがない場合を 409 にします
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNoGame):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidSize),
		errors.Is(err, game.ErrInvalidMineCount),
		errors.Is(err, game.ErrTooManyMines),
		errors.Is(err, game.ErrInvalidLayout):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Log.WithError(err).Warn("encode response")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// WithLogging はリクエストごとに1行ログを出します
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"query":    r.URL.RawQuery,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Info("request")
	})
}
