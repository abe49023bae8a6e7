// Package httpapi exposes the host-side control surface: session creation
// and host actions over REST, plus QR join links. Gameplay itself flows
// over the websocket transport, not through these routes.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"yupp-live-quiz/internal/domain"
	"yupp-live-quiz/internal/game"
)

// QuizSource resolves a catalog id to quiz content.
type QuizSource interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizLister enumerates the catalog, when the backing source supports it.
type QuizLister interface {
	ListQuizzes(ctx context.Context) ([]string, error)
}

type Server struct {
	hub       *game.Hub
	quizzes   QuizSource
	lister    QuizLister
	log       *zap.Logger
	publicURL string
	version   string
}

func NewServer(hub *game.Hub, quizzes QuizSource, lister QuizLister, publicURL, version string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		hub:       hub,
		quizzes:   quizzes,
		lister:    lister,
		log:       log,
		publicURL: publicURL,
		version:   version,
	}
}

type createSessionRequest struct {
	QuizID string `json:"quizId"`
}

type sessionResponse struct {
	Pin            string                    `json:"pin"`
	QuizTitle      string                    `json:"quizTitle"`
	State          game.State                `json:"state"`
	Players        []domain.LeaderboardEntry `json:"players"`
	QuestionNumber int                       `json:"questionNumber"`
	TotalQuestions int                       `json:"totalQuestions"`
	LastResult     *domain.RoundResult       `json:"lastResult,omitempty"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
		writeError(w, http.StatusBadRequest, "missing quizId")
		return
	}
	quiz, err := s.quizzes.GetQuiz(r.Context(), req.QuizID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrQuizNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrQuizInvalid):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.log.Error("load quiz", zap.String("quiz", req.QuizID), zap.Error(err))
			writeError(w, http.StatusBadGateway, domain.ErrQuizLoadFailed.Error())
		}
		return
	}
	session, err := s.hub.Create(r.Context(), quiz)
	if err != nil {
		s.log.Error("create session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.snapshot(session))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	session, ok := s.hub.Get(p.ByName("pin"))
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrSessionNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot(session))
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	s.hostAction(w, p.ByName("pin"), func(session *game.Session) error { return session.Start() })
}

func (s *Server) advanceSession(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	s.hostAction(w, p.ByName("pin"), func(session *game.Session) error { return session.Advance() })
}

func (s *Server) hostAction(w http.ResponseWriter, pin string, action func(*game.Session) error) {
	session, ok := s.hub.Get(pin)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrSessionNotFound.Error())
		return
	}
	if err := action(session); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot(session))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	s.hub.Remove(r.Context(), p.ByName("pin"))
	w.WriteHeader(http.StatusNoContent)
}

const qrSize = 256

// sessionQR renders a PNG QR code pointing players at the join URL.
func (s *Server) sessionQR(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	pin := p.ByName("pin")
	if _, ok := s.hub.Get(pin); !ok {
		writeError(w, http.StatusNotFound, domain.ErrSessionNotFound.Error())
		return
	}
	png, err := qrcode.Encode(s.publicURL+"/join?pin="+pin, qrcode.Medium, qrSize)
	if err != nil {
		s.log.Error("encode qr", zap.String("session", pin), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "qr encoding failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) listQuizzes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.lister == nil {
		writeJSON(w, http.StatusOK, map[string][]string{"quizzes": {}})
		return
	}
	ids, err := s.lister.ListQuizzes(r.Context())
	if err != nil {
		s.log.Error("list quizzes", zap.Error(err))
		writeError(w, http.StatusBadGateway, domain.ErrQuizLoadFailed.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"quizzes": ids})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) serveVersion(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("yupp v" + s.version + "\n"))
}

func (s *Server) snapshot(session *game.Session) sessionResponse {
	return sessionResponse{
		Pin:            session.ID(),
		QuizTitle:      session.Quiz().Title,
		State:          session.State(),
		Players:        session.Roster(),
		QuestionNumber: session.CurrentQuestion(),
		TotalQuestions: len(session.Quiz().Questions),
		LastResult:     session.LastResult(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
