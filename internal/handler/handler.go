package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/tuanvm/geminichat/internal/config"
	"github.com/tuanvm/geminichat/internal/domain"
	"github.com/tuanvm/geminichat/internal/service"
)

type ChatService interface {
	Send(ctx context.Context, p service.SendParams) (*service.SendResult, error)
	History(ctx context.Context, sessionID string) ([]domain.StoredChat, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds all dependencies needed by the HTTP endpoints.
type Handler struct {
	cfg       *config.Config
	chat      ChatService
	db        Pinger
	startTime time.Time
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Cfg  *config.Config
	Chat ChatService
	DB   Pinger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		cfg:       deps.Cfg,
		chat:      deps.Chat,
		db:        deps.DB,
		startTime: time.Now(),
	}
}

// Register attaches all routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/gemini", h.Generate)
	mux.HandleFunc("/api/gemini/history", h.History)
	mux.HandleFunc("/api/status", h.Status)
}

// sessionID resolves the partition key for a request, falling back to
// the anonymous session when the header is absent.
func sessionID(r *http.Request) string {
	if id := r.Header.Get(config.SessionHeader); id != "" {
		return id
	}
	return config.AnonymousSession
}
