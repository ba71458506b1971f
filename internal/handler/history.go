package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"
	"github.com/tuanvm/geminichat/internal/config"
	"github.com/tuanvm/geminichat/internal/domain"
)

type historyResp struct {
	History []domain.StoredChat `json:"history"`
}

// History handles GET /api/gemini/history: all persisted rows for the
// session, oldest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
		return
	}

	session := r.Header.Get(config.SessionHeader)

	chats, err := h.chat.History(r.Context(), session)
	if err != nil {
		if errors.Is(err, domain.ErrMissingSessionID) {
			writeError(w, http.StatusBadRequest, CodeMissingSessionID, "missing "+config.SessionHeader+" header")
			return
		}
		guid := xid.New().String()
		slog.Error("fetch history", "error", err, "guid", guid, "session_id", session)
		writeError(w, http.StatusInternalServerError, CodePersistenceFailed, "failed to fetch history ("+guid+")")
		return
	}

	if chats == nil {
		chats = []domain.StoredChat{}
	}
	writeJSON(w, http.StatusOK, historyResp{History: chats})
}
