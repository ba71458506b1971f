package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"
	"github.com/tuanvm/geminichat/internal/domain"
	"github.com/tuanvm/geminichat/internal/service"
)

type filePayload struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
	Name     string `json:"name"`
}

type generateReq struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	// History is decoded separately so a malformed value degrades to an
	// empty transcript instead of rejecting the request.
	History     json.RawMessage `json:"history"`
	ImageBase64 string          `json:"imageBase64"`
	Files       []filePayload   `json:"files"`
}

type generateResp struct {
	Reply   string            `json:"reply"`
	History domain.Transcript `json:"history,omitempty"`
}

// Generate handles POST /api/gemini: one conversational turn.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
		return
	}

	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidBody, "invalid request body")
		return
	}

	session := sessionID(r)

	var history domain.Transcript
	if len(req.History) > 0 {
		if err := json.Unmarshal(req.History, &history); err != nil {
			slog.Warn("malformed history ignored", "error", err, "session_id", session)
			history = nil
		}
	}

	// Single-image callers send a bare base64 JPEG; it goes first,
	// followed by the files array in the order provided.
	attachments := make([]domain.InlineDataPart, 0, len(req.Files)+1)
	if req.ImageBase64 != "" {
		attachments = append(attachments, domain.InlineDataPart{
			MimeType: "image/jpeg",
			Data:     req.ImageBase64,
		})
	}
	for _, f := range req.Files {
		mimeType := f.MimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		attachments = append(attachments, domain.InlineDataPart{
			MimeType: mimeType,
			Data:     f.Data,
			Name:     f.Name,
		})
	}

	result, err := h.chat.Send(r.Context(), service.SendParams{
		SessionID:   session,
		Prompt:      req.Prompt,
		Model:       req.Model,
		History:     history,
		Attachments: attachments,
	})
	if err != nil {
		h.writeSendError(w, err, session)
		return
	}

	resp := generateResp{Reply: result.Reply}
	if h.cfg.ReplyWithHistory {
		resp.History = result.History
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeSendError(w http.ResponseWriter, err error, session string) {
	var upstream *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrMissingInput):
		writeError(w, http.StatusBadRequest, CodeMissingInput, "prompt or attachment is required")
	case errors.Is(err, domain.ErrPayloadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, err.Error())
	case errors.Is(err, domain.ErrQuotaExceeded):
		writeError(w, http.StatusTooManyRequests, CodeQuotaExceeded, err.Error())
	case errors.Is(err, domain.ErrNoCandidates):
		writeError(w, http.StatusInternalServerError, CodeGenerationFailed, "generation api did not return valid content")
	case errors.As(err, &upstream):
		slog.Error("generation failed",
			"error", err,
			"session_id", session,
			"upstream_code", upstream.Code,
		)
		writeError(w, http.StatusInternalServerError, CodeGenerationFailed, upstream.Error())
	default:
		guid := xid.New().String()
		slog.Error("generate turn", "error", err, "guid", guid, "session_id", session)
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error ("+guid+")")
	}
}
