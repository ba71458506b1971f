package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	CodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	CodeInvalidBody       = "INVALID_BODY"
	CodeMissingInput      = "MISSING_INPUT"
	CodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"
	CodeMissingSessionID  = "MISSING_SESSION_ID"
	CodeQuotaExceeded     = "QUOTA_EXCEEDED"
	CodeGenerationFailed  = "GENERATION_FAILED"
	CodePersistenceFailed = "PERSISTENCE_FAILED"
	CodeInternal          = "INTERNAL_ERROR"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}
