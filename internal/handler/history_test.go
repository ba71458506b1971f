package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuanvm/geminichat/internal/config"
	"github.com/tuanvm/geminichat/internal/domain"
)

func getHistory(h *Handler, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/gemini/history", nil)
	if sessionID != "" {
		req.Header.Set(config.SessionHeader, sessionID)
	}
	rr := httptest.NewRecorder()
	h.History(rr, req)
	return rr
}

func TestHistoryMethodNotAllowed(t *testing.T) {
	h := newTestHandler(&stubChat{})
	req := httptest.NewRequest(http.MethodPost, "/api/gemini/history", nil)
	rr := httptest.NewRecorder()
	h.History(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHistoryMissingSessionID(t *testing.T) {
	h := newTestHandler(&stubChat{})
	rr := getHistory(h, "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeMissingSessionID, decodeError(t, rr).Code)
}

func TestHistoryReturnsRows(t *testing.T) {
	rows := []domain.StoredChat{
		{
			SessionID: "s-1",
			History:   domain.Transcript{domain.UserMessage(domain.TextPart{Text: "Hello"}), domain.ModelMessage("Hi")},
			CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
	}
	chat := &stubChat{histRows: rows}
	h := newTestHandler(chat)

	rr := getHistory(h, "s-1")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp historyResp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.History, 1)
	assert.Equal(t, "s-1", resp.History[0].SessionID)
	assert.Equal(t, "Hello", resp.History[0].History[0].FirstText())
	assert.Equal(t, []string{"s-1"}, chat.histIDs)
}

func TestHistoryEmptyIsAnEmptyList(t *testing.T) {
	h := newTestHandler(&stubChat{})
	rr := getHistory(h, "s-unseen")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"history":[]}`, rr.Body.String())
}

func TestHistoryStoreError(t *testing.T) {
	chat := &stubChat{histErr: errors.New("connection refused")}
	h := newTestHandler(chat)

	rr := getHistory(h, "s-1")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	resp := decodeError(t, rr)
	assert.Equal(t, CodePersistenceFailed, resp.Code)
	assert.NotContains(t, resp.Error, "connection refused")
}

func TestStatusReportsDatabase(t *testing.T) {
	h := New(Deps{Cfg: &config.Config{}, Chat: &stubChat{}, DB: stubPinger{}})
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rr := httptest.NewRecorder()
	h.Status(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp statusResp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Database)

	h = New(Deps{Cfg: &config.Config{}, Chat: &stubChat{}, DB: stubPinger{err: errors.New("down")}})
	rr = httptest.NewRecorder()
	h.Status(rr, req)

	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.False(t, resp.Database)
}
