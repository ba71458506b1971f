// Package chatclient is a Go client for the chat service. It owns one
// transcript value, mirrors the server's merge protocol locally and
// only mutates the transcript after a successful round trip.
package chatclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tuanvm/geminichat/internal/domain"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	sessionID  string
	statePath  string

	transcript domain.Transcript
	pending    []domain.InlineDataPart
}

type Option func(*Client)

// WithModel sets the model name sent with each turn. When unset the
// server's default model is used.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithSessionID pins the session id instead of loading one from the
// state file.
func WithSessionID(id string) Option {
	return func(c *Client) { c.sessionID = id }
}

// WithStatePath overrides where the session id is persisted between
// runs.
func WithStatePath(path string) Option {
	return func(c *Client) { c.statePath = path }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sessionID == "" {
		c.sessionID = loadOrCreateSessionID(c.statePath)
	}
	return c
}

func (c *Client) SessionID() string {
	return c.sessionID
}

// Transcript returns a copy of the local conversation.
func (c *Client) Transcript() domain.Transcript {
	return c.transcript.Append()
}

// AttachFile queues a file for the next Send. The whole attachment is
// rejected when the file cannot be read; a partial part is never
// queued.
func (c *Client) AttachFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read attachment: %w", err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(raw)
	}
	c.pending = append(c.pending, domain.InlineDataPart{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(raw),
		Name:     filepath.Base(path),
	})
	return nil
}

type sendRequest struct {
	Prompt  string            `json:"prompt"`
	Model   string            `json:"model,omitempty"`
	History domain.Transcript `json:"history"`
	Files   []filePayload     `json:"files,omitempty"`
}

type filePayload struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
	Name     string `json:"name"`
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Send submits one turn. On success exactly two messages are appended
// to the local transcript: the user turn (attachments before text) and
// the model reply. On any failure the transcript is untouched. Pending
// attachments are consumed either way.
func (c *Client) Send(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" && len(c.pending) == 0 {
		return "", domain.ErrMissingInput
	}

	attachments := c.pending
	c.pending = nil

	files := make([]filePayload, len(attachments))
	for i, att := range attachments {
		files[i] = filePayload{Data: att.Data, MimeType: att.MimeType, Name: att.Name}
	}

	payload, err := json.Marshal(sendRequest{
		Prompt:  prompt,
		Model:   c.model,
		History: c.transcript,
		Files:   files,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/gemini", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-session-id", c.sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send turn: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
			return "", fmt.Errorf("server error (%s): %s", apiErr.Code, apiErr.Error)
		}
		return "", fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var result struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	userParts := make([]domain.Part, 0, len(attachments)+1)
	for _, att := range attachments {
		userParts = append(userParts, att)
	}
	if prompt != "" {
		userParts = append(userParts, domain.TextPart{Text: prompt})
	}

	c.transcript = c.transcript.Append(
		domain.UserMessage(userParts...),
		domain.ModelMessage(result.Reply),
	)
	return result.Reply, nil
}

// LoadHistory replaces the local transcript with the persisted one.
// Rows are turn snapshots, so the most recently created row holds the
// full conversation; no rows means an empty transcript, not an error.
func (c *Client) LoadHistory(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/gemini/history", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-session-id", c.sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server error (%s): %s", apiErr.Code, apiErr.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var result struct {
		History []domain.StoredChat `json:"history"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if len(result.History) == 0 {
		c.transcript = nil
		return nil
	}

	latest := result.History[0]
	for _, row := range result.History[1:] {
		if row.CreatedAt.After(latest.CreatedAt) {
			latest = row
		}
	}
	c.transcript = latest.History
	return nil
}

// Render returns one display line per message, labelled You/Bot, using
// each message's first text part.
func (c *Client) Render() []string {
	lines := make([]string, 0, len(c.transcript))
	for _, msg := range c.transcript {
		label := "Bot"
		if msg.Role == domain.RoleUser {
			label = "You"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, msg.FirstText()))
	}
	return lines
}

// ExportText renders the conversation as a plain-text document.
func (c *Client) ExportText() string {
	return strings.Join(c.Render(), "\n\n")
}

// Reset discards the local transcript and any pending attachments.
func (c *Client) Reset() {
	c.transcript = nil
	c.pending = nil
}
