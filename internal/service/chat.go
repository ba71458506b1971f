package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"
	"github.com/tuanvm/geminichat/internal/config"
	"github.com/tuanvm/geminichat/internal/domain"
)

type GenerationClient interface {
	Generate(ctx context.Context, model string, contents domain.Transcript) (string, error)
}

type ChatStore interface {
	Insert(ctx context.Context, sessionID string, history domain.Transcript) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.StoredChat, error)
}

// ChatService merges a caller-supplied history with new user input,
// dispatches the merged transcript to the generation API and persists
// the completed turn.
type ChatService struct {
	cfg   *config.Config
	genAI GenerationClient
	chats ChatStore
}

func NewChatService(cfg *config.Config, genAI GenerationClient, chats ChatStore) *ChatService {
	return &ChatService{cfg: cfg, genAI: genAI, chats: chats}
}

type SendParams struct {
	SessionID   string
	Prompt      string
	Model       string
	History     domain.Transcript
	Attachments []domain.InlineDataPart
}

type SendResult struct {
	Reply   string
	History domain.Transcript
}

// Send runs one conversational turn. On success the returned history is
// the caller's history plus exactly two messages: the user turn
// (attachments before text) and the model reply. A failed generation
// call appends nothing and persists nothing. Persistence failures are
// logged but do not fail the turn.
func (s *ChatService) Send(ctx context.Context, p SendParams) (*SendResult, error) {
	prompt := strings.TrimSpace(p.Prompt)
	if prompt == "" && len(p.Attachments) == 0 {
		return nil, domain.ErrMissingInput
	}
	if len(prompt) > s.cfg.MaxPromptChars {
		return nil, fmt.Errorf("%w: prompt is %d characters, limit is %d",
			domain.ErrPayloadTooLarge, len(prompt), s.cfg.MaxPromptChars)
	}
	for _, att := range p.Attachments {
		if decoded := base64.StdEncoding.DecodedLen(len(att.Data)); decoded > s.cfg.MaxAttachmentBytes {
			return nil, fmt.Errorf("%w: attachment %q is about %d bytes, limit is %d",
				domain.ErrPayloadTooLarge, att.Name, decoded, s.cfg.MaxAttachmentBytes)
		}
	}

	parts := make([]domain.Part, 0, len(p.Attachments)+1)
	for _, att := range p.Attachments {
		parts = append(parts, att)
	}
	if prompt != "" {
		parts = append(parts, domain.TextPart{Text: prompt})
	}

	merged := p.History.Append(domain.UserMessage(parts...))

	model := p.Model
	if model == "" {
		model = s.cfg.DefaultModel
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancel()

	reply, err := s.genAI.Generate(reqCtx, model, merged)
	if err != nil {
		return nil, err
	}
	if reply == "" {
		reply = s.cfg.EmptyReplyText
	}

	full := merged.Append(domain.ModelMessage(reply))

	if err := s.chats.Insert(ctx, p.SessionID, full); err != nil {
		guid := xid.New().String()
		slog.Error("persist chat turn",
			"error", err,
			"guid", guid,
			"session_id", p.SessionID,
		)
	}

	return &SendResult{Reply: reply, History: full}, nil
}

// History returns all persisted rows for a session ordered by creation
// time. Reconciling rows into one transcript is the caller's job.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]domain.StoredChat, error) {
	if sessionID == "" {
		return nil, domain.ErrMissingSessionID
	}
	chats, err := s.chats.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}
