package domain

import (
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Part is one content unit inside a Message: either plain text or an
// inline base64 attachment, never both. Consumers type-switch over the
// two variants.
type Part interface {
	isPart()
}

type TextPart struct {
	Text string
}

type InlineDataPart struct {
	MimeType string
	Data     string // base64 payload
	Name     string // original file name, optional
}

func (TextPart) isPart()       {}
func (InlineDataPart) isPart() {}

type inlineDataJSON struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// partJSON is the wire shape understood by the generation API:
// {"text": ...} or {"inlineData": {"mimeType", "data"}}.
type partJSON struct {
	Text       *string         `json:"text,omitempty"`
	InlineData *inlineDataJSON `json:"inlineData,omitempty"`
	Name       string          `json:"name,omitempty"`
}

func (p TextPart) MarshalJSON() ([]byte, error) {
	text := p.Text
	return json.Marshal(partJSON{Text: &text})
}

func (p InlineDataPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(partJSON{
		InlineData: &inlineDataJSON{MimeType: p.MimeType, Data: p.Data},
		Name:       p.Name,
	})
}

func decodePart(data []byte) (Part, error) {
	var pj partJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return nil, fmt.Errorf("decode part: %w", err)
	}
	switch {
	case pj.Text != nil && pj.InlineData != nil:
		return nil, ErrAmbiguousPart
	case pj.InlineData != nil:
		return InlineDataPart{
			MimeType: pj.InlineData.MimeType,
			Data:     pj.InlineData.Data,
			Name:     pj.Name,
		}, nil
	case pj.Text != nil:
		return TextPart{Text: *pj.Text}, nil
	default:
		return nil, ErrUnknownPart
	}
}

// Message is one conversational turn. Parts keep the order the sender
// composed them in.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role  Role              `json:"role"`
		Parts []json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parts := make([]Part, 0, len(raw.Parts))
	for _, rp := range raw.Parts {
		p, err := decodePart(rp)
		if err != nil {
			return err
		}
		parts = append(parts, p)
	}
	m.Role = raw.Role
	m.Parts = parts
	return nil
}

// FirstText returns the display text of a message: the text of its
// first part, or an empty string when the first part is an attachment.
func (m Message) FirstText() string {
	if len(m.Parts) == 0 {
		return ""
	}
	switch p := m.Parts[0].(type) {
	case TextPart:
		return p.Text
	case InlineDataPart:
		return ""
	default:
		return ""
	}
}

// Transcript is an ordered conversation. Append returns an extended
// copy so callers never share a mutable backing array.
type Transcript []Message

func (t Transcript) Append(msgs ...Message) Transcript {
	out := make(Transcript, 0, len(t)+len(msgs))
	out = append(out, t...)
	return append(out, msgs...)
}

func UserMessage(parts ...Part) Message {
	return Message{Role: RoleUser, Parts: parts}
}

func ModelMessage(text string) Message {
	return Message{Role: RoleModel, Parts: []Part{TextPart{Text: text}}}
}
