package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tuanvm/geminichat/internal/domain"
)

// GeminiService calls the generateContent endpoint of the Google
// generative language API.
type GeminiService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiService(apiKey, baseURL string, timeout time.Duration) *GeminiService {
	return &GeminiService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents []domain.Message `json:"contents"`
}

// generateResponse - https://ai.google.dev/api/rest/v1beta/GenerateContentResponse
type generateResponse struct {
	Candidates []struct {
		Content      domain.Message `json:"content"`
		FinishReason string         `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate submits the merged transcript and returns the first
// candidate's first text part. An empty string with a nil error means
// the model replied with no usable text; the caller decides what to
// substitute.
func (s *GeminiService) Generate(ctx context.Context, model string, contents domain.Transcript) (string, error) {
	payload, err := json.Marshal(generateRequest{Contents: contents})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		upstream := &domain.UpstreamError{StatusCode: resp.StatusCode}
		var envelope generateResponse
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
			upstream.Code = envelope.Error.Code
			upstream.Message = envelope.Error.Message
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			if upstream.Message != "" {
				return "", fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, upstream.Message)
			}
			return "", domain.ErrQuotaExceeded
		}
		return "", upstream
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(result.Candidates) == 0 {
		return "", domain.ErrNoCandidates
	}

	parts := result.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", nil
	}
	if text, ok := parts[0].(domain.TextPart); ok {
		return text.Text, nil
	}
	return "", nil
}
