package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// maxResponseBytes caps how much of a generateContent reply is read.
const maxResponseBytes = 8 << 20

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64  `json:"temperature"`
	MaxOutputTokens int      `json:"maxOutputTokens"`
	TopK            *int     `json:"topK,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Body)
}

type restClient struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func newRESTClient(log *logger.Logger, cfg Config, httpClient *http.Client) *restClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &restClient{log: log, cfg: cfg, httpClient: httpClient}
}

func (c *restClient) buildRequest(prompt string, att *Attachment) generateRequest {
	parts := []part{{Text: PrimedPrompt(c.cfg.Preamble, prompt)}}
	if att != nil && len(att.Data) > 0 {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: att.MimeType,
			Data:     base64.StdEncoding.EncodeToString(att.Data),
		}})
	}
	gc := generationConfig{Temperature: c.cfg.Temperature, MaxOutputTokens: c.cfg.MaxOutputTokens}
	if c.cfg.TopK > 0 {
		topK := c.cfg.TopK
		gc.TopK = &topK
	}
	if c.cfg.TopP > 0 {
		topP := c.cfg.TopP
		gc.TopP = &topP
	}
	return generateRequest{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: gc,
	}
}

func (c *restClient) Complete(ctx context.Context, prompt string, att *Attachment) (string, error) {
	ctx, cancel := withDeadline(ctx, c.cfg.Timeout)
	defer cancel()

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(c.buildRequest(prompt, att)); err != nil {
		return "", apierr.CompletionFailed(fmt.Errorf("encode request: %w", err))
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, url.PathEscape(c.cfg.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", apierr.CompletionFailed(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %w", apierr.CompletionFailed(err), ctx.Err())
		}
		return "", apierr.CompletionFailed(err)
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	_ = resp.Body.Close()
	if readErr != nil {
		return "", apierr.CompletionFailed(fmt.Errorf("read response: %w", readErr))
	}
	if len(raw) > maxResponseBytes {
		return "", apierr.CompletionFailed(fmt.Errorf("response exceeds %d bytes", maxResponseBytes))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("completion rejected", "status", resp.StatusCode)
		return "", apierr.CompletionFailed(&httpError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)})
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", apierr.CompletionFailed(fmt.Errorf("decode response: %w", err))
	}
	if len(out.Candidates) == 0 {
		return "", apierr.CompletionFailed(fmt.Errorf("no candidates"))
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
