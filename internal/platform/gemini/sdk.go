package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

type sdkClient struct {
	log    *logger.Logger
	cfg    Config
	client *genai.Client
}

func newSDKClient(ctx context.Context, log *logger.Logger, cfg Config) (*sdkClient, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &sdkClient{log: log, cfg: cfg, client: cl}, nil
}

func (c *sdkClient) model() *genai.GenerativeModel {
	m := c.client.GenerativeModel(c.cfg.Model)
	m.SetTemperature(float32(c.cfg.Temperature))
	m.SetMaxOutputTokens(int32(c.cfg.MaxOutputTokens))
	if c.cfg.TopK > 0 {
		m.SetTopK(int32(c.cfg.TopK))
	}
	if c.cfg.TopP > 0 {
		m.SetTopP(float32(c.cfg.TopP))
	}
	return m
}

func (c *sdkClient) Complete(ctx context.Context, prompt string, att *Attachment) (string, error) {
	ctx, cancel := withDeadline(ctx, c.cfg.Timeout)
	defer cancel()

	parts := []genai.Part{genai.Text(PrimedPrompt(c.cfg.Preamble, prompt))}
	if att != nil && len(att.Data) > 0 {
		parts = append(parts, genai.Blob{MIMEType: att.MimeType, Data: att.Data})
	}
	resp, err := c.model().GenerateContent(ctx, parts...)
	if err != nil {
		return "", apierr.CompletionFailed(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apierr.CompletionFailed(fmt.Errorf("no candidates"))
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}

func (c *sdkClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
