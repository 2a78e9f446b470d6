package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/envutil"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

const (
	TransportREST = "rest"
	TransportSDK  = "sdk"
)

// Attachment is a single inline binary (image or PDF) sent with a prompt.
type Attachment struct {
	MimeType string
	Data     []byte
}

// Client is the completion endpoint. One call, one attempt; callers own
// fallback behaviour.
type Client interface {
	Complete(ctx context.Context, prompt string, att *Attachment) (string, error)
}

type Config struct {
	Transport       string
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	Temperature     float64
	MaxOutputTokens int
	TopK            int
	TopP            float64
	// Preamble is prepended to every prompt (persona, tone and formatting rules).
	Preamble string
}

func ConfigFromEnv() Config {
	return Config{
		Transport:       strings.ToLower(envutil.String("GEMINI_TRANSPORT", TransportREST)),
		APIKey:          envutil.String("GEMINI_API_KEY", ""),
		BaseURL:         strings.TrimRight(envutil.String("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"), "/"),
		Model:           envutil.String("GEMINI_MODEL", "gemini-1.5-flash"),
		Timeout:         envutil.Duration("GEMINI_TIMEOUT", 60*time.Second),
		Temperature:     envutil.Float("GEMINI_TEMPERATURE", 0.7),
		MaxOutputTokens: envutil.Int("GEMINI_MAX_OUTPUT_TOKENS", 2048),
		TopK:            envutil.Int("GEMINI_TOP_K", 0),
		TopP:            envutil.Float("GEMINI_TOP_P", 0),
	}
}

// New picks the transport named in cfg. A missing API key yields a client
// that always reports CompletionFailed so the pipeline falls back.
func New(ctx context.Context, log *logger.Logger, cfg Config) (Client, error) {
	clientLog := log.With("client", "GeminiClient", "transport", cfg.Transport, "model", cfg.Model)
	if strings.TrimSpace(cfg.APIKey) == "" {
		clientLog.Warn("GEMINI_API_KEY not set; completions will use fallbacks")
		return unconfigured{}, nil
	}
	switch cfg.Transport {
	case "", TransportREST:
		return newRESTClient(clientLog, cfg, nil), nil
	case TransportSDK:
		return newSDKClient(ctx, clientLog, cfg)
	default:
		return nil, fmt.Errorf("unsupported GEMINI_TRANSPORT %q (allowed: %q, %q)", cfg.Transport, TransportREST, TransportSDK)
	}
}

type unconfigured struct{}

func (unconfigured) Complete(context.Context, string, *Attachment) (string, error) {
	return "", apierr.CompletionFailed(fmt.Errorf("completion endpoint not configured"))
}

// PrimedPrompt joins the preamble and caller content.
func PrimedPrompt(preamble, prompt string) string {
	preamble = strings.TrimSpace(preamble)
	prompt = strings.TrimSpace(prompt)
	if preamble == "" {
		return prompt
	}
	return preamble + "\n\n" + prompt
}

// withDeadline applies the configured timeout only when ctx has none.
func withDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
