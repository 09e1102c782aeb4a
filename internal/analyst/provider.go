package analyst

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderNone      = "none"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

type Options struct {
	Provider        string
	Model           string
	AnthropicAPIKey string
	GeminiAPIKey    string
	Timeout         time.Duration
}

// FromOptions builds the configured analyst. It returns nil, nil when no provider is
// selected; the fusion engine then skips the semantic tier.
func FromOptions(ctx context.Context, opts Options) (*Analyst, error) {
	switch p := strings.ToLower(strings.TrimSpace(opts.Provider)); p {
	case "", ProviderNone:
		return nil, nil
	case ProviderAnthropic:
		c, err := NewAnthropicCaller(opts.AnthropicAPIKey, opts.Model)
		if err != nil {
			return nil, err
		}
		return New(p, c, opts.Timeout), nil
	case ProviderGemini:
		c, err := NewGeminiCaller(ctx, opts.GeminiAPIKey, opts.Model)
		if err != nil {
			return nil, err
		}
		return New(p, c, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown analyst provider %q", opts.Provider)
	}
}
