package analyst

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/phuslu/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const systemPrompt = "You are a residential rental market analyst helping a tenant prepare for a rent negotiation. " +
	"Answer factually in plain prose. Quote rents as dollar figures and growth as percentages."

const maxAttempts = 3

type failureClass int

const (
	failureNone failureClass = iota
	failureTimeout
	failureRateLimit
	failureServer
	failureClient
)

// Caller sends one prompt to a language model and returns its text reply.
type Caller interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Analyst answers market questions through a Caller, retrying transient failures.
type Analyst struct {
	caller  Caller
	name    string
	timeout time.Duration
	backoff func(attempt int) time.Duration
}

func New(name string, caller Caller, timeout time.Duration) *Analyst {
	return &Analyst{caller: caller, name: name, timeout: timeout, backoff: backoffDelay}
}

func (a *Analyst) Name() string { return a.name }

// AskMarketQuestion implements negotiation.MarketAnalyst.
func (a *Analyst) AskMarketQuestion(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("github.com/joelkehle/lease-negotiator/internal/analyst").Start(ctx, "analyst.AskMarketQuestion")
	defer span.End()
	span.SetAttributes(attribute.String("provider", a.name))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		span.SetAttributes(attribute.Int("attempts", attempt))
		text, err := a.generate(ctx, prompt)
		if err != nil {
			lastErr = err
			class := classifyTransportError(err)
			if class == failureClient || attempt == maxAttempts || ctx.Err() != nil {
				break
			}
			log.Warn().Err(err).Str("provider", a.name).Int("attempt", attempt).Msg("market analyst call failed, retrying")
			if err := sleep(ctx, a.backoff(attempt)); err != nil {
				lastErr = err
				break
			}
			continue
		}
		text = stripCodeFences(text)
		if text == "" {
			lastErr = errors.New("empty response")
			if attempt < maxAttempts {
				continue
			}
			break
		}
		return text, nil
	}
	span.RecordError(lastErr)
	return "", fmt.Errorf("%s market analyst: %w", a.name, lastErr)
}

func (a *Analyst) generate(ctx context.Context, prompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return a.caller.Generate(ctx, prompt)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	return s
}

var statusCodeRe = regexp.MustCompile(`(?:status(?: code)?[:= ]\s*|\b)([45]\d\d)\b`)

func classifyTransportError(err error) failureClass {
	if err == nil {
		return failureNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return failureTimeout
	}
	msg := strings.ToLower(err.Error())
	if m := statusCodeRe.FindStringSubmatch(msg); m != nil {
		switch {
		case m[1] == "429":
			return failureRateLimit
		case m[1] == "408":
			return failureTimeout
		case m[1][0] == '4':
			return failureClient
		default:
			return failureServer
		}
	}
	if strings.Contains(msg, "rate limit") {
		return failureRateLimit
	}
	return failureServer
}

func backoffDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 1 * time.Second
	}
	return 2 * time.Second
}
