package negotiation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/phuslu/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrMissingInput = errors.New("missing required input")
	ErrInvalidInput = errors.New("invalid input")
)

// InputError is the only error GenerateRoadmap returns.
type InputError struct {
	Field  string
	Reason string
	Err    error
}

func (e *InputError) Error() string { return fmt.Sprintf("%s: %s (%s)", e.Err, e.Field, e.Reason) }
func (e *InputError) Unwrap() error { return e.Err }

// Engine assembles negotiation roadmaps. It holds no per-request state, so one Engine
// may serve concurrent calls.
type Engine struct {
	fusion   *Fusion
	validate *validator.Validate
}

func NewEngine(fusion *Fusion) *Engine {
	if fusion == nil {
		fusion = NewFusion(Sources{})
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Engine{fusion: fusion, validate: v}
}

// Validate reports a missing context record or an out-of-range field as *InputError.
func (e *Engine) Validate(req RoadmapRequest) error {
	switch {
	case req.User == nil:
		return &InputError{Field: "user", Reason: "required", Err: ErrMissingInput}
	case req.Market == nil:
		return &InputError{Field: "market", Reason: "required", Err: ErrMissingInput}
	case req.Situation == nil:
		return &InputError{Field: "situation", Reason: "required", Err: ErrMissingInput}
	}
	if err := e.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			field := strings.TrimPrefix(fe.Namespace(), "RoadmapRequest.")
			reason := fe.Tag()
			if fe.Param() != "" {
				reason += "=" + fe.Param()
			}
			if fe.Tag() == "required" {
				return &InputError{Field: field, Reason: reason, Err: ErrMissingInput}
			}
			return &InputError{Field: field, Reason: reason, Err: ErrInvalidInput}
		}
		return &InputError{Field: "request", Reason: err.Error(), Err: ErrInvalidInput}
	}
	return nil
}

// MarketIntelligence exposes fusion on its own.
func (e *Engine) MarketIntelligence(ctx context.Context, location string, currentRent float64) MarketIntelligence {
	return e.fusion.Fuse(ctx, location, currentRent)
}

func (e *Engine) GenerateRoadmap(ctx context.Context, req RoadmapRequest) (Roadmap, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "negotiation.GenerateRoadmap")
	defer span.End()

	if err := e.Validate(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return Roadmap{}, err
	}
	user, situation := *req.User, *req.Situation

	var intel *MarketIntelligence
	if loc := strings.TrimSpace(req.Location); loc != "" {
		mi := e.fusion.Fuse(ctx, loc, user.CurrentRent)
		intel = &mi
	}
	market := EnrichMarketContext(*req.Market, user, intel)

	leverage := ScoreLeverage(user, market, situation)
	strategy := SelectStrategy(leverage, user, market)
	probability := EstimateSuccess(leverage, strategy, user, market)
	room := EstimateNegotiationRoom(user, market, situation, leverage, intel)

	roadmap := Roadmap{
		Strategy:           strategy,
		LeverageScore:      leverage,
		SuccessProbability: probability,
		Timeline:           BuildTimeline(strategy, market, situation, intel),
		Steps:              BuildSteps(strategy, user, market, situation, intel, room),
		Guidance:           SynthesizeGuidance(user, market, situation, leverage, strategy, intel, room),
		MarketContext:      market,
		MarketIntelligence: intel,
		NegotiationRoom:    room,
		AdaptationTriggers: AdaptationTriggers(strategy, user, market, situation, room),
		Disclaimer:         Disclaimer,
	}

	span.SetAttributes(
		attribute.String("strategy", string(strategy.Archetype)),
		attribute.Float64("leverage", leverage.Total),
		attribute.Int("success_probability", probability.Overall),
	)
	ev := log.Info().Str("strategy", string(strategy.Archetype)).Float64("leverage", leverage.Total).Int("success", probability.Overall)
	if intel != nil {
		ev = ev.Str("market_source", string(intel.Source))
	}
	ev.Msg("roadmap generated")
	return roadmap, nil
}

func formatUSD(v float64) string {
	return "$" + humanize.Comma(int64(math.Round(v)))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
