package negotiation

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/phuslu/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/joelkehle/lease-negotiator/internal/negotiation"

type Prediction struct {
	LocationName           string
	ForecastDate           string
	PredictedRent          *float64
	PredictedChangePercent *float64
}

type Baseline struct {
	Area           string
	TwoBedBaseline float64
}

type IndexPoint struct {
	MetroArea                 string
	Period                    string
	MedianRent                float64
	YearOverYearChangePercent float64
}

// PredictionLookup returns forecast rows for a location, newest first.
type PredictionLookup interface {
	LookupPrediction(ctx context.Context, locationName string) ([]Prediction, error)
}

type BaselineLookup interface {
	LookupBaseline(ctx context.Context, countyOrState string) ([]Baseline, error)
}

// IndexLookup returns rent index rows for a metro area, newest first.
type IndexLookup interface {
	LookupIndex(ctx context.Context, metroArea string) ([]IndexPoint, error)
}

// MarketAnalyst answers a free-text market question. Retries and timeouts are the
// implementation's concern.
type MarketAnalyst interface {
	AskMarketQuestion(ctx context.Context, prompt string) (string, error)
}

// Sources bundles the external collaborators. Nil members are treated as unavailable.
type Sources struct {
	Predictions PredictionLookup
	Baselines   BaselineLookup
	Index       IndexLookup
	Analyst     MarketAnalyst
}

type Location struct {
	Raw    string
	City   string
	County string
	State  string
}

// ParseLocation splits "City, ST" or "Travis County, TX" style input.
func ParseLocation(raw string) Location {
	loc := Location{Raw: strings.TrimSpace(raw)}
	if loc.Raw == "" {
		return loc
	}
	parts := strings.Split(loc.Raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 1 {
		loc.State = parts[len(parts)-1]
	}
	for _, p := range parts[:max(1, len(parts)-1)] {
		if strings.Contains(strings.ToLower(p), "county") {
			loc.County = p
			continue
		}
		if loc.City == "" {
			loc.City = p
		}
	}
	return loc
}

func (l Location) baselineKey() string {
	if l.County != "" {
		return l.County
	}
	return l.State
}

type fusionTier struct {
	name    string
	resolve func(ctx context.Context, loc Location, rent float64) (MarketIntelligence, bool)
}

// Fusion resolves market intelligence through an ordered list of tiers. The last
// tier always resolves, so Fuse never fails.
type Fusion struct {
	src   Sources
	tiers []fusionTier
}

func NewFusion(src Sources) *Fusion {
	f := &Fusion{src: src}
	f.tiers = []fusionTier{
		{name: "datasets", resolve: f.fromDatasets},
		{name: "semantic", resolve: f.fromAnalyst},
		{name: "synthetic", resolve: func(_ context.Context, _ Location, rent float64) (MarketIntelligence, bool) {
			return SyntheticIntelligence(rent), true
		}},
	}
	return f
}

func (f *Fusion) Fuse(ctx context.Context, location string, currentRent float64) MarketIntelligence {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "negotiation.Fuse")
	defer span.End()

	loc := ParseLocation(location)
	for _, tier := range f.tiers {
		tctx, tspan := otel.Tracer(tracerName).Start(ctx, "fusion."+tier.name)
		out, ok := tier.resolve(tctx, loc, currentRent)
		tspan.SetAttributes(attribute.Bool("resolved", ok))
		tspan.End()
		if !ok {
			continue
		}
		if out.NegotiationEvidence == nil {
			out.NegotiationEvidence = []string{}
		}
		span.SetAttributes(attribute.String("source", string(out.Source)))
		log.Debug().Str("tier", tier.name).Str("location", loc.Raw).Int("comparables", len(out.ComparableProperties)).Msg("market intelligence resolved")
		return out
	}
	// unreachable while the synthetic tier is last
	return SyntheticIntelligence(currentRent)
}

func (f *Fusion) fromDatasets(ctx context.Context, loc Location, rent float64) (MarketIntelligence, bool) {
	if loc.Raw == "" {
		return MarketIntelligence{}, false
	}
	var (
		preds []Prediction
		bases []Baseline
		index []IndexPoint
		g     errgroup.Group
	)
	if f.src.Predictions != nil {
		g.Go(func() error {
			preds = tolerate("predictions", loc, func() ([]Prediction, error) {
				return f.src.Predictions.LookupPrediction(ctx, loc.Raw)
			})
			return nil
		})
	}
	if f.src.Baselines != nil && loc.baselineKey() != "" {
		g.Go(func() error {
			bases = tolerate("fair_market_rent", loc, func() ([]Baseline, error) {
				return f.src.Baselines.LookupBaseline(ctx, loc.baselineKey())
			})
			return nil
		})
	}
	if f.src.Index != nil && loc.City != "" {
		g.Go(func() error {
			index = tolerate("rent_index", loc, func() ([]IndexPoint, error) {
				return f.src.Index.LookupIndex(ctx, loc.City)
			})
			return nil
		})
	}
	_ = g.Wait()

	out := mergeDatasets(loc, rent, preds, bases, index)
	return out, !out.Empty()
}

// tolerate runs one lookup and converts an error or panic into "no rows".
func tolerate[T any](source string, loc Location, fn func() ([]T, error)) (rows []T) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("source", source).Str("location", loc.Raw).Msgf("market data source panicked: %v", r)
			rows = nil
		}
	}()
	rows, err := fn()
	if err != nil {
		log.Warn().Err(err).Str("source", source).Str("location", loc.Raw).Msg("market data source unavailable")
		return nil
	}
	return rows
}

func mergeDatasets(loc Location, rent float64, preds []Prediction, bases []Baseline, index []IndexPoint) MarketIntelligence {
	out := MarketIntelligence{
		ComparableProperties: []ComparableProperty{},
		NegotiationEvidence:  []string{},
		Source:               SourceDatasets,
	}
	var (
		predicted, baselineAvg, indexMedian *float64
		growth                              *float64
	)

	// rows are newest first; each figure comes from the newest row that carries it
	for _, p := range preds {
		if p.PredictedRent != nil && *p.PredictedRent > 0 {
			v := *p.PredictedRent
			predicted = &v
			out.ComparableProperties = append(out.ComparableProperties, ComparableProperty{Rent: v, Type: "forecast"})
			out.NegotiationEvidence = append(out.NegotiationEvidence,
				fmt.Sprintf("Forecast rent for %s is %s, %s current rent", loc.Raw, formatUSD(v), relativeTo(v, rent)))
			break
		}
	}
	for _, p := range preds {
		if p.PredictedChangePercent != nil {
			v := *p.PredictedChangePercent
			growth = &v
			out.NegotiationEvidence = append(out.NegotiationEvidence,
				fmt.Sprintf("Rents in %s are forecast to change %+.1f%% over the next year", loc.Raw, v))
			break
		}
	}

	var sum float64
	var n int
	for _, b := range bases {
		if b.TwoBedBaseline <= 0 {
			continue
		}
		out.ComparableProperties = append(out.ComparableProperties, ComparableProperty{Rent: b.TwoBedBaseline, Type: "fair-market-rent-2br"})
		sum += b.TwoBedBaseline
		n++
	}
	if n > 0 {
		v := roundCents(sum / float64(n))
		baselineAvg = &v
		out.NegotiationEvidence = append(out.NegotiationEvidence,
			fmt.Sprintf("Fair market rent baseline for a two-bedroom in %s is %s, %s current rent", loc.baselineKey(), formatUSD(v), relativeTo(v, rent)))
	}

	for _, ix := range index {
		if ix.MedianRent <= 0 {
			continue
		}
		v := ix.MedianRent
		yoy := ix.YearOverYearChangePercent
		indexMedian = &v
		growth = &yoy
		out.ComparableProperties = append(out.ComparableProperties, ComparableProperty{Rent: v, Type: "metro-median"})
		out.NegotiationEvidence = append(out.NegotiationEvidence,
			fmt.Sprintf("Metro median rent is %s, %s current rent", formatUSD(v), relativeTo(v, rent)),
			fmt.Sprintf("Metro rents changed %+.1f%% year over year", yoy))
		break
	}

	switch {
	case indexMedian != nil:
		out.MarketTrends.AvgRent = indexMedian
		median := *indexMedian
		out.MarketTrends.MedianRent = &median
	case baselineAvg != nil:
		out.MarketTrends.AvgRent = baselineAvg
	case predicted != nil:
		out.MarketTrends.AvgRent = predicted
	}
	if growth != nil {
		out.MarketTrends.RentGrowth = fmt.Sprintf("%+.1f%%", *growth)
		out.MarketTrends.MarketCondition = conditionFromGrowth(*growth)
	}
	return out
}

func conditionFromGrowth(pct float64) PowerBalance {
	switch {
	case pct < 0:
		return PowerTenantFavored
	case pct > 5:
		return PowerLandlordFavored
	default:
		return PowerBalanced
	}
}

func (f *Fusion) fromAnalyst(ctx context.Context, loc Location, rent float64) (MarketIntelligence, bool) {
	if f.src.Analyst == nil || loc.Raw == "" {
		return MarketIntelligence{}, false
	}
	text, err := askSafely(ctx, f.src.Analyst, marketQuestion(loc, rent))
	if err != nil {
		log.Warn().Err(err).Str("location", loc.Raw).Msg("semantic market analysis unavailable")
		return MarketIntelligence{}, false
	}
	out := ParseEvidence(text, rent)
	out.Source = SourceSemantic
	return out, !out.Empty()
}

func askSafely(ctx context.Context, a MarketAnalyst, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("market analyst panicked: %v", r)
		}
	}()
	return a.AskMarketQuestion(ctx, prompt)
}

func marketQuestion(loc Location, rent float64) string {
	return fmt.Sprintf("Analyze the residential rental market in %s for a tenant currently paying %s per month. "+
		"Using whatever market data and knowledge you can retrieve, report typical monthly rents for comparable units as dollar figures, "+
		"the recent rent growth rate as a percentage, current vacancy conditions, and whether the market favors landlords or tenants. "+
		"Answer in plain prose.", loc.Raw, formatUSD(rent))
}

// SyntheticIntelligence derives placeholder market figures from the tenant's rent alone.
func SyntheticIntelligence(rent float64) MarketIntelligence {
	avg := roundCents(rent * 0.93)
	median := roundCents(rent * 0.95)
	return MarketIntelligence{
		ComparableProperties: []ComparableProperty{
			{Rent: roundCents(rent * 0.90), Type: "estimated"},
			{Rent: roundCents(rent * 0.95), Type: "estimated"},
			{Rent: roundCents(rent * 1.05), Type: "estimated"},
		},
		MarketTrends: MarketTrends{
			AvgRent:    &avg,
			MedianRent: &median,
			RentGrowth: "stable",
		},
		NegotiationEvidence: []string{
			"Comparable units in most markets list within 5-10% of your current rent",
			"Landlords typically prefer retaining a reliable tenant over the cost of turnover and vacancy",
		},
		Source: SourceSynthetic,
	}
}

func relativeTo(v, rent float64) string {
	if rent <= 0 {
		return "compared with"
	}
	pct := (v - rent) / rent * 100
	switch {
	case math.Abs(pct) < 0.05:
		return "in line with"
	case pct > 0:
		return fmt.Sprintf("%.1f%% above", pct)
	default:
		return fmt.Sprintf("%.1f%% below", -pct)
	}
}
