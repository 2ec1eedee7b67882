package valuation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"insightval/internal/apperr"
	"insightval/internal/models"
	"insightval/internal/repository"
)

// Preview is the result of valuing one symbol on one date.
type Preview struct {
	Symbol          string          `json:"symbol"`
	AsOfDate        string          `json:"as_of_date"`
	MethodKey       string          `json:"method_key"`
	MethodVersion   int             `json:"method_version"`
	FormulaID       string          `json:"formula_id"`
	PriceDate       string          `json:"price_date,omitempty"`
	BaseMetrics     Metrics         `json:"base_metrics"`
	AdjustedMetrics Metrics         `json:"adjusted_metrics"`
	BaseValue       *float64        `json:"base_value"`
	AdjustedValue   *float64        `json:"adjusted_value"`
	AppliedEffects  []AppliedEffect `json:"applied_effects"`
	NotApplicable   bool            `json:"not_applicable"`
	Reason          string          `json:"reason,omitempty"`
	ComputedAt      time.Time       `json:"computed_at"`
}

type PreviewParams struct {
	Symbol    string
	AsOf      string
	MethodKey string
}

// Engine composes insight effects onto base valuations.
type Engine struct {
	Store  repository.Repository
	Market repository.MarketDataRepository
	Base   *BaseCalculator
	Logger *zap.Logger
	Now    func() time.Time
}

func NewEngine(store repository.Repository, market repository.MarketDataRepository, lookback int, logger *zap.Logger) *Engine {
	return &Engine{
		Store:  store,
		Market: market,
		Base:   &BaseCalculator{Market: market, Lookback: lookback},
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// RouteDecision explains which method default routing picked for a symbol.
type RouteDecision struct {
	Symbol     string   `json:"symbol"`
	MethodKey  string   `json:"method_key"`
	Kind       string   `json:"kind"`
	AssetClass string   `json:"asset_class"`
	Tags       []string `json:"tags"`
}

// Route applies the default routing table to the symbol's profile and tags.
func (e *Engine) Route(ctx context.Context, symbol string) (*RouteDecision, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, apperr.Validation("symbol is required")
	}
	in := RouteInput{}
	if e.Market != nil {
		profile, err := e.Market.GetInstrumentProfile(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			in.Kind = profile.Kind
			in.AssetClass = profile.AssetClass
		}
		tags, err := e.Market.ListProviderTags(ctx, symbol)
		if err != nil {
			return nil, err
		}
		in.Tags = append(in.Tags, tags...)
	}
	if e.Store != nil {
		tags, err := e.Store.ListUserTags(ctx, symbol)
		if err != nil {
			return nil, err
		}
		in.Tags = append(in.Tags, tags...)
	}
	in.Tags = uniqueSorted(in.Tags)
	return &RouteDecision{
		Symbol:     symbol,
		MethodKey:  Route(in),
		Kind:       in.Kind,
		AssetClass: in.AssetClass,
		Tags:       in.Tags,
	}, nil
}

// Preview values params.Symbol on params.AsOf and upserts the snapshot.
// Routing failures and data gaps come back as NotApplicable results.
func (e *Engine) Preview(ctx context.Context, params PreviewParams) (*Preview, error) {
	if e == nil || e.Store == nil {
		return nil, fmt.Errorf("valuation engine not configured")
	}
	symbol := strings.TrimSpace(params.Symbol)
	if symbol == "" {
		return nil, apperr.Validation("symbol is required")
	}
	asOf, err := ParseDate(params.AsOf)
	if err != nil {
		return nil, err
	}

	out := &Preview{
		Symbol:          symbol,
		AsOfDate:        asOf,
		BaseMetrics:     Metrics{},
		AdjustedMetrics: Metrics{},
		AppliedEffects:  []AppliedEffect{},
		ComputedAt:      e.now(),
	}

	methodKey := strings.ToLower(strings.TrimSpace(params.MethodKey))
	if methodKey == "" {
		decision, err := e.Route(ctx, symbol)
		if err != nil {
			return nil, err
		}
		methodKey = decision.MethodKey
	}
	out.MethodKey = methodKey

	method, err := e.Store.GetMethodByKey(ctx, methodKey)
	if err != nil {
		return nil, err
	}
	if method == nil {
		return e.notApplicable(out, fmt.Sprintf("valuation method %q not found", methodKey)), nil
	}
	if method.Status == models.MethodStatusArchived {
		return e.notApplicable(out, fmt.Sprintf("valuation method %q is archived", methodKey)), nil
	}
	versions, err := e.Store.ListMethodVersions(ctx, method.ID)
	if err != nil {
		return nil, err
	}
	version := PickVersion(method, versions, &asOf)
	if version == nil {
		return e.notApplicable(out, fmt.Sprintf("valuation method %q has no published version", methodKey)), nil
	}
	out.MethodVersion = version.Version
	out.FormulaID = version.FormulaID

	base, err := e.base().Compute(ctx, symbol, asOf, version.FormulaID)
	if err != nil {
		return nil, err
	}
	if base.NotApplicable {
		return e.notApplicable(out, base.Reason), nil
	}
	out.PriceDate = base.PriceDate
	out.BaseMetrics = base.Metrics

	channels, err := e.activeChannels(ctx, symbol, asOf, methodKey)
	if err != nil {
		return nil, err
	}
	SortChannels(channels)

	adjusted, applied := Compose(version.FormulaID, base.Metrics, channels)
	out.AdjustedMetrics = adjusted
	out.AppliedEffects = applied
	out.BaseValue = headlineValue(out.BaseMetrics)
	out.AdjustedValue = headlineValue(out.AdjustedMetrics)

	if err := e.saveSnapshot(ctx, out); err != nil {
		return nil, err
	}
	if e.Logger != nil {
		e.Logger.Debug("valuation preview",
			zap.String("symbol", symbol),
			zap.String("as_of", asOf),
			zap.String("method", methodKey),
			zap.Int("version", version.Version),
			zap.Int("effects", len(applied)),
		)
	}
	return out, nil
}

func (e *Engine) activeChannels(ctx context.Context, symbol, asOf, methodKey string) ([]ActiveChannel, error) {
	candidates, err := e.Store.ListCandidateChannels(ctx, repository.CandidateChannelParams{
		Symbol:    symbol,
		AsOf:      asOf,
		MethodKey: methodKey,
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []ActiveChannel{}, nil
	}

	channelIDs := make([]uint64, 0, len(candidates))
	for _, ch := range candidates {
		channelIDs = append(channelIDs, ch.ID)
	}
	points, err := e.Store.ListEffectPointsByChannelIDs(ctx, channelIDs)
	if err != nil {
		return nil, err
	}
	pointsByChannel := make(map[uint64][]models.EffectPoint, len(candidates))
	for _, p := range points {
		pointsByChannel[p.ChannelID] = append(pointsByChannel[p.ChannelID], p)
	}

	out := make([]ActiveChannel, 0, len(candidates))
	insightIDs := make([]string, 0)
	seen := map[string]struct{}{}
	for _, ch := range candidates {
		value, ok := Interpolate(SeriesFromPoints(pointsByChannel[ch.ID]), asOf)
		if !ok {
			continue
		}
		out = append(out, ActiveChannel{Channel: ch, Value: value})
		if _, dup := seen[ch.InsightID]; !dup {
			seen[ch.InsightID] = struct{}{}
			insightIDs = append(insightIDs, ch.InsightID)
		}
	}
	if len(out) == 0 {
		return out, nil
	}
	sort.Strings(insightIDs)

	insights, err := e.Store.ListInsightsByIDs(ctx, insightIDs)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(insights))
	for _, in := range insights {
		titles[in.ID] = in.Title
	}

	targets, err := e.Store.ListMaterializedTargetsForSymbol(ctx, symbol, insightIDs)
	if err != nil {
		return nil, err
	}
	sources := make(map[string][]string, len(insightIDs))
	for _, t := range targets {
		sources[t.InsightID] = append(sources[t.InsightID], t.Source())
	}
	for id := range sources {
		sources[id] = uniqueSorted(sources[id])
	}

	for i := range out {
		id := out[i].Channel.InsightID
		out[i].InsightTitle = titles[id]
		out[i].Sources = sources[id]
	}
	return out, nil
}

func (e *Engine) saveSnapshot(ctx context.Context, p *Preview) error {
	baseJSON, err := json.Marshal(p.BaseMetrics)
	if err != nil {
		return err
	}
	adjustedJSON, err := json.Marshal(p.AdjustedMetrics)
	if err != nil {
		return err
	}
	effectsJSON, err := json.Marshal(p.AppliedEffects)
	if err != nil {
		return err
	}
	return e.Store.UpsertValuationSnapshot(ctx, &models.ValuationSnapshot{
		Symbol:          p.Symbol,
		AsOfDate:        p.AsOfDate,
		MethodKey:       p.MethodKey,
		MethodVersion:   p.MethodVersion,
		BaseMetrics:     datatypes.JSON(baseJSON),
		AdjustedMetrics: datatypes.JSON(adjustedJSON),
		AppliedEffects:  datatypes.JSON(effectsJSON),
		BaseValue:       p.BaseValue,
		AdjustedValue:   p.AdjustedValue,
		ComputedAt:      p.ComputedAt,
	})
}

func (e *Engine) notApplicable(p *Preview, reason string) *Preview {
	p.NotApplicable = true
	p.Reason = reason
	if e.Logger != nil {
		e.Logger.Info("valuation not applicable",
			zap.String("symbol", p.Symbol),
			zap.String("as_of", p.AsOfDate),
			zap.String("method", p.MethodKey),
			zap.String("reason", reason),
		)
	}
	return p
}

func (e *Engine) base() *BaseCalculator {
	if e.Base != nil {
		return e.Base
	}
	return &BaseCalculator{Market: e.Market}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

func uniqueSorted(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
