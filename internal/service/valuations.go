package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"insightval/internal/apperr"
	"insightval/internal/models"
	"insightval/internal/repository"
	"insightval/internal/valuation"
)

// ValuationService exposes previews, routing and the snapshot store.
type ValuationService struct {
	Engine *valuation.Engine
	Repo   repository.ValuationRepository

	// Targets and Concurrency drive SnapshotAll.
	Targets     repository.InsightRepository
	Concurrency int
	Logger      *zap.Logger
}

// BatchSummary counts the outcome of one SnapshotAll run.
type BatchSummary struct {
	AsOfDate      string `json:"as_of_date"`
	Symbols       int    `json:"symbols"`
	Valued        int    `json:"valued"`
	NotApplicable int    `json:"not_applicable"`
	Failed        int    `json:"failed"`
}

// SnapshotView is a stored snapshot with its JSON documents decoded.
type SnapshotView struct {
	Symbol          string                    `json:"symbol"`
	AsOfDate        string                    `json:"as_of_date"`
	MethodKey       string                    `json:"method_key"`
	MethodVersion   int                       `json:"method_version"`
	BaseMetrics     valuation.Metrics         `json:"base_metrics"`
	AdjustedMetrics valuation.Metrics         `json:"adjusted_metrics"`
	AppliedEffects  []valuation.AppliedEffect `json:"applied_effects"`
	BaseValue       *float64                  `json:"base_value"`
	AdjustedValue   *float64                  `json:"adjusted_value"`
	ComputedAt      time.Time                 `json:"computed_at"`
}

func (s *ValuationService) Preview(ctx context.Context, symbol, asOf, methodKey string) (*valuation.Preview, error) {
	if s == nil || s.Engine == nil {
		return nil, nil
	}
	return s.Engine.Preview(ctx, valuation.PreviewParams{Symbol: symbol, AsOf: asOf, MethodKey: methodKey})
}

func (s *ValuationService) Route(ctx context.Context, symbol string) (*valuation.RouteDecision, error) {
	if s == nil || s.Engine == nil {
		return nil, nil
	}
	return s.Engine.Route(ctx, symbol)
}

// SnapshotAll previews every symbol a live insight targets on asOf with its
// routed method, which stores one snapshot per valued symbol. An empty asOf
// means the engine's current date. One failing symbol does not stop the run.
func (s *ValuationService) SnapshotAll(ctx context.Context, asOf string) (*BatchSummary, error) {
	if s == nil || s.Engine == nil || s.Targets == nil {
		return &BatchSummary{}, nil
	}
	if strings.TrimSpace(asOf) == "" {
		now := time.Now().UTC()
		if s.Engine.Now != nil {
			now = s.Engine.Now()
		}
		asOf = now.Format(valuation.DateFormat)
	}
	date, err := valuation.ParseDate(asOf)
	if err != nil {
		return nil, err
	}
	symbols, err := s.Targets.ListTargetedSymbols(ctx)
	if err != nil {
		return nil, err
	}

	summary := &BatchSummary{AsOfDate: date, Symbols: len(symbols)}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.concurrency())
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			if ctx.Err() != nil {
				mu.Lock()
				summary.Failed++
				mu.Unlock()
				return nil
			}
			res, err := s.Engine.Preview(ctx, valuation.PreviewParams{Symbol: symbol, AsOf: date})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Failed++
				if s.Logger != nil {
					s.Logger.Warn("snapshot failed", zap.String("symbol", symbol), zap.String("as_of", date), zap.Error(err))
				}
			case res.NotApplicable:
				summary.NotApplicable++
			default:
				summary.Valued++
			}
			return nil
		})
	}
	_ = g.Wait()

	if s.Logger != nil {
		s.Logger.Info("snapshot run finished",
			zap.String("as_of", date),
			zap.Int("symbols", summary.Symbols),
			zap.Int("valued", summary.Valued),
			zap.Int("not_applicable", summary.NotApplicable),
			zap.Int("failed", summary.Failed),
		)
	}
	return summary, ctx.Err()
}

func (s *ValuationService) concurrency() int {
	if s.Concurrency > 0 {
		return s.Concurrency
	}
	return DefaultRefreshConcurrency
}

// GetSnapshot returns the stored snapshot or a not-found error.
func (s *ValuationService) GetSnapshot(ctx context.Context, symbol, asOf, methodKey string) (*SnapshotView, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	date, err := valuation.ParseDate(asOf)
	if err != nil {
		return nil, err
	}
	symbol = strings.TrimSpace(symbol)
	methodKey = strings.ToLower(strings.TrimSpace(methodKey))
	item, err := s.Repo.GetValuationSnapshot(ctx, symbol, date, methodKey)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("no snapshot for %s on %s with %s", symbol, date, methodKey)
	}
	return decodeSnapshot(*item)
}

// ListSnapshots returns snapshots for a symbol, newest as-of date first.
func (s *ValuationService) ListSnapshots(ctx context.Context, params repository.ListSnapshotsParams) ([]SnapshotView, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	params.Symbol = strings.TrimSpace(params.Symbol)
	if params.Symbol == "" {
		return nil, apperr.Validation("symbol is required")
	}
	items, err := s.Repo.ListValuationSnapshots(ctx, params)
	if err != nil {
		return nil, err
	}
	out := make([]SnapshotView, 0, len(items))
	for _, item := range items {
		view, err := decodeSnapshot(item)
		if err != nil {
			return nil, err
		}
		out = append(out, *view)
	}
	return out, nil
}

func decodeSnapshot(item models.ValuationSnapshot) (*SnapshotView, error) {
	view := &SnapshotView{
		Symbol:          item.Symbol,
		AsOfDate:        item.AsOfDate,
		MethodKey:       item.MethodKey,
		MethodVersion:   item.MethodVersion,
		BaseMetrics:     valuation.Metrics{},
		AdjustedMetrics: valuation.Metrics{},
		AppliedEffects:  []valuation.AppliedEffect{},
		BaseValue:       item.BaseValue,
		AdjustedValue:   item.AdjustedValue,
		ComputedAt:      item.ComputedAt,
	}
	if len(item.BaseMetrics) > 0 {
		if err := json.Unmarshal(item.BaseMetrics, &view.BaseMetrics); err != nil {
			return nil, err
		}
	}
	if len(item.AdjustedMetrics) > 0 {
		if err := json.Unmarshal(item.AdjustedMetrics, &view.AdjustedMetrics); err != nil {
			return nil, err
		}
	}
	if len(item.AppliedEffects) > 0 {
		if err := json.Unmarshal(item.AppliedEffects, &view.AppliedEffects); err != nil {
			return nil, err
		}
	}
	return view, nil
}
