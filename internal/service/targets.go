package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"insightval/internal/apperr"
	"insightval/internal/models"
	"insightval/internal/repository"
	"insightval/internal/scope"
)

const (
	DefaultPreviewLimit       = 200
	DefaultMaxPreviewLimit    = 5000
	DefaultRefreshConcurrency = 4
)

// TargetService materializes insight scope rules into persisted target sets.
type TargetService struct {
	Repo     repository.InsightRepository
	Resolver *scope.Resolver
	Logger   *zap.Logger

	PreviewLimit    int
	MaxPreviewLimit int
	Concurrency     int

	Now func() time.Time
}

type MaterializeResult struct {
	InsightID    string   `json:"insight_id"`
	Symbols      []string `json:"symbols"`
	Total        int      `json:"total"`
	Truncated    bool     `json:"truncated"`
	RulesApplied int      `json:"rules_applied"`
	Persisted    bool     `json:"persisted"`
}

// TargetView is one materialized symbol with every rule that contributed it.
type TargetView struct {
	Symbol         string    `json:"symbol"`
	Sources        []string  `json:"sources"`
	MaterializedAt time.Time `json:"materialized_at"`
}

type RefreshSummary struct {
	Insights  int `json:"insights"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Symbols   int `json:"symbols"`
}

// Materialize computes the insight's target set. With persist the stored set
// is replaced in one transaction. previewLimit caps the returned symbols only.
func (s *TargetService) Materialize(ctx context.Context, insightID string, persist bool, previewLimit int) (*MaterializeResult, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	insight, err := s.liveInsight(ctx, insightID)
	if err != nil {
		return nil, err
	}

	rules, err := s.Repo.ListScopeRules(ctx, insight.ID, true)
	if err != nil {
		return nil, err
	}
	exclusions, err := s.Repo.ListTargetExclusions(ctx, insight.ID)
	if err != nil {
		return nil, err
	}

	included := map[string]map[string]models.ScopeRule{}
	excluded := map[string]struct{}{}
	for _, rule := range rules {
		if rule.Mode != models.ScopeModeInclude {
			continue
		}
		symbols, err := s.Resolver.Resolve(ctx, rule.ScopeType, rule.ScopeKey)
		if err != nil {
			return nil, err
		}
		for _, sym := range symbols {
			if included[sym] == nil {
				included[sym] = map[string]models.ScopeRule{}
			}
			included[sym][rule.Source()] = rule
		}
	}
	for _, rule := range rules {
		if rule.Mode != models.ScopeModeExclude {
			continue
		}
		symbols, err := s.Resolver.Resolve(ctx, rule.ScopeType, rule.ScopeKey)
		if err != nil {
			return nil, err
		}
		for _, sym := range symbols {
			excluded[sym] = struct{}{}
		}
	}
	for _, ex := range exclusions {
		excluded[ex.Symbol] = struct{}{}
	}

	final := make([]string, 0, len(included))
	for sym := range included {
		if _, drop := excluded[sym]; drop {
			continue
		}
		final = append(final, sym)
	}
	sort.Strings(final)

	if persist {
		now := s.now()
		rows := make([]models.MaterializedTarget, 0, len(final))
		for _, sym := range final {
			sources := make([]string, 0, len(included[sym]))
			for src := range included[sym] {
				sources = append(sources, src)
			}
			sort.Strings(sources)
			for _, src := range sources {
				rule := included[sym][src]
				rows = append(rows, models.MaterializedTarget{
					InsightID:       insight.ID,
					Symbol:          sym,
					SourceScopeType: rule.ScopeType,
					SourceScopeKey:  rule.ScopeKey,
					MaterializedAt:  now,
				})
			}
		}
		if err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
			return s.Repo.ReplaceMaterializedTargetsTx(ctx, tx, insight.ID, rows)
		}); err != nil {
			return nil, err
		}
	}

	limit := s.clampPreviewLimit(previewLimit)
	preview := final
	truncated := false
	if len(preview) > limit {
		preview = preview[:limit]
		truncated = true
	}
	result := &MaterializeResult{
		InsightID:    insight.ID,
		Symbols:      preview,
		Total:        len(final),
		Truncated:    truncated,
		RulesApplied: len(rules),
		Persisted:    persist,
	}
	if s.Logger != nil {
		s.Logger.Info("targets materialized",
			zap.String("insight_id", insight.ID),
			zap.Int("total", result.Total),
			zap.Int("rules", result.RulesApplied),
			zap.Int("exclusions", len(exclusions)),
			zap.Bool("persist", persist),
		)
	}
	return result, nil
}

// Exclude pins a symbol out of the insight's targets and re-materializes.
func (s *TargetService) Exclude(ctx context.Context, insightID, symbol, reason string) (*MaterializeResult, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	insight, err := s.liveInsight(ctx, insightID)
	if err != nil {
		return nil, err
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, apperr.Validation("symbol is required")
	}
	if err := s.Repo.UpsertTargetExclusion(ctx, &models.TargetExclusion{
		InsightID: insight.ID,
		Symbol:    symbol,
		Reason:    strings.TrimSpace(reason),
	}); err != nil {
		return nil, err
	}
	return s.Materialize(ctx, insight.ID, true, 0)
}

// Unexclude removes a manual exclusion and re-materializes.
func (s *TargetService) Unexclude(ctx context.Context, insightID, symbol string) (*MaterializeResult, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	insight, err := s.liveInsight(ctx, insightID)
	if err != nil {
		return nil, err
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, apperr.Validation("symbol is required")
	}
	n, err := s.Repo.DeleteTargetExclusion(ctx, insight.ID, symbol)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.NotFound("exclusion %s not found for insight %s", symbol, insight.ID)
	}
	return s.Materialize(ctx, insight.ID, true, 0)
}

func (s *TargetService) ListExclusions(ctx context.Context, insightID string) ([]models.TargetExclusion, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	insight, err := s.insight(ctx, insightID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListTargetExclusions(ctx, insight.ID)
}

// ListTargets returns the persisted target set grouped by symbol.
func (s *TargetService) ListTargets(ctx context.Context, insightID string) ([]TargetView, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	insight, err := s.insight(ctx, insightID)
	if err != nil {
		return nil, err
	}
	rows, err := s.Repo.ListMaterializedTargets(ctx, insight.ID)
	if err != nil {
		return nil, err
	}
	out := make([]TargetView, 0)
	index := map[string]int{}
	for _, row := range rows {
		i, ok := index[row.Symbol]
		if !ok {
			index[row.Symbol] = len(out)
			out = append(out, TargetView{Symbol: row.Symbol, Sources: []string{}, MaterializedAt: row.MaterializedAt})
			i = len(out) - 1
		}
		out[i].Sources = append(out[i].Sources, row.Source())
	}
	return out, nil
}

// RefreshAll re-materializes every non-deleted insight. One insight failing
// is logged and counted; the rest still run.
func (s *TargetService) RefreshAll(ctx context.Context) (*RefreshSummary, error) {
	if s == nil || s.Repo == nil {
		return &RefreshSummary{}, nil
	}
	ids, err := s.Repo.ListLiveInsightIDs(ctx)
	if err != nil {
		return nil, err
	}
	summary := &RefreshSummary{Insights: len(ids)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency())
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if ctx.Err() != nil {
				mu.Lock()
				summary.Failed++
				mu.Unlock()
				return nil
			}
			res, err := s.Materialize(ctx, id, true, 1)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				if s.Logger != nil {
					s.Logger.Warn("target refresh failed", zap.String("insight_id", id), zap.Error(err))
				}
				return nil
			}
			summary.Succeeded++
			if res != nil {
				summary.Symbols += res.Total
			}
			return nil
		})
	}
	_ = g.Wait()

	if s.Logger != nil {
		s.Logger.Info("target refresh done",
			zap.Int("insights", summary.Insights),
			zap.Int("succeeded", summary.Succeeded),
			zap.Int("failed", summary.Failed),
			zap.Int("symbols", summary.Symbols),
		)
	}
	return summary, ctx.Err()
}

func (s *TargetService) insight(ctx context.Context, insightID string) (*models.Insight, error) {
	insightID = strings.TrimSpace(insightID)
	if insightID == "" {
		return nil, apperr.Validation("insight id is required")
	}
	item, err := s.Repo.GetInsightByID(ctx, insightID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("insight %s not found", insightID)
	}
	return item, nil
}

func (s *TargetService) liveInsight(ctx context.Context, insightID string) (*models.Insight, error) {
	item, err := s.insight(ctx, insightID)
	if err != nil {
		return nil, err
	}
	if isDeleted(item) {
		return nil, apperr.Invariant("insight %s is deleted", item.ID)
	}
	return item, nil
}

func (s *TargetService) clampPreviewLimit(limit int) int {
	ceiling := s.MaxPreviewLimit
	if ceiling <= 0 {
		ceiling = DefaultMaxPreviewLimit
	}
	if limit <= 0 {
		limit = s.PreviewLimit
	}
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	if limit > ceiling {
		limit = ceiling
	}
	return limit
}

func (s *TargetService) concurrency() int {
	if s.Concurrency > 0 {
		return s.Concurrency
	}
	return DefaultRefreshConcurrency
}

func (s *TargetService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func isDeleted(item *models.Insight) bool {
	return item != nil && (item.DeletedAt != nil || item.Status == models.InsightStatusDeleted)
}
