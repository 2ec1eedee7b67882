package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"insightval/internal/apperr"
	"insightval/internal/models"
	"insightval/internal/repository"
	"insightval/internal/scope"
	"insightval/internal/valuation"
)

const maxTitleLen = 200

// InsightService owns insight, scope rule, channel and point mutations.
// When Targets is set, scope rule changes re-materialize the insight.
type InsightService struct {
	Repo    repository.InsightRepository
	Targets *TargetService
	Logger  *zap.Logger

	Now func() time.Time
}

type InsightInput struct {
	Title     string         `json:"title"`
	Thesis    string         `json:"thesis"`
	Status    string         `json:"status"`
	ValidFrom *string        `json:"valid_from"`
	ValidTo   *string        `json:"valid_to"`
	Tags      []string       `json:"tags"`
	Metadata  map[string]any `json:"metadata"`
}

func (s *InsightService) CreateInsight(ctx context.Context, in InsightInput) (*models.Insight, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = models.InsightStatusDraft
	}
	if status != models.InsightStatusDraft && status != models.InsightStatusActive {
		return nil, apperr.Validation("new insights must be draft or active, got %q", in.Status)
	}
	item := &models.Insight{
		ID:     uuid.NewString(),
		Status: status,
	}
	if err := applyInsightInput(item, in); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateInsight(ctx, item); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("insight created", zap.String("insight_id", item.ID), zap.String("status", item.Status))
	}
	return item, nil
}

// UpdateInsight replaces title, thesis, window, tags and metadata. Status is
// changed through SetInsightStatus.
func (s *InsightService) UpdateInsight(ctx context.Context, id string, in InsightInput) (*models.Insight, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	item, err := s.liveInsight(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyInsightInput(item, in); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveInsight(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// SetInsightStatus moves an insight between statuses. Deleted is terminal.
func (s *InsightService) SetInsightStatus(ctx context.Context, id, status string) (*models.Insight, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if !isInsightStatus(status) {
		return nil, apperr.Validation("unknown insight status %q", status)
	}
	item, err := s.getInsight(ctx, id)
	if err != nil {
		return nil, err
	}
	if isDeleted(item) {
		if status == models.InsightStatusDeleted {
			return item, nil
		}
		return nil, apperr.Invariant("insight %s is deleted", item.ID)
	}
	item.Status = status
	if status == models.InsightStatusDeleted {
		now := s.now()
		item.DeletedAt = &now
	}
	if err := s.Repo.SaveInsight(ctx, item); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("insight status changed", zap.String("insight_id", item.ID), zap.String("status", status))
	}
	return item, nil
}

func (s *InsightService) DeleteInsight(ctx context.Context, id string) (*models.Insight, error) {
	return s.SetInsightStatus(ctx, id, models.InsightStatusDeleted)
}

// GetInsight returns the insight even when it is deleted.
func (s *InsightService) GetInsight(ctx context.Context, id string) (*models.Insight, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	return s.getInsight(ctx, id)
}

func (s *InsightService) ListInsights(ctx context.Context, params repository.ListInsightsParams) ([]models.Insight, int64, error) {
	if s == nil || s.Repo == nil {
		return nil, 0, nil
	}
	if params.Status != nil {
		v := strings.ToLower(strings.TrimSpace(*params.Status))
		if !isInsightStatus(v) {
			return nil, 0, apperr.Validation("unknown insight status %q", *params.Status)
		}
		params.Status = &v
	}
	items, err := s.Repo.ListInsights(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.CountInsights(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// --- scope rules ------------------------------------------------------------

type ScopeRuleInput struct {
	ScopeType string `json:"scope_type"`
	ScopeKey  string `json:"scope_key"`
	Mode      string `json:"mode"`
	Enabled   *bool  `json:"enabled"`
}

func (s *InsightService) ListScopeRules(ctx context.Context, insightID string) ([]models.ScopeRule, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	item, err := s.getInsight(ctx, insightID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListScopeRules(ctx, item.ID, false)
}

// UpsertScopeRule creates the rule or updates the enabled flag of the rule
// with the same (type, key, mode).
func (s *InsightService) UpsertScopeRule(ctx context.Context, insightID string, in ScopeRuleInput) (*models.ScopeRule, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	insight, err := s.liveInsight(ctx, insightID)
	if err != nil {
		return nil, err
	}
	scopeType, ok := scope.ParseType(in.ScopeType)
	if !ok {
		return nil, apperr.Validation("unknown scope type %q", in.ScopeType)
	}
	key := strings.TrimSpace(in.ScopeKey)
	if key == "" {
		return nil, apperr.Validation("scope key is required")
	}
	if len(key) > 100 {
		return nil, apperr.Validation("scope key longer than 100 characters")
	}
	if scopeType == scope.TypeDomain {
		key = strings.ToLower(key)
		if !scope.IsDomain(key) {
			return nil, apperr.Validation("unknown domain %q", in.ScopeKey)
		}
	}
	mode := strings.ToLower(strings.TrimSpace(in.Mode))
	if mode == "" {
		mode = models.ScopeModeInclude
	}
	if mode != models.ScopeModeInclude && mode != models.ScopeModeExclude {
		return nil, apperr.Validation("unknown scope mode %q", in.Mode)
	}
	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}

	rule := &models.ScopeRule{
		InsightID: insight.ID,
		ScopeType: string(scopeType),
		ScopeKey:  key,
		Mode:      mode,
		Enabled:   enabled,
	}
	if err := s.Repo.UpsertScopeRule(ctx, rule); err != nil {
		return nil, err
	}
	stored, err := s.findScopeRule(ctx, rule)
	if err != nil {
		return nil, err
	}
	if err := s.rematerialize(ctx, insight.ID); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *InsightService) SetScopeRuleEnabled(ctx context.Context, insightID string, ruleID uint64, enabled bool) (*models.ScopeRule, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	rule, err := s.ownedScopeRule(ctx, insightID, ruleID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetScopeRuleEnabled(ctx, rule.ID, enabled); err != nil {
		return nil, err
	}
	rule.Enabled = enabled
	if err := s.rematerialize(ctx, rule.InsightID); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *InsightService) DeleteScopeRule(ctx context.Context, insightID string, ruleID uint64) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	rule, err := s.ownedScopeRule(ctx, insightID, ruleID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteScopeRule(ctx, rule.ID); err != nil {
		return err
	}
	return s.rematerialize(ctx, rule.InsightID)
}

func (s *InsightService) ownedScopeRule(ctx context.Context, insightID string, ruleID uint64) (*models.ScopeRule, error) {
	insight, err := s.liveInsight(ctx, insightID)
	if err != nil {
		return nil, err
	}
	rule, err := s.Repo.GetScopeRuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil || rule.InsightID != insight.ID {
		return nil, apperr.NotFound("scope rule %d not found", ruleID)
	}
	return rule, nil
}

func (s *InsightService) findScopeRule(ctx context.Context, want *models.ScopeRule) (*models.ScopeRule, error) {
	rules, err := s.Repo.ListScopeRules(ctx, want.InsightID, false)
	if err != nil {
		return nil, err
	}
	for i := range rules {
		r := rules[i]
		if r.ScopeType == want.ScopeType && r.ScopeKey == want.ScopeKey && r.Mode == want.Mode {
			return &r, nil
		}
	}
	return want, nil
}

func (s *InsightService) rematerialize(ctx context.Context, insightID string) error {
	if s.Targets == nil {
		return nil
	}
	_, err := s.Targets.Materialize(ctx, insightID, true, 1)
	return err
}

// --- helpers ----------------------------------------------------------------

func (s *InsightService) getInsight(ctx context.Context, id string) (*models.Insight, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.Validation("insight id is required")
	}
	item, err := s.Repo.GetInsightByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("insight %s not found", id)
	}
	return item, nil
}

func (s *InsightService) liveInsight(ctx context.Context, id string) (*models.Insight, error) {
	item, err := s.getInsight(ctx, id)
	if err != nil {
		return nil, err
	}
	if isDeleted(item) {
		return nil, apperr.Invariant("insight %s is deleted", item.ID)
	}
	return item, nil
}

func (s *InsightService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func applyInsightInput(item *models.Insight, in InsightInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return apperr.Validation("title is required")
	}
	if len(title) > maxTitleLen {
		return apperr.Validation("title longer than %d characters", maxTitleLen)
	}
	from, err := optionalDate(in.ValidFrom, "valid_from")
	if err != nil {
		return err
	}
	to, err := optionalDate(in.ValidTo, "valid_to")
	if err != nil {
		return err
	}
	if from != nil && to != nil && *from > *to {
		return apperr.Validation("valid_from %s is after valid_to %s", *from, *to)
	}

	tags := cleanTags(in.Tags)
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return apperr.Validation("invalid tags: %v", err)
	}
	metadata := in.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	rawMeta, err := json.Marshal(metadata)
	if err != nil {
		return apperr.Validation("invalid metadata: %v", err)
	}

	item.Title = title
	item.Thesis = strings.TrimSpace(in.Thesis)
	item.ValidFrom = from
	item.ValidTo = to
	item.Tags = datatypes.JSON(rawTags)
	item.Metadata = datatypes.JSON(rawMeta)
	return nil
}

func optionalDate(raw *string, field string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	v, err := valuation.ParseDate(*raw)
	if err != nil {
		return nil, apperr.Validation("%s: malformed date %q, want YYYY-MM-DD", field, *raw)
	}
	return &v, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func isInsightStatus(status string) bool {
	switch status {
	case models.InsightStatusDraft, models.InsightStatusActive, models.InsightStatusArchived, models.InsightStatusDeleted:
		return true
	}
	return false
}
