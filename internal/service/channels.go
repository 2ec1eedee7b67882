package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"insightval/internal/apperr"
	"insightval/internal/models"
	"insightval/internal/valuation"
)

const (
	MinChannelPriority = -10000
	MaxChannelPriority = 10000
)

type ChannelInput struct {
	MethodKey string `json:"method_key"`
	MetricKey string `json:"metric_key"`
	Stage     string `json:"stage"`
	Operator  string `json:"operator"`
	Priority  int    `json:"priority"`
	Enabled   *bool  `json:"enabled"`
}

type PointInput struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

func (s *InsightService) ListChannels(ctx context.Context, insightID string) ([]models.EffectChannel, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	insight, err := s.getInsight(ctx, insightID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListEffectChannels(ctx, insight.ID)
}

func (s *InsightService) CreateChannel(ctx context.Context, insightID string, in ChannelInput) (*models.EffectChannel, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	insight, err := s.liveInsight(ctx, insightID)
	if err != nil {
		return nil, err
	}
	item := &models.EffectChannel{InsightID: insight.ID, Enabled: true}
	if err := applyChannelInput(item, in); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateEffectChannel(ctx, item); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("effect channel created",
			zap.String("insight_id", insight.ID),
			zap.Uint64("channel_id", item.ID),
			zap.String("metric", item.MetricKey),
			zap.String("stage", item.Stage),
		)
	}
	return item, nil
}

func (s *InsightService) UpdateChannel(ctx context.Context, insightID string, channelID uint64, in ChannelInput) (*models.EffectChannel, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	item, err := s.ownedChannel(ctx, insightID, channelID, true)
	if err != nil {
		return nil, err
	}
	if err := applyChannelInput(item, in); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveEffectChannel(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteChannel removes the channel and its points.
func (s *InsightService) DeleteChannel(ctx context.Context, insightID string, channelID uint64) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	item, err := s.ownedChannel(ctx, insightID, channelID, true)
	if err != nil {
		return err
	}
	return s.Repo.DeleteEffectChannel(ctx, item.ID)
}

func (s *InsightService) ListPoints(ctx context.Context, insightID string, channelID uint64) ([]models.EffectPoint, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	item, err := s.ownedChannel(ctx, insightID, channelID, false)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListEffectPoints(ctx, item.ID)
}

// UpsertPoints writes a batch of dated values. A date repeated in the batch
// keeps its last value. The whole batch is validated before any write.
func (s *InsightService) UpsertPoints(ctx context.Context, insightID string, channelID uint64, points []PointInput) ([]models.EffectPoint, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	item, err := s.ownedChannel(ctx, insightID, channelID, true)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, apperr.Validation("at least one point is required")
	}
	byDate := make(map[string]float64, len(points))
	for _, p := range points {
		date, err := valuation.ParseDate(p.Date)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return nil, apperr.Validation("point %s: value must be finite", date)
		}
		byDate[date] = p.Value
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	rows := make([]models.EffectPoint, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, models.EffectPoint{ChannelID: item.ID, EffectDate: d, EffectValue: byDate[d]})
	}
	if err := s.Repo.UpsertEffectPoints(ctx, rows); err != nil {
		return nil, err
	}
	return s.Repo.ListEffectPoints(ctx, item.ID)
}

func (s *InsightService) DeletePoint(ctx context.Context, insightID string, channelID uint64, date string) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	item, err := s.ownedChannel(ctx, insightID, channelID, true)
	if err != nil {
		return err
	}
	d, err := valuation.ParseDate(date)
	if err != nil {
		return err
	}
	n, err := s.Repo.DeleteEffectPoint(ctx, item.ID, d)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("point %s not found on channel %d", d, item.ID)
	}
	return nil
}

func (s *InsightService) ownedChannel(ctx context.Context, insightID string, channelID uint64, mutating bool) (*models.EffectChannel, error) {
	var insight *models.Insight
	var err error
	if mutating {
		insight, err = s.liveInsight(ctx, insightID)
	} else {
		insight, err = s.getInsight(ctx, insightID)
	}
	if err != nil {
		return nil, err
	}
	item, err := s.Repo.GetEffectChannelByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.InsightID != insight.ID {
		return nil, apperr.NotFound("effect channel %d not found", channelID)
	}
	return item, nil
}

func applyChannelInput(item *models.EffectChannel, in ChannelInput) error {
	methodKey := strings.ToLower(strings.TrimSpace(in.MethodKey))
	if methodKey == "" {
		methodKey = models.MethodWildcard
	}
	if methodKey != models.MethodWildcard && !valuation.IsValidMethodKey(methodKey) {
		return apperr.Validation("invalid method key %q", in.MethodKey)
	}
	metricKey := strings.TrimSpace(in.MetricKey)
	if !valuation.IsValidMetricKey(metricKey) {
		return apperr.Validation("invalid metric key %q", in.MetricKey)
	}
	stage := strings.ToLower(strings.TrimSpace(in.Stage))
	if !valuation.IsStage(stage) {
		return apperr.Validation("unknown stage %q", in.Stage)
	}
	op := strings.ToLower(strings.TrimSpace(in.Operator))
	if !valuation.IsOperator(op) {
		return apperr.Validation("unknown operator %q", in.Operator)
	}
	if in.Priority < MinChannelPriority || in.Priority > MaxChannelPriority {
		return apperr.Validation("priority %d outside [%d, %d]", in.Priority, MinChannelPriority, MaxChannelPriority)
	}

	item.MethodKey = methodKey
	item.MetricKey = metricKey
	item.Stage = stage
	item.Operator = op
	item.Priority = in.Priority
	if in.Enabled != nil {
		item.Enabled = *in.Enabled
	}
	return nil
}
