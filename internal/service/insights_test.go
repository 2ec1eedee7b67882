package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"insightval/internal/apperr"
	"insightval/internal/models"
	"insightval/internal/repository"
)

func TestCreateInsight_Validation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   InsightInput
	}{
		{"missing title", InsightInput{Title: "  "}},
		{"archived on create", InsightInput{Title: "x", Status: models.InsightStatusArchived}},
		{"bad status", InsightInput{Title: "x", Status: "live"}},
		{"bad date", InsightInput{Title: "x", ValidFrom: strPtr("2024-13-01")}},
		{"inverted window", InsightInput{Title: "x", ValidFrom: strPtr("2024-05-01"), ValidTo: strPtr("2024-04-30")}},
	}
	for _, tt := range tests {
		_, err := e.insights.CreateInsight(ctx, tt.in)
		require.ErrorIs(t, err, apperr.ErrValidation, tt.name)
	}

	items, total, err := e.insights.ListInsights(ctx, repository.ListInsightsParams{})
	require.NoError(t, err)
	require.Empty(t, items)
	require.Zero(t, total)
}

func TestInsightLifecycle(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	item, err := e.insights.CreateInsight(ctx, InsightInput{
		Title:     " Rate cuts ",
		Thesis:    "duration rallies",
		ValidFrom: strPtr("2024-01-01"),
		Tags:      []string{"macro", "macro", " rates "},
		Metadata:  map[string]any{"analyst": "kim"},
	})
	require.NoError(t, err)
	require.Equal(t, models.InsightStatusDraft, item.Status)
	require.Equal(t, "Rate cuts", item.Title)
	require.JSONEq(t, `["macro","rates"]`, string(item.Tags))
	require.Len(t, item.ID, 36)

	updated, err := e.insights.UpdateInsight(ctx, item.ID, InsightInput{Title: "Rate cuts 2024", ValidTo: strPtr("2024-12-31")})
	require.NoError(t, err)
	require.Equal(t, "Rate cuts 2024", updated.Title)
	require.Nil(t, updated.ValidFrom)
	require.Equal(t, "2024-12-31", *updated.ValidTo)

	_, err = e.insights.SetInsightStatus(ctx, item.ID, models.InsightStatusActive)
	require.NoError(t, err)
	active := models.InsightStatusActive
	items, total, err := e.insights.ListInsights(ctx, repository.ListInsightsParams{Status: &active})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.EqualValues(t, 1, total)

	deleted, err := e.insights.DeleteInsight(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted.DeletedAt)

	// Deleted insights stay retrievable by id but drop out of listings.
	got, err := e.insights.GetInsight(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.InsightStatusDeleted, got.Status)
	items, _, err = e.insights.ListInsights(ctx, repository.ListInsightsParams{})
	require.NoError(t, err)
	require.Empty(t, items)
	items, _, err = e.insights.ListInsights(ctx, repository.ListInsightsParams{IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = e.insights.SetInsightStatus(ctx, item.ID, models.InsightStatusActive)
	require.ErrorIs(t, err, apperr.ErrInvariant)
	_, err = e.insights.DeleteInsight(ctx, item.ID)
	require.NoError(t, err)
	_, err = e.insights.UpdateInsight(ctx, item.ID, InsightInput{Title: "again"})
	require.ErrorIs(t, err, apperr.ErrInvariant)
	_, err = e.insights.CreateChannel(ctx, item.ID, ChannelInput{MetricKey: "market.price", Stage: "base", Operator: "set"})
	require.ErrorIs(t, err, apperr.ErrInvariant)

	_, err = e.insights.GetInsight(ctx, "nope")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.insights.SetInsightStatus(ctx, item.ID, "paused")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestScopeRule_Validation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	insight := e.activeInsight(t, "rules")

	bad := []ScopeRuleInput{
		{ScopeType: "sector", ScopeKey: "tech"},
		{ScopeType: "symbol", ScopeKey: "   "},
		{ScopeType: "symbol", ScopeKey: "AAA", Mode: "maybe"},
		{ScopeType: "domain", ScopeKey: "crypto"},
	}
	for _, in := range bad {
		_, err := e.insights.UpsertScopeRule(ctx, insight.ID, in)
		require.ErrorIs(t, err, apperr.ErrValidation, "%+v", in)
	}

	first, err := e.insights.UpsertScopeRule(ctx, insight.ID, ScopeRuleInput{ScopeType: " Domain ", ScopeKey: "EQUITY"})
	require.NoError(t, err)
	require.Equal(t, "domain", first.ScopeType)
	require.Equal(t, "equity", first.ScopeKey)
	require.Equal(t, models.ScopeModeInclude, first.Mode)
	require.True(t, first.Enabled)

	second, err := e.insights.UpsertScopeRule(ctx, insight.ID, ScopeRuleInput{ScopeType: "domain", ScopeKey: "equity", Enabled: boolPtr(false)})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.False(t, second.Enabled)

	rules, err := e.insights.ListScopeRules(ctx, insight.ID)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	other := e.activeInsight(t, "other")
	_, err = e.insights.SetScopeRuleEnabled(ctx, other.ID, first.ID, true)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestChannels_ValidationAndPoints(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	insight := e.activeInsight(t, "channels")

	bad := []ChannelInput{
		{MethodKey: "Not A Key", MetricKey: "market.price", Stage: "base", Operator: "set"},
		{MetricKey: "Market.Price", Stage: "base", Operator: "set"},
		{MetricKey: "market.price", Stage: "third_order", Operator: "set"},
		{MetricKey: "market.price", Stage: "base", Operator: "div"},
		{MetricKey: "market.price", Stage: "base", Operator: "set", Priority: MaxChannelPriority + 1},
	}
	for _, in := range bad {
		_, err := e.insights.CreateChannel(ctx, insight.ID, in)
		require.ErrorIs(t, err, apperr.ErrValidation, "%+v", in)
	}

	ch, err := e.insights.CreateChannel(ctx, insight.ID, ChannelInput{MetricKey: "factor.momentum.20d", Stage: "First_Order", Operator: "ADD", Priority: -3})
	require.NoError(t, err)
	require.Equal(t, models.MethodWildcard, ch.MethodKey)
	require.Equal(t, models.StageFirstOrder, ch.Stage)
	require.Equal(t, models.OperatorAdd, ch.Operator)
	require.True(t, ch.Enabled)

	updated, err := e.insights.UpdateChannel(ctx, insight.ID, ch.ID, ChannelInput{MethodKey: "equity_factor", MetricKey: "factor.momentum.20d", Stage: "second_order", Operator: "mul", Enabled: boolPtr(false)})
	require.NoError(t, err)
	require.Equal(t, "equity_factor", updated.MethodKey)
	require.False(t, updated.Enabled)

	_, err = e.insights.UpsertPoints(ctx, insight.ID, ch.ID, []PointInput{{Date: "2024-01-02", Value: 1}, {Date: "bad", Value: 2}})
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.insights.UpsertPoints(ctx, insight.ID, ch.ID, []PointInput{{Date: "2024-01-02", Value: math.Inf(1)}})
	require.ErrorIs(t, err, apperr.ErrValidation)
	points, err := e.insights.ListPoints(ctx, insight.ID, ch.ID)
	require.NoError(t, err)
	require.Empty(t, points)

	points, err = e.insights.UpsertPoints(ctx, insight.ID, ch.ID, []PointInput{
		{Date: "2024-01-03", Value: 3},
		{Date: "2024-01-01", Value: 1},
		{Date: "2024-01-03", Value: 4},
	})
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, "2024-01-01", points[0].EffectDate)
	require.Equal(t, 4.0, points[1].EffectValue)

	points, err = e.insights.UpsertPoints(ctx, insight.ID, ch.ID, []PointInput{{Date: "2024-01-01", Value: -1}})
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, -1.0, points[0].EffectValue)

	require.NoError(t, e.insights.DeletePoint(ctx, insight.ID, ch.ID, "2024-01-03"))
	require.ErrorIs(t, e.insights.DeletePoint(ctx, insight.ID, ch.ID, "2024-01-03"), apperr.ErrNotFound)

	other := e.activeInsight(t, "other")
	_, err = e.insights.ListPoints(ctx, other.ID, ch.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, e.insights.DeleteChannel(ctx, insight.ID, ch.ID))
	remaining, err := e.store.ListEffectPoints(ctx, ch.ID)
	require.NoError(t, err)
	require.Empty(t, remaining)
	channels, err := e.insights.ListChannels(ctx, insight.ID)
	require.NoError(t, err)
	require.Empty(t, channels)
}
