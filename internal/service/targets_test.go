package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"insightval/internal/apperr"
	"insightval/internal/models"
)

func targetSymbols(t *testing.T, e *testEnv, insightID string) []string {
	t.Helper()
	views, err := e.targets.ListTargets(context.Background(), insightID)
	require.NoError(t, err)
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Symbol)
	}
	return out
}

func TestMaterialize_Closure(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.profile(t, "AAA", "stock", "equity", "NYSE")
	e.profile(t, "BBB", "stock", "equity", "NASDAQ")
	e.profile(t, "CCC", "fund", "equity", "NYSE")
	e.profile(t, "DDD", "futures", "commodity", "CME")
	e.providerTag(t, "DDD", "energy")
	e.userTag(t, "EEE", "energy")
	e.watch(t, "BBB", "")

	insight := e.activeInsight(t, "energy rotation")
	e.include(t, insight.ID, "market", "nyse")
	e.include(t, insight.ID, "tag", "energy")
	e.include(t, insight.ID, "symbol", "AAA")
	_, err := e.insights.UpsertScopeRule(ctx, insight.ID, ScopeRuleInput{ScopeType: "kind", ScopeKey: "FUND", Mode: models.ScopeModeExclude})
	require.NoError(t, err)
	_, err = e.targets.Exclude(ctx, insight.ID, "EEE", "no coverage")
	require.NoError(t, err)

	res, err := e.targets.Materialize(ctx, insight.ID, true, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"AAA", "DDD"}, res.Symbols)
	require.Equal(t, 2, res.Total)
	require.False(t, res.Truncated)
	require.Equal(t, 4, res.RulesApplied)

	views, err := e.targets.ListTargets(ctx, insight.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "AAA", views[0].Symbol)
	require.Equal(t, []string{"market:nyse", "symbol:AAA"}, views[0].Sources)
	require.Equal(t, []string{"tag:energy"}, views[1].Sources)

	again, err := e.targets.Materialize(ctx, insight.ID, true, 0)
	require.NoError(t, err)
	require.Equal(t, res.Symbols, again.Symbols)
	require.Equal(t, []string{"AAA", "DDD"}, targetSymbols(t, e, insight.ID))
}

func TestMaterialize_PreviewDoesNotPersist(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	for _, s := range symbols(12, "W") {
		e.watch(t, s, "growth")
	}
	e.watch(t, "OTHER", "value")

	insight := e.activeInsight(t, "growth basket")
	_, err := e.insights.UpsertScopeRule(ctx, insight.ID, ScopeRuleInput{ScopeType: "watchlist", ScopeKey: "growth", Enabled: boolPtr(false)})
	require.NoError(t, err)
	require.Empty(t, targetSymbols(t, e, insight.ID))

	rules, err := e.insights.ListScopeRules(ctx, insight.ID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.NoError(t, e.store.SetScopeRuleEnabled(ctx, rules[0].ID, true))

	res, err := e.targets.Materialize(ctx, insight.ID, false, 5)
	require.NoError(t, err)
	require.Equal(t, 12, res.Total)
	require.Len(t, res.Symbols, 5)
	require.True(t, res.Truncated)
	require.Equal(t, "W000", res.Symbols[0])
	require.False(t, res.Persisted)
	require.Empty(t, targetSymbols(t, e, insight.ID))
}

func TestExclusionChangesRematerialize(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	insight := e.activeInsight(t, "pair")
	e.include(t, insight.ID, "symbol", "AAA")
	e.include(t, insight.ID, "symbol", "BBB")
	require.Equal(t, []string{"AAA", "BBB"}, targetSymbols(t, e, insight.ID))

	res, err := e.targets.Exclude(ctx, insight.ID, "BBB", "halted")
	require.NoError(t, err)
	require.Equal(t, []string{"AAA"}, res.Symbols)
	require.Equal(t, []string{"AAA"}, targetSymbols(t, e, insight.ID))

	exclusions, err := e.targets.ListExclusions(ctx, insight.ID)
	require.NoError(t, err)
	require.Len(t, exclusions, 1)
	require.Equal(t, "halted", exclusions[0].Reason)

	_, err = e.targets.Unexclude(ctx, insight.ID, "BBB")
	require.NoError(t, err)
	require.Equal(t, []string{"AAA", "BBB"}, targetSymbols(t, e, insight.ID))

	_, err = e.targets.Unexclude(ctx, insight.ID, "BBB")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestScopeRuleMutationsRematerialize(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	insight := e.activeInsight(t, "toggle")
	rule := e.include(t, insight.ID, "symbol", "AAA")
	require.NotZero(t, rule.ID)
	require.Equal(t, []string{"AAA"}, targetSymbols(t, e, insight.ID))

	_, err := e.insights.SetScopeRuleEnabled(ctx, insight.ID, rule.ID, false)
	require.NoError(t, err)
	require.Empty(t, targetSymbols(t, e, insight.ID))

	_, err = e.insights.SetScopeRuleEnabled(ctx, insight.ID, rule.ID, true)
	require.NoError(t, err)
	require.Equal(t, []string{"AAA"}, targetSymbols(t, e, insight.ID))

	require.NoError(t, e.insights.DeleteScopeRule(ctx, insight.ID, rule.ID))
	require.Empty(t, targetSymbols(t, e, insight.ID))

	err = e.insights.DeleteScopeRule(ctx, insight.ID, rule.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRefreshAll(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.profile(t, "AAA", "stock", "", "")
	e.profile(t, "BBB", "stock", "", "")

	first := e.activeInsight(t, "first")
	second := e.activeInsight(t, "second")
	deleted := e.activeInsight(t, "gone")
	e.include(t, first.ID, "domain", "stock")
	e.include(t, second.ID, "symbol", "ZZZ")
	e.include(t, deleted.ID, "symbol", "AAA")
	_, err := e.insights.DeleteInsight(ctx, deleted.ID)
	require.NoError(t, err)

	// A profile added after the rules were written shows up on refresh.
	e.profile(t, "CCC", "stock", "", "")

	e.targets.Concurrency = 2
	summary, err := e.targets.RefreshAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Insights)
	require.Equal(t, 2, summary.Succeeded)
	require.Zero(t, summary.Failed)
	require.Equal(t, 4, summary.Symbols)
	require.Equal(t, []string{"AAA", "BBB", "CCC"}, targetSymbols(t, e, first.ID))

	_, err = e.targets.Materialize(ctx, deleted.ID, true, 0)
	require.ErrorIs(t, err, apperr.ErrInvariant)
}

func TestMaterialize_UnknownInsight(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.targets.Materialize(context.Background(), "missing", true, 0)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.targets.Materialize(context.Background(), " ", true, 0)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func boolPtr(v bool) *bool { return &v }
