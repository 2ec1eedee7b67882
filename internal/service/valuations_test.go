package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"insightval/internal/apperr"
	"insightval/internal/models"
	"insightval/internal/repository"
	"insightval/internal/valuation"
)

const asOf = "2024-01-21"

// flat spans January 2024 with a constant value.
func flat(v float64) []PointInput {
	return []PointInput{{Date: "2024-01-01", Value: v}, {Date: "2024-01-31", Value: v}}
}

func TestPreview_AddsMomentumAndRecomputes(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.prices(t, "X", asOf, momentumSeries()...)

	insight := e.activeInsight(t, "momentum tailwind")
	e.include(t, insight.ID, "symbol", "X")
	ch := e.channel(t, insight.ID,
		ChannelInput{MetricKey: valuation.MetricMomentum20d, Stage: "first_order", Operator: "add"},
		PointInput{Date: "2024-01-01", Value: 0.05},
		PointInput{Date: "2024-01-31", Value: 0.05},
	)

	res, err := e.values.Preview(ctx, "X", asOf, "")
	require.NoError(t, err)
	require.False(t, res.NotApplicable, res.Reason)
	require.Equal(t, valuation.MethodGenericFactor, res.MethodKey)
	require.Equal(t, 1, res.MethodVersion)
	require.Equal(t, asOf, res.PriceDate)

	base := res.BaseMetrics.Get(valuation.MetricMomentum20d)
	require.NotNil(t, base)
	require.InDelta(t, 0.10, *base, 1e-9)
	adjusted := res.AdjustedMetrics.Get(valuation.MetricMomentum20d)
	require.NotNil(t, adjusted)
	require.InDelta(t, 0.15, *adjusted, 1e-9)

	require.Len(t, res.AppliedEffects, 1)
	applied := res.AppliedEffects[0]
	require.Equal(t, ch.ID, applied.ChannelID)
	require.Equal(t, insight.ID, applied.InsightID)
	require.Equal(t, "momentum tailwind", applied.InsightTitle)
	require.Equal(t, models.MethodWildcard, applied.MethodKey)
	require.Equal(t, []string{"symbol:X"}, applied.Sources)
	require.InDelta(t, 0.05, applied.Value, 1e-12)
	require.InDelta(t, 0.10, *applied.Before, 1e-9)
	require.InDelta(t, 0.15, *applied.After, 1e-9)

	want := res.BaseMetrics.Clone()
	want.SetFloat(valuation.MetricMomentum20d, *adjusted)
	valuation.Recompute(valuation.FormulaGenericFactorV1, want)
	fair := res.AdjustedMetrics.Get(valuation.MetricFairValue)
	require.NotNil(t, fair)
	require.InDelta(t, *want.Get(valuation.MetricFairValue), *fair, 1e-9)
	require.Greater(t, *fair, *res.BaseMetrics.Get(valuation.MetricFairValue))
	require.Equal(t, *fair, *res.AdjustedValue)
	require.Equal(t, *res.BaseMetrics.Get(valuation.MetricFairValue), *res.BaseValue)

	// Base metrics never carry the adjustment.
	require.InDelta(t, 0.10, *res.BaseMetrics.Get(valuation.MetricMomentum20d), 1e-9)
}

func TestPreview_OutOfRangeChannelSkipped(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.prices(t, "X", asOf, momentumSeries()...)

	insight := e.activeInsight(t, "later")
	e.include(t, insight.ID, "symbol", "X")
	e.channel(t, insight.ID,
		ChannelInput{MetricKey: valuation.MetricMomentum20d, Stage: "base", Operator: "set"},
		PointInput{Date: "2024-02-01", Value: 0.9},
		PointInput{Date: "2024-02-10", Value: 0.9},
	)

	res, err := e.values.Preview(ctx, "X", asOf, "")
	require.NoError(t, err)
	require.False(t, res.NotApplicable)
	require.Empty(t, res.AppliedEffects)
	require.Equal(t, *res.BaseValue, *res.AdjustedValue)
	require.InDelta(t, 0.10, *res.AdjustedMetrics.Get(valuation.MetricMomentum20d), 1e-9)
}

func TestPreview_MissingPriceIsNotApplicable(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	insight := e.activeInsight(t, "no data")
	e.include(t, insight.ID, "symbol", "Y")
	e.channel(t, insight.ID,
		ChannelInput{MetricKey: valuation.MetricMomentum20d, Stage: "base", Operator: "set"},
		flat(0.2)...,
	)

	res, err := e.values.Preview(ctx, "Y", asOf, "")
	require.NoError(t, err)
	require.True(t, res.NotApplicable)
	require.Contains(t, res.Reason, "missing price data")
	require.Empty(t, res.AppliedEffects)
	require.Nil(t, res.BaseValue)
	require.Nil(t, res.AdjustedValue)

	_, err = e.values.GetSnapshot(ctx, "Y", asOf, res.MethodKey)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPreview_UnknownMethodIsNotApplicable(t *testing.T) {
	e := newTestEnv(t)
	e.prices(t, "X", asOf, 100)

	res, err := e.values.Preview(context.Background(), "X", asOf, "Nope_Method")
	require.NoError(t, err)
	require.True(t, res.NotApplicable)
	require.Equal(t, "nope_method", res.MethodKey)
	require.Contains(t, res.Reason, "not found")

	_, err = e.values.Preview(context.Background(), "X", "21/01/2024", "")
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.values.Preview(context.Background(), " ", asOf, "")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPreview_Deterministic(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.prices(t, "X", asOf, momentumSeries()...)

	for i, title := range []string{"a", "b"} {
		insight := e.activeInsight(t, title)
		e.include(t, insight.ID, "symbol", "X")
		e.channel(t, insight.ID,
			ChannelInput{MetricKey: valuation.MetricVolatility20d, Stage: "first_order", Operator: "mul"},
			PointInput{Date: "2024-01-01", Value: 1 + float64(i)},
			PointInput{Date: "2024-02-01", Value: 2 + float64(i)},
		)
	}

	first, err := e.values.Preview(ctx, "X", asOf, "")
	require.NoError(t, err)
	second, err := e.values.Preview(ctx, "X", asOf, "")
	require.NoError(t, err)
	require.Len(t, first.AppliedEffects, 2)
	require.Equal(t, first.AdjustedMetrics, second.AdjustedMetrics)
	require.Equal(t, first.AppliedEffects, second.AppliedEffects)
	require.Equal(t, first.AdjustedValue, second.AdjustedValue)

	items, err := e.values.ListSnapshots(ctx, repository.ListSnapshotsParams{Symbol: "X"})
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestPreview_ExclusionRemovesEffects(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.prices(t, "X", asOf, momentumSeries()...)

	insight := e.activeInsight(t, "opt out")
	e.include(t, insight.ID, "symbol", "X")
	e.channel(t, insight.ID,
		ChannelInput{MetricKey: valuation.MetricMomentum20d, Stage: "base", Operator: "set"},
		flat(0.3)...,
	)

	res, err := e.values.Preview(ctx, "X", asOf, "")
	require.NoError(t, err)
	require.Len(t, res.AppliedEffects, 1)

	_, err = e.targets.Exclude(ctx, insight.ID, "X", "client request")
	require.NoError(t, err)
	res, err = e.values.Preview(ctx, "X", asOf, "")
	require.NoError(t, err)
	require.Empty(t, res.AppliedEffects)

	_, err = e.targets.Unexclude(ctx, insight.ID, "X")
	require.NoError(t, err)
	res, err = e.values.Preview(ctx, "X", asOf, "")
	require.NoError(t, err)
	require.Len(t, res.AppliedEffects, 1)
	require.InDelta(t, 0.3, *res.AdjustedMetrics.Get(valuation.MetricMomentum20d), 1e-12)
}

func TestPreview_InactiveInsightsIgnored(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.prices(t, "X", asOf, momentumSeries()...)

	draft, err := e.insights.CreateInsight(ctx, InsightInput{Title: "draft"})
	require.NoError(t, err)
	e.include(t, draft.ID, "symbol", "X")
	e.channel(t, draft.ID,
		ChannelInput{MetricKey: valuation.MetricMomentum20d, Stage: "base", Operator: "set"},
		flat(0.3)...,
	)

	expired, err := e.insights.CreateInsight(ctx, InsightInput{Title: "expired", Status: models.InsightStatusActive, ValidTo: strPtr("2024-01-20")})
	require.NoError(t, err)
	e.include(t, expired.ID, "symbol", "X")
	e.channel(t, expired.ID,
		ChannelInput{MetricKey: valuation.MetricMomentum20d, Stage: "base", Operator: "set"},
		flat(0.3)...,
	)

	other := e.activeInsight(t, "other method")
	e.include(t, other.ID, "symbol", "X")
	e.channel(t, other.ID,
		ChannelInput{MethodKey: valuation.MethodEquityFactor, MetricKey: valuation.MetricMomentum20d, Stage: "base", Operator: "set"},
		flat(0.3)...,
	)

	res, err := e.values.Preview(ctx, "X", asOf, "")
	require.NoError(t, err)
	require.Empty(t, res.AppliedEffects)

	res, err = e.values.Preview(ctx, "X", asOf, valuation.MethodEquityFactor)
	require.NoError(t, err)
	require.Len(t, res.AppliedEffects, 1)
	require.Equal(t, other.ID, res.AppliedEffects[0].InsightID)
}

func TestPreview_StageOrderBeatsPriority(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.prices(t, "X", asOf, momentumSeries()...)

	insight := e.activeInsight(t, "staged")
	e.include(t, insight.ID, "symbol", "X")
	second := e.channel(t, insight.ID,
		ChannelInput{MetricKey: valuation.MetricMomentum20d, Stage: "second_order", Operator: "set", Priority: -100},
		flat(0.3)...,
	)
	first := e.channel(t, insight.ID,
		ChannelInput{MetricKey: valuation.MetricMomentum20d, Stage: "first_order", Operator: "add", Priority: 100},
		flat(0.05)...,
	)

	res, err := e.values.Preview(ctx, "X", asOf, "")
	require.NoError(t, err)
	require.Len(t, res.AppliedEffects, 2)
	require.Equal(t, first.ID, res.AppliedEffects[0].ChannelID)
	require.Equal(t, second.ID, res.AppliedEffects[1].ChannelID)
	require.InDelta(t, 0.15, *res.AppliedEffects[1].Before, 1e-9)
	require.InDelta(t, 0.3, *res.AdjustedMetrics.Get(valuation.MetricMomentum20d), 1e-12)
}

func TestSnapshots_RoundTrip(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.prices(t, "X", asOf, momentumSeries()...)

	insight := e.activeInsight(t, "stored")
	e.include(t, insight.ID, "symbol", "X")
	e.channel(t, insight.ID,
		ChannelInput{MetricKey: valuation.MetricMomentum20d, Stage: "first_order", Operator: "add"},
		flat(0.05)...,
	)

	early, err := e.values.Preview(ctx, "X", "2024-01-20", "")
	require.NoError(t, err)
	require.False(t, early.NotApplicable)
	res, err := e.values.Preview(ctx, "X", asOf, "")
	require.NoError(t, err)

	snap, err := e.values.GetSnapshot(ctx, "X", asOf, "Generic_Factor")
	require.NoError(t, err)
	require.Equal(t, valuation.MethodGenericFactor, snap.MethodKey)
	require.Equal(t, res.MethodVersion, snap.MethodVersion)
	require.Equal(t, res.AdjustedMetrics, snap.AdjustedMetrics)
	require.Equal(t, res.BaseMetrics, snap.BaseMetrics)
	require.Equal(t, *res.AdjustedValue, *snap.AdjustedValue)
	require.Len(t, snap.AppliedEffects, 1)
	require.Equal(t, res.AppliedEffects[0].ChannelID, snap.AppliedEffects[0].ChannelID)
	require.True(t, snap.ComputedAt.Equal(res.ComputedAt))

	items, err := e.values.ListSnapshots(ctx, repository.ListSnapshotsParams{Symbol: "X"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, asOf, items[0].AsOfDate)
	require.Equal(t, "2024-01-20", items[1].AsOfDate)

	_, err = e.values.ListSnapshots(ctx, repository.ListSnapshotsParams{})
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.values.GetSnapshot(ctx, "X", "2023-12-31", valuation.MethodGenericFactor)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRoute(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.profile(t, "EQ", "stock", "equity", "NYSE")
	e.profile(t, "FUT", "futures", "commodity", "CME")
	e.userTag(t, "BND", "Bond")

	tests := map[string]string{
		"EQ":  valuation.MethodEquityFactor,
		"FUT": valuation.MethodFuturesBasis,
		"BND": valuation.MethodBondYield,
		"ANY": valuation.MethodGenericFactor,
	}
	for symbol, want := range tests {
		decision, err := e.values.Route(ctx, symbol)
		require.NoError(t, err)
		require.Equal(t, want, decision.MethodKey, symbol)
	}

	decision, err := e.values.Route(ctx, "BND")
	require.NoError(t, err)
	require.Equal(t, []string{"Bond"}, decision.Tags)
}

func TestSnapshotAll(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.prices(t, "AAA", asOf, momentumSeries()...)
	e.prices(t, "BBB", asOf, 50, 51)

	live := e.activeInsight(t, "batch")
	e.include(t, live.ID, "symbol", "AAA")
	e.include(t, live.ID, "symbol", "BBB")
	e.include(t, live.ID, "symbol", "NOPRICE")
	e.channel(t, live.ID,
		ChannelInput{MetricKey: valuation.MetricMomentum20d, Stage: "first_order", Operator: "add"},
		flat(0.05)...,
	)
	gone := e.activeInsight(t, "gone")
	e.include(t, gone.ID, "symbol", "ZZZ")
	_, err := e.insights.DeleteInsight(ctx, gone.ID)
	require.NoError(t, err)

	symbols, err := e.store.ListTargetedSymbols(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"AAA", "BBB", "NOPRICE"}, symbols)

	summary, err := e.values.SnapshotAll(ctx, asOf)
	require.NoError(t, err)
	require.Equal(t, &BatchSummary{AsOfDate: asOf, Symbols: 3, Valued: 2, NotApplicable: 1}, summary)

	snap, err := e.values.GetSnapshot(ctx, "AAA", asOf, valuation.MethodGenericFactor)
	require.NoError(t, err)
	require.Len(t, snap.AppliedEffects, 1)
	_, err = e.values.GetSnapshot(ctx, "NOPRICE", asOf, valuation.MethodGenericFactor)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	// Without a date the run values the engine's current day.
	summary, err = e.values.SnapshotAll(ctx, "")
	require.NoError(t, err)
	require.Equal(t, "2024-06-01", summary.AsOfDate)

	_, err = e.values.SnapshotAll(ctx, "June 1st")
	require.ErrorIs(t, err, apperr.ErrValidation)
}
