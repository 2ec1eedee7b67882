package valuation

import (
	"context"

	"github.com/montanaflynn/stats"

	"insightval/internal/repository"
)

const (
	// DefaultPriceLookback is how many trade dates the calculator reads.
	DefaultPriceLookback = 64

	momentumOffset   = 20
	volatilityWindow = 20

	ReasonMissingPrice = "missing price data"
)

// BaseResult is the outcome of computing base metrics for one symbol and date.
type BaseResult struct {
	Metrics       Metrics
	PriceDate     string
	Observations  int
	NotApplicable bool
	Reason        string
}

// BaseCalculator derives base metrics from the market store.
type BaseCalculator struct {
	Market   repository.MarketDataRepository
	Lookback int
}

// Compute reads prices on or before asOf and returns the base metric map with
// outputs already computed by formulaID. A symbol without a usable close is
// reported as not applicable, not as an error.
func (c *BaseCalculator) Compute(ctx context.Context, symbol, asOf, formulaID string) (BaseResult, error) {
	if c == nil || c.Market == nil {
		return BaseResult{NotApplicable: true, Reason: ReasonMissingPrice}, nil
	}
	lookback := c.Lookback
	if lookback <= 0 {
		lookback = DefaultPriceLookback
	}

	rows, err := c.Market.ListDailyPrices(ctx, symbol, asOf, lookback)
	if err != nil {
		return BaseResult{}, err
	}

	// rows are newest first; keep that order while dropping unusable closes.
	closes := make([]float64, 0, len(rows))
	priceDate := ""
	for _, row := range rows {
		if row.Close == nil {
			continue
		}
		v := row.Close.InexactFloat64()
		if !isFinite(v) {
			continue
		}
		if priceDate == "" {
			priceDate = row.TradeDate
		}
		closes = append(closes, v)
	}
	if len(closes) == 0 {
		return BaseResult{NotApplicable: true, Reason: ReasonMissingPrice}, nil
	}

	var circMV *float64
	basic, err := c.Market.GetLatestDailyBasic(ctx, symbol, asOf)
	if err != nil {
		return BaseResult{}, err
	}
	if basic != nil && basic.CircMV != nil {
		circMV = floatPtr(basic.CircMV.InexactFloat64())
	}

	metrics := BaseMetricsFromCloses(closes, circMV)
	Recompute(formulaID, metrics)
	return BaseResult{
		Metrics:      metrics,
		PriceDate:    priceDate,
		Observations: len(closes),
	}, nil
}

// BaseMetricsFromCloses builds the base map from closes ordered newest first.
// Outputs are not computed here.
func BaseMetricsFromCloses(closesDesc []float64, circMV *float64) Metrics {
	m := Metrics{}
	for _, key := range placeholderMetrics {
		m.Set(key, nil)
	}
	m.Set(MetricPrice, nil)
	m.Set(MetricMomentum20d, nil)
	m.Set(MetricVolatility20d, nil)
	m.Set(MetricCircMV, circMV)
	if len(closesDesc) == 0 {
		return m
	}

	m.SetFloat(MetricPrice, closesDesc[0])
	m.Set(MetricMomentum20d, momentum(closesDesc))
	m.Set(MetricVolatility20d, volatility(closesDesc))
	return m
}

func momentum(closesDesc []float64) *float64 {
	if len(closesDesc) < momentumOffset+1 {
		return nil
	}
	past := closesDesc[momentumOffset]
	if past == 0 {
		return nil
	}
	return floatPtr(closesDesc[0]/past - 1)
}

// volatility is the sample standard deviation of the most recent daily simple
// returns, at most volatilityWindow of them.
func volatility(closesDesc []float64) *float64 {
	n := len(closesDesc)
	if n > volatilityWindow+1 {
		n = volatilityWindow + 1
	}
	// Walk oldest to newest inside the window.
	returns := make([]float64, 0, n)
	for i := n - 1; i > 0; i-- {
		prev := closesDesc[i]
		cur := closesDesc[i-1]
		if prev == 0 {
			continue
		}
		returns = append(returns, cur/prev-1)
	}
	if len(returns) < 2 {
		return nil
	}
	sd, err := stats.StandardDeviationSample(stats.Float64Data(returns))
	if err != nil || !isFinite(sd) {
		return nil
	}
	return floatPtr(sd)
}
