package valuation

import (
	"context"
	"math"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"insightval/internal/models"
	"insightval/internal/repository"
)

type stubMarket struct {
	prices []models.DailyPrice
	basic  *models.DailyBasic
}

func (s *stubMarket) GetInstrumentProfile(context.Context, string) (*models.InstrumentProfile, error) {
	return nil, nil
}

func (s *stubMarket) ListSymbolsByProfileField(context.Context, repository.ProfileField, string) ([]string, error) {
	return nil, nil
}

func (s *stubMarket) ListSymbolsByProviderTag(context.Context, string) ([]string, error) {
	return nil, nil
}

func (s *stubMarket) ListProviderTags(context.Context, string) ([]string, error) {
	return nil, nil
}

func (s *stubMarket) ListDailyPrices(_ context.Context, _ string, asOf string, limit int) ([]models.DailyPrice, error) {
	out := make([]models.DailyPrice, 0, len(s.prices))
	for i := len(s.prices) - 1; i >= 0 && len(out) < limit; i-- {
		if s.prices[i].TradeDate <= asOf {
			out = append(out, s.prices[i])
		}
	}
	return out, nil
}

func (s *stubMarket) GetLatestDailyBasic(context.Context, string, string) (*models.DailyBasic, error) {
	return s.basic, nil
}

func dec(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func TestMomentumNeeds21Observations(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	m := BaseMetricsFromCloses(closes, nil)
	if m.Get(MetricMomentum20d) != nil {
		t.Fatalf("momentum with 20 closes should be nil")
	}
	closes = append([]float64{110}, closes...)
	m = BaseMetricsFromCloses(closes, nil)
	got := m.Get(MetricMomentum20d)
	if got == nil || math.Abs(*got-0.1) > 1e-12 {
		t.Fatalf("momentum=%v want 0.1", got)
	}
}

func TestVolatility_SampleStdevOfRecentReturns(t *testing.T) {
	if v := BaseMetricsFromCloses([]float64{101, 100}, nil).Get(MetricVolatility20d); v != nil {
		t.Fatalf("one return should not yield volatility, got %v", *v)
	}

	closesDesc := []float64{103, 101, 102, 100}
	returns := []float64{102.0/100 - 1, 101.0/102 - 1, 103.0/101 - 1}
	want, _ := stats.StandardDeviationSample(returns)
	got := BaseMetricsFromCloses(closesDesc, nil).Get(MetricVolatility20d)
	if got == nil || math.Abs(*got-want) > 1e-15 {
		t.Fatalf("volatility=%v want %v", got, want)
	}

	// Only the most recent 21 prices count.
	long := make([]float64, 0, 40)
	for i := 0; i < 21; i++ {
		long = append(long, 100)
	}
	long = append(long, 50, 200, 50)
	got = BaseMetricsFromCloses(long, nil).Get(MetricVolatility20d)
	if got == nil || *got != 0 {
		t.Fatalf("volatility=%v want 0 for a flat window", got)
	}
}

func TestBaseMetrics_PlaceholdersPresent(t *testing.T) {
	m := BaseMetricsFromCloses([]float64{10}, nil)
	for _, key := range placeholderMetrics {
		if _, ok := m[key]; !ok {
			t.Fatalf("placeholder %s missing", key)
		}
		if m.Get(key) != nil {
			t.Fatalf("placeholder %s should be nil", key)
		}
	}
}

func TestCompute_MissingPrice(t *testing.T) {
	calc := &BaseCalculator{Market: &stubMarket{prices: []models.DailyPrice{
		{TradeDate: "2024-01-02", Close: nil},
	}}}
	res, err := calc.Compute(context.Background(), "X", "2024-01-05", FormulaGenericFactorV1)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !res.NotApplicable || res.Reason != ReasonMissingPrice {
		t.Fatalf("res=%+v want not applicable", res)
	}
}

func TestCompute_SkipsNullClosesAndReadsCircMV(t *testing.T) {
	market := &stubMarket{
		prices: []models.DailyPrice{
			{TradeDate: "2024-01-02", Close: dec(10)},
			{TradeDate: "2024-01-03", Close: dec(11)},
			{TradeDate: "2024-01-04", Close: nil},
			{TradeDate: "2024-01-08", Close: dec(99)},
		},
		basic: &models.DailyBasic{TradeDate: "2024-01-03", CircMV: dec(1.5e9)},
	}
	calc := &BaseCalculator{Market: market}
	res, err := calc.Compute(context.Background(), "X", "2024-01-05", FormulaSpotCarryV1)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.NotApplicable {
		t.Fatalf("unexpected not applicable: %s", res.Reason)
	}
	if res.PriceDate != "2024-01-03" || res.Observations != 2 {
		t.Fatalf("price date=%s observations=%d", res.PriceDate, res.Observations)
	}
	if p := res.Metrics.Get(MetricPrice); p == nil || *p != 11 {
		t.Fatalf("price=%v want 11", p)
	}
	if mv := res.Metrics.Get(MetricCircMV); mv == nil || *mv != 1.5e9 {
		t.Fatalf("circ_mv=%v", mv)
	}
	if f := res.Metrics.Get(MetricFairValue); f == nil || *f != 11 {
		t.Fatalf("fair=%v want price with zero carry", f)
	}
}
