package valuation

import (
	"math"
	"sort"
)

// Metric keys produced or consumed by the built-in formulas.
const (
	MetricPrice          = "market.price"
	MetricMomentum20d    = "factor.momentum.20d"
	MetricVolatility20d  = "risk.volatility.20d"
	MetricCircMV         = "liquidity.circ_mv"
	MetricBasis          = "factor.basis"
	MetricCarry          = "factor.carry.annualized"
	MetricPPPGap         = "factor.ppp_gap"
	MetricDuration       = "risk.duration"
	MetricYieldShift     = "risk.yield_shift"
	MetricBeta           = "risk.beta"
	MetricAlpha          = "risk.alpha"
	MetricFairValue      = "output.fair_value"
	MetricReturnGap      = "output.return_gap"
	MetricValuationValue = "valuation.fair_value"
)

// placeholderMetrics have no base data source yet. They exist in every base
// map so channels targeting them have somewhere to land.
var placeholderMetrics = []string{
	MetricBasis,
	MetricCarry,
	MetricPPPGap,
	MetricDuration,
	MetricYieldShift,
	MetricBeta,
	MetricAlpha,
}

// Metrics maps metric keys to values; nil means "no value".
type Metrics map[string]*float64

func (m Metrics) Get(key string) *float64 {
	if m == nil {
		return nil
	}
	return m[key]
}

// Set stores v, collapsing NaN and infinities to nil.
func (m Metrics) Set(key string, v *float64) {
	if v != nil && !isFinite(*v) {
		v = nil
	}
	if v != nil {
		cp := *v
		v = &cp
	}
	m[key] = v
}

func (m Metrics) SetFloat(key string, v float64) {
	m.Set(key, &v)
}

// Clone deep-copies the map so adjusted values never alias base values.
func (m Metrics) Clone() Metrics {
	out := make(Metrics, len(m))
	for k, v := range m {
		if v == nil {
			out[k] = nil
			continue
		}
		cp := *v
		out[k] = &cp
	}
	return out
}

func (m Metrics) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// valueOrZero treats a missing input as zero inside formulas.
func (m Metrics) valueOrZero(key string) float64 {
	v := m.Get(key)
	if v == nil {
		return 0
	}
	return *v
}

// headlineValue returns the first finite value among the fair value outputs
// and the price.
func headlineValue(m Metrics) *float64 {
	for _, key := range []string{MetricFairValue, MetricValuationValue, MetricPrice} {
		if v := m.Get(key); v != nil && isFinite(*v) {
			cp := *v
			return &cp
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func floatPtr(v float64) *float64 {
	return &v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
