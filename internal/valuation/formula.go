package valuation

const (
	FormulaEquityFactorV1  = "equity_factor_v1"
	FormulaFuturesBasisV1  = "futures_basis_v1"
	FormulaSpotCarryV1     = "spot_carry_v1"
	FormulaForexPPPV1      = "forex_ppp_v1"
	FormulaBondYieldV1     = "bond_yield_v1"
	FormulaGenericFactorV1 = "generic_factor_v1"
)

// fairValueFunc computes output.fair_value from a price and the current
// metric map. Price is never nil when called.
type fairValueFunc func(price float64, m Metrics) float64

var formulas = map[string]fairValueFunc{
	FormulaEquityFactorV1: func(price float64, m Metrics) float64 {
		momentum := clamp(m.valueOrZero(MetricMomentum20d), -0.5, 0.5)
		vol := clamp(m.valueOrZero(MetricVolatility20d), -1, 1)
		return price * (1 + momentum) * (1 - vol*0.2)
	},
	FormulaFuturesBasisV1: func(price float64, m Metrics) float64 {
		return price + m.valueOrZero(MetricBasis)
	},
	FormulaSpotCarryV1: func(price float64, m Metrics) float64 {
		return price * (1 + m.valueOrZero(MetricCarry))
	},
	FormulaForexPPPV1: func(price float64, m Metrics) float64 {
		return price * (1 + m.valueOrZero(MetricPPPGap))
	},
	FormulaBondYieldV1: func(price float64, m Metrics) float64 {
		return price * (1 - m.valueOrZero(MetricDuration)*m.valueOrZero(MetricYieldShift))
	},
	FormulaGenericFactorV1: genericFairValue,
}

func genericFairValue(price float64, m Metrics) float64 {
	momentum := clamp(m.valueOrZero(MetricMomentum20d), -0.5, 0.5)
	vol := clamp(m.valueOrZero(MetricVolatility20d), -1, 1)
	return price * (1 + momentum*0.5) * (1 - vol*0.15)
}

// IsKnownFormula reports whether id can be published on a method version.
func IsKnownFormula(id string) bool {
	_, ok := formulas[id]
	return ok
}

func FormulaIDs() []string {
	return []string{
		FormulaEquityFactorV1,
		FormulaFuturesBasisV1,
		FormulaSpotCarryV1,
		FormulaForexPPPV1,
		FormulaBondYieldV1,
		FormulaGenericFactorV1,
	}
}

// Recompute refreshes output.fair_value and output.return_gap in m from the
// current metric values. Unknown ids fall back to the generic formula.
func Recompute(formulaID string, m Metrics) {
	fn, ok := formulas[formulaID]
	if !ok {
		fn = genericFairValue
	}
	price := m.Get(MetricPrice)
	if price == nil {
		m.Set(MetricFairValue, nil)
		m.Set(MetricReturnGap, nil)
		return
	}
	p := *price
	fair := fn(p, m)
	m.SetFloat(MetricFairValue, fair)

	if isFinite(fair) && isFinite(p) && p != 0 {
		m.SetFloat(MetricReturnGap, fair/p-1)
	} else {
		m.Set(MetricReturnGap, nil)
	}
}
