package valuation

import (
	"regexp"
	"sort"
	"strings"

	"insightval/internal/models"
)

// Built-in method keys.
const (
	MethodEquityFactor  = "equity_factor"
	MethodFuturesBasis  = "futures_basis"
	MethodSpotCarry     = "spot_carry"
	MethodForexPPP      = "forex_ppp"
	MethodBondYield     = "bond_yield"
	MethodGenericFactor = "generic_factor"
)

// Metric graph layers.
const (
	LayerBase   = "base"
	LayerFactor = "factor"
	LayerRisk   = "risk"
	LayerOutput = "output"
)

var (
	methodKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)
	metricKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_.]{0,127}$`)
)

func IsValidMethodKey(key string) bool { return methodKeyPattern.MatchString(key) }
func IsValidMetricKey(key string) bool { return metricKeyPattern.MatchString(key) }

// MetricNode is one entry of a method version's dependency graph.
type MetricNode struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	Layer     string   `json:"layer"`
	Unit      string   `json:"unit,omitempty"`
	DependsOn []string `json:"depends_on,omitempty"`
	FormulaID string   `json:"formula_id,omitempty"`
}

type MetricGraph struct {
	Nodes []MetricNode `json:"nodes"`
}

// ParamSpec describes one tunable parameter of a method.
type ParamSpec struct {
	Type    string   `json:"type"`
	Default *float64 `json:"default,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Label   string   `json:"label,omitempty"`
}

// BuiltinMethod is the seed definition of a built-in valuation method.
type BuiltinMethod struct {
	Key          string
	Name         string
	Description  string
	FormulaID    string
	AssetScope   []string
	Graph        MetricGraph
	ParamsSchema map[string]ParamSpec
}

// MetricSchema lists every metric key the graph produces, in graph order.
func (b BuiltinMethod) MetricSchema() []string {
	out := make([]string, 0, len(b.Graph.Nodes))
	for _, n := range b.Graph.Nodes {
		out = append(out, n.Key)
	}
	return out
}

func baseNodes() []MetricNode {
	return []MetricNode{
		{Key: MetricPrice, Label: "Close price", Layer: LayerBase, Unit: "price"},
		{Key: MetricMomentum20d, Label: "20d momentum", Layer: LayerFactor, Unit: "ratio", DependsOn: []string{MetricPrice}},
		{Key: MetricVolatility20d, Label: "20d volatility", Layer: LayerRisk, Unit: "ratio", DependsOn: []string{MetricPrice}},
		{Key: MetricCircMV, Label: "Circulating market value", Layer: LayerBase, Unit: "currency"},
	}
}

func outputNodes(formulaID string, inputs ...string) []MetricNode {
	deps := append([]string{MetricPrice}, inputs...)
	return []MetricNode{
		{Key: MetricFairValue, Label: "Fair value", Layer: LayerOutput, Unit: "price", DependsOn: deps, FormulaID: formulaID},
		{Key: MetricReturnGap, Label: "Return gap", Layer: LayerOutput, Unit: "ratio", DependsOn: []string{MetricFairValue, MetricPrice}, FormulaID: formulaID},
	}
}

func graphOf(formulaID string, extra []MetricNode, inputs ...string) MetricGraph {
	nodes := baseNodes()
	nodes = append(nodes, extra...)
	nodes = append(nodes, outputNodes(formulaID, inputs...)...)
	return MetricGraph{Nodes: nodes}
}

var builtinMethods = []BuiltinMethod{
	{
		Key:         MethodEquityFactor,
		Name:        "Equity factor",
		Description: "Price scaled by clamped momentum and discounted by volatility.",
		FormulaID:   FormulaEquityFactorV1,
		AssetScope:  []string{"stock", "fund"},
		Graph:       graphOf(FormulaEquityFactorV1, nil, MetricMomentum20d, MetricVolatility20d),
		ParamsSchema: map[string]ParamSpec{
			"momentum_clamp":     {Type: "number", Default: floatPtr(0.5), Min: floatPtr(0), Max: floatPtr(1)},
			"volatility_haircut": {Type: "number", Default: floatPtr(0.2), Min: floatPtr(0), Max: floatPtr(1)},
		},
	},
	{
		Key:         MethodFuturesBasis,
		Name:        "Futures basis",
		Description: "Price plus basis.",
		FormulaID:   FormulaFuturesBasisV1,
		AssetScope:  []string{"futures"},
		Graph: graphOf(FormulaFuturesBasisV1, []MetricNode{
			{Key: MetricBasis, Label: "Basis", Layer: LayerFactor, Unit: "price"},
		}, MetricBasis),
		ParamsSchema: map[string]ParamSpec{},
	},
	{
		Key:         MethodSpotCarry,
		Name:        "Spot carry",
		Description: "Price grown by annualized carry.",
		FormulaID:   FormulaSpotCarryV1,
		AssetScope:  []string{"spot"},
		Graph: graphOf(FormulaSpotCarryV1, []MetricNode{
			{Key: MetricCarry, Label: "Annualized carry", Layer: LayerFactor, Unit: "ratio"},
		}, MetricCarry),
		ParamsSchema: map[string]ParamSpec{},
	},
	{
		Key:         MethodForexPPP,
		Name:        "Forex PPP",
		Description: "Price adjusted by the purchasing power parity gap.",
		FormulaID:   FormulaForexPPPV1,
		AssetScope:  []string{"forex"},
		Graph: graphOf(FormulaForexPPPV1, []MetricNode{
			{Key: MetricPPPGap, Label: "PPP gap", Layer: LayerFactor, Unit: "ratio"},
		}, MetricPPPGap),
		ParamsSchema: map[string]ParamSpec{},
	},
	{
		Key:         MethodBondYield,
		Name:        "Bond yield",
		Description: "Price shifted by duration times yield shift.",
		FormulaID:   FormulaBondYieldV1,
		AssetScope:  []string{"bond"},
		Graph: graphOf(FormulaBondYieldV1, []MetricNode{
			{Key: MetricDuration, Label: "Duration", Layer: LayerRisk, Unit: "years"},
			{Key: MetricYieldShift, Label: "Yield shift", Layer: LayerFactor, Unit: "ratio"},
		}, MetricDuration, MetricYieldShift),
		ParamsSchema: map[string]ParamSpec{},
	},
	{
		Key:         MethodGenericFactor,
		Name:        "Generic factor",
		Description: "Fallback for instruments no other method covers.",
		FormulaID:   FormulaGenericFactorV1,
		AssetScope:  []string{},
		Graph: graphOf(FormulaGenericFactorV1, []MetricNode{
			{Key: MetricBeta, Label: "Beta", Layer: LayerRisk, Unit: "ratio"},
			{Key: MetricAlpha, Label: "Alpha", Layer: LayerFactor, Unit: "ratio"},
		}, MetricMomentum20d, MetricVolatility20d),
		ParamsSchema: map[string]ParamSpec{
			"momentum_weight":    {Type: "number", Default: floatPtr(0.5), Min: floatPtr(0), Max: floatPtr(1)},
			"volatility_haircut": {Type: "number", Default: floatPtr(0.15), Min: floatPtr(0), Max: floatPtr(1)},
		},
	},
}

// BuiltinMethods returns the built-in catalog in a stable order.
func BuiltinMethods() []BuiltinMethod {
	out := make([]BuiltinMethod, len(builtinMethods))
	copy(out, builtinMethods)
	return out
}

func LookupBuiltin(key string) (BuiltinMethod, bool) {
	for _, m := range builtinMethods {
		if m.Key == key {
			return m, true
		}
	}
	return BuiltinMethod{}, false
}

// RouteInput carries what default routing looks at for one symbol.
type RouteInput struct {
	Kind       string
	AssetClass string
	Tags       []string
}

// Route picks the default method key. First match wins.
func Route(in RouteInput) string {
	kind := strings.ToLower(strings.TrimSpace(in.Kind))
	class := strings.ToLower(strings.TrimSpace(in.AssetClass))
	is := func(values ...string) bool {
		for _, v := range values {
			if kind == v || class == v {
				return true
			}
		}
		return false
	}
	switch {
	case is("futures"):
		return MethodFuturesBasis
	case is("spot"):
		return MethodSpotCarry
	case is("forex", "fx"):
		return MethodForexPPP
	case is("stock", "fund"):
		return MethodEquityFactor
	case hasTag(in.Tags, "bond"):
		return MethodBondYield
	default:
		return MethodGenericFactor
	}
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(strings.TrimSpace(t), want) {
			return true
		}
	}
	return false
}

// PickVersion selects the version to value with on asOf. A version matches
// the date when it has at least one effective bound and the date falls
// inside it; the highest matching version wins. Otherwise the method's
// active version, otherwise the highest version number.
func PickVersion(method *models.ValuationMethod, versions []models.ValuationMethodVersion, asOf *string) *models.ValuationMethodVersion {
	if len(versions) == 0 {
		return nil
	}
	sorted := make([]models.ValuationMethodVersion, len(versions))
	copy(sorted, versions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Version > sorted[j].Version })

	if asOf != nil && strings.TrimSpace(*asOf) != "" {
		date := strings.TrimSpace(*asOf)
		for i := range sorted {
			if versionCovers(sorted[i], date) {
				return &sorted[i]
			}
		}
	}
	if method != nil && method.ActiveVersionID != nil {
		for i := range sorted {
			if sorted[i].ID == *method.ActiveVersionID {
				return &sorted[i]
			}
		}
	}
	return &sorted[0]
}

func versionCovers(v models.ValuationMethodVersion, date string) bool {
	from := trimmed(v.EffectiveFrom)
	to := trimmed(v.EffectiveTo)
	if from == "" && to == "" {
		return false
	}
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
