package valuation

import (
	"testing"

	"insightval/internal/models"
)

func TestRoute_DecisionTable(t *testing.T) {
	tests := []struct {
		in   RouteInput
		want string
	}{
		{RouteInput{Kind: "futures"}, MethodFuturesBasis},
		{RouteInput{AssetClass: "Futures"}, MethodFuturesBasis},
		{RouteInput{Kind: "spot"}, MethodSpotCarry},
		{RouteInput{Kind: "forex"}, MethodForexPPP},
		{RouteInput{AssetClass: "FX"}, MethodForexPPP},
		{RouteInput{Kind: "stock"}, MethodEquityFactor},
		{RouteInput{Kind: "fund", Tags: []string{"bond"}}, MethodEquityFactor},
		{RouteInput{Tags: []string{"rates", "Bond"}}, MethodBondYield},
		{RouteInput{Kind: "crypto"}, MethodGenericFactor},
		{RouteInput{}, MethodGenericFactor},
	}
	for _, tt := range tests {
		if got := Route(tt.in); got != tt.want {
			t.Fatalf("Route(%+v)=%s want %s", tt.in, got, tt.want)
		}
	}
}

func TestBuiltinCatalog(t *testing.T) {
	methods := BuiltinMethods()
	if len(methods) != 6 {
		t.Fatalf("builtins=%d want 6", len(methods))
	}
	for _, m := range methods {
		if !IsValidMethodKey(m.Key) {
			t.Fatalf("builtin key %q fails the key charset", m.Key)
		}
		if !IsKnownFormula(m.FormulaID) {
			t.Fatalf("builtin %s has unknown formula %s", m.Key, m.FormulaID)
		}
		schema := m.MetricSchema()
		if schema[len(schema)-1] != MetricReturnGap {
			t.Fatalf("builtin %s graph should end with outputs: %v", m.Key, schema)
		}
	}
	if _, ok := LookupBuiltin(MethodBondYield); !ok {
		t.Fatalf("bond_yield missing")
	}
	if _, ok := LookupBuiltin("custom_thing"); ok {
		t.Fatalf("unexpected builtin")
	}
}

func TestKeyCharsets(t *testing.T) {
	for _, k := range []string{"ab", "equity_factor", "m2_custom"} {
		if !IsValidMethodKey(k) {
			t.Fatalf("method key %q should be valid", k)
		}
	}
	for _, k := range []string{"", "a", "Equity", "1abc", "has-dash", "dot.key"} {
		if IsValidMethodKey(k) {
			t.Fatalf("method key %q should be invalid", k)
		}
	}
	if !IsValidMetricKey("factor.momentum.20d") || IsValidMetricKey("Factor.x") || IsValidMetricKey("") {
		t.Fatalf("metric key charset mismatch")
	}
}

func strp(s string) *string { return &s }

func TestPickVersion(t *testing.T) {
	versions := []models.ValuationMethodVersion{
		{ID: 11, Version: 1},
		{ID: 12, Version: 2, EffectiveFrom: strp("2024-01-01"), EffectiveTo: strp("2024-06-30")},
		{ID: 13, Version: 3, EffectiveFrom: strp("2024-04-01")},
		{ID: 14, Version: 4},
	}
	active := uint64(11)
	method := &models.ValuationMethod{ActiveVersionID: &active}

	tests := []struct {
		name   string
		method *models.ValuationMethod
		asOf   *string
		want   int
	}{
		{"window match", method, strp("2024-02-01"), 2},
		{"overlapping windows prefer highest", method, strp("2024-05-01"), 3},
		{"open ended window", method, strp("2030-01-01"), 3},
		{"no window falls back to active", method, strp("2023-01-01"), 1},
		{"no date uses active", method, nil, 1},
		{"no active uses highest", &models.ValuationMethod{}, nil, 4},
		{"dangling active uses highest", &models.ValuationMethod{ActiveVersionID: func() *uint64 { v := uint64(99); return &v }()}, strp("2023-01-01"), 4},
	}
	for _, tt := range tests {
		got := PickVersion(tt.method, versions, tt.asOf)
		if got == nil || got.Version != tt.want {
			t.Fatalf("%s: got=%v want version %d", tt.name, got, tt.want)
		}
	}
	if PickVersion(method, nil, nil) != nil {
		t.Fatalf("no versions must yield nil")
	}
}
