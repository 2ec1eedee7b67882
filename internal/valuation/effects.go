package valuation

import (
	"math"
	"sort"

	"insightval/internal/models"
)

var stageRank = map[string]int{
	models.StageBase:        0,
	models.StageFirstOrder:  1,
	models.StageSecondOrder: 2,
	models.StageOutput:      3,
	models.StageRisk:        4,
}

// Stages returns the stage names in application order.
func Stages() []string {
	return []string{
		models.StageBase,
		models.StageFirstOrder,
		models.StageSecondOrder,
		models.StageOutput,
		models.StageRisk,
	}
}

func IsStage(s string) bool {
	_, ok := stageRank[s]
	return ok
}

// recomputesAfter reports whether outputs are refreshed once the stage is done.
func recomputesAfter(stage string) bool {
	switch stage {
	case models.StageBase, models.StageFirstOrder, models.StageSecondOrder:
		return true
	}
	return false
}

func Operators() []string {
	return []string{models.OperatorSet, models.OperatorAdd, models.OperatorMul, models.OperatorMin, models.OperatorMax}
}

func IsOperator(op string) bool {
	switch op {
	case models.OperatorSet, models.OperatorAdd, models.OperatorMul, models.OperatorMin, models.OperatorMax:
		return true
	}
	return false
}

// ApplyOperator combines the current metric value with a channel value.
func ApplyOperator(op string, current *float64, value float64) *float64 {
	switch op {
	case models.OperatorSet:
		return floatPtr(value)
	case models.OperatorAdd:
		base := 0.0
		if current != nil {
			base = *current
		}
		return floatPtr(base + value)
	case models.OperatorMul:
		base := 1.0
		if current != nil {
			base = *current
		}
		return floatPtr(base * value)
	case models.OperatorMin:
		if current == nil {
			return floatPtr(value)
		}
		return floatPtr(math.Min(*current, value))
	case models.OperatorMax:
		if current == nil {
			return floatPtr(value)
		}
		return floatPtr(math.Max(*current, value))
	}
	return current
}

// Point is one dated value of a channel series.
type Point struct {
	Date  string
	Value float64
}

// SeriesFromPoints returns the channel series sorted by date.
func SeriesFromPoints(points []models.EffectPoint) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		out = append(out, Point{Date: p.EffectDate, Value: p.EffectValue})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Interpolate evaluates a date-sorted series at date. Dates outside the
// series range report ok=false.
func Interpolate(series []Point, date string) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	if date < series[0].Date || date > series[len(series)-1].Date {
		return 0, false
	}
	idx := sort.Search(len(series), func(i int) bool { return series[i].Date >= date })
	if series[idx].Date == date {
		return series[idx].Value, true
	}
	lo, hi := series[idx-1], series[idx]
	span := daysBetween(lo.Date, hi.Date)
	if span <= 0 {
		return lo.Value, true
	}
	frac := daysBetween(lo.Date, date) / span
	return lo.Value + (hi.Value-lo.Value)*frac, true
}

// ActiveChannel is a candidate channel with its value at the preview date.
type ActiveChannel struct {
	Channel      models.EffectChannel
	InsightTitle string
	Value        float64
	Sources      []string
}

// SortChannels orders channels by stage, priority, channel id, insight id.
func SortChannels(items []ActiveChannel) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Channel, items[j].Channel
		if ra, rb := stageRank[a.Stage], stageRank[b.Stage]; ra != rb {
			return ra < rb
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.InsightID < b.InsightID
	})
}

// AppliedEffect records one operator application during a preview.
type AppliedEffect struct {
	ChannelID    uint64   `json:"channel_id"`
	InsightID    string   `json:"insight_id"`
	InsightTitle string   `json:"insight_title"`
	MethodKey    string   `json:"method_key"`
	MetricKey    string   `json:"metric_key"`
	Stage        string   `json:"stage"`
	Operator     string   `json:"operator"`
	Priority     int      `json:"priority"`
	Value        float64  `json:"value"`
	Before       *float64 `json:"before"`
	After        *float64 `json:"after"`
	Sources      []string `json:"sources"`
}

// Compose applies sorted channels to a copy of base, stage by stage, running
// the formula after the base, first_order and second_order stages.
func Compose(formulaID string, base Metrics, channels []ActiveChannel) (Metrics, []AppliedEffect) {
	adjusted := base.Clone()
	applied := make([]AppliedEffect, 0, len(channels))

	byStage := make(map[string][]ActiveChannel, len(stageRank))
	for _, ch := range channels {
		byStage[ch.Channel.Stage] = append(byStage[ch.Channel.Stage], ch)
	}

	for _, stage := range Stages() {
		for _, ch := range byStage[stage] {
			key := ch.Channel.MetricKey
			before := adjusted.Get(key)
			adjusted.Set(key, ApplyOperator(ch.Channel.Operator, before, ch.Value))
			after := adjusted.Get(key)

			sources := ch.Sources
			if sources == nil {
				sources = []string{}
			}
			applied = append(applied, AppliedEffect{
				ChannelID:    ch.Channel.ID,
				InsightID:    ch.Channel.InsightID,
				InsightTitle: ch.InsightTitle,
				MethodKey:    ch.Channel.MethodKey,
				MetricKey:    key,
				Stage:        ch.Channel.Stage,
				Operator:     ch.Channel.Operator,
				Priority:     ch.Channel.Priority,
				Value:        ch.Value,
				Before:       copyFloat(before),
				After:        copyFloat(after),
				Sources:      sources,
			})
		}
		if recomputesAfter(stage) {
			Recompute(formulaID, adjusted)
		}
	}
	return adjusted, applied
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
