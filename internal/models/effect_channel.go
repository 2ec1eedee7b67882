package models

import "time"

const (
	StageBase        = "base"
	StageFirstOrder  = "first_order"
	StageSecondOrder = "second_order"
	StageOutput      = "output"
	StageRisk        = "risk"

	OperatorSet = "set"
	OperatorAdd = "add"
	OperatorMul = "mul"
	OperatorMin = "min"
	OperatorMax = "max"

	// MethodWildcard matches every valuation method.
	MethodWildcard = "*"
)

// EffectChannel is a (metric, operator, stage, priority) adjustment slot of an insight.
type EffectChannel struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	InsightID string `gorm:"type:varchar(36);not null;index" json:"insight_id"`
	MethodKey string `gorm:"type:varchar(64);not null;default:'*';index" json:"method_key"`
	MetricKey string `gorm:"type:varchar(128);not null" json:"metric_key"`
	Stage     string `gorm:"type:varchar(20);not null" json:"stage"`
	Operator  string `gorm:"type:varchar(10);not null" json:"operator"`
	Priority  int    `gorm:"not null;default:0" json:"priority"`
	Enabled   bool   `gorm:"not null;index" json:"enabled"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EffectChannel) TableName() string {
	return "insight_effect_channels"
}
