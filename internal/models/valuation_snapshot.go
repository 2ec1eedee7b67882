package models

import (
	"time"

	"gorm.io/datatypes"
)

// ValuationSnapshot caches the last preview computed for (symbol, as-of date, method).
type ValuationSnapshot struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol        string `gorm:"type:varchar(50);not null;uniqueIndex:uniq_valuation_snapshot" json:"symbol"`
	AsOfDate      string `gorm:"type:varchar(10);not null;uniqueIndex:uniq_valuation_snapshot" json:"as_of_date"`
	MethodKey     string `gorm:"type:varchar(64);not null;uniqueIndex:uniq_valuation_snapshot" json:"method_key"`
	MethodVersion int    `gorm:"not null" json:"method_version"`

	BaseMetrics     datatypes.JSON `json:"base_metrics"`
	AdjustedMetrics datatypes.JSON `json:"adjusted_metrics"`
	AppliedEffects  datatypes.JSON `json:"applied_effects"`
	BaseValue       *float64       `json:"base_value"`
	AdjustedValue   *float64       `json:"adjusted_value"`

	ComputedAt time.Time `gorm:"not null;index" json:"computed_at"`
}

func (ValuationSnapshot) TableName() string {
	return "valuation_snapshots"
}
