package models

import "time"

// MaterializedTarget is one (symbol, contributing include rule) pair. The
// whole set for an insight is replaced on every materialization run.
type MaterializedTarget struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	InsightID       string `gorm:"type:varchar(36);not null;index:idx_materialized_insight_symbol" json:"insight_id"`
	Symbol          string `gorm:"type:varchar(50);not null;index:idx_materialized_insight_symbol;index" json:"symbol"`
	SourceScopeType string `gorm:"type:varchar(20);not null" json:"source_scope_type"`
	SourceScopeKey  string `gorm:"type:varchar(100);not null" json:"source_scope_key"`

	MaterializedAt time.Time `gorm:"not null" json:"materialized_at"`
}

func (MaterializedTarget) TableName() string {
	return "insight_materialized_targets"
}

func (t MaterializedTarget) Source() string {
	return t.SourceScopeType + ":" + t.SourceScopeKey
}
