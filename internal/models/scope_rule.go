package models

import "time"

const (
	ScopeModeInclude = "include"
	ScopeModeExclude = "exclude"
)

// ScopeRule is one include/exclude predicate of an insight.
type ScopeRule struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	InsightID string `gorm:"type:varchar(36);not null;uniqueIndex:uniq_scope_rule;index" json:"insight_id"`
	ScopeType string `gorm:"type:varchar(20);not null;uniqueIndex:uniq_scope_rule" json:"scope_type"`
	ScopeKey  string `gorm:"type:varchar(100);not null;uniqueIndex:uniq_scope_rule" json:"scope_key"`
	Mode      string `gorm:"type:varchar(10);not null;uniqueIndex:uniq_scope_rule" json:"mode"`
	Enabled   bool   `gorm:"not null" json:"enabled"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ScopeRule) TableName() string {
	return "insight_scope_rules"
}

// Source is the "scopeType:scopeKey" label recorded on materialized targets.
func (r ScopeRule) Source() string {
	return r.ScopeType + ":" + r.ScopeKey
}
