package models

import "time"

// TargetExclusion removes a symbol from an insight's targets regardless of scope rules.
type TargetExclusion struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	InsightID string `gorm:"type:varchar(36);not null;uniqueIndex:uniq_target_exclusion" json:"insight_id"`
	Symbol    string `gorm:"type:varchar(50);not null;uniqueIndex:uniq_target_exclusion" json:"symbol"`
	Reason    string `gorm:"type:text" json:"reason"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TargetExclusion) TableName() string {
	return "insight_target_exclusions"
}
