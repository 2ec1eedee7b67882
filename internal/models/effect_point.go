package models

import "time"

// EffectPoint is one dated value of a channel's sparse time series.
type EffectPoint struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ChannelID   uint64  `gorm:"not null;uniqueIndex:uniq_effect_point" json:"channel_id"`
	EffectDate  string  `gorm:"type:varchar(10);not null;uniqueIndex:uniq_effect_point" json:"effect_date"`
	EffectValue float64 `gorm:"not null" json:"effect_value"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EffectPoint) TableName() string {
	return "insight_effect_points"
}
