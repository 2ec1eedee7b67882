package models

import "time"

// InstrumentProfile is market reference data for one symbol.
type InstrumentProfile struct {
	Symbol     string `gorm:"primaryKey;type:varchar(50)" json:"symbol"`
	Name       string `gorm:"type:varchar(200)" json:"name"`
	Kind       string `gorm:"type:varchar(30);index" json:"kind"`
	AssetClass string `gorm:"type:varchar(30);index" json:"asset_class"`
	Market     string `gorm:"type:varchar(30);index" json:"market"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (InstrumentProfile) TableName() string {
	return "instrument_profiles"
}

// InstrumentTag is the provider tag index of the market catalog.
type InstrumentTag struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol string `gorm:"type:varchar(50);not null;uniqueIndex:uniq_instrument_tag" json:"symbol"`
	Tag    string `gorm:"type:varchar(100);not null;uniqueIndex:uniq_instrument_tag;index" json:"tag"`
}

func (InstrumentTag) TableName() string {
	return "instrument_tags"
}
