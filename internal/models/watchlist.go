package models

import "time"

// UserSymbolTag is the business layer's user tag index.
type UserSymbolTag struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol string `gorm:"type:varchar(50);not null;uniqueIndex:uniq_user_symbol_tag" json:"symbol"`
	Tag    string `gorm:"type:varchar(100);not null;uniqueIndex:uniq_user_symbol_tag;index" json:"tag"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserSymbolTag) TableName() string {
	return "user_symbol_tags"
}

// WatchlistItem is one watchlist membership. An empty GroupName belongs to "default".
type WatchlistItem struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol    string `gorm:"type:varchar(50);not null;uniqueIndex:uniq_watchlist_item" json:"symbol"`
	GroupName string `gorm:"type:varchar(100);not null;default:'';uniqueIndex:uniq_watchlist_item" json:"group_name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WatchlistItem) TableName() string {
	return "watchlist_items"
}
