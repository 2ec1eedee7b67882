package models

import "github.com/shopspring/decimal"

// DailyPrice is one trade-date close. TradeDate is YYYY-MM-DD.
type DailyPrice struct {
	ID        uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol    string           `gorm:"type:varchar(50);not null;uniqueIndex:uniq_daily_price" json:"symbol"`
	TradeDate string           `gorm:"type:varchar(10);not null;uniqueIndex:uniq_daily_price" json:"trade_date"`
	Close     *decimal.Decimal `gorm:"type:numeric(20,6)" json:"close"`
}

func (DailyPrice) TableName() string {
	return "market_daily_prices"
}

// DailyBasic carries per-day fundamentals; only circulating market value is consumed.
type DailyBasic struct {
	ID        uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol    string           `gorm:"type:varchar(50);not null;uniqueIndex:uniq_daily_basic" json:"symbol"`
	TradeDate string           `gorm:"type:varchar(10);not null;uniqueIndex:uniq_daily_basic" json:"trade_date"`
	CircMV    *decimal.Decimal `gorm:"column:circ_mv;type:numeric(30,4)" json:"circ_mv"`
}

func (DailyBasic) TableName() string {
	return "market_daily_basics"
}
