package db

import (
	"insightval/internal/models"
)

// AutoMigrate creates the business store tables.
func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil {
		return nil
	}
	return db.Gorm.AutoMigrate(
		&models.Insight{},
		&models.ScopeRule{},
		&models.TargetExclusion{},
		&models.MaterializedTarget{},
		&models.EffectChannel{},
		&models.EffectPoint{},
		&models.ValuationMethod{},
		&models.ValuationMethodVersion{},
		&models.ValuationSnapshot{},
		&models.UserSymbolTag{},
		&models.WatchlistItem{},
	)
}

// AutoMigrateMarket creates the market reference tables. Production market
// stores are owned by the ingestion side; this is for dev and tests.
func AutoMigrateMarket(db *DB) error {
	if db == nil || db.Gorm == nil {
		return nil
	}
	return db.Gorm.AutoMigrate(
		&models.InstrumentProfile{},
		&models.InstrumentTag{},
		&models.DailyPrice{},
		&models.DailyBasic{},
	)
}
