package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"insightval/internal/models"
	"insightval/internal/repository"
)

// MarketStore reads the market reference store. It never writes.
type MarketStore struct {
	db *gorm.DB
}

func NewMarket(db *gorm.DB) *MarketStore {
	return &MarketStore{db: db}
}

func (s *MarketStore) GetInstrumentProfile(ctx context.Context, symbol string) (*models.InstrumentProfile, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, nil
	}
	var item models.InstrumentProfile
	err := s.db.WithContext(ctx).Where("symbol = ?", symbol).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

var profileColumns = map[repository.ProfileField]string{
	repository.ProfileKind:       "kind",
	repository.ProfileAssetClass: "asset_class",
	repository.ProfileMarket:     "market",
}

// ListSymbolsByProfileField matches value case-insensitively and exactly.
func (s *MarketStore) ListSymbolsByProfileField(ctx context.Context, field repository.ProfileField, value string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	column, ok := profileColumns[field]
	if !ok {
		return nil, errors.New("unknown profile field: " + string(field))
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	var symbols []string
	if err := s.db.WithContext(ctx).
		Model(&models.InstrumentProfile{}).
		Where("LOWER("+column+") = ?", strings.ToLower(value)).
		Order("symbol asc").
		Pluck("symbol", &symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

func (s *MarketStore) ListSymbolsByProviderTag(ctx context.Context, tag string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var symbols []string
	if err := s.db.WithContext(ctx).
		Model(&models.InstrumentTag{}).
		Where("tag = ?", tag).
		Distinct().
		Order("symbol asc").
		Pluck("symbol", &symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

func (s *MarketStore) ListProviderTags(ctx context.Context, symbol string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var tags []string
	if err := s.db.WithContext(ctx).
		Model(&models.InstrumentTag{}).
		Where("symbol = ?", symbol).
		Order("tag asc").
		Pluck("tag", &tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *MarketStore) ListDailyPrices(ctx context.Context, symbol string, asOf string, limit int) ([]models.DailyPrice, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 64
	}
	var items []models.DailyPrice
	if err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Where("trade_date <= ?", asOf).
		Order("trade_date desc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MarketStore) GetLatestDailyBasic(ctx context.Context, symbol string, asOf string) (*models.DailyBasic, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.DailyBasic
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Where("trade_date <= ?", asOf).
		Where("circ_mv IS NOT NULL").
		Order("trade_date desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

var _ repository.MarketDataRepository = (*MarketStore)(nil)
