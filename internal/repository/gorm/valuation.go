package gormrepository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"insightval/internal/models"
	"insightval/internal/repository"
)

func (s *Store) CreateMethodTx(ctx context.Context, tx *gorm.DB, item *models.ValuationMethod) error {
	if item == nil {
		return nil
	}
	return s.conn(ctx, tx).Create(item).Error
}

func (s *Store) SaveMethodTx(ctx context.Context, tx *gorm.DB, item *models.ValuationMethod) error {
	if item == nil {
		return nil
	}
	return s.conn(ctx, tx).Save(item).Error
}

func (s *Store) GetMethodByKey(ctx context.Context, key string) (*models.ValuationMethod, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var item models.ValuationMethod
	err := s.db.WithContext(ctx).Where("method_key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListMethods(ctx context.Context, params repository.ListMethodsParams) ([]models.ValuationMethod, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.ValuationMethod{})
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.IsBuiltin != nil {
		query = query.Where("is_builtin = ?", *params.IsBuiltin)
	}
	var items []models.ValuationMethod
	if err := query.Order("is_builtin desc").Order("method_key asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CreateMethodVersionTx(ctx context.Context, tx *gorm.DB, item *models.ValuationMethodVersion) error {
	if item == nil {
		return nil
	}
	return s.conn(ctx, tx).Create(item).Error
}

func (s *Store) MaxMethodVersionTx(ctx context.Context, tx *gorm.DB, methodID uint64) (int, error) {
	var maxVersion sql.NullInt64
	row := s.conn(ctx, tx).
		Model(&models.ValuationMethodVersion{}).
		Where("method_id = ?", methodID).
		Select("MAX(version)").
		Row()
	if err := row.Scan(&maxVersion); err != nil {
		return 0, err
	}
	if !maxVersion.Valid {
		return 0, nil
	}
	return int(maxVersion.Int64), nil
}

func (s *Store) ListMethodVersions(ctx context.Context, methodID uint64) ([]models.ValuationMethodVersion, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.ValuationMethodVersion
	if err := s.db.WithContext(ctx).
		Where("method_id = ?", methodID).
		Order("version asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertValuationSnapshot(ctx context.Context, item *models.ValuationSnapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "as_of_date"}, {Name: "method_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"method_version",
			"base_metrics",
			"adjusted_metrics",
			"applied_effects",
			"base_value",
			"adjusted_value",
			"computed_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetValuationSnapshot(ctx context.Context, symbol, asOf, methodKey string) (*models.ValuationSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.ValuationSnapshot
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Where("as_of_date = ?", asOf).
		Where("method_key = ?", methodKey).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListValuationSnapshots(ctx context.Context, params repository.ListSnapshotsParams) ([]models.ValuationSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.ValuationSnapshot{})
	if symbol := strings.TrimSpace(params.Symbol); symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}
	if params.MethodKey != nil && strings.TrimSpace(*params.MethodKey) != "" {
		query = query.Where("method_key = ?", strings.TrimSpace(*params.MethodKey))
	}
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.ValuationSnapshot
	if err := query.
		Order("as_of_date desc").
		Order("method_key asc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// conn prefers the caller's transaction.
func (s *Store) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}
