package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"insightval/internal/models"
	"insightval/internal/repository"
)

// Store is the gorm-backed business store.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- insights ---------------------------------------------------------------

func (s *Store) CreateInsight(ctx context.Context, item *models.Insight) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveInsight(ctx context.Context, item *models.Insight) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetInsightByID(ctx context.Context, id string) (*models.Insight, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var item models.Insight
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) insightQuery(ctx context.Context, params repository.ListInsightsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Insight{})
	if !params.IncludeDeleted {
		query = query.Where("deleted_at IS NULL").Where("status <> ?", models.InsightStatusDeleted)
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	return query
}

func (s *Store) ListInsights(ctx context.Context, params repository.ListInsightsParams) ([]models.Insight, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.insightQuery(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "updated_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Insight
	if err := query.Order("id asc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountInsights(ctx context.Context, params repository.ListInsightsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.insightQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListInsightsByIDs(ctx context.Context, ids []string) ([]models.Insight, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	ids = cleanStrings(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Insight
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListLiveInsightIDs(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var ids []string
	if err := s.db.WithContext(ctx).
		Model(&models.Insight{}).
		Where("deleted_at IS NULL").
		Where("status <> ?", models.InsightStatusDeleted).
		Order("id asc").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// --- scope rules ------------------------------------------------------------

func (s *Store) UpsertScopeRule(ctx context.Context, item *models.ScopeRule) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "insight_id"},
			{Name: "scope_type"},
			{Name: "scope_key"},
			{Name: "mode"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) GetScopeRuleByID(ctx context.Context, id uint64) (*models.ScopeRule, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.ScopeRule
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListScopeRules(ctx context.Context, insightID string, enabledOnly bool) ([]models.ScopeRule, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.ScopeRule{}).Where("insight_id = ?", insightID)
	if enabledOnly {
		query = query.Where("enabled = ?", true)
	}
	var items []models.ScopeRule
	if err := query.Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) SetScopeRuleEnabled(ctx context.Context, id uint64, enabled bool) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.ScopeRule{}).
		Where("id = ?", id).
		Update("enabled", enabled).Error
}

func (s *Store) DeleteScopeRule(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ScopeRule{}).Error
}

// --- exclusions & materialized targets --------------------------------------

func (s *Store) UpsertTargetExclusion(ctx context.Context, item *models.TargetExclusion) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "insight_id"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) DeleteTargetExclusion(ctx context.Context, insightID, symbol string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("insight_id = ?", insightID).
		Where("symbol = ?", symbol).
		Delete(&models.TargetExclusion{})
	return res.RowsAffected, res.Error
}

func (s *Store) ListTargetExclusions(ctx context.Context, insightID string) ([]models.TargetExclusion, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.TargetExclusion
	if err := s.db.WithContext(ctx).
		Where("insight_id = ?", insightID).
		Order("symbol asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ReplaceMaterializedTargetsTx deletes every target row of the insight and
// inserts items. Callers run it inside InTx so readers never see the empty
// intermediate state.
func (s *Store) ReplaceMaterializedTargetsTx(ctx context.Context, tx *gorm.DB, insightID string, items []models.MaterializedTarget) error {
	if tx == nil {
		return errors.New("replace materialized targets requires a transaction")
	}
	if err := tx.WithContext(ctx).
		Where("insight_id = ?", insightID).
		Delete(&models.MaterializedTarget{}).Error; err != nil {
		return err
	}
	return createInBatches(tx.WithContext(ctx), items, 500)
}

func (s *Store) ListMaterializedTargets(ctx context.Context, insightID string) ([]models.MaterializedTarget, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.MaterializedTarget
	if err := s.db.WithContext(ctx).
		Where("insight_id = ?", insightID).
		Order("symbol asc").
		Order("source_scope_type asc").
		Order("source_scope_key asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListMaterializedTargetsForSymbol(ctx context.Context, symbol string, insightIDs []string) ([]models.MaterializedTarget, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	insightIDs = cleanStrings(insightIDs)
	if len(insightIDs) == 0 {
		return nil, nil
	}
	var items []models.MaterializedTarget
	if err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Where("insight_id IN ?", insightIDs).
		Order("insight_id asc").
		Order("source_scope_type asc").
		Order("source_scope_key asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListTargetedSymbols(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var symbols []string
	if err := s.db.WithContext(ctx).
		Table("insight_materialized_targets AS t").
		Joins("JOIN insights AS i ON i.id = t.insight_id").
		Where("i.deleted_at IS NULL").
		Where("i.status <> ?", models.InsightStatusDeleted).
		Distinct().
		Order("t.symbol asc").
		Pluck("t.symbol", &symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// --- effect channels & points -----------------------------------------------

func (s *Store) CreateEffectChannel(ctx context.Context, item *models.EffectChannel) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveEffectChannel(ctx context.Context, item *models.EffectChannel) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetEffectChannelByID(ctx context.Context, id uint64) (*models.EffectChannel, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.EffectChannel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListEffectChannels(ctx context.Context, insightID string) ([]models.EffectChannel, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.EffectChannel
	if err := s.db.WithContext(ctx).
		Where("insight_id = ?", insightID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteEffectChannel(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", id).Delete(&models.EffectPoint{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.EffectChannel{}).Error
	})
}

// ListCandidateChannels returns enabled channels of active, non-deleted
// insights whose window covers AsOf, that target MethodKey (or the wildcard)
// and that currently materialize Symbol without a manual exclusion.
func (s *Store) ListCandidateChannels(ctx context.Context, params repository.CandidateChannelParams) ([]models.EffectChannel, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.EffectChannel
	err := s.db.WithContext(ctx).
		Table("insight_effect_channels AS c").
		Select("c.*").
		Joins("JOIN insights AS i ON i.id = c.insight_id").
		Where("c.enabled = ?", true).
		Where("i.deleted_at IS NULL").
		Where("i.status = ?", models.InsightStatusActive).
		Where("(i.valid_from IS NULL OR i.valid_from = '' OR i.valid_from <= ?)", params.AsOf).
		Where("(i.valid_to IS NULL OR i.valid_to = '' OR i.valid_to >= ?)", params.AsOf).
		Where("c.method_key IN ?", []string{params.MethodKey, models.MethodWildcard}).
		Where("EXISTS (SELECT 1 FROM insight_materialized_targets AS t WHERE t.insight_id = i.id AND t.symbol = ?)", params.Symbol).
		Where("NOT EXISTS (SELECT 1 FROM insight_target_exclusions AS e WHERE e.insight_id = i.id AND e.symbol = ?)", params.Symbol).
		Order("c.id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertEffectPoints(ctx context.Context, items []models.EffectPoint) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}, {Name: "effect_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"effect_value", "updated_at"}),
	}).Create(&items).Error
}

func (s *Store) DeleteEffectPoint(ctx context.Context, channelID uint64, date string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Where("effect_date = ?", date).
		Delete(&models.EffectPoint{})
	return res.RowsAffected, res.Error
}

func (s *Store) ListEffectPoints(ctx context.Context, channelID uint64) ([]models.EffectPoint, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.EffectPoint
	if err := s.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("effect_date asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListEffectPointsByChannelIDs(ctx context.Context, channelIDs []uint64) ([]models.EffectPoint, error) {
	if s == nil || s.db == nil || len(channelIDs) == 0 {
		return nil, nil
	}
	var items []models.EffectPoint
	if err := s.db.WithContext(ctx).
		Where("channel_id IN ?", channelIDs).
		Order("channel_id asc").
		Order("effect_date asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- user tags & watchlists -------------------------------------------------

func (s *Store) ListSymbolsByUserTag(ctx context.Context, tag string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var symbols []string
	if err := s.db.WithContext(ctx).
		Model(&models.UserSymbolTag{}).
		Where("tag = ?", tag).
		Distinct().
		Order("symbol asc").
		Pluck("symbol", &symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

func (s *Store) ListUserTags(ctx context.Context, symbol string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var tags []string
	if err := s.db.WithContext(ctx).
		Model(&models.UserSymbolTag{}).
		Where("symbol = ?", symbol).
		Order("tag asc").
		Pluck("tag", &tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *Store) ListWatchlistSymbols(ctx context.Context, group *string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.WatchlistItem{})
	if group != nil {
		query = query.Where("COALESCE(NULLIF(group_name, ''), 'default') = ?", *group)
	}
	var symbols []string
	if err := query.Distinct().Order("symbol asc").Pluck("symbol", &symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// --- helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func createInBatches[T any](db *gorm.DB, items []T, batchSize int) error {
	if len(items) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	return db.CreateInBatches(&items, batchSize).Error
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]struct{}{}
	for _, raw := range items {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	return out
}

var _ repository.Repository = (*Store)(nil)
