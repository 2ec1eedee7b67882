package repository

import (
	"context"

	"gorm.io/gorm"

	"insightval/internal/models"
)

// MarketDataRepository is the read side of the market reference store.
type MarketDataRepository interface {
	GetInstrumentProfile(ctx context.Context, symbol string) (*models.InstrumentProfile, error)
	ListSymbolsByProfileField(ctx context.Context, field ProfileField, value string) ([]string, error)
	ListSymbolsByProviderTag(ctx context.Context, tag string) ([]string, error)
	ListProviderTags(ctx context.Context, symbol string) ([]string, error)
	// ListDailyPrices returns up to limit rows on or before asOf, newest first.
	ListDailyPrices(ctx context.Context, symbol string, asOf string, limit int) ([]models.DailyPrice, error)
	// GetLatestDailyBasic returns the newest row on or before asOf with a circulating value.
	GetLatestDailyBasic(ctx context.Context, symbol string, asOf string) (*models.DailyBasic, error)
}

// BusinessDataRepository is the read side of user tags and watchlists.
type BusinessDataRepository interface {
	ListSymbolsByUserTag(ctx context.Context, tag string) ([]string, error)
	ListUserTags(ctx context.Context, symbol string) ([]string, error)
	// ListWatchlistSymbols returns every member when group is nil.
	ListWatchlistSymbols(ctx context.Context, group *string) ([]string, error)
}

type InsightRepository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	CreateInsight(ctx context.Context, item *models.Insight) error
	SaveInsight(ctx context.Context, item *models.Insight) error
	GetInsightByID(ctx context.Context, id string) (*models.Insight, error)
	ListInsights(ctx context.Context, params ListInsightsParams) ([]models.Insight, error)
	CountInsights(ctx context.Context, params ListInsightsParams) (int64, error)
	ListInsightsByIDs(ctx context.Context, ids []string) ([]models.Insight, error)
	ListLiveInsightIDs(ctx context.Context) ([]string, error)

	UpsertScopeRule(ctx context.Context, item *models.ScopeRule) error
	GetScopeRuleByID(ctx context.Context, id uint64) (*models.ScopeRule, error)
	ListScopeRules(ctx context.Context, insightID string, enabledOnly bool) ([]models.ScopeRule, error)
	SetScopeRuleEnabled(ctx context.Context, id uint64, enabled bool) error
	DeleteScopeRule(ctx context.Context, id uint64) error

	UpsertTargetExclusion(ctx context.Context, item *models.TargetExclusion) error
	DeleteTargetExclusion(ctx context.Context, insightID, symbol string) (int64, error)
	ListTargetExclusions(ctx context.Context, insightID string) ([]models.TargetExclusion, error)

	ReplaceMaterializedTargetsTx(ctx context.Context, tx *gorm.DB, insightID string, items []models.MaterializedTarget) error
	ListMaterializedTargets(ctx context.Context, insightID string) ([]models.MaterializedTarget, error)
	ListMaterializedTargetsForSymbol(ctx context.Context, symbol string, insightIDs []string) ([]models.MaterializedTarget, error)
	// ListTargetedSymbols returns every symbol some live insight currently
	// targets, ascending.
	ListTargetedSymbols(ctx context.Context) ([]string, error)

	CreateEffectChannel(ctx context.Context, item *models.EffectChannel) error
	SaveEffectChannel(ctx context.Context, item *models.EffectChannel) error
	GetEffectChannelByID(ctx context.Context, id uint64) (*models.EffectChannel, error)
	ListEffectChannels(ctx context.Context, insightID string) ([]models.EffectChannel, error)
	DeleteEffectChannel(ctx context.Context, id uint64) error
	ListCandidateChannels(ctx context.Context, params CandidateChannelParams) ([]models.EffectChannel, error)

	UpsertEffectPoints(ctx context.Context, items []models.EffectPoint) error
	DeleteEffectPoint(ctx context.Context, channelID uint64, date string) (int64, error)
	ListEffectPoints(ctx context.Context, channelID uint64) ([]models.EffectPoint, error)
	ListEffectPointsByChannelIDs(ctx context.Context, channelIDs []uint64) ([]models.EffectPoint, error)
}

type ValuationRepository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	CreateMethodTx(ctx context.Context, tx *gorm.DB, item *models.ValuationMethod) error
	SaveMethodTx(ctx context.Context, tx *gorm.DB, item *models.ValuationMethod) error
	GetMethodByKey(ctx context.Context, key string) (*models.ValuationMethod, error)
	ListMethods(ctx context.Context, params ListMethodsParams) ([]models.ValuationMethod, error)

	CreateMethodVersionTx(ctx context.Context, tx *gorm.DB, item *models.ValuationMethodVersion) error
	MaxMethodVersionTx(ctx context.Context, tx *gorm.DB, methodID uint64) (int, error)
	ListMethodVersions(ctx context.Context, methodID uint64) ([]models.ValuationMethodVersion, error)

	UpsertValuationSnapshot(ctx context.Context, item *models.ValuationSnapshot) error
	GetValuationSnapshot(ctx context.Context, symbol, asOf, methodKey string) (*models.ValuationSnapshot, error)
	ListValuationSnapshots(ctx context.Context, params ListSnapshotsParams) ([]models.ValuationSnapshot, error)
}

// Repository is the business store: insights, valuation methods and the user
// side of the scope data.
type Repository interface {
	InsightRepository
	ValuationRepository
	BusinessDataRepository
}

// ProfileField names an instrument profile column usable as a scope predicate.
type ProfileField string

const (
	ProfileKind       ProfileField = "kind"
	ProfileAssetClass ProfileField = "asset_class"
	ProfileMarket     ProfileField = "market"
)

type ListInsightsParams struct {
	Limit          int
	Offset         int
	Status         *string
	IncludeDeleted bool
	OrderBy        string
	Asc            *bool
}

type CandidateChannelParams struct {
	Symbol    string
	AsOf      string
	MethodKey string
}

type ListMethodsParams struct {
	Status    *string
	IsBuiltin *bool
}

type ListSnapshotsParams struct {
	Limit     int
	Offset    int
	Symbol    string
	MethodKey *string
}
