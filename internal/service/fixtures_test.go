package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"insightval/internal/config"
	"insightval/internal/db"
	"insightval/internal/models"
	gormrepository "insightval/internal/repository/gorm"
	"insightval/internal/scope"
	"insightval/internal/valuation"
)

// testEnv wires every service against one temp-file sqlite database that
// holds both the business and the market tables.
type testEnv struct {
	db       *db.DB
	store    *gormrepository.Store
	market   *gormrepository.MarketStore
	targets  *TargetService
	insights *InsightService
	methods  *MethodService
	values   *ValuationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.Open(config.DBConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })
	require.NoError(t, db.AutoMigrate(conn))
	require.NoError(t, db.AutoMigrateMarket(conn))

	store := gormrepository.New(conn.Gorm)
	market := gormrepository.NewMarket(conn.Gorm)
	logger := zap.NewNop()

	targets := &TargetService{
		Repo:     store,
		Resolver: &scope.Resolver{Market: market, Business: store, Logger: logger},
		Logger:   logger,
	}
	methods := &MethodService{Repo: store, Logger: logger}
	require.NoError(t, methods.EnsureBuiltins(context.Background()))

	engine := valuation.NewEngine(store, market, 0, logger)
	engine.Now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	return &testEnv{
		db:       conn,
		store:    store,
		market:   market,
		targets:  targets,
		insights: &InsightService{Repo: store, Targets: targets, Logger: logger},
		methods:  methods,
		values:   &ValuationService{Engine: engine, Repo: store, Targets: store, Concurrency: 2, Logger: logger},
	}
}

func (e *testEnv) profile(t *testing.T, symbol, kind, assetClass, market string) {
	t.Helper()
	require.NoError(t, e.db.Gorm.Create(&models.InstrumentProfile{
		Symbol:     symbol,
		Kind:       kind,
		AssetClass: assetClass,
		Market:     market,
	}).Error)
}

func (e *testEnv) providerTag(t *testing.T, symbol, tag string) {
	t.Helper()
	require.NoError(t, e.db.Gorm.Create(&models.InstrumentTag{Symbol: symbol, Tag: tag}).Error)
}

func (e *testEnv) userTag(t *testing.T, symbol, tag string) {
	t.Helper()
	require.NoError(t, e.db.Gorm.Create(&models.UserSymbolTag{Symbol: symbol, Tag: tag}).Error)
}

func (e *testEnv) watch(t *testing.T, symbol, group string) {
	t.Helper()
	require.NoError(t, e.db.Gorm.Create(&models.WatchlistItem{Symbol: symbol, GroupName: group}).Error)
}

// prices stores closes on consecutive days ending at last, oldest first.
func (e *testEnv) prices(t *testing.T, symbol, last string, closes ...float64) {
	t.Helper()
	end, err := time.Parse(valuation.DateFormat, last)
	require.NoError(t, err)
	for i, c := range closes {
		d := decimal.NewFromFloat(c)
		day := end.AddDate(0, 0, i-len(closes)+1).Format(valuation.DateFormat)
		require.NoError(t, e.db.Gorm.Create(&models.DailyPrice{Symbol: symbol, TradeDate: day, Close: &d}).Error)
	}
}

// momentumSeries returns 21 closes whose 20-day momentum is exactly 10%.
func momentumSeries() []float64 {
	out := make([]float64, 21)
	for i := range out {
		out[i] = 100 + float64(i)*0.5
	}
	return out
}

func (e *testEnv) activeInsight(t *testing.T, title string) *models.Insight {
	t.Helper()
	item, err := e.insights.CreateInsight(context.Background(), InsightInput{Title: title, Status: models.InsightStatusActive})
	require.NoError(t, err)
	return item
}

func (e *testEnv) include(t *testing.T, insightID, scopeType, key string) *models.ScopeRule {
	t.Helper()
	rule, err := e.insights.UpsertScopeRule(context.Background(), insightID, ScopeRuleInput{ScopeType: scopeType, ScopeKey: key})
	require.NoError(t, err)
	return rule
}

func (e *testEnv) channel(t *testing.T, insightID string, in ChannelInput, points ...PointInput) *models.EffectChannel {
	t.Helper()
	ch, err := e.insights.CreateChannel(context.Background(), insightID, in)
	require.NoError(t, err)
	if len(points) > 0 {
		_, err = e.insights.UpsertPoints(context.Background(), insightID, ch.ID, points)
		require.NoError(t, err)
	}
	return ch
}

func symbols(n int, prefix string) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("%s%03d", prefix, i))
	}
	return out
}
