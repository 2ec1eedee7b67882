package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"insightval/internal/apperr"
	"insightval/internal/config"
	"insightval/internal/db"
	gormrepository "insightval/internal/repository/gorm"
	"insightval/internal/scope"
	"insightval/internal/service"
	"insightval/internal/valuation"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open(config.DBConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "api.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })
	require.NoError(t, db.AutoMigrate(conn))
	require.NoError(t, db.AutoMigrateMarket(conn))

	logger := zap.NewNop()
	store := gormrepository.New(conn.Gorm)
	market := gormrepository.NewMarket(conn.Gorm)
	targets := &service.TargetService{
		Repo:     store,
		Resolver: &scope.Resolver{Market: market, Business: store, Logger: logger},
		Logger:   logger,
	}
	methods := &service.MethodService{Repo: store, Logger: logger}
	require.NoError(t, methods.EnsureBuiltins(context.Background()))

	r := gin.New()
	(&HealthHandler{DB: conn.Gorm}).Register(r)
	(&InsightHandler{Service: &service.InsightService{Repo: store, Targets: targets, Logger: logger}}).Register(r)
	(&TargetHandler{Service: targets}).Register(r)
	(&MethodHandler{Service: methods}).Register(r)
	(&ValuationHandler{Service: &service.ValuationService{Engine: valuation.NewEngine(store, market, 0, logger), Repo: store}}).Register(r)
	RegisterDocs(r)
	return r
}

func call(t *testing.T, r http.Handler, method, path, body string) (int, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestInsightRoutes_StatusMapping(t *testing.T) {
	r := newTestRouter(t)

	code, resp := call(t, r, http.MethodPost, "/api/v1/insights", `{"title":"Rate cuts","status":"active"}`)
	require.Equal(t, http.StatusOK, code, resp.Message)
	created := resp.Data.(map[string]any)
	id := created["id"].(string)
	require.Equal(t, "active", created["status"])

	code, _ = call(t, r, http.MethodPost, "/api/v1/insights", `{"title":""}`)
	require.Equal(t, http.StatusBadRequest, code)
	code, _ = call(t, r, http.MethodPost, "/api/v1/insights", `{"title":`)
	require.Equal(t, http.StatusBadRequest, code)
	code, _ = call(t, r, http.MethodGet, "/api/v1/insights/missing", "")
	require.Equal(t, http.StatusNotFound, code)

	code, resp = call(t, r, http.MethodPost, "/api/v1/insights/"+id+"/scope-rules", `{"scope_type":"symbol","scope_key":"AAA"}`)
	require.Equal(t, http.StatusOK, code, resp.Message)
	code, resp = call(t, r, http.MethodGet, "/api/v1/insights/"+id+"/targets", "")
	require.Equal(t, http.StatusOK, code, resp.Message)
	require.Len(t, resp.Data, 1)

	code, resp = call(t, r, http.MethodGet, "/api/v1/insights?limit=10", "")
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, resp.Meta["total"])

	code, _ = call(t, r, http.MethodDelete, "/api/v1/insights/"+id, "")
	require.Equal(t, http.StatusOK, code)
	code, _ = call(t, r, http.MethodPut, "/api/v1/insights/"+id, `{"title":"again"}`)
	require.Equal(t, http.StatusConflict, code)
}

func TestValuationRoutes(t *testing.T) {
	r := newTestRouter(t)

	code, resp := call(t, r, http.MethodGet, "/api/v1/valuations/preview?symbol=X&date=2024-01-21", "")
	require.Equal(t, http.StatusOK, code, resp.Message)
	preview := resp.Data.(map[string]any)
	require.Equal(t, true, preview["not_applicable"])
	require.Equal(t, valuation.ReasonMissingPrice, preview["reason"])

	code, _ = call(t, r, http.MethodGet, "/api/v1/valuations/preview?symbol=X&date=yesterday", "")
	require.Equal(t, http.StatusBadRequest, code)
	code, _ = call(t, r, http.MethodGet, "/api/v1/valuations/snapshot?symbol=X&date=2024-01-21&method=generic_factor", "")
	require.Equal(t, http.StatusNotFound, code)

	code, resp = call(t, r, http.MethodGet, "/api/v1/valuations/route?symbol=X", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, valuation.MethodGenericFactor, resp.Data.(map[string]any)["method_key"])

	code, resp = call(t, r, http.MethodGet, "/api/v1/valuation-methods", "")
	require.Equal(t, http.StatusOK, code, resp.Message)
	require.Len(t, resp.Data, len(valuation.BuiltinMethods()))
}

func TestServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err  error
		want int
		kind string
	}{
		{apperr.Validation("bad"), http.StatusBadRequest, "validation"},
		{apperr.NotFound("gone"), http.StatusNotFound, "not_found"},
		{apperr.Invariant("nope"), http.StatusConflict, "invariant"},
		{errors.New("database is locked"), http.StatusBadGateway, "store"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		serviceError(c, tt.err)
		require.Equal(t, tt.want, w.Code, tt.err.Error())

		var resp apiResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, tt.kind, resp.Meta["error"])
		require.Equal(t, tt.err.Error(), resp.Message)
	}
}

func TestHealthAndDocs(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ready"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "/api/v1/valuations/preview")
}
