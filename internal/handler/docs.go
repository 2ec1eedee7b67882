package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Insight Valuation Service

Insights carry a thesis, scope rules that pick the affected symbols and effect
channels that move valuation metrics over time. A preview prices one symbol on
one date with a valuation method and every active channel applied.

## Auth

When auth is enabled every /api/* route requires an HS256 bearer token.
Health endpoints and this page are public.

## Routes

- GET /healthz
- GET /readyz
- GET /swagger/index.html
- GET|POST /api/v1/insights
- GET|PUT|DELETE /api/v1/insights/{id}
- PUT /api/v1/insights/{id}/status
- GET|POST /api/v1/insights/{id}/scope-rules
- GET|POST /api/v1/insights/{id}/channels
- PUT /api/v1/insights/{id}/channels/{channelId}/points
- GET /api/v1/insights/{id}/targets
- POST /api/v1/insights/{id}/targets/materialize
- GET|POST /api/v1/insights/{id}/exclusions
- POST /api/v1/targets/refresh
- GET|POST /api/v1/valuation-methods
- POST /api/v1/valuation-methods/{key}/clone
- POST /api/v1/valuation-methods/{key}/versions
- GET /api/v1/valuations/preview?symbol=&date=&method=
- GET /api/v1/valuations/route?symbol=
- GET /api/v1/valuations/snapshots?symbol=
- POST /api/v1/valuations/snapshots/run?date=
`)
	})
}
