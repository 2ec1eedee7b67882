package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"insightval/internal/repository"
	"insightval/internal/service"
)

type ValuationHandler struct {
	Service *service.ValuationService
}

func (h *ValuationHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/valuations")
	group.GET("/preview", h.preview)
	group.GET("/route", h.route)
	group.GET("/snapshots", h.listSnapshots)
	group.GET("/snapshot", h.getSnapshot)
	group.POST("/snapshots/run", h.runSnapshots)
}

// @Summary Preview the adjusted valuation of a symbol
// @Tags valuations
// @Param symbol query string true "symbol"
// @Param date query string true "as-of date YYYY-MM-DD"
// @Param method query string false "method key; routed by profile when empty"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuations/preview [get]
func (h *ValuationHandler) preview(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	res, err := h.Service.Preview(c.Request.Context(), c.Query("symbol"), c.Query("date"), c.Query("method"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, res, nil)
}

// @Summary Show the default method routing for a symbol
// @Tags valuations
// @Param symbol query string true "symbol"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuations/route [get]
func (h *ValuationHandler) route(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	res, err := h.Service.Route(c.Request.Context(), c.Query("symbol"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, res, nil)
}

// @Summary List stored valuation snapshots
// @Tags valuations
// @Param symbol query string true "symbol"
// @Param method query string false "method key"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuations/snapshots [get]
func (h *ValuationHandler) listSnapshots(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	params := repository.ListSnapshotsParams{
		Limit:     intQuery(c, "limit", 100),
		Offset:    intQuery(c, "offset", 0),
		Symbol:    strings.TrimSpace(c.Query("symbol")),
		MethodKey: strQueryPtr(c, "method"),
	}
	items, err := h.Service.ListSnapshots(c.Request.Context(), params)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, map[string]any{"limit": params.Limit, "offset": params.Offset})
}

// @Summary Get one stored valuation snapshot
// @Tags valuations
// @Param symbol query string true "symbol"
// @Param date query string true "as-of date YYYY-MM-DD"
// @Param method query string true "method key"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuations/snapshot [get]
func (h *ValuationHandler) getSnapshot(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	res, err := h.Service.GetSnapshot(c.Request.Context(), c.Query("symbol"), c.Query("date"), c.Query("method"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, res, nil)
}

// @Summary Snapshot every targeted symbol
// @Tags valuations
// @Param date query string false "as-of date YYYY-MM-DD, today when empty"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuations/snapshots/run [post]
func (h *ValuationHandler) runSnapshots(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	res, err := h.Service.SnapshotAll(c.Request.Context(), c.Query("date"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, res, nil)
}
