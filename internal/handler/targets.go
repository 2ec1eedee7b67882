package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"insightval/internal/service"
)

type TargetHandler struct {
	Service *service.TargetService
}

func (h *TargetHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1")
	group.GET("/insights/:id/targets", h.listTargets)
	group.POST("/insights/:id/targets/materialize", h.materialize)
	group.GET("/insights/:id/exclusions", h.listExclusions)
	group.POST("/insights/:id/exclusions", h.exclude)
	group.DELETE("/insights/:id/exclusions/:symbol", h.unexclude)
	group.POST("/targets/refresh", h.refreshAll)
}

// @Summary List materialized targets
// @Tags targets
// @Param id path string true "insight id"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/targets [get]
func (h *TargetHandler) listTargets(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	items, err := h.Service.ListTargets(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, map[string]any{"total": len(items)})
}

// @Summary Materialize insight targets
// @Tags targets
// @Param id path string true "insight id"
// @Param persist query bool false "replace the stored target set (default true)"
// @Param limit query int false "preview size"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/targets/materialize [post]
func (h *TargetHandler) materialize(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	persist := boolQueryDefault(c, "persist", true)
	limit := intQuery(c, "limit", 0)
	res, err := h.Service.Materialize(c.Request.Context(), c.Param("id"), persist, limit)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, res, nil)
}

// @Summary List manual exclusions
// @Tags targets
// @Param id path string true "insight id"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/exclusions [get]
func (h *TargetHandler) listExclusions(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	items, err := h.Service.ListExclusions(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, nil)
}

type exclusionRequest struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// @Summary Exclude a symbol from an insight
// @Tags targets
// @Accept json
// @Param id path string true "insight id"
// @Param body body exclusionRequest true "exclusion"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/exclusions [post]
func (h *TargetHandler) exclude(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var body exclusionRequest
	if !bindJSON(c, &body) {
		return
	}
	res, err := h.Service.Exclude(c.Request.Context(), c.Param("id"), body.Symbol, body.Reason)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, res, nil)
}

// @Summary Remove a manual exclusion
// @Tags targets
// @Param id path string true "insight id"
// @Param symbol path string true "symbol"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/exclusions/{symbol} [delete]
func (h *TargetHandler) unexclude(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	res, err := h.Service.Unexclude(c.Request.Context(), c.Param("id"), c.Param("symbol"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, res, nil)
}

// @Summary Re-materialize every live insight
// @Tags targets
// @Success 200 {object} apiResponse
// @Router /api/v1/targets/refresh [post]
func (h *TargetHandler) refreshAll(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	summary, err := h.Service.RefreshAll(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, summary, nil)
}
