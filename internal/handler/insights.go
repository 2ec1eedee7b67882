package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"insightval/internal/repository"
	"insightval/internal/service"
)

type InsightHandler struct {
	Service *service.InsightService
}

func (h *InsightHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/insights")
	group.GET("", h.listInsights)
	group.POST("", h.createInsight)
	group.GET("/:id", h.getInsight)
	group.PUT("/:id", h.updateInsight)
	group.DELETE("/:id", h.deleteInsight)
	group.PUT("/:id/status", h.setStatus)

	group.GET("/:id/scope-rules", h.listScopeRules)
	group.POST("/:id/scope-rules", h.upsertScopeRule)
	group.PUT("/:id/scope-rules/:ruleId", h.setScopeRuleEnabled)
	group.DELETE("/:id/scope-rules/:ruleId", h.deleteScopeRule)

	group.GET("/:id/channels", h.listChannels)
	group.POST("/:id/channels", h.createChannel)
	group.PUT("/:id/channels/:channelId", h.updateChannel)
	group.DELETE("/:id/channels/:channelId", h.deleteChannel)
	group.GET("/:id/channels/:channelId/points", h.listPoints)
	group.PUT("/:id/channels/:channelId/points", h.upsertPoints)
	group.DELETE("/:id/channels/:channelId/points/:date", h.deletePoint)
}

// @Summary List insights
// @Tags insights
// @Param status query string false "draft|active|archived|deleted"
// @Param include_deleted query bool false "include soft-deleted insights"
// @Param order_by query string false "created_at|updated_at|title"
// @Param asc query bool false "ascending order"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights [get]
func (h *InsightHandler) listInsights(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	params := repository.ListInsightsParams{
		Limit:          intQuery(c, "limit", 50),
		Offset:         intQuery(c, "offset", 0),
		Status:         strQueryPtr(c, "status"),
		IncludeDeleted: boolQueryDefault(c, "include_deleted", false),
		OrderBy: parseOrder(c.Query("order_by"), map[string]string{
			"created_at": "created_at",
			"updated_at": "updated_at",
			"title":      "title",
		}),
		Asc: boolQueryPtr(c, "asc"),
	}
	items, total, err := h.Service.ListInsights(c.Request.Context(), params)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}

// @Summary Create insight
// @Tags insights
// @Accept json
// @Param body body service.InsightInput true "insight"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights [post]
func (h *InsightHandler) createInsight(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var body service.InsightInput
	if !bindJSON(c, &body) {
		return
	}
	item, err := h.Service.CreateInsight(c.Request.Context(), body)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Get insight
// @Tags insights
// @Param id path string true "insight id"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id} [get]
func (h *InsightHandler) getInsight(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	item, err := h.Service.GetInsight(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Update insight
// @Tags insights
// @Accept json
// @Param id path string true "insight id"
// @Param body body service.InsightInput true "insight"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id} [put]
func (h *InsightHandler) updateInsight(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var body service.InsightInput
	if !bindJSON(c, &body) {
		return
	}
	item, err := h.Service.UpdateInsight(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Soft-delete insight
// @Tags insights
// @Param id path string true "insight id"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id} [delete]
func (h *InsightHandler) deleteInsight(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	item, err := h.Service.DeleteInsight(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

type statusRequest struct {
	Status string `json:"status"`
}

// @Summary Set insight status
// @Tags insights
// @Accept json
// @Param id path string true "insight id"
// @Param body body statusRequest true "status"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/status [put]
func (h *InsightHandler) setStatus(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var body statusRequest
	if !bindJSON(c, &body) {
		return
	}
	item, err := h.Service.SetInsightStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary List scope rules
// @Tags scope-rules
// @Param id path string true "insight id"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/scope-rules [get]
func (h *InsightHandler) listScopeRules(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	items, err := h.Service.ListScopeRules(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, nil)
}

// @Summary Create or update a scope rule
// @Tags scope-rules
// @Accept json
// @Param id path string true "insight id"
// @Param body body service.ScopeRuleInput true "rule"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/scope-rules [post]
func (h *InsightHandler) upsertScopeRule(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var body service.ScopeRuleInput
	if !bindJSON(c, &body) {
		return
	}
	item, err := h.Service.UpsertScopeRule(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// @Summary Enable or disable a scope rule
// @Tags scope-rules
// @Accept json
// @Param id path string true "insight id"
// @Param ruleId path int true "rule id"
// @Param body body enabledRequest true "enabled flag"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/scope-rules/{ruleId} [put]
func (h *InsightHandler) setScopeRuleEnabled(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	ruleID, ok := uintParam(c, "ruleId")
	if !ok {
		return
	}
	var body enabledRequest
	if !bindJSON(c, &body) {
		return
	}
	if body.Enabled == nil {
		Error(c, http.StatusBadRequest, "enabled required", nil)
		return
	}
	item, err := h.Service.SetScopeRuleEnabled(c.Request.Context(), c.Param("id"), ruleID, *body.Enabled)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Delete a scope rule
// @Tags scope-rules
// @Param id path string true "insight id"
// @Param ruleId path int true "rule id"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/scope-rules/{ruleId} [delete]
func (h *InsightHandler) deleteScopeRule(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	ruleID, ok := uintParam(c, "ruleId")
	if !ok {
		return
	}
	if err := h.Service.DeleteScopeRule(c.Request.Context(), c.Param("id"), ruleID); err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, map[string]any{"id": ruleID, "deleted": true}, nil)
}

// @Summary List effect channels
// @Tags channels
// @Param id path string true "insight id"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/channels [get]
func (h *InsightHandler) listChannels(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	items, err := h.Service.ListChannels(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, nil)
}

// @Summary Create effect channel
// @Tags channels
// @Accept json
// @Param id path string true "insight id"
// @Param body body service.ChannelInput true "channel"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/channels [post]
func (h *InsightHandler) createChannel(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var body service.ChannelInput
	if !bindJSON(c, &body) {
		return
	}
	item, err := h.Service.CreateChannel(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Update effect channel
// @Tags channels
// @Accept json
// @Param id path string true "insight id"
// @Param channelId path int true "channel id"
// @Param body body service.ChannelInput true "channel"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/channels/{channelId} [put]
func (h *InsightHandler) updateChannel(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	channelID, ok := uintParam(c, "channelId")
	if !ok {
		return
	}
	var body service.ChannelInput
	if !bindJSON(c, &body) {
		return
	}
	item, err := h.Service.UpdateChannel(c.Request.Context(), c.Param("id"), channelID, body)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Delete effect channel and its points
// @Tags channels
// @Param id path string true "insight id"
// @Param channelId path int true "channel id"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/channels/{channelId} [delete]
func (h *InsightHandler) deleteChannel(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	channelID, ok := uintParam(c, "channelId")
	if !ok {
		return
	}
	if err := h.Service.DeleteChannel(c.Request.Context(), c.Param("id"), channelID); err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, map[string]any{"id": channelID, "deleted": true}, nil)
}

// @Summary List channel points
// @Tags channels
// @Param id path string true "insight id"
// @Param channelId path int true "channel id"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/channels/{channelId}/points [get]
func (h *InsightHandler) listPoints(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	channelID, ok := uintParam(c, "channelId")
	if !ok {
		return
	}
	items, err := h.Service.ListPoints(c.Request.Context(), c.Param("id"), channelID)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, nil)
}

type pointsRequest struct {
	Points []service.PointInput `json:"points"`
}

// @Summary Upsert channel points
// @Tags channels
// @Accept json
// @Param id path string true "insight id"
// @Param channelId path int true "channel id"
// @Param body body pointsRequest true "points"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/channels/{channelId}/points [put]
func (h *InsightHandler) upsertPoints(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	channelID, ok := uintParam(c, "channelId")
	if !ok {
		return
	}
	var body pointsRequest
	if !bindJSON(c, &body) {
		return
	}
	items, err := h.Service.UpsertPoints(c.Request.Context(), c.Param("id"), channelID, body.Points)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, nil)
}

// @Summary Delete one channel point
// @Tags channels
// @Param id path string true "insight id"
// @Param channelId path int true "channel id"
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} apiResponse
// @Router /api/v1/insights/{id}/channels/{channelId}/points/{date} [delete]
func (h *InsightHandler) deletePoint(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	channelID, ok := uintParam(c, "channelId")
	if !ok {
		return
	}
	date := strings.TrimSpace(c.Param("date"))
	if err := h.Service.DeletePoint(c.Request.Context(), c.Param("id"), channelID, date); err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, map[string]any{"channel_id": channelID, "date": date, "deleted": true}, nil)
}
