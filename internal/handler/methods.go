package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"insightval/internal/service"
)

type MethodHandler struct {
	Service *service.MethodService
}

func (h *MethodHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/valuation-methods")
	group.GET("", h.listMethods)
	group.POST("", h.createMethod)
	group.GET("/:key", h.getMethod)
	group.PUT("/:key", h.updateMethod)
	group.POST("/:key/clone", h.cloneMethod)
	group.POST("/:key/versions", h.publishVersion)
	group.PUT("/:key/active-version", h.setActiveVersion)
}

// @Summary List valuation methods
// @Tags valuation-methods
// @Param status query string false "active|archived"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuation-methods [get]
func (h *MethodHandler) listMethods(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	items, err := h.Service.List(c.Request.Context(), strQueryPtr(c, "status"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, items, nil)
}

// @Summary Create a custom valuation method
// @Tags valuation-methods
// @Accept json
// @Param body body service.CreateMethodInput true "method with its first version"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuation-methods [post]
func (h *MethodHandler) createMethod(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var body service.CreateMethodInput
	if !bindJSON(c, &body) {
		return
	}
	item, err := h.Service.Create(c.Request.Context(), body)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Get a valuation method with its versions
// @Tags valuation-methods
// @Param key path string true "method key"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuation-methods/{key} [get]
func (h *MethodHandler) getMethod(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	item, err := h.Service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Update a custom valuation method
// @Tags valuation-methods
// @Accept json
// @Param key path string true "method key"
// @Param body body service.MethodInput true "method"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuation-methods/{key} [put]
func (h *MethodHandler) updateMethod(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var body service.MethodInput
	if !bindJSON(c, &body) {
		return
	}
	item, err := h.Service.Update(c.Request.Context(), c.Param("key"), body)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Clone a built-in valuation method
// @Tags valuation-methods
// @Accept json
// @Param key path string true "built-in method key"
// @Param body body service.CloneMethodInput true "new method"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuation-methods/{key}/clone [post]
func (h *MethodHandler) cloneMethod(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var body service.CloneMethodInput
	if !bindJSON(c, &body) {
		return
	}
	item, err := h.Service.Clone(c.Request.Context(), c.Param("key"), body)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Publish a new method version
// @Tags valuation-methods
// @Accept json
// @Param key path string true "method key"
// @Param body body service.VersionInput true "version"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuation-methods/{key}/versions [post]
func (h *MethodHandler) publishVersion(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var body service.VersionInput
	if !bindJSON(c, &body) {
		return
	}
	item, err := h.Service.PublishVersion(c.Request.Context(), c.Param("key"), body)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}

type activeVersionRequest struct {
	VersionID uint64 `json:"version_id"`
}

// @Summary Set the active version of a custom method
// @Tags valuation-methods
// @Accept json
// @Param key path string true "method key"
// @Param body body activeVersionRequest true "version id"
// @Success 200 {object} apiResponse
// @Router /api/v1/valuation-methods/{key}/active-version [put]
func (h *MethodHandler) setActiveVersion(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var body activeVersionRequest
	if !bindJSON(c, &body) {
		return
	}
	if body.VersionID == 0 {
		Error(c, http.StatusBadRequest, "version_id required", nil)
		return
	}
	item, err := h.Service.SetActiveVersion(c.Request.Context(), c.Param("key"), body.VersionID)
	if err != nil {
		serviceError(c, err)
		return
	}
	Ok(c, item, nil)
}
