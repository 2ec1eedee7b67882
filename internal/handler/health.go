package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler probes the business store and, when separate, the market store.
type HealthHandler struct {
	DB     *gorm.DB
	Market *gorm.DB
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

// @Summary Health check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Readiness check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /readyz [get]
func (h *HealthHandler) ready(c *gin.Context) {
	if status := pingStatus(h.DB); status != "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": status})
		return
	}
	if h.Market != nil && h.Market != h.DB {
		if status := pingStatus(h.Market); status != "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "market_" + status})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func pingStatus(db *gorm.DB) string {
	if db == nil {
		return "db_missing"
	}
	sqlDB, err := db.DB()
	if err != nil {
		return "db_error"
	}
	if err := sqlDB.Ping(); err != nil {
		return "db_unreachable"
	}
	return ""
}
