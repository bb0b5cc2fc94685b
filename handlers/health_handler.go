package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"blog-cms/helper"
)

type HealthHandler struct {
	db     *gorm.DB
	Helper *helper.HTTPHelper
}

func NewHealthHandler(db *gorm.DB, h *helper.HTTPHelper) *HealthHandler {
	return &HealthHandler{db: db, Helper: h}
}

// Health reports whether the database answers a ping within two seconds.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		h.Helper.Log.WarnContext(ctx, "health check failed", "error", err)
		h.Helper.SendError(c, "database unavailable", map[string]interface{}{"database": "down"}, http.StatusServiceUnavailable, "UNAVAILABLE")
		return
	}

	h.Helper.SendSuccess(c, "ok", map[string]interface{}{"database": "up"})
}
