package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qiwei-code/dmd-server/internal/metrics"
)

// RegisterCommandRoutes 注册命令面路由
func RegisterCommandRoutes(r *gin.Engine, dev Controller, logger *zap.Logger, m *metrics.AppMetrics) {
	if r == nil || dev == nil {
		return
	}
	h := NewCommandHandler(dev, logger, m)

	apiGroup := r.Group("/api")
	apiGroup.GET("/commands", h.ListCommands)
	apiGroup.GET("/commands/:name", h.QueryCommand)
	apiGroup.POST("/commands/:name", h.ApplyCommand)
	apiGroup.GET("/device/status", h.DeviceStatus)

	if logger != nil {
		logger.Info("command routes registered", zap.Int("endpoints", 4))
	}
}
