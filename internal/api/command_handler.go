package api

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qiwei-code/dmd-server/internal/device"
	"github.com/qiwei-code/dmd-server/internal/metrics"
	"github.com/qiwei-code/dmd-server/internal/protocol/dlp"
)

// Controller 命令执行抽象（由 device.Handle 实现）
type Controller interface {
	Query(ctx context.Context, name string) (*dlp.Response, error)
	Apply(ctx context.Context, name string, params ...int64) (*dlp.Response, error)
	Table() *dlp.Table
}

// CommandHandler 命令面 HTTP 处理器
type CommandHandler struct {
	dev     Controller
	logger  *zap.Logger
	metrics *metrics.AppMetrics
}

// NewCommandHandler 创建命令处理器
func NewCommandHandler(dev Controller, logger *zap.Logger, m *metrics.AppMetrics) *CommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandHandler{dev: dev, logger: logger, metrics: m}
}

// CommandInfo 命令表条目的对外描述
type CommandInfo struct {
	Name     string      `json:"name"`
	Code     string      `json:"code"`
	Readable bool        `json:"readable"`
	Writable bool        `json:"writable"`
	Params   []ParamInfo `json:"params,omitempty"`
}

// ParamInfo 参数布局描述
type ParamInfo struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
	Kind  string `json:"kind"`
}

// ListCommands GET /api/commands
func (h *CommandHandler) ListCommands(c *gin.Context) {
	tbl := h.dev.Table()
	out := make([]CommandInfo, 0, len(tbl.Names()))
	for _, name := range tbl.Names() {
		s, _ := tbl.ByName(name)
		info := CommandInfo{
			Name:     name,
			Code:     s.ID.String(),
			Readable: s.Readable(),
			Writable: s.Writable(),
		}
		for _, p := range s.Params {
			info.Params = append(info.Params, ParamInfo{Name: p.Name, Width: p.Width, Kind: kindName(p.Kind)})
		}
		out = append(out, info)
	}
	h.count(c, "/api/commands", http.StatusOK)
	c.JSON(http.StatusOK, gin.H{"commands": out})
}

// QueryCommand GET /api/commands/:name
func (h *CommandHandler) QueryCommand(c *gin.Context) {
	name := c.Param("name")
	reqID := requestID(c)

	resp, err := h.dev.Query(c.Request.Context(), name)
	if err != nil {
		h.fail(c, "/api/commands/:name", name, reqID, err)
		return
	}
	h.count(c, "/api/commands/:name", http.StatusOK)
	c.JSON(http.StatusOK, gin.H{
		"request_id": reqID,
		"command":    name,
		"fields":     fieldsJSON(resp),
	})
}

// applyRequest POST 请求体
type applyRequest struct {
	Params []int64 `json:"params"`
}

// ApplyCommand POST /api/commands/:name
func (h *CommandHandler) ApplyCommand(c *gin.Context) {
	name := c.Param("name")
	reqID := requestID(c)

	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.count(c, "/api/commands/:name", http.StatusBadRequest)
		c.JSON(http.StatusBadRequest, gin.H{"request_id": reqID, "error": "invalid body: " + err.Error()})
		return
	}

	resp, err := h.dev.Apply(c.Request.Context(), name, req.Params...)
	if err != nil {
		h.fail(c, "/api/commands/:name", name, reqID, err)
		return
	}
	h.count(c, "/api/commands/:name", http.StatusOK)
	c.JSON(http.StatusOK, gin.H{
		"request_id": reqID,
		"command":    name,
		"ack":        resp.Ack,
	})
}

// DeviceStatus GET /api/device/status
// 汇总主状态位图并展开为可读字段
func (h *CommandHandler) DeviceStatus(c *gin.Context) {
	reqID := requestID(c)
	resp, err := h.dev.Query(c.Request.Context(), "main-status")
	if err != nil {
		h.fail(c, "/api/device/status", "main-status", reqID, err)
		return
	}
	status, _ := resp.Field("status")
	h.count(c, "/api/device/status", http.StatusOK)
	c.JSON(http.StatusOK, gin.H{
		"request_id": reqID,
		"raw":        status,
		"status": gin.H{
			"mirrors_parked":    status&0x01 != 0,
			"sequencer_running": status&0x02 != 0,
			"video_frozen":      status&0x04 != 0,
			"source_locked":     status&0x08 != 0,
			"port1_syncs_valid": status&0x10 != 0,
			"port2_syncs_valid": status&0x20 != 0,
		},
	})
}

func (h *CommandHandler) fail(c *gin.Context, route, name, reqID string, err error) {
	code := http.StatusInternalServerError
	var devErr *dlp.DeviceError
	var transErr *dlp.TransportError
	switch {
	case errors.Is(err, device.ErrUnknownSetting), errors.Is(err, dlp.ErrUnknownCommand):
		code = http.StatusNotFound
	case errors.Is(err, dlp.ErrParameterCountMismatch), errors.Is(err, dlp.ErrParameterRange):
		code = http.StatusBadRequest
	case errors.Is(err, dlp.ErrTransactionInProgress):
		code = http.StatusConflict
	case errors.As(err, &devErr), errors.As(err, &transErr):
		code = http.StatusBadGateway
	}
	h.logger.Warn("api command failed",
		zap.String("request_id", reqID),
		zap.String("command", name),
		zap.Int("code", code),
		zap.Error(err))
	h.count(c, route, code)
	c.JSON(code, gin.H{"request_id": reqID, "command": name, "error": err.Error()})
}

func (h *CommandHandler) count(c *gin.Context, route string, code int) {
	if h.metrics != nil {
		h.metrics.APIRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	}
}

func requestID(c *gin.Context) string {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Header("X-Request-ID", id)
	return id
}

func fieldsJSON(resp *dlp.Response) gin.H {
	out := gin.H{}
	for _, f := range resp.Fields {
		if f.Raw != nil {
			out[f.Name] = hex.EncodeToString(f.Raw)
			continue
		}
		out[f.Name] = f.Value
	}
	return out
}

func kindName(k dlp.ParamKind) string {
	switch k {
	case dlp.ParamUint:
		return "uint"
	case dlp.ParamFixed:
		return "fixed"
	case dlp.ParamBits:
		return "bits"
	case dlp.ParamRaw:
		return "raw"
	}
	return "unknown"
}
