// Package device 提供 DMD 设备句柄：一个 Port、一个序号计数器、一张命令表。
// 句柄是序号计数器与端口的唯一持有者，所有命令经由它串行下发。
package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/qiwei-code/dmd-server/internal/metrics"
	"github.com/qiwei-code/dmd-server/internal/protocol/dlp"
)

// ErrUnknownSetting 名称未注册到命令表
var ErrUnknownSetting = errors.New("unknown setting name")

// Options 句柄配置
type Options struct {
	// CommandInterval 相邻命令的最小间隔。控制器处理一条命令
	// 需要约 100ms 余量，间隔过小会丢应答。0 表示不限速。
	CommandInterval time.Duration
	Logger          *zap.Logger
	Metrics         *metrics.AppMetrics
}

// Handle 打开状态的设备句柄
type Handle struct {
	tx      *dlp.Transactor
	port    dlp.Port
	limiter *rate.Limiter
	log     *zap.Logger
	m       *metrics.AppMetrics
}

// New 基于已打开的端口构建句柄
func New(port dlp.Port, table *dlp.Table, opts Options) *Handle {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var limiter *rate.Limiter
	if opts.CommandInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.CommandInterval), 1)
	}
	return &Handle{
		tx:      dlp.NewTransactor(port, &dlp.Counter{}, table, log),
		port:    port,
		limiter: limiter,
		log:     log,
		m:       opts.Metrics,
	}
}

// Table 返回命令表（API 层用于枚举与名称解析）
func (h *Handle) Table() *dlp.Table { return h.tx.Table() }

// Query 按名称执行读查询
func (h *Handle) Query(ctx context.Context, name string) (*dlp.Response, error) {
	s, ok := h.tx.Table().ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}
	return h.do(ctx, dlp.Request{Cmd: s.ID, Read: true})
}

// Apply 按名称执行写设置
func (h *Handle) Apply(ctx context.Context, name string, params ...int64) (*dlp.Response, error) {
	s, ok := h.tx.Table().ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}
	return h.do(ctx, dlp.Request{Cmd: s.ID, Params: params})
}

// Do 按命令标识直接执行（调试接口）
func (h *Handle) Do(ctx context.Context, req dlp.Request) (*dlp.Response, error) {
	return h.do(ctx, req)
}

func (h *Handle) do(ctx context.Context, req dlp.Request) (*dlp.Response, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	start := time.Now()
	resp, err := h.tx.Do(ctx, req)
	h.observe(req, err, time.Since(start))
	return resp, err
}

func (h *Handle) observe(req dlp.Request, err error, elapsed time.Duration) {
	result := "ok"
	switch {
	case err == nil:
	case errors.As(err, new(*dlp.TransportError)):
		result = "transport"
		if h.m != nil {
			h.m.TransportErrors.Inc()
		}
	case errors.As(err, new(*dlp.DeviceError)):
		result = "device"
	default:
		result = "protocol"
	}
	if h.m != nil {
		h.m.CommandTotal.WithLabelValues(req.Cmd.String(), result).Inc()
	}
	if err != nil {
		h.log.Warn("command failed",
			zap.String("cmd", req.Cmd.String()),
			zap.Bool("read", req.Read),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return
	}
	h.log.Debug("command done",
		zap.String("cmd", req.Cmd.String()),
		zap.Bool("read", req.Read),
		zap.Duration("elapsed", elapsed))
}

// Close 关闭底层端口
func (h *Handle) Close() error { return h.port.Close() }
