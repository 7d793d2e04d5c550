package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qiwei-code/dmd-server/internal/api"
	cfgpkg "github.com/qiwei-code/dmd-server/internal/config"
	"github.com/qiwei-code/dmd-server/internal/device"
	"github.com/qiwei-code/dmd-server/internal/health"
	"github.com/qiwei-code/dmd-server/internal/httpserver"
	"github.com/qiwei-code/dmd-server/internal/metrics"
	"github.com/qiwei-code/dmd-server/internal/protocol/dlp"
	"github.com/qiwei-code/dmd-server/internal/simulator"
	"github.com/qiwei-code/dmd-server/internal/transport"
)

// Run 统一启动流程：指标 → 设备端口 → 设备句柄 → 健康聚合 → HTTP 服务
func Run(cfg *cfgpkg.Config, log *zap.Logger) error {
	log.Info("starting dmd server",
		zap.String("env", cfg.App.Env),
		zap.Bool("simulate", cfg.Device.Simulate))

	// ========== 阶段1: 指标 ==========
	reg := metrics.NewRegistry()
	appm := metrics.NewAppMetrics(reg)
	metricsHandler := metrics.Handler(reg)

	// ========== 阶段2: 打开设备端口（失败直接返回）==========
	table := dlp.DefaultTable()
	port, simCancel, err := openPort(cfg.Device, table, log)
	if err != nil {
		log.Error("open device port failed", zap.Error(err), zap.String("path", cfg.Device.Path))
		return err
	}
	if simCancel != nil {
		defer simCancel()
	}
	appm.DeviceUp.Set(1)
	log.Info("device port ready")

	// ========== 阶段3: 设备句柄 ==========
	dev := device.New(port, table, device.Options{
		CommandInterval: cfg.Device.CommandInterval,
		Logger:          log,
		Metrics:         appm,
	})
	defer func() {
		_ = dev.Close()
		appm.DeviceUp.Set(0)
	}()

	// ========== 阶段4: 健康聚合 ==========
	healthAgg := health.NewAggregator(
		health.NewDeviceChecker(dev, cfg.Device.ReadTimeout),
	)

	// ========== 阶段5: HTTP 服务 ==========
	var metricsPath string
	if cfg.Metrics.Enable {
		metricsPath = cfg.Metrics.Path
	} else {
		metricsHandler = nil
	}
	readyFn := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return healthAgg.Ready(ctx)
	}
	httpSrv := httpserver.New(cfg.HTTP, metricsPath, metricsHandler, readyFn)
	httpSrv.Register(func(r *gin.Engine) {
		api.RegisterCommandRoutes(r, dev, log, appm)
		health.RegisterHTTPRoutes(r, healthAgg)
	})

	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()
	log.Info("http server started", zap.String("addr", cfg.HTTP.Addr))

	// ========== 阶段6: 等待关闭信号 ==========
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("received shutdown signal, gracefully shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)

	log.Info("shutdown complete")
	return nil
}

// openPort 按配置打开真实 hidraw 端口，或启动内置模拟器并返回其回环对端。
// 第二个返回值非 nil 时为模拟器的停止函数。
func openPort(cfg cfgpkg.DeviceConfig, table *dlp.Table, log *zap.Logger) (dlp.Port, func(), error) {
	if !cfg.Simulate {
		p, err := transport.OpenHidraw(cfg.Path,
			transport.WithReadTimeout(cfg.ReadTimeout),
			transport.WithWriteTimeout(cfg.WriteTimeout))
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	}

	hostPort, devPort := transport.LoopbackPair(16)
	sim := simulator.New(devPort, table, log.Named("simulator"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := sim.Run(ctx); err != nil {
			log.Error("simulator stopped", zap.Error(err))
		}
	}()
	stop := func() {
		cancel()
		<-done
	}
	log.Info("simulator port ready")
	return hostPort, stop, nil
}
