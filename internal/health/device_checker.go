package health

import (
	"context"
	"errors"
	"time"

	"github.com/qiwei-code/dmd-server/internal/protocol/dlp"
)

// Prober 设备探测抽象（device.Handle 的只读子集）
type Prober interface {
	Query(ctx context.Context, name string) (*dlp.Response, error)
}

// DeviceChecker 经错误码查询探测控制器连通性。
// 设备报告的命令错误视为降级（链路通但设备状态异常）；
// 传输失败视为不健康。
type DeviceChecker struct {
	dev     Prober
	timeout time.Duration
}

// NewDeviceChecker 创建设备检查器
func NewDeviceChecker(dev Prober, timeout time.Duration) *DeviceChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &DeviceChecker{dev: dev, timeout: timeout}
}

// Name 返回检查器名称
func (c *DeviceChecker) Name() string { return "device" }

// Check 执行健康检查
func (c *DeviceChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.dev.Query(ctx, "error-code")
	latency := time.Since(start)

	if err != nil {
		var devErr *dlp.DeviceError
		if errors.As(err, &devErr) {
			return CheckResult{
				Status:  StatusDegraded,
				Message: err.Error(),
				Details: map[string]interface{}{"diag": devErr.Diag},
				Latency: latency,
			}
		}
		if errors.Is(err, dlp.ErrTransactionInProgress) {
			// 总线正忙说明链路活着
			return CheckResult{Status: StatusHealthy, Message: "bus busy", Latency: latency}
		}
		return CheckResult{Status: StatusUnhealthy, Message: err.Error(), Latency: latency}
	}

	code, _ := resp.Field("code")
	if code != 0 {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "controller reports pending error",
			Details: map[string]interface{}{"code": code},
			Latency: latency,
		}
	}
	return CheckResult{Status: StatusHealthy, Message: "ok", Latency: latency}
}
