package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	CommandTotal    *prometheus.CounterVec // labels: cmd, result=ok|device|transport|protocol
	TransportErrors prometheus.Counter     // 传输层失败次数
	DeviceUp        prometheus.Gauge       // 设备端口是否打开
	APIRequests     *prometheus.CounterVec // labels: route, code
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		CommandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dmd_command_total",
			Help: "Commands issued to the controller by command id and result.",
		}, []string{"cmd", "result"}),
		TransportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dmd_transport_errors_total",
			Help: "Transport failures surfaced by the protocol core.",
		}),
		DeviceUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dmd_device_up",
			Help: "Whether the controller port is open.",
		}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dmd_api_requests_total",
			Help: "HTTP API requests by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(m.CommandTotal, m.TransportErrors, m.DeviceUp, m.APIRequests)
	return m
}
