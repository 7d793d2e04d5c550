package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	name   string
	status Status
}

func (s stubChecker) Name() string { return s.name }
func (s stubChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: s.status, Latency: time.Millisecond}
}

func TestAggregatorOverallStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy}, StatusUnhealthy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAggregator()
			for i, s := range tc.statuses {
				a.AddChecker(stubChecker{name: string(rune('a' + i)), status: s})
			}
			assert.Equal(t, tc.want, a.OverallStatus(context.Background()))
		})
	}
}

func TestAggregatorReadyTreatsDegradedAsReady(t *testing.T) {
	a := NewAggregator(stubChecker{name: "device", status: StatusDegraded})
	assert.True(t, a.Ready(context.Background()))

	a.AddChecker(stubChecker{name: "bus", status: StatusUnhealthy})
	assert.False(t, a.Ready(context.Background()))
}

func TestAggregatorBuildReport(t *testing.T) {
	a := NewAggregator(
		stubChecker{name: "device", status: StatusHealthy},
		stubChecker{name: "link", status: StatusDegraded},
	)
	report := a.BuildReport(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Len(t, report.Checks, 2)
	assert.Equal(t, StatusHealthy, report.Checks["device"].Status)
	assert.False(t, report.Timestamp.IsZero())
}
