package services

import (
	"context"
	"time"

	"github.com/kadekedwin/billforge/services/common/middleware"
)

const serviceName = "receipt-service"

type recorder struct {
	metrics middleware.MetricsRecorder
}

func (r recorder) enabled() bool {
	return r.metrics != nil && r.metrics.IsEnabled()
}

func (r recorder) count(ctx context.Context, name string, dims map[string]string) {
	if !r.enabled() {
		return
	}
	_ = r.metrics.RecordCount(ctx, name, withService(dims))
}

func (r recorder) latency(ctx context.Context, name string, d time.Duration, dims map[string]string) {
	if !r.enabled() {
		return
	}
	_ = r.metrics.RecordLatency(ctx, name, d, withService(dims))
}

func withService(dims map[string]string) map[string]string {
	out := map[string]string{"Service": serviceName}
	for k, v := range dims {
		out[k] = v
	}
	return out
}
