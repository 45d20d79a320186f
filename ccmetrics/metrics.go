// Package ccmetrics provides a Prometheus-backed tracer adapter for
// the congestion controllers: one gauge per traced observable,
// registered through promauto so the demo binary only needs to start
// an HTTP handler to expose them.
package ccmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/linearregression/tcp-proxy/internal/congestion"
	"github.com/linearregression/tcp-proxy/internal/protocol"
)

// FlowMetrics holds the congestion-control gauges for one flow.
type FlowMetrics struct {
	CongestionWindow prometheus.Gauge
	BaseRTT          prometheus.Gauge
	Algorithm        prometheus.Gauge
}

// NewFlowMetrics registers a fresh set of gauges labeled with flowID.
// Each flow gets its own *FlowMetrics rather than a shared vector
// because the controllers this module tracks are one per connection.
func NewFlowMetrics(flowID string, algorithm string) *FlowMetrics {
	constLabels := prometheus.Labels{"flow": flowID}

	m := &FlowMetrics{
		CongestionWindow: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "tcpproxy_congestion_window_bytes",
			Help:        "Current congestion window in bytes",
			ConstLabels: constLabels,
		}),
		BaseRTT: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "tcpproxy_base_rtt_milliseconds",
			Help:        "Current base RTT estimate in milliseconds (NewVegas only)",
			ConstLabels: constLabels,
		}),
		Algorithm: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "tcpproxy_congestion_control_algorithm",
			Help:        "Congestion control algorithm in use (0 = CUBIC, 1 = NewVegas)",
			ConstLabels: constLabels,
		}),
	}

	if algorithm == "NewVegas" {
		m.Algorithm.Set(1)
	} else {
		m.Algorithm.Set(0)
	}

	return m
}

// UpdateCongestionWindow records a cwnd change.
func (m *FlowMetrics) UpdateCongestionWindow(cwndBytes float64) {
	m.CongestionWindow.Set(cwndBytes)
}

// UpdateBaseRTT records a base_rtt change.
func (m *FlowMetrics) UpdateBaseRTT(rtt time.Duration) {
	m.BaseRTT.Set(float64(rtt.Milliseconds()))
}

// NewTracer builds a congestion.ConnectionTracer that pushes every
// traced event into this flow's Prometheus gauges instead of logging
// it.
func (m *FlowMetrics) NewTracer() *congestion.ConnectionTracer {
	return &congestion.ConnectionTracer{
		UpdatedCongestionWindow: func(_, new protocol.ByteCount) {
			m.UpdateCongestionWindow(float64(new))
		},
		UpdatedBaseRTT: func(_, new time.Duration) {
			m.UpdateBaseRTT(new)
		},
	}
}
