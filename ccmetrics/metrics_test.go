package ccmetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/linearregression/tcp-proxy/internal/protocol"
)

func TestNewFlowMetricsSetsAlgorithmGauge(t *testing.T) {
	cubic := NewFlowMetrics("flow-cubic-1", "CUBIC")
	require.NotNil(t, cubic)
	require.Equal(t, float64(0), testutil.ToFloat64(cubic.Algorithm))

	vegas := NewFlowMetrics("flow-vegas-1", "NewVegas")
	require.Equal(t, float64(1), testutil.ToFloat64(vegas.Algorithm))
}

func TestUpdateCongestionWindowAndBaseRTT(t *testing.T) {
	m := NewFlowMetrics("flow-2", "CUBIC")

	m.UpdateCongestionWindow(11264)
	require.Equal(t, float64(11264), testutil.ToFloat64(m.CongestionWindow))

	m.UpdateBaseRTT(40 * time.Millisecond)
	require.Equal(t, float64(40), testutil.ToFloat64(m.BaseRTT))
}

func TestTracerWiresCallbacksIntoGauges(t *testing.T) {
	m := NewFlowMetrics("flow-3", "CUBIC")
	tracer := m.NewTracer()
	require.NotNil(t, tracer)

	tracer.UpdatedCongestionWindow(protocol.ByteCount(536), protocol.ByteCount(1072))
	require.Equal(t, float64(1072), testutil.ToFloat64(m.CongestionWindow))

	tracer.UpdatedBaseRTT(40*time.Millisecond, 50*time.Millisecond)
	require.Equal(t, float64(50), testutil.ToFloat64(m.BaseRTT))
}
