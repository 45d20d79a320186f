// Package logging provides stdlib-log-backed diagnostics for both
// congestion controllers and the splice proxy: a per-connection
// *log.Logger with a bracketed connection-id prefix and an enabled
// flag gating every call.
package logging

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/linearregression/tcp-proxy/internal/congestion"
	"github.com/linearregression/tcp-proxy/internal/protocol"
)

// ConnLogger provides debugging output for one congestion-controlled
// connection.
type ConnLogger struct {
	logger     *log.Logger
	enabled    bool
	connection string
}

// NewConnLogger creates a new connection-scoped logger.
func NewConnLogger(connectionID string, enabled bool) *ConnLogger {
	return &ConnLogger{
		logger:     log.New(os.Stderr, fmt.Sprintf("[conn:%s] ", connectionID), log.LstdFlags|log.Lmicroseconds),
		enabled:    enabled,
		connection: connectionID,
	}
}

// LogCongestionWindowChange logs a cwnd change.
func (c *ConnLogger) LogCongestionWindowChange(old, new protocol.ByteCount) {
	if !c.enabled {
		return
	}
	c.logger.Printf("cwnd changed: %d -> %d", old, new)
}

// LogBaseRTTChange logs a base_rtt change (NewVegas only).
func (c *ConnLogger) LogBaseRTTChange(old, new time.Duration) {
	if !c.enabled {
		return
	}
	c.logger.Printf("base_rtt changed: %s -> %s", old, new)
}

// LogWarning logs a controller or proxy warning, e.g. a partial send
// or a failed outbound dial.
func (c *ConnLogger) LogWarning(format string, args ...any) {
	if !c.enabled {
		return
	}
	c.logger.Printf("WARNING: "+format, args...)
}

// NewTracer builds a congestion.ConnectionTracer that logs every event
// through a ConnLogger. Returns nil when disabled: a disabled tracer is
// no tracer at all, and internal/congestion checks every Tracer field
// for nil before firing it.
func NewTracer(connectionID string, enabled bool) *congestion.ConnectionTracer {
	if !enabled {
		return nil
	}
	logger := NewConnLogger(connectionID, true)
	return &congestion.ConnectionTracer{
		UpdatedCongestionWindow: logger.LogCongestionWindowChange,
		UpdatedBaseRTT:          logger.LogBaseRTTChange,
		Warnf:                   logger.LogWarning,
	}
}
