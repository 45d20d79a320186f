package congestion

import (
	"time"

	"github.com/linearregression/tcp-proxy/internal/protocol"
)

// ConnectionTracer is a struct of function fields invoked synchronously
// on controller state changes: a plain struct of closures rather than
// an interface, so a caller can wire up only the events it cares about
// and leave the rest nil.
type ConnectionTracer struct {
	// UpdatedCongestionWindow fires whenever cwnd changes.
	UpdatedCongestionWindow func(old, new protocol.ByteCount)
	// UpdatedBaseRTT fires whenever NewVegas's base_rtt changes.
	UpdatedBaseRTT func(old, new time.Duration)
	// Warnf receives recoverable-error warnings. No controller in this
	// package calls it; the splice proxy reports its partial sends and
	// connect failures through its own proxy.Tracer. Fatal
	// configuration errors panic instead.
	Warnf func(format string, args ...any)
}

func (t *ConnectionTracer) warnf(format string, args ...any) {
	if t != nil && t.Warnf != nil {
		t.Warnf(format, args...)
	}
}
