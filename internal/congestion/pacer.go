package congestion

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/linearregression/tcp-proxy/internal/protocol"
)

// pacer computes an advisory send delay from a token-bucket rate
// limiter whose rate tracks the controller's cwnd/RTT, rather than
// hand-rolled timestamp math. The bucket holds up to 1 MiB of
// one-byte tokens, so back-to-back calls see no delay until that burst
// is spent. It is advisory only: the host sender may send whenever
// Window() allows regardless of what TimeUntilSend reports, so nothing
// here blocks the caller.
type pacer struct {
	cwnd func() protocol.ByteCount
	rtt  func() time.Duration

	limiter *rate.Limiter
}

func newPacer(cwnd func() protocol.ByteCount, rtt func() time.Duration) *pacer {
	return &pacer{
		cwnd:    cwnd,
		rtt:     rtt,
		limiter: rate.NewLimiter(rate.Inf, 1<<20),
	}
}

// TimeUntilSend reports how long the host should wait before its next
// send. Each call sets the limiter's rate to the controller's current
// cwnd/RTT and reserves a single one-byte token; bytesInFlight is not
// consulted.
func (p *pacer) TimeUntilSend(now time.Time, bytesInFlight protocol.ByteCount) time.Duration {
	rtt := p.rtt()
	cwnd := p.cwnd()
	if rtt <= 0 || cwnd == 0 {
		return 0
	}
	bandwidth := float64(cwnd) / rtt.Seconds() // bytes/sec
	if bandwidth <= 0 {
		return 0
	}
	p.limiter.SetLimit(rate.Limit(bandwidth))
	reservation := p.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return 0
	}
	delay := reservation.DelayFrom(now)
	if delay < 0 {
		return 0
	}
	return delay
}
