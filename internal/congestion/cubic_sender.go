package congestion

import (
	"math"
	"time"

	"github.com/linearregression/tcp-proxy/internal/clock"
	"github.com/linearregression/tcp-proxy/internal/protocol"
)

const (
	defaultCubicBeta = 0.2
	defaultCubicC    = 0.4
	minCubicBeta     = 0.0
	maxCubicBeta     = 1.0
)

// CubicParams are the CUBIC-specific tunables.
type CubicParams struct {
	TCPFriendliness bool
	FastConvergence bool
	Beta            float64 // (0,1], default 0.2
	C               float64 // >0, default 0.4
}

// DefaultCubicParams returns CUBIC's default tunables.
func DefaultCubicParams() CubicParams {
	return CubicParams{
		TCPFriendliness: true,
		FastConvergence: true,
		Beta:            defaultCubicBeta,
		C:               defaultCubicC,
	}
}

// CubicSender implements Algorithm with the CUBIC congestion-control
// growth law: a cubic function of time since the last congestion event,
// with an optional TCP-friendly floor so it never falls behind Reno.
type CubicSender struct {
	Common

	clock clock.Clock
	p     CubicParams

	wLastMax    float64 // MSS units
	wLastTime   time.Time
	epochStart  time.Time // zero == no current epoch
	originPoint float64   // MSS units
	k           float64   // seconds
	dMin        time.Duration
	wTCP        float64 // MSS units
	ackCnt      uint64
	cwndCnt     uint64

	lastRTT time.Duration

	pacer *pacer
}

var _ Algorithm = (*CubicSender)(nil)

// NewCubicSender constructs a CUBIC controller. mss and initialCwnd
// (MSS units) become immutable once OnOpen is called.
func NewCubicSender(clk clock.Clock, mss, initialCwnd protocol.ByteCount, retxThresh int, p CubicParams, tracer *ConnectionTracer) *CubicSender {
	if p.Beta <= minCubicBeta || p.Beta > maxCubicBeta {
		p.Beta = defaultCubicBeta
	}
	if p.C <= 0 {
		p.C = defaultCubicC
	}
	c := &CubicSender{
		Common: NewCommon(mss, initialCwnd, retxThresh, tracer),
		clock:  clk,
		p:      p,
	}
	c.Common.ssthresh = protocol.MaxByteCount
	c.pacer = newPacer(func() protocol.ByteCount { return c.CWND() }, func() time.Duration { return c.lastRTT })
	return c
}

// Params returns the tunables this controller was constructed with.
func (c *CubicSender) Params() CubicParams {
	return c.p
}

// OnOpen initializes cwnd = initial_cwnd * mss.
func (c *CubicSender) OnOpen() {
	c.initializeCwnd()
	c.cubicReset()
}

// OnNewAck updates CUBIC state for a new cumulative ACK, then defers to
// the base sender for send-buffer advance and rearm.
func (c *CubicSender) OnNewAck(seq protocol.SequenceNumber, lastRTT time.Duration, sender Sender) {
	c.lastRTT = lastRTT
	c.Common.rtt.UpdateRTT(lastRTT, 0)
	now := c.clock.Now()

	exitedFastRecovery := false
	if c.inFastRec {
		// Exiting fast recovery: first new ACK after FR.
		c.epochStart = time.Time{}
		w := float64(c.cwnd) / float64(c.mss)
		if now.After(c.wLastTime.Add(time.Duration(0.1 * c.k * float64(time.Second)))) {
			if w < c.wLastMax && c.p.FastConvergence {
				c.wLastMax = w * (2.0 - c.p.Beta) / 2.0
			} else {
				c.wLastMax = w
			}
		}
		c.wLastTime = now
		c.setCwnd(protocol.ByteCount(float64(c.cwnd) * (1.0 - c.p.Beta)))
		c.Common.ssthresh = c.cwnd
		c.inFastRec = false
		exitedFastRecovery = true
	}

	// dMin tracks the minimum RTT observed since OnOpen or the last RTO
	// (both call cubicReset), distinct from Common.rtt's lifetime
	// minimum. Starting a new epoch does not reset it.
	if c.dMin == 0 {
		c.dMin = lastRTT
	} else if lastRTT < c.dMin {
		c.dMin = lastRTT
	}
	c.Common.stats.BytesAcked += uint64(c.mss)

	if exitedFastRecovery {
		// The ACK that ends fast recovery leaves cwnd at the reduced
		// window it just set as ssthresh; growth resumes on the next ACK.
	} else if c.cwnd <= c.ssthresh {
		// Slow start.
		c.setCwnd(c.cwnd + c.mss)
	} else {
		// Congestion avoidance.
		cnt := c.cubicUpdate(now)
		if cnt < float64(c.cwndCnt) {
			c.setCwnd(c.cwnd + c.mss)
			c.cwndCnt = 0
		} else {
			c.cwndCnt++
		}
	}

	sender.SendPendingData()
}

// cubicUpdate computes the ACK-count threshold driving the cubic
// growth curve.
func (c *CubicSender) cubicUpdate(now time.Time) float64 {
	w := float64(c.cwnd) / float64(c.mss)
	c.ackCnt++

	if c.epochStart.IsZero() {
		c.epochStart = now
		if w < c.wLastMax {
			c.k = math.Cbrt((c.wLastMax - w) / c.p.C)
			c.originPoint = c.wLastMax
		} else {
			c.k = 0
			c.originPoint = w
		}
		c.ackCnt = 1
		c.wTCP = w
	}

	t := now.Add(c.dMin).Sub(c.epochStart).Seconds()
	target := c.originPoint + c.p.C*math.Pow(t-c.k, 3.0)

	var cnt float64
	if target > w {
		cnt = w / (target - w)
	} else {
		cnt = 100 * w
	}

	if c.p.TCPFriendliness {
		return c.cubicTCPFriendliness(cnt, w)
	}
	return cnt
}

// cubicTCPFriendliness clamps cnt to the Reno-equivalent rate so CUBIC
// never grows slower than Reno would.
func (c *CubicSender) cubicTCPFriendliness(cnt, w float64) float64 {
	c.wTCP += (3 * c.p.Beta / (2 - c.p.Beta)) * float64(c.ackCnt) / w
	c.ackCnt = 0
	if c.wTCP > w {
		maxCnt := w / (c.wTCP - w)
		if cnt > maxCnt {
			cnt = maxCnt
		}
	}
	return cnt
}

// OnDupAck handles a duplicate ACK, entering fast recovery on the
// retransmit threshold or inflating the window while already in it.
func (c *CubicSender) OnDupAck(_ protocol.SequenceNumber, count int, sender Sender) {
	if count == c.retxThresh && !c.inFastRec {
		if c.cwnd <= c.ssthresh {
			c.Common.stats.SlowstartPacketsLost++
		}
		c.Common.stats.FastRetransmitCount++
		c.Common.stats.CongestionEventCount++
		c.Common.setSSThresh(maxByteCount(2*c.mss, sender.BytesInFlight()/2))
		c.setCwnd(c.ssthresh + 3*c.mss)
		c.inFastRec = true
		sender.Retransmit()
	} else if c.inFastRec {
		c.setCwnd(c.cwnd + c.mss)
		sender.SendPendingData()
	}
}

// OnRTO collapses the window on a retransmission timeout.
func (c *CubicSender) OnRTO(sender Sender) {
	c.inFastRec = false
	if sender.State() == StateClosed || sender.State() == StateTimeWait {
		return
	}
	if !sender.HasDataToSend() {
		return
	}
	c.Common.stats.RTOCount++
	c.Common.stats.CongestionEventCount++
	c.cubicReset()
	c.Common.setSSThresh(maxByteCount(2*c.mss, sender.BytesInFlight()/2))
	c.setCwnd(c.mss)
	sender.Retransmit()
}

func (c *CubicSender) cubicReset() {
	c.wLastMax = 0
	c.epochStart = time.Time{}
	c.originPoint = 0
	c.dMin = 0
	c.wTCP = 0
	c.k = 0
	c.ackCnt = 0
	c.wLastTime = time.Time{}
}

// TimeUntilSend returns the pacer's advisory delay before the next
// send.
func (c *CubicSender) TimeUntilSend(now time.Time, bytesInFlight protocol.ByteCount) time.Duration {
	return c.pacer.TimeUntilSend(now, bytesInFlight)
}

func maxByteCount(a, b protocol.ByteCount) protocol.ByteCount {
	if a > b {
		return a
	}
	return b
}
