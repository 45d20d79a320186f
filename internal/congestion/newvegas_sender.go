package congestion

import (
	"time"

	"github.com/linearregression/tcp-proxy/internal/clock"
	"github.com/linearregression/tcp-proxy/internal/protocol"
)

const (
	vegasAlpha = 2 // packets
	vegasBeta  = 4 // packets
	vegasGamma = 1 // packets
)

// VegasSender implements Algorithm with the NewVegas rate-based
// congestion-control law: it compares the expected and actual sending
// rate (derived from the minimum and most recent RTT samples) and
// grows or shrinks cwnd by a fixed number of segments depending on how
// far apart they are, rather than reacting only to loss.
type VegasSender struct {
	Common

	clock clock.Clock
	ledger *SampleLedger

	baseRTT time.Duration
	diff    float64

	slowStart     bool
	slowStartFlip bool // alternates between doubling and holding cwnd during slow start

	checkRetransmit int // 0..2

	pacer *pacer
}

var _ Algorithm = (*VegasSender)(nil)

// NewVegasSender constructs a NewVegas controller.
func NewVegasSender(clk clock.Clock, mss, initialCwnd protocol.ByteCount, retxThresh int, tracer *ConnectionTracer) *VegasSender {
	v := &VegasSender{
		Common:        NewCommon(mss, initialCwnd, retxThresh, tracer),
		clock:         clk,
		ledger:        NewSampleLedger(),
		slowStart:     true,
		slowStartFlip: true,
	}
	v.Common.ssthresh = protocol.MaxByteCount
	v.pacer = newPacer(func() protocol.ByteCount { return v.CWND() }, v.currentRTT)
	return v
}

func (v *VegasSender) currentRTT() time.Duration {
	if v.baseRTT > 0 {
		return v.baseRTT
	}
	return 0
}

// OnOpen initializes cwnd = initial_cwnd * mss.
func (v *VegasSender) OnOpen() {
	v.initializeCwnd()
}

// OnPacketSent records a send in the ledger: discard any stale entry
// for the same upper-bound sequence, append a fresh entry, then add
// the segment's byte count to every entry now in the ledger.
func (v *VegasSender) OnPacketSent(seq protocol.SequenceNumber, size protocol.ByteCount) {
	v.ledger.Discard(seq)
	v.ledger.Add(seq, v.clock.Now())
	v.ledger.AddBytes(size)
}

// estimateDiff recomputes baseRTT (the RTT of the most recent
// lone-segment ACK, even if larger than the previous baseRTT, or any
// smaller sample since) and diff (the gap, in
// segments, between the expected and actual sending rate over the
// current RTT sample).
func (v *VegasSender) estimateDiff(seq protocol.SequenceNumber, now time.Time) {
	entry := v.ledger.GetFirstNode(seq)
	lastRTT := now.Sub(entry.SentTime)
	v.Common.rtt.UpdateRTT(lastRTT, 0)

	old := v.baseRTT
	if entry.Bytes <= v.mss {
		v.baseRTT = lastRTT
	} else if lastRTT < v.baseRTT {
		v.baseRTT = lastRTT
	}
	if v.baseRTT != old && v.Tracer != nil && v.Tracer.UpdatedBaseRTT != nil {
		v.Tracer.UpdatedBaseRTT(old, v.baseRTT)
	}

	if v.baseRTT <= 0 || lastRTT <= 0 {
		v.diff = 0
		return
	}
	expected := float64(v.cwnd) / float64(v.baseRTT)
	actual := float64(v.cwnd) / float64(lastRTT)
	diff := (expected - actual) * float64(v.baseRTT)
	diff /= float64(v.mss)
	v.diff = diff
}

func (v *VegasSender) slowStartGrow() {
	if v.slowStartFlip {
		v.setCwnd(v.cwnd * 2)
	}
	v.slowStartFlip = !v.slowStartFlip
}

func (v *VegasSender) congestionAvoidance() {
	if v.diff < vegasAlpha {
		v.setCwnd(v.cwnd + v.mss)
	} else if v.diff > vegasBeta && v.cwnd > 2*v.mss {
		v.setCwnd(v.cwnd - v.mss)
	}
}

// OnNewAck updates the rate-estimate diff for a new cumulative ACK,
// grows or shrinks cwnd accordingly, then, for the next two ACKs after
// a dup-ACK entered fast recovery (checkRetransmit > 0), checks the
// latest ledger entry for seq against the RTO as a fine-grained
// retransmit trigger.
func (v *VegasSender) OnNewAck(seq protocol.SequenceNumber, lastRTT time.Duration, sender Sender) {
	now := v.clock.Now()

	v.estimateDiff(seq, now)
	v.Common.stats.BytesAcked += uint64(v.mss)

	if v.diff > vegasGamma {
		v.slowStart = false
	}

	if v.slowStart {
		v.slowStartGrow()
	} else {
		v.congestionAvoidance()
	}

	sender.SendPendingData()

	if v.inFastRec {
		v.setCwnd(v.cwnd * 3 / 4)
		v.inFastRec = false
	}

	if v.checkRetransmit > 0 {
		entry := v.ledger.GetLastNode(seq)
		if now.Sub(entry.SentTime) > sender.RTO() {
			sender.RestartFromHead()
			sender.Retransmit()
			v.checkRetransmit = 2
		} else {
			v.checkRetransmit--
		}
	}

	v.ledger.DiscardUpTo(seq)
}

// OnDupAck handles a duplicate ACK carrying ack number seq: fast
// recovery is entered not by counting consecutive duplicates, like
// CUBIC, but by checking whether the segment the duplicate refers to
// has already been outstanding longer than the RTO.
func (v *VegasSender) OnDupAck(seq protocol.SequenceNumber, _ int, sender Sender) {
	if !v.inFastRec {
		entry := v.ledger.GetFirstNode(seq)
		rtt := v.clock.Now().Sub(entry.SentTime)
		if rtt > sender.RTO() {
			if v.slowStart {
				v.Common.stats.SlowstartPacketsLost++
			}
			v.Common.stats.FastRetransmitCount++
			v.Common.stats.CongestionEventCount++
			v.Common.setSSThresh(maxByteCount(2*v.mss, sender.BytesInFlight()/2))
			v.setCwnd(v.ssthresh + 3*v.mss)
			v.inFastRec = true
			v.checkRetransmit = 2
			sender.Retransmit()
		}
		return
	}
	v.setCwnd(v.cwnd + v.mss)
	sender.SendPendingData()
}

// OnRTO collapses the window to 2*MSS and restarts slow start.
func (v *VegasSender) OnRTO(sender Sender) {
	v.inFastRec = false
	if sender.State() == StateClosed || sender.State() == StateTimeWait {
		return
	}
	if !sender.HasDataToSend() {
		return
	}
	v.Common.stats.RTOCount++
	v.Common.stats.CongestionEventCount++
	v.setCwnd(2 * v.mss)
	v.slowStart = true
	v.Common.setSSThresh(maxByteCount(2*v.mss, sender.BytesInFlight()/2))
	sender.RestartFromHead()
	sender.Retransmit()
}

// TimeUntilSend returns the pacer's advisory delay before the next
// send.
func (v *VegasSender) TimeUntilSend(now time.Time, bytesInFlight protocol.ByteCount) time.Duration {
	return v.pacer.TimeUntilSend(now, bytesInFlight)
}

// BaseRTT returns the current base RTT estimate (see estimateDiff),
// updated on every ACK and reported to the tracer whenever it changes.
func (v *VegasSender) BaseRTT() time.Duration { return v.baseRTT }
