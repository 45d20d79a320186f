// Package congestion implements the two pluggable TCP congestion
// controllers (CUBIC and NewVegas) behind one capability interface, so
// a host TCP sender can swap between them without reaching into either
// controller's private state.
package congestion

import (
	"fmt"
	"time"

	"github.com/linearregression/tcp-proxy/internal/protocol"
	"github.com/linearregression/tcp-proxy/internal/utils"
)

// Sender is the host TCP sender a controller is attached to. A
// controller never mutates the sender's own buffers; it only reads
// BytesInFlight/HeadSequence and asks the sender to retransmit or send
// more data.
type Sender interface {
	// BytesInFlight returns bytes sent but not yet cumulatively ACKed.
	BytesInFlight() protocol.ByteCount
	// HeadSequence returns the lowest unacknowledged sequence number.
	HeadSequence() protocol.SequenceNumber
	// Retransmit resends the segment at HeadSequence.
	Retransmit()
	// SendPendingData asks the sender to push more data if the window
	// now allows it.
	SendPendingData()
	// State reports whether the connection is in a terminal state
	// (CLOSED or TIME_WAIT), in which RTO firing is a benign no-op.
	State() ConnState
	// RTO returns the current retransmission timeout.
	RTO() time.Duration
	// RestartFromHead rearms the next-transmit pointer at the lowest
	// unacknowledged sequence number.
	RestartFromHead()
	// HasDataToSend reports whether anything remains queued to send;
	// an RTO firing with nothing left to send is a benign no-op.
	HasDataToSend() bool
}

// ConnState is the small slice of TCP connection state the controllers
// need to know about: an RTO firing while the connection is already in
// a terminal state is a benign no-op rather than an error.
type ConnState int

const (
	StateOther ConnState = iota
	StateClosed
	StateTimeWait
)

// Algorithm is the capability contract every congestion controller
// implements: four event callbacks plus window/state accessors.
type Algorithm interface {
	// OnOpen initializes cwnd from initial_cwnd * mss on connection
	// open/listen.
	OnOpen()
	// OnNewAck handles a new cumulative ACK for sequence number seq,
	// observed at lastRTT since it was sent.
	OnNewAck(seq protocol.SequenceNumber, lastRTT time.Duration, sender Sender)
	// OnDupAck handles the count-th consecutive duplicate ACK,
	// carrying the ACK number the duplicate carries (Vegas needs it to
	// look up the segment's original send time; CUBIC ignores it).
	OnDupAck(seq protocol.SequenceNumber, count int, sender Sender)
	// OnRTO handles a retransmission timeout.
	OnRTO(sender Sender)
	// Window returns min(rwnd, cwnd), the upper bound on in-flight
	// bytes.
	Window(rwnd protocol.ByteCount) protocol.ByteCount
	// CWND returns the current congestion window.
	CWND() protocol.ByteCount
	// SSThresh returns the current slow-start threshold.
	SSThresh() protocol.ByteCount
	// InFastRecovery reports whether the controller is in fast
	// recovery.
	InFastRecovery() bool
	// TimeUntilSend returns how long the host should wait before its
	// next send, for pacing. Advisory only: the host may ignore it.
	TimeUntilSend(now time.Time, bytesInFlight protocol.ByteCount) time.Duration
}

// Common holds the controller state shared by every Algorithm
// implementation.
type Common struct {
	cwnd        protocol.ByteCount
	ssthresh    protocol.ByteCount
	initialCwnd protocol.ByteCount // MSS units
	mss         protocol.ByteCount
	inFastRec   bool
	retxThresh  int
	opened      bool // true once the connection has left CLOSED

	rtt   utils.RTTStats
	stats utils.ConnectionStats

	Tracer *ConnectionTracer
}

// NewCommon builds the shared controller state. mss and initialCwnd
// (in MSS units) become immutable once OnOpen is called.
func NewCommon(mss, initialCwnd protocol.ByteCount, retxThresh int, tracer *ConnectionTracer) Common {
	if retxThresh <= 0 {
		retxThresh = protocol.DefaultRetxThreshold
	}
	return Common{
		mss:         mss,
		initialCwnd: initialCwnd,
		ssthresh:    protocol.MaxByteCount,
		retxThresh:  retxThresh,
		Tracer:      tracer,
	}
}

// RTTStats returns the shared RTT tracker every new ACK feeds,
// independent of whatever per-epoch RTT bookkeeping the concrete
// algorithm keeps on top of it.
func (c *Common) RTTStats() *utils.RTTStats { return &c.rtt }

// ConnectionStats returns the shared loss/retransmit counters a tracer
// or test can inspect after a run.
func (c *Common) ConnectionStats() *utils.ConnectionStats { return &c.stats }

func (c *Common) setCwnd(v protocol.ByteCount) {
	if v < c.mss {
		v = c.mss
	}
	if v == c.cwnd {
		return
	}
	old := c.cwnd
	c.cwnd = v
	if c.Tracer != nil && c.Tracer.UpdatedCongestionWindow != nil {
		c.Tracer.UpdatedCongestionWindow(old, v)
	}
}

func (c *Common) setSSThresh(v protocol.ByteCount) {
	min := 2 * c.mss
	if v < min {
		v = min
	}
	c.ssthresh = v
}

// CWND returns the current congestion window.
func (c *Common) CWND() protocol.ByteCount { return c.cwnd }

// SSThresh returns the current slow-start threshold.
func (c *Common) SSThresh() protocol.ByteCount { return c.ssthresh }

// InFastRecovery reports whether the controller is in fast recovery.
func (c *Common) InFastRecovery() bool { return c.inFastRec }

// Window returns min(rwnd, cwnd).
func (c *Common) Window(rwnd protocol.ByteCount) protocol.ByteCount {
	if rwnd < c.cwnd {
		return rwnd
	}
	return c.cwnd
}

// initializeCwnd sets cwnd = initial_cwnd * mss, marking the
// connection as opened so MSS/InitialCwnd become immutable.
func (c *Common) initializeCwnd() {
	c.opened = true
	c.setCwnd(c.initialCwnd * c.mss)
}

// SetMSS mutates the segment size. Panics if the connection has
// already left CLOSED: changing the segment size mid-connection is a
// caller bug, not a recoverable error.
func (c *Common) SetMSS(mss protocol.ByteCount) {
	if c.opened {
		panic(fmtCongestionBug("mss", c.mss, mss))
	}
	c.mss = mss
}

// SetInitialCwnd mutates the initial window (MSS units). Panics if the
// connection has already left CLOSED.
func (c *Common) SetInitialCwnd(segments protocol.ByteCount) {
	if c.opened {
		panic(fmtCongestionBug("initial_cwnd", c.initialCwnd, segments))
	}
	c.initialCwnd = segments
}

func fmtCongestionBug(field string, old, new protocol.ByteCount) string {
	return fmt.Sprintf("congestion BUG: %s changed from %d to %d after CLOSED", field, old, new)
}
