package congestion

import (
	"time"

	"github.com/linearregression/tcp-proxy/internal/protocol"
)

// fakeClock is a controllable clock.Clock that tests advance by hand
// instead of depending on wall-clock timing.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(1000, 0)} }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeSender is a minimal Sender double recording what the controller
// asked of it.
type fakeSender struct {
	inFlight       protocol.ByteCount
	head           protocol.SequenceNumber
	retransmits    int
	sendsRequested int
	restarts       int
	state          ConnState
	rto            time.Duration
	hasDataToSend  bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		rto:           time.Second,
		hasDataToSend: true,
	}
}

func (f *fakeSender) BytesInFlight() protocol.ByteCount     { return f.inFlight }
func (f *fakeSender) HeadSequence() protocol.SequenceNumber { return f.head }
func (f *fakeSender) Retransmit()                           { f.retransmits++ }
func (f *fakeSender) SendPendingData()                      { f.sendsRequested++ }
func (f *fakeSender) State() ConnState                      { return f.state }
func (f *fakeSender) RTO() time.Duration                    { return f.rto }
func (f *fakeSender) RestartFromHead()                      { f.restarts++ }
func (f *fakeSender) HasDataToSend() bool                   { return f.hasDataToSend }

var _ Sender = (*fakeSender)(nil)
