package proxy

import (
	"sync"

	"github.com/linearregression/tcp-proxy/internal/protocol"
)

// stagnationMSS is the threshold below which a blocked forward
// direction is considered stagnant rather than merely momentarily
// full. Forward compares it against src's readable backlog
// (GetRxAvailable); the Socket interface reports no advertised receive
// window, so that window is not consulted.
const stagnationMSS = int(protocol.DefaultTCPMSS)

// connPair is one accepted (inbound, outbound) splice and the
// conn_table entry for both of its sockets. The two wake channels are
// how receive-ready and send-ready callbacks trigger each direction's
// Forward loop: the callback itself never calls Forward inline, it
// only wakes the goroutine that owns that direction.
type connPair struct {
	inbound  Socket
	outbound Socket

	wakeI2O chan struct{}
	wakeO2I chan struct{}

	mu      sync.Mutex
	stagI2O bool
	stagO2I bool

	bytesRelayed uint64
	stagnations  uint64
}

func newConnPair(inbound, outbound Socket) *connPair {
	return &connPair{
		inbound:  inbound,
		outbound: outbound,
		wakeI2O:  make(chan struct{}, 1),
		wakeO2I:  make(chan struct{}, 1),
	}
}

func wake(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// latch returns the is_stagnant flag for the direction whose source is
// src (inbound->outbound uses stagI2O, outbound->inbound uses
// stagO2I), along with a setter closed over the right field.
func (p *connPair) latch(src Socket) (get func() bool, set func(bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if src == p.inbound {
		return func() bool { p.mu.Lock(); defer p.mu.Unlock(); return p.stagI2O },
			func(v bool) { p.mu.Lock(); p.stagI2O = v; p.mu.Unlock() }
	}
	return func() bool { p.mu.Lock(); defer p.mu.Unlock(); return p.stagO2I },
		func(v bool) { p.mu.Lock(); p.stagO2I = v; p.mu.Unlock() }
}

// forwardResult distinguishes "nothing left to do right now, wait for
// the next wake" from "this direction is finished", letting
// relayLoop decide whether to keep looping.
type forwardResult int

const (
	forwardBlocked forwardResult = iota
	forwardClosed
)

// Forward copies bytes from src to dst until one side blocks, honoring
// send-buffer back-pressure and the stagnation-latch + empty-ACK
// escape that unsticks a peer waiting on a window update it will
// never see because the two sides have no more data to exchange.
func (p *connPair) Forward(src, dst Socket, warnf func(format string, args ...any)) forwardResult {
	getStag, setStag := p.latch(src)

	for {
		avail := src.GetRxAvailable()
		if avail == 0 {
			return forwardBlocked
		}

		txSpace := dst.GetTxAvailable()
		if txSpace == 0 {
			if avail < stagnationMSS {
				setStag(true)
			}
			return forwardBlocked
		}

		toRead := txSpace
		if avail < toRead {
			toRead = avail
		}

		pkt, err := src.Recv(toRead)
		if err != nil || (len(pkt.Payload) == 0 && !pkt.Empty) {
			return forwardClosed
		}

		n, err := dst.Send(pkt)
		if err != nil {
			return forwardClosed
		}

		p.mu.Lock()
		p.bytesRelayed += uint64(n)
		p.mu.Unlock()

		if n == len(pkt.Payload) {
			if getStag() {
				if err := src.SendEmptyPacket(); err != nil && warnf != nil {
					warnf("proxy: empty-ACK escape failed: %v", err)
				}
				setStag(false)
				p.mu.Lock()
				p.stagnations++
				p.mu.Unlock()
			}
			continue
		}

		if warnf != nil {
			warnf("proxy: partial send, %d of %d bytes accepted", n, len(pkt.Payload))
		}
		// toRead was already bounded by dst's advertised tx space, so
		// this only fires if that space shrank between the check and
		// the Send call. Logged and continuing, not fatal.
	}
}
