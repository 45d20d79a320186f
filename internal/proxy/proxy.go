package proxy

import (
	"context"
	"fmt"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Tracer is a struct of function fields invoked synchronously on
// notable proxy events, the same shape as
// internal/congestion.ConnectionTracer: a caller wires up only the
// events it cares about and leaves the rest nil.
type Tracer struct {
	Warnf             func(format string, args ...any)
	Infof             func(format string, args ...any)
	ConnectionOpened  func(clientIP net.IP)
	ConnectionClosed  func(clientIP net.IP, bytesRelayed uint64)
	StagnationEscaped func(clientIP net.IP)
}

func (t *Tracer) warnf(format string, args ...any) {
	if t != nil && t.Warnf != nil {
		t.Warnf(format, args...)
	}
}

func (t *Tracer) infof(format string, args ...any) {
	if t != nil && t.Infof != nil {
		t.Infof(format, args...)
	}
}

// proxyState is CLOSED/STARTED: configuration setters are only legal
// while CLOSED, matching the congestion controllers' own
// open/closed discipline.
type proxyState int

const (
	proxyClosed proxyState = iota
	proxyStarted
)

// Proxy is a TCP splice relay: it accepts inbound connections from
// admitted client IPs, dials the matching upstream, and pumps bytes
// between the two. Build one with NewProxy (the zero value has no
// pairing or connection table), configure it (SetPort, AddPair), then
// Start it to accept connections.
type Proxy struct {
	mu    sync.Mutex
	state proxyState
	port  uint16

	pairs *pairTable
	conns *connTable

	tracer *Tracer

	listener    Socket
	newListener func() Socket
	dial        func(addr string) (Socket, error)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewProxy constructs a Proxy wired to real TCP sockets. tracer may be
// nil.
func NewProxy(tracer *Tracer) *Proxy {
	return &Proxy{
		pairs:  newPairTable(),
		conns:  newConnTable(),
		tracer: tracer,
		newListener: func() Socket {
			return newListeningTCPSocket()
		},
		dial: func(addr string) (Socket, error) {
			s := newDialableTCPSocket()
			if err := s.Connect(addr); err != nil {
				return nil, err
			}
			return s, nil
		},
	}
}

// SetPort sets the listen port. Valid only while CLOSED.
func (p *Proxy) SetPort(port uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != proxyClosed {
		panic("proxy BUG: SetPort called while proxy is running")
	}
	p.port = port
}

// AddPair registers that connections from clientIP should be spliced
// to (serverIP, serverPort). clientPort is accepted for symmetry with
// the (client, server) endpoint shape callers expect but ignored: the
// accept filter matches on client IP alone.
func (p *Proxy) AddPair(clientIP net.IP, clientPort uint16, serverIP net.IP, serverPort uint16) {
	_ = clientPort
	p.pairs.add(clientIP, serverIP, serverPort)
}

// Start binds the listen port, installs the accept filter, and begins
// accepting connections. Starting an already-started proxy is a no-op
// error.
func (p *Proxy) Start() error {
	p.mu.Lock()
	if p.state == proxyStarted {
		p.mu.Unlock()
		return fmt.Errorf("proxy: already started")
	}
	ln := p.newListener()
	ctx, cancel := context.WithCancel(context.Background())
	p.listener = ln
	p.cancel = cancel
	p.state = proxyStarted
	p.mu.Unlock()

	ln.SetAcceptCallback(p.pairs.accepts, func(inbound Socket, peer net.IP) {
		p.onEstablished(ctx, inbound, peer)
	})

	if err := ln.Bind(fmt.Sprintf(":%d", p.port)); err != nil {
		p.mu.Lock()
		p.state = proxyClosed
		p.mu.Unlock()
		return err
	}
	return ln.Listen()
}

// Stop closes the listener and every active pair. Stopping a proxy
// that was never started is a no-op.
func (p *Proxy) Stop() error {
	p.mu.Lock()
	if p.state != proxyStarted {
		p.mu.Unlock()
		return nil
	}
	p.state = proxyClosed
	cancel := p.cancel
	ln := p.listener
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if ln != nil {
		err = ln.Close()
	}
	for _, pr := range p.conns.all() {
		pr.inbound.Close()
		pr.outbound.Close()
	}
	p.wg.Wait()
	return err
}

func (p *Proxy) onEstablished(ctx context.Context, inbound Socket, peer net.IP) {
	ep, ok := p.pairs.lookup(peer)
	if !ok {
		// The accept filter already checked this; a concurrent
		// AddPair race is the only way this fires. Drop defensively.
		inbound.Close()
		return
	}

	outbound, err := p.dial(fmt.Sprintf("%s:%d", ep.ip, ep.port))
	if err != nil {
		p.tracer.warnf("proxy: outbound connect to %s:%d failed for peer %s: %v", ep.ip, ep.port, peer, err)
		inbound.Close()
		return
	}

	pair := newConnPair(inbound, outbound)
	p.conns.add(pair)
	p.tracer.infof("proxy: spliced %s -> %s:%d", peer, ep.ip, ep.port)
	if p.tracer != nil && p.tracer.ConnectionOpened != nil {
		p.tracer.ConnectionOpened(peer)
	}

	// Every callback below only knows the socket it fired on; it must
	// recover the pair (and hence which direction to wake) by looking
	// the socket up in conn_table rather than closing over pair
	// directly, so a socket that outlives its pair's removal from the
	// table is caught instead of silently relaying on stale state.
	inbound.SetRecvCallback(p.wakeRecv)
	outbound.SetSendCallback(p.wakeSend)
	outbound.SetRecvCallback(p.wakeRecv)
	inbound.SetSendCallback(p.wakeSend)

	// Bytes may already be sitting in a ring buffer from before the
	// callbacks above were wired (e.g. a fast first read); prime both
	// directions once so Start doesn't miss them.
	wake(pair.wakeI2O)
	wake(pair.wakeO2I)

	g, gctx := errgroup.WithContext(ctx)
	p.wg.Add(1)
	g.Go(func() error { return p.relayLoop(gctx, inbound, outbound, pair.wakeI2O) })
	g.Go(func() error { return p.relayLoop(gctx, outbound, inbound, pair.wakeO2I) })

	go func() {
		defer p.wg.Done()
		g.Wait()
		p.teardown(pair, peer)
	}()
}

// wakeRecv handles a readability notification for s: data arrived on
// s, so wake the loop that forwards s -> its peer in the pair.
func (p *Proxy) wakeRecv(s Socket) {
	pair, ok := p.conns.get(s)
	if !ok {
		panic(ErrUnmappedSocket)
	}
	if s == pair.inbound {
		wake(pair.wakeI2O)
	} else {
		wake(pair.wakeO2I)
	}
}

// wakeSend handles a writability notification for s: s drained its
// send buffer, so wake the loop that forwards s's peer -> s.
func (p *Proxy) wakeSend(s Socket) {
	pair, ok := p.conns.get(s)
	if !ok {
		panic(ErrUnmappedSocket)
	}
	if s == pair.inbound {
		wake(pair.wakeO2I)
	} else {
		wake(pair.wakeI2O)
	}
}

// relayLoop repeatedly forwards src -> dst whenever wakeCh fires,
// resolving src's pair through conn_table on every iteration rather
// than holding a pointer to it: a miss means src was torn down out
// from under this loop, which is a fatal bookkeeping error and not a
// condition the relay can recover from.
func (p *Proxy) relayLoop(ctx context.Context, src, dst Socket, wakeCh chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wakeCh:
		}
		pair, ok := p.conns.get(src)
		if !ok {
			return ErrUnmappedSocket
		}
		if pair.Forward(src, dst, func(format string, args ...any) { p.tracer.warnf(format, args...) }) == forwardClosed {
			return nil
		}
	}
}

func (p *Proxy) teardown(pair *connPair, peer net.IP) {
	pair.inbound.Close()
	pair.outbound.Close()
	p.conns.remove(pair)
	pair.mu.Lock()
	relayed := pair.bytesRelayed
	pair.mu.Unlock()
	if p.tracer != nil && p.tracer.ConnectionClosed != nil {
		p.tracer.ConnectionClosed(peer, relayed)
	}
}
