package proxy

import (
	"io"
	"net"
	"sync"
	"time"
)

const (
	rxBufferSize = 64 * 1024
	txBufferSize = 64 * 1024
)

// TCPSocket is the production Socket adapter over net.TCPConn /
// net.TCPListener: a background reader goroutine fills a bounded rx
// ring (so GetRxAvailable is a cheap non-blocking query), Send writes
// into a bounded tx ring drained by a background writer goroutine (so
// GetTxAvailable reflects real back-pressure). IPv4-only, matching the
// rest of this package.
type TCPSocket struct {
	mu sync.Mutex

	conn   *net.TCPConn
	ln     *net.TCPListener
	peerIP net.IP

	rx *ringBuffer
	tx *ringBuffer

	recvCB       func(Socket)
	sendCB       func(Socket)
	acceptFilter AcceptFilter
	established  func(Socket, net.IP)

	closed      bool
	closeCh     chan struct{}
	writeWakeCh chan struct{}
}

// NewTCPSocket wraps an already-established net.TCPConn (from a
// successful Accept or Dial) and starts its pump goroutines.
func NewTCPSocket(conn *net.TCPConn) *TCPSocket {
	s := &TCPSocket{
		conn:        conn,
		rx:          newRingBuffer(rxBufferSize),
		tx:          newRingBuffer(txBufferSize),
		closeCh:     make(chan struct{}),
		writeWakeCh: make(chan struct{}, 1),
	}
	if ap, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		s.peerIP = ap.IP
	}
	go s.readPump()
	go s.writePump()
	return s
}

// newListeningTCPSocket backs Proxy.Start's listening side; it has no
// conn of its own until an inbound connection is accepted.
func newListeningTCPSocket() *TCPSocket {
	return &TCPSocket{closeCh: make(chan struct{}), writeWakeCh: make(chan struct{}, 1)}
}

// newDialableTCPSocket backs Proxy's default outbound dialer; Connect
// fills in conn/rx/tx and starts the pump goroutines.
func newDialableTCPSocket() *TCPSocket {
	return &TCPSocket{closeCh: make(chan struct{}), writeWakeCh: make(chan struct{}, 1)}
}

func (s *TCPSocket) Bind(addr string) error {
	a, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return err
	}
	ln, err := net.ListenTCP("tcp4", a)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	return nil
}

func (s *TCPSocket) Listen() error {
	s.mu.Lock()
	ln := s.ln
	filter := s.acceptFilter
	established := s.established
	s.mu.Unlock()
	if ln == nil {
		return io.ErrClosedPipe
	}
	go s.acceptLoop(ln, filter, established)
	return nil
}

func (s *TCPSocket) acceptLoop(ln *net.TCPListener, filter AcceptFilter, established func(Socket, net.IP)) {
	for {
		conn, err := ln.AcceptTCP()
		if err != nil {
			return
		}
		var peer net.IP
		if ap, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
			peer = ap.IP
		}
		if filter != nil && !filter(peer) {
			conn.Close()
			continue
		}
		child := NewTCPSocket(conn)
		if established != nil {
			established(child, peer)
		}
	}
}

func (s *TCPSocket) Connect(addr string) error {
	a, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return err
	}
	conn, err := net.DialTCP("tcp4", nil, a)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.peerIP = a.IP
	s.rx = newRingBuffer(rxBufferSize)
	s.tx = newRingBuffer(txBufferSize)
	if s.writeWakeCh == nil {
		s.writeWakeCh = make(chan struct{}, 1)
	}
	s.mu.Unlock()
	go s.readPump()
	go s.writePump()
	return nil
}

func (s *TCPSocket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.closeCh)
	conn := s.conn
	ln := s.ln
	s.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	if ln != nil {
		if lerr := ln.Close(); err == nil {
			err = lerr
		}
	}
	return err
}

func (s *TCPSocket) GetRxAvailable() int {
	s.mu.Lock()
	rx := s.rx
	s.mu.Unlock()
	if rx == nil {
		return 0
	}
	return rx.available()
}

func (s *TCPSocket) GetTxAvailable() int {
	s.mu.Lock()
	tx := s.tx
	s.mu.Unlock()
	if tx == nil {
		return 0
	}
	return tx.free()
}

func (s *TCPSocket) Recv(maxBytes int) (Packet, error) {
	s.mu.Lock()
	rx := s.rx
	s.mu.Unlock()
	if rx == nil {
		return Packet{}, io.ErrClosedPipe
	}
	return Packet{Payload: rx.read(maxBytes)}, nil
}

func (s *TCPSocket) Send(p Packet) (int, error) {
	if p.Empty {
		return 0, s.SendEmptyPacket()
	}
	s.mu.Lock()
	tx := s.tx
	s.mu.Unlock()
	if tx == nil {
		return 0, io.ErrClosedPipe
	}
	n := tx.write(p.Payload)
	s.nudgeWriter()
	return n, nil
}

func (s *TCPSocket) SetAcceptCallback(filter AcceptFilter, established func(Socket, net.IP)) {
	s.mu.Lock()
	s.acceptFilter = filter
	s.established = established
	s.mu.Unlock()
}

func (s *TCPSocket) SetRecvCallback(fn func(Socket)) {
	s.mu.Lock()
	s.recvCB = fn
	s.mu.Unlock()
}

func (s *TCPSocket) SetSendCallback(fn func(Socket)) {
	s.mu.Lock()
	s.sendCB = fn
	s.mu.Unlock()
}

// SendEmptyPacket is the stagnation-escape remedy. Go's net package
// exposes no way to construct a zero-payload ACK segment below the
// stream abstraction, so this fires the recv callback, waking the
// relay loop that reads from this socket so it re-polls GetRxAvailable
// immediately instead of waiting for the next read from the wire.
func (s *TCPSocket) SendEmptyPacket() error {
	s.fireRecv()
	return nil
}

func (s *TCPSocket) PeerIP() net.IP {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peerIP
}

func (s *TCPSocket) nudgeWriter() {
	select {
	case s.writeWakeCh <- struct{}{}:
	default:
	}
}

func (s *TCPSocket) readPump() {
	s.mu.Lock()
	conn := s.conn
	rx := s.rx
	s.mu.Unlock()
	if conn == nil {
		return
	}
	buf := make([]byte, 16*1024)
	for {
		// Read no more than the rx ring can hold, so bytes taken off
		// the wire are never dropped; while the ring is full, wait for
		// Recv to drain it and leave the kernel to apply back-pressure.
		free := rx.free()
		for free == 0 {
			select {
			case <-s.closeCh:
				return
			case <-time.After(time.Millisecond):
			}
			free = rx.free()
		}
		if free > len(buf) {
			free = len(buf)
		}
		n, err := conn.Read(buf[:free])
		if n > 0 {
			rx.write(buf[:n])
			s.fireRecv()
		}
		if err != nil {
			return
		}
		select {
		case <-s.closeCh:
			return
		default:
		}
	}
}

func (s *TCPSocket) writePump() {
	s.mu.Lock()
	conn := s.conn
	tx := s.tx
	s.mu.Unlock()
	if conn == nil {
		return
	}
	for {
		select {
		case <-s.closeCh:
			return
		case <-s.writeWakeCh:
		}
		for {
			chunk := tx.read(16 * 1024)
			if len(chunk) == 0 {
				break
			}
			if _, err := conn.Write(chunk); err != nil {
				return
			}
			s.fireSend()
		}
	}
}

func (s *TCPSocket) fireRecv() {
	s.mu.Lock()
	cb := s.recvCB
	s.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

func (s *TCPSocket) fireSend() {
	s.mu.Lock()
	cb := s.sendCB
	s.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

var _ Socket = (*TCPSocket)(nil)
