package proxy

import (
	"io"
	"net"
	"sync"
)

// fakeSocket is a Socket test double, in the same spirit as
// internal/congestion's fake Sender/Clock test doubles. It gives full
// manual control over RxAvailable/TxAvailable so tests can drive exact
// back-pressure conditions without a real kernel socket.
type fakeSocket struct {
	mu sync.Mutex

	rx    []byte
	txCap int
	tx    []byte

	peer   net.IP
	closed bool

	recvCB func(Socket)
	sendCB func(Socket)

	acceptFilter AcceptFilter
	established  func(Socket, net.IP)

	emptyPackets int
	recvErr      error
}

func newFakeSocket(peer net.IP, txCap int) *fakeSocket {
	return &fakeSocket{peer: peer, txCap: txCap}
}

func (s *fakeSocket) Bind(string) error    { return nil }
func (s *fakeSocket) Listen() error        { return nil }
func (s *fakeSocket) Connect(string) error { return nil }
func (s *fakeSocket) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *fakeSocket) GetRxAvailable() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rx)
}

func (s *fakeSocket) GetTxAvailable() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCap - len(s.tx)
}

func (s *fakeSocket) Recv(maxBytes int) (Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recvErr != nil {
		return Packet{}, s.recvErr
	}
	if s.closed {
		return Packet{}, io.EOF
	}
	if maxBytes > len(s.rx) {
		maxBytes = len(s.rx)
	}
	out := append([]byte(nil), s.rx[:maxBytes]...)
	s.rx = s.rx[maxBytes:]
	return Packet{Payload: out}, nil
}

func (s *fakeSocket) Send(p Packet) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Empty {
		s.emptyPackets++
		return 0, nil
	}
	free := s.txCap - len(s.tx)
	n := len(p.Payload)
	if n > free {
		n = free
	}
	s.tx = append(s.tx, p.Payload[:n]...)
	return n, nil
}

func (s *fakeSocket) SetAcceptCallback(filter AcceptFilter, established func(Socket, net.IP)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acceptFilter = filter
	s.established = established
}

func (s *fakeSocket) SetRecvCallback(fn func(Socket)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recvCB = fn
}

func (s *fakeSocket) SetSendCallback(fn func(Socket)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendCB = fn
}

func (s *fakeSocket) SendEmptyPacket() error {
	s.mu.Lock()
	s.emptyPackets++
	s.mu.Unlock()
	return nil
}

func (s *fakeSocket) PeerIP() net.IP { return s.peer }

// feed appends data to the readable side and fires the recv callback,
// mirroring what a real socket's reader pump would do.
func (s *fakeSocket) feed(data []byte) {
	s.mu.Lock()
	s.rx = append(s.rx, data...)
	cb := s.recvCB
	s.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

// openTx grows the send-buffer capacity and fires the send callback,
// mirroring a real socket's send-buffer drain.
func (s *fakeSocket) openTx(extra int) {
	s.mu.Lock()
	s.txCap += extra
	cb := s.sendCB
	s.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

func (s *fakeSocket) drained() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.tx...)
}

func (s *fakeSocket) emptyPacketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emptyPackets
}

var _ Socket = (*fakeSocket)(nil)
