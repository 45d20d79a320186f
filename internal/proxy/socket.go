// Package proxy implements a transparent TCP splice relay: accept an
// inbound flow whose peer is registered in a pairing table, dial the
// paired destination, and forward bytes in both directions under
// send-buffer back-pressure.
//
// The interface split here mirrors internal/congestion's
// Algorithm/Sender split: Socket is the capability surface the relay
// drives, and the production TCPSocket adapter is the only type that
// talks to the kernel. Tests drive a fake Socket the same way
// internal/congestion's tests drive a fake Sender.
package proxy

import "net"

// Packet is a bounded slice of bytes moving through a Socket, kept as
// its own type (rather than a bare []byte) so SendEmptyPacket's
// zero-byte, flag-only segment is representable without a
// nil/empty-slice ambiguity.
type Packet struct {
	Payload []byte
	// Empty marks a zero-payload, ACK-only segment synthesized by the
	// stagnation escape.
	Empty bool
}

// AcceptFilter reports whether a connection arriving from peer should
// be admitted. Installed via SetAcceptCallback.
type AcceptFilter func(peer net.IP) bool

// Socket is the host-stack contract the relay is built against. The
// production adapter is TCPSocket; internal/proxy's tests use a fake.
type Socket interface {
	Bind(addr string) error
	Listen() error
	Connect(addr string) error
	Close() error

	// GetRxAvailable returns the number of bytes currently readable
	// without blocking.
	GetRxAvailable() int
	// GetTxAvailable returns the number of bytes the socket's send
	// buffer can currently accept without blocking.
	GetTxAvailable() int

	// Recv reads up to maxBytes. It never blocks: callers check
	// GetRxAvailable first.
	Recv(maxBytes int) (Packet, error)
	// Send writes p and returns the number of bytes actually accepted,
	// which may be less than len(p.Payload).
	Send(p Packet) (int, error)

	// SetAcceptCallback installs the listening socket's admission
	// filter and its established-connection handler. Only meaningful
	// on a listening socket.
	SetAcceptCallback(filter AcceptFilter, established func(Socket, net.IP))
	// SetRecvCallback fires when new bytes become readable.
	SetRecvCallback(fn func(Socket))
	// SetSendCallback fires when send-buffer space reopens.
	SetSendCallback(fn func(Socket))

	// SendEmptyPacket synthesizes a zero-payload, flag-only segment,
	// the stagnation-escape remedial ACK.
	SendEmptyPacket() error

	// PeerIP returns the remote IPv4 address this socket is connected
	// to or accepted from.
	PeerIP() net.IP
}
