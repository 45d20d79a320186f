package proxy

import (
	"net"
	"sync"
)

// endpoint is a (serverIP, serverPort) destination a client IP is
// spliced to.
type endpoint struct {
	ip   net.IP
	port uint16
}

// pairTable maps admitted client IPs to the upstream endpoint they
// should be spliced to. Keyed by the string form of the IPv4 address
// since net.IP isn't a valid map key.
type pairTable struct {
	mu   sync.RWMutex
	byIP map[string]endpoint
}

func newPairTable() *pairTable {
	return &pairTable{byIP: make(map[string]endpoint)}
}

// add registers a pairing. Idempotent: adding the same clientIP twice
// with the same destination is a no-op; re-adding with a different
// destination overwrites it.
func (t *pairTable) add(clientIP net.IP, serverIP net.IP, serverPort uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byIP[clientIP.String()] = endpoint{ip: serverIP, port: serverPort}
}

// lookup returns the destination for clientIP, matched on IPv4 address
// only; the client's source port is not part of the key.
func (t *pairTable) lookup(clientIP net.IP) (endpoint, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.byIP[clientIP.String()]
	return e, ok
}

// accepts is the listener's accept filter: true iff the peer IPv4
// address is present in the pair map.
func (t *pairTable) accepts(peer net.IP) bool {
	_, ok := t.lookup(peer)
	return ok
}
