package proxy

import "errors"

// ErrUnmappedSocket is the one fatal error class the proxy itself can
// hit (a callback fired for a socket the connection table never
// recorded); every other condition here is recoverable and only ever
// logged.
var (
	// ErrUnmappedSocket is raised if internal bookkeeping is ever
	// asked about a socket outside conn_table. Reaching this indicates
	// a bug in pair teardown, not a remote-peer condition.
	ErrUnmappedSocket = errors.New("proxy: callback fired for socket absent from conn_table")
	// ErrUnknownPeer is the accept-filter rejection: the connecting
	// peer's IPv4 address has no entry in the pair map.
	ErrUnknownPeer = errors.New("proxy: peer not present in pair map")
)
