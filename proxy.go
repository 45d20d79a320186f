package tcpproxy

import (
	"github.com/linearregression/tcp-proxy/internal/proxy"
)

// Proxy re-exports internal/proxy.Proxy's public surface so callers
// never need to import an internal package directly.
type Proxy = proxy.Proxy

// ProxyTracer re-exports internal/proxy.Tracer.
type ProxyTracer = proxy.Tracer

// NewProxy builds a splice Proxy from cfg.ProxyPort, wired to real TCP
// sockets. tracer may be nil.
func NewProxy(cfg *Config, tracer *ProxyTracer) *Proxy {
	cfg = cfg.withDefaults()
	p := proxy.NewProxy(tracer)
	p.SetPort(cfg.ProxyPort)
	return p
}
