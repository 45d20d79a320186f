// Package tcpproxy is the public surface over two things: pluggable
// TCP congestion controllers (CUBIC and NewVegas) and a transparent
// TCP splice proxy. It keeps a small top-level package, constructed
// from a single Config value, with the implementation details living
// in internal/.
package tcpproxy

import (
	"errors"
	"fmt"

	"github.com/linearregression/tcp-proxy/internal/protocol"
)

// Algorithm selects which congestion-control law a Config wires up.
type Algorithm int

const (
	AlgorithmCubic Algorithm = iota
	AlgorithmNewVegas
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmCubic:
		return "CUBIC"
	case AlgorithmNewVegas:
		return "NewVegas"
	default:
		return "unknown"
	}
}

// Config holds the controller and proxy tunables, constructed as a
// single value the way &tcpproxy.Config{...} reads at the call site.
//
// Boolean fields follow a Disable* convention rather than Enable*, so
// the zero value Config matches the documented defaults exactly
// instead of needing a separate "was this explicitly set" tri-state.
type Config struct {
	Algorithm       Algorithm
	MSS             protocol.ByteCount // default protocol.DefaultTCPMSS
	InitialCwnd     protocol.ByteCount // MSS units, default protocol.DefaultInitialCwndSegments
	ReTxThreshold   int                // default protocol.DefaultRetxThreshold
	LimitedTransmit bool

	// CUBIC-only. Beta and C left at 0 mean "use the documented
	// default" (0.2 and 0.4 respectively); both are strictly positive
	// in any real TCP-friendliness region, so 0 is never a meaningful
	// explicit value to validate against.
	DisableTCPFriendliness bool
	DisableFastConvergence bool
	Beta                   float64
	C                      float64

	// Proxy-only.
	ProxyPort uint16
}

const (
	defaultBeta = 0.2
	defaultC    = 0.4
)

// withDefaults returns a copy of cfg (or a fresh zero Config if cfg is
// nil) with Beta/C and the other zero-valued tunables filled in from
// their documented defaults.
func (cfg *Config) withDefaults() *Config {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.Beta == 0 {
		c.Beta = defaultBeta
	}
	if c.C == 0 {
		c.C = defaultC
	}
	if c.MSS == 0 {
		c.MSS = protocol.DefaultTCPMSS
	}
	if c.InitialCwnd == 0 {
		c.InitialCwnd = protocol.DefaultInitialCwndSegments
	}
	if c.ReTxThreshold == 0 {
		c.ReTxThreshold = protocol.DefaultRetxThreshold
	}
	return &c
}

// validateConfig reports a nil or zero-value Config as always valid;
// an out-of-range tunable is a plain error, never a panic. Panics are
// reserved for the controllers' immutable-after-open class, which
// validateConfig never touches.
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	if cfg.Beta < 0 || cfg.Beta > 1 {
		return fmt.Errorf("tcpproxy: Beta must be in (0,1], got %v", cfg.Beta)
	}
	if cfg.C < 0 {
		return fmt.Errorf("tcpproxy: C must be > 0, got %v", cfg.C)
	}
	if cfg.Algorithm != AlgorithmCubic && cfg.Algorithm != AlgorithmNewVegas {
		return errors.New("tcpproxy: unknown Algorithm")
	}
	return nil
}
