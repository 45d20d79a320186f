package tcpproxy

import (
	"fmt"

	"github.com/linearregression/tcp-proxy/internal/clock"
	"github.com/linearregression/tcp-proxy/internal/congestion"
)

// NewController builds the congestion.Algorithm selected by cfg.Algorithm,
// wired to the real wall clock. tracer may be nil. A nil cfg gets every
// documented default.
func NewController(cfg *Config, tracer *congestion.ConnectionTracer) (congestion.Algorithm, error) {
	cfg = cfg.withDefaults()
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	clk := clock.DefaultClock{}
	switch cfg.Algorithm {
	case AlgorithmCubic:
		params := congestion.CubicParams{
			TCPFriendliness: !cfg.DisableTCPFriendliness,
			FastConvergence: !cfg.DisableFastConvergence,
			Beta:            cfg.Beta,
			C:               cfg.C,
		}
		return congestion.NewCubicSender(clk, cfg.MSS, cfg.InitialCwnd, cfg.ReTxThreshold, params, tracer), nil
	case AlgorithmNewVegas:
		return congestion.NewVegasSender(clk, cfg.MSS, cfg.InitialCwnd, cfg.ReTxThreshold, tracer), nil
	default:
		return nil, fmt.Errorf("tcpproxy: unknown Algorithm %v", cfg.Algorithm)
	}
}
