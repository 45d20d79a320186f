// Package utils holds the small ambient bookkeeping both congestion
// controllers share: RTT tracking and per-connection loss counters.
package utils

import "time"

// RTTStats tracks the minimum, latest, and smoothed RTT observed on a
// connection. NewVegas and CUBIC both feed it every RTT sample but
// never read it back to make decisions; CUBIC keeps its own d_min and
// NewVegas its own base_rtt.
type RTTStats struct {
	minRTT      time.Duration
	latestRTT   time.Duration
	smoothedRTT time.Duration
	meanDev     time.Duration
}

// UpdateRTT folds a new RTT sample (ackDelay is subtracted first, as in
// RFC 6298; pass 0 when no delay is known).
func (r *RTTStats) UpdateRTT(rtt, ackDelay time.Duration) {
	if rtt <= 0 {
		return
	}
	if ackDelay > 0 && rtt > ackDelay {
		rtt -= ackDelay
	}
	r.latestRTT = rtt
	if r.minRTT == 0 || rtt < r.minRTT {
		r.minRTT = rtt
	}
	if r.smoothedRTT == 0 {
		r.smoothedRTT = rtt
		r.meanDev = rtt / 2
		return
	}
	delta := r.smoothedRTT - rtt
	if delta < 0 {
		delta = -delta
	}
	r.meanDev = (3*r.meanDev + delta) / 4
	r.smoothedRTT = (7*r.smoothedRTT + rtt) / 8
}

// MinRTT returns the minimum RTT observed so far, or 0 if none yet.
func (r *RTTStats) MinRTT() time.Duration { return r.minRTT }

// LatestRTT returns the most recent RTT sample.
func (r *RTTStats) LatestRTT() time.Duration { return r.latestRTT }

// SmoothedRTT returns the exponentially-weighted smoothed RTT.
func (r *RTTStats) SmoothedRTT() time.Duration { return r.smoothedRTT }

// MeanDeviation returns the RTT mean deviation (RTTVAR).
func (r *RTTStats) MeanDeviation() time.Duration { return r.meanDev }
