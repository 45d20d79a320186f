// Package protocol defines the small numeric vocabulary shared by the
// congestion controllers and the splice proxy: byte counts and segment
// sequence numbers.
package protocol

// ByteCount counts bytes: window sizes, segment sizes, cumulative ACK
// offsets.
type ByteCount uint64

// MaxByteCount is the largest representable ByteCount, used as a
// "no limit yet" sentinel (e.g. ssthresh before the first loss event).
const MaxByteCount ByteCount = 1<<64 - 1

// SequenceNumber is a TCP-style sequence number: the byte offset at the
// upper bound of a sent segment.
type SequenceNumber uint64

// InvalidSequenceNumber marks "no sequence number" (e.g. the sentinel
// returned by a SampleLedger lookup that found nothing).
const InvalidSequenceNumber SequenceNumber = 0

// DefaultTCPMSS is the default maximum segment size in bytes, the
// classic minimum TCP MSS and the proxy's stagnation threshold.
const DefaultTCPMSS ByteCount = 536

// DefaultInitialCwndSegments is the default initial congestion window,
// in units of MSS.
const DefaultInitialCwndSegments ByteCount = 1

// DefaultRetxThreshold is the default duplicate-ACK count that triggers
// fast retransmit.
const DefaultRetxThreshold = 3
