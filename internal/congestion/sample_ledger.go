package congestion

import (
	"container/list"
	"time"

	"github.com/linearregression/tcp-proxy/internal/protocol"
)

// SampleEntry is one outstanding-segment record: the sequence number at
// the upper bound of the segment, the time it was sent, and the bytes
// sent on this connection since the entry was created.
type SampleEntry struct {
	Seq      protocol.SequenceNumber
	SentTime time.Time
	Bytes    protocol.ByteCount
}

// empty reports whether this is the zero-value sentinel a failed
// lookup returns.
func (e SampleEntry) empty() bool {
	return e.SentTime.IsZero() && e.Bytes == 0 && e.Seq == 0
}

// SampleLedger is a per-connection ordered log of outstanding sent
// segments, feeding the NewVegas rate estimator. Entries are ordered by
// creation time; container/list preserves that order for free, and the
// seq index below turns seq-keyed lookups from O(n) into O(1) average.
type SampleLedger struct {
	order *list.List
	byseq map[protocol.SequenceNumber][]*list.Element
}

// NewSampleLedger returns an empty ledger.
func NewSampleLedger() *SampleLedger {
	return &SampleLedger{
		order: list.New(),
		byseq: make(map[protocol.SequenceNumber][]*list.Element),
	}
}

// Add appends a new entry (seq, now, bytes=0).
func (l *SampleLedger) Add(seq protocol.SequenceNumber, now time.Time) {
	e := l.order.PushBack(&SampleEntry{Seq: seq, SentTime: now})
	l.byseq[seq] = append(l.byseq[seq], e)
}

// AddBytes adds n to the Bytes field of every entry currently in the
// ledger, so each entry's Bytes measures what was sent strictly after
// it was added.
func (l *SampleLedger) AddBytes(n protocol.ByteCount) {
	for e := l.order.Front(); e != nil; e = e.Next() {
		e.Value.(*SampleEntry).Bytes += n
	}
}

// Discard removes entries with Seq == seq exactly.
func (l *SampleLedger) Discard(seq protocol.SequenceNumber) {
	for _, e := range l.byseq[seq] {
		l.order.Remove(e)
	}
	delete(l.byseq, seq)
}

// DiscardUpTo removes every entry with Seq <= seq.
func (l *SampleLedger) DiscardUpTo(seq protocol.SequenceNumber) {
	var next *list.Element
	for e := l.order.Front(); e != nil; e = next {
		next = e.Next()
		entry := e.Value.(*SampleEntry)
		if entry.Seq <= seq {
			l.order.Remove(e)
			l.removeFromIndex(entry.Seq, e)
		}
	}
}

func (l *SampleLedger) removeFromIndex(seq protocol.SequenceNumber, e *list.Element) {
	elems := l.byseq[seq]
	for i, el := range elems {
		if el == e {
			l.byseq[seq] = append(elems[:i], elems[i+1:]...)
			break
		}
	}
	if len(l.byseq[seq]) == 0 {
		delete(l.byseq, seq)
	}
}

// GetFirstNode returns the earliest entry with Seq == seq, or an
// empty entry if none exists.
func (l *SampleLedger) GetFirstNode(seq protocol.SequenceNumber) SampleEntry {
	elems := l.byseq[seq]
	if len(elems) == 0 {
		return SampleEntry{}
	}
	return *elems[0].Value.(*SampleEntry)
}

// GetLastNode returns the latest entry with Seq == seq, or an empty
// entry if none exists.
func (l *SampleLedger) GetLastNode(seq protocol.SequenceNumber) SampleEntry {
	elems := l.byseq[seq]
	if len(elems) == 0 {
		return SampleEntry{}
	}
	return *elems[len(elems)-1].Value.(*SampleEntry)
}

// Len returns the number of outstanding entries, for tests and tracers.
func (l *SampleLedger) Len() int { return l.order.Len() }
