package hacktrack

import "time"

// DefaultReplyHold is how long a reply that has not arrived may hold back the
// replies sent after it.
const DefaultReplyHold = 15 * time.Second

// Sequencer orders chat replies by send order. Next allocates a sequence
// number for each send; Deliver buffers a completion and releases every turn
// batch that is now contiguous with those already released.
//
// A send that is still outstanding after the hold period stops blocking: Flush
// skips it and releases the buffered replies behind it, and its reply is
// released on arrival instead. Each sequence number is released exactly once.
// Not safe for concurrent use.
type Sequencer struct {
	next    uint64
	release uint64
	pending map[uint64][]Turn
	issued  map[uint64]time.Time
	skipped map[uint64]bool
	hold    time.Duration
	now     func() time.Time
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithReplyHold sets the hold period. A non-positive value keeps the default.
func WithReplyHold(d time.Duration) SequencerOption {
	return func(s *Sequencer) {
		if d > 0 {
			s.hold = d
		}
	}
}

// WithSequencerClock sets the clock used to age outstanding sends.
func WithSequencerClock(now func() time.Time) SequencerOption {
	return func(s *Sequencer) { s.now = now }
}

// NewSequencer returns a Sequencer whose first sequence number is 1.
func NewSequencer(opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		next:    1,
		release: 1,
		pending: make(map[uint64][]Turn),
		issued:  make(map[uint64]time.Time),
		skipped: make(map[uint64]bool),
		hold:    DefaultReplyHold,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hold returns the hold period.
func (s *Sequencer) Hold() time.Duration { return s.hold }

// Next allocates the sequence number for a new send.
func (s *Sequencer) Next() uint64 {
	seq := s.next
	s.next++
	s.issued[seq] = s.now()
	return seq
}

// Deliver records the turns for seq and returns the turns that can be
// rendered now, in send order. Unknown or duplicate sequence numbers are
// ignored.
func (s *Sequencer) Deliver(seq uint64, turns []Turn) []Turn {
	if turns == nil {
		turns = []Turn{}
	}
	if s.skipped[seq] {
		delete(s.skipped, seq)
		return turns
	}
	if seq < s.release || seq >= s.next {
		return nil
	}
	if _, dup := s.pending[seq]; dup {
		return nil
	}
	s.pending[seq] = turns
	return s.drain()
}

// Flush skips every leading send that has been outstanding for at least the
// hold period and returns the buffered turns this releases.
func (s *Sequencer) Flush() []Turn {
	var out []Turn
	for s.release < s.next {
		if _, ok := s.pending[s.release]; ok {
			out = append(out, s.drain()...)
			continue
		}
		if s.now().Sub(s.issued[s.release]) < s.hold {
			break
		}
		s.skipped[s.release] = true
		delete(s.issued, s.release)
		s.release++
	}
	return out
}

// Blocked reports whether any arrived reply is waiting on an earlier send.
func (s *Sequencer) Blocked() bool {
	return len(s.pending) > 0
}

// Pending returns the number of sends whose reply has not been released yet.
func (s *Sequencer) Pending() int {
	return int(s.next-s.release) + len(s.skipped)
}

func (s *Sequencer) drain() []Turn {
	var out []Turn
	for {
		batch, ok := s.pending[s.release]
		if !ok {
			return out
		}
		delete(s.pending, s.release)
		delete(s.issued, s.release)
		out = append(out, batch...)
		s.release++
	}
}
