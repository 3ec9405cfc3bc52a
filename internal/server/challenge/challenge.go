// Package challenge implements the puzzle gate that guards lockout
// recovery. A session holds N pieces, each tagged with the slot it belongs
// in, shuffled into a source pool, plus N target slots. The caller places
// pieces one at a time; once every slot is filled and every piece sits in
// its own slot, the registered completion handler fires exactly once, after
// a short delay. The session is purely in-memory and belongs to a single
// caller for the lifetime of one verification attempt.
package challenge

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

const (
	// DefaultPieces is the puzzle size used when none is configured.
	DefaultPieces = 4
	// DefaultCompletionDelay separates the correctness check from the
	// completion callback so a UI can show feedback first. Only the
	// ordering is semantic: the callback always runs after the check.
	DefaultCompletionDelay = 300 * time.Millisecond
)

const emptySlot = -1

// Slot is the tagged state of one target position: either the tag of the
// piece occupying it, or empty.
type Slot struct {
	Piece  int  // tag of the occupying piece, meaningful only when Filled
	Filled bool
}

// Session is one in-flight verification attempt. Methods are safe for the
// timer callback racing the caller, but the session is intended for a
// single actor.
type Session struct {
	mu        sync.Mutex
	n         int
	pool      []int // piece tags awaiting placement, in display order
	slots     []int // emptySlot, or the occupying piece's tag
	delay     time.Duration
	onSuccess func()
	completed bool
	fired     bool
	timer     *time.Timer
}

// New creates a session with n pieces shuffled into the source pool and n
// empty slots. n <= 0 falls back to DefaultPieces; a negative delay is
// treated as zero (the handler then fires synchronously inside Place).
func New(n int, delay time.Duration) *Session {
	if n <= 0 {
		n = DefaultPieces
	}
	if delay < 0 {
		delay = 0
	}

	s := &Session{n: n, delay: delay}
	s.pool = make([]int, n)
	for i := range s.pool {
		s.pool[i] = i
	}
	rand.Shuffle(len(s.pool), func(i, j int) {
		s.pool[i], s.pool[j] = s.pool[j], s.pool[i]
	})

	s.slots = make([]int, n)
	for i := range s.slots {
		s.slots[i] = emptySlot
	}
	return s
}

// OnSuccess registers the single-shot completion handler. There is exactly
// one notification per completed session, no matter how the puzzle got there.
func (s *Session) OnSuccess(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSuccess = fn
}

// Pieces returns the puzzle size.
func (s *Session) Pieces() int {
	return s.n
}

// Pool returns the tags of the pieces still in the source pool.
func (s *Session) Pool() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.pool))
	copy(out, s.pool)
	return out
}

// Slots returns the current state of every target slot.
func (s *Session) Slots() []Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Slot, len(s.slots))
	for i, tag := range s.slots {
		if tag != emptySlot {
			out[i] = Slot{Piece: tag, Filled: true}
		}
	}
	return out
}

// Completed reports whether the puzzle has been solved.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Place moves the piece with the given tag from the source pool into the
// slot. A piece already occupying the slot is returned to the pool first;
// nothing is ever silently dropped. When the placement fills the last slot
// and every piece is in its own slot, completion is scheduled.
func (s *Session) Place(piece, slot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return common.ErrChallengeDone
	}
	if slot < 0 || slot >= s.n {
		return fmt.Errorf("slot index %d out of range", slot)
	}
	if piece < 0 || piece >= s.n {
		return fmt.Errorf("unknown piece %d", piece)
	}

	idx := -1
	for i, tag := range s.pool {
		if tag == piece {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("piece %d is not in the source pool", piece)
	}

	if occupant := s.slots[slot]; occupant != emptySlot {
		s.pool = append(s.pool, occupant)
	}
	s.pool = append(s.pool[:idx], s.pool[idx+1:]...)
	s.slots[slot] = piece

	if s.solved() {
		s.completed = true
		s.scheduleFire()
	}
	return nil
}

// Reset returns every placed piece to the source pool, reshuffles and
// cancels any pending completion. It may be called any number of times
// before the completion handler has fired.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fired {
		return common.ErrChallengeDone
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.completed = false

	for i, tag := range s.slots {
		if tag != emptySlot {
			s.pool = append(s.pool, tag)
			s.slots[i] = emptySlot
		}
	}
	rand.Shuffle(len(s.pool), func(i, j int) {
		s.pool[i], s.pool[j] = s.pool[j], s.pool[i]
	})
	return nil
}

// solved is called with the lock held.
func (s *Session) solved() bool {
	for i, tag := range s.slots {
		if tag != i {
			return false
		}
	}
	return true
}

// scheduleFire is called with the lock held.
func (s *Session) scheduleFire() {
	if s.delay == 0 {
		s.fireLocked()
		return
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		s.fireLocked()
		s.mu.Unlock()
	})
}

// fireLocked invokes the completion handler at most once. The handler runs
// without the lock so it may call back into the session.
func (s *Session) fireLocked() {
	if s.fired || !s.completed {
		return
	}
	s.fired = true
	fn := s.onSuccess

	if fn != nil {
		s.mu.Unlock()
		fn()
		s.mu.Lock()
	}
}
