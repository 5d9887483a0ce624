package store

import (
	"sync/atomic"
	"time"
)

// Slot holds the latest [Snapshot] for a single source.
//
// Slot is copy-on-write: every mutation builds a new Snapshot and swaps it in
// atomically. [Slot.Load] returns a consistent value without locking, so a
// reader always observes Latest and Fresh from the same commit.
//
// A slot has exactly one writer (its poller). Mutations still use a
// compare-and-swap loop so a misbehaving second writer cannot lose updates.
type Slot struct {
	name   string
	cur    atomic.Pointer[Snapshot]
	now    func() time.Time
	notify func(Snapshot)
}

// NewSlot creates an empty, stale slot.
//
// notify, if non-nil, is called after every committed change with the new
// snapshot. It must not block.
func NewSlot(name string, notify func(Snapshot)) *Slot {
	s := &Slot{
		name:   name,
		now:    time.Now,
		notify: notify,
	}
	s.cur.Store(&Snapshot{Name: name})
	return s
}

// Name returns the slot name.
func (s *Slot) Name() string {
	return s.name
}

// Load returns the current snapshot.
func (s *Slot) Load() Snapshot {
	return *s.cur.Load()
}

// Commit records a successful fetch: Latest becomes r and Fresh becomes true.
func (s *Slot) Commit(r Reading) Snapshot {
	return s.update(func(prev Snapshot) Snapshot {
		reading := r
		prev.Latest = &reading
		prev.Fresh = true
		prev.Attempts++
		prev.LastError = ""
		return prev
	})
}

// MarkStale records a failed fetch. Fresh becomes false; Latest is kept.
func (s *Slot) MarkStale(cause error) Snapshot {
	return s.update(func(prev Snapshot) Snapshot {
		prev.Fresh = false
		prev.Attempts++
		prev.Failures++
		if cause != nil {
			prev.LastError = cause.Error()
		}
		return prev
	})
}

func (s *Slot) update(fn func(Snapshot) Snapshot) Snapshot {
	for {
		old := s.cur.Load()
		next := fn(*old)
		next.Name = s.name
		next.UpdatedAt = s.now()
		if s.cur.CompareAndSwap(old, &next) {
			if s.notify != nil {
				s.notify(next)
			}
			return next
		}
	}
}
