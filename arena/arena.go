package arena

import (
	"errors"
	"fmt"
)

var ErrUseAfterInvalidate = errors.New("arena: use after invalidate")

// Handle is a copyable reference to an arena slot. It does not own the slot,
// any number of handles may alias the same one.
type Handle struct {
	index      uint32
	generation uint64
}

func (h Handle) Index() uint32 {
	return h.index
}

func (h Handle) Generation() uint64 {
	return h.generation
}

func (h Handle) String() string {
	return fmt.Sprintf("%d@%d", h.index, h.generation)
}

type slot struct {
	value      any
	valid      bool
	generation uint64
}

// Arena is generation checked slot storage. It is not safe for concurrent
// use, callers guard it with their own lock.
type Arena struct {
	slots []slot
	free  []uint32
	live  int
}

func New() *Arena {
	return &Arena{}
}

// Allocate returns a handle to a fresh invalid slot.
func (a *Arena) Allocate() Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		return Handle{index: idx, generation: a.slots[idx].generation}
	}
	a.slots = append(a.slots, slot{})
	return Handle{index: uint32(len(a.slots) - 1)}
}

func (a *Arena) lookup(h Handle) (*slot, error) {
	if int(h.index) >= len(a.slots) {
		return nil, fmt.Errorf("slot %s out of range: %w", h, ErrUseAfterInvalidate)
	}
	s := &a.slots[h.index]
	if s.generation != h.generation {
		return nil, fmt.Errorf("slot %s is at generation %d: %w", h, s.generation, ErrUseAfterInvalidate)
	}
	return s, nil
}

// Init makes an invalid slot valid by storing its first value.
func (a *Arena) Init(h Handle, v any) error {
	s, err := a.lookup(h)
	if err != nil {
		return err
	}
	if !s.valid {
		a.live++
	}
	s.value = v
	s.valid = true
	return nil
}

func (a *Arena) Read(h Handle) (any, error) {
	s, err := a.lookup(h)
	if err != nil {
		return nil, err
	}
	if !s.valid {
		return nil, fmt.Errorf("slot %s is empty: %w", h, ErrUseAfterInvalidate)
	}
	return s.value, nil
}

// Write replaces the value of a valid slot. Nobody is notified.
func (a *Arena) Write(h Handle, v any) error {
	s, err := a.lookup(h)
	if err != nil {
		return err
	}
	if !s.valid {
		return fmt.Errorf("slot %s is empty: %w", h, ErrUseAfterInvalidate)
	}
	s.value = v
	return nil
}

// Invalidate bumps the slot generation and clears its value. Every handle
// carrying the old generation is stale from now on.
func (a *Arena) Invalidate(h Handle) error {
	s, err := a.lookup(h)
	if err != nil {
		return err
	}
	if s.valid {
		a.live--
	}
	s.generation++
	s.value = nil
	s.valid = false
	a.free = append(a.free, h.index)
	return nil
}

func (a *Arena) Valid(h Handle) bool {
	s, err := a.lookup(h)
	return err == nil && s.valid
}

// Len reports the number of initialized slots.
func (a *Arena) Len() int {
	return a.live
}

// Cap reports the number of slots ever allocated, free ones included.
func (a *Arena) Cap() int {
	return len(a.slots)
}
