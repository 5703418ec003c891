package arena

import "fmt"

// CopyValue is a typed handle into an Arena. Copying it copies the reference,
// never the pointee.
type CopyValue[T any] struct {
	arena  *Arena
	handle Handle
}

// NewCopyValue allocates an invalid slot; it becomes readable after the first Set.
func NewCopyValue[T any](a *Arena) CopyValue[T] {
	return CopyValue[T]{arena: a, handle: a.Allocate()}
}

func Invalid[T any](a *Arena) CopyValue[T] {
	return NewCopyValue[T](a)
}

// At wraps an existing handle.
func At[T any](a *Arena, h Handle) CopyValue[T] {
	return CopyValue[T]{arena: a, handle: h}
}

func (c CopyValue[T]) Handle() Handle {
	return c.handle
}

func (c CopyValue[T]) Valid() bool {
	return c.arena != nil && c.arena.Valid(c.handle)
}

func (c CopyValue[T]) Get() (T, error) {
	var zero T
	if c.arena == nil {
		return zero, fmt.Errorf("nil arena: %w", ErrUseAfterInvalidate)
	}
	v, err := c.arena.Read(c.handle)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("arena: slot %s holds %T, not %T", c.handle, v, zero))
	}
	return t, nil
}

// Set initializes the slot when it is still invalid and overwrites it otherwise.
func (c CopyValue[T]) Set(v T) error {
	if c.arena == nil {
		return fmt.Errorf("nil arena: %w", ErrUseAfterInvalidate)
	}
	s, err := c.arena.lookup(c.handle)
	if err != nil {
		return err
	}
	if !s.valid {
		return c.arena.Init(c.handle, v)
	}
	s.value = v
	return nil
}

func (c CopyValue[T]) Invalidate() error {
	if c.arena == nil {
		return fmt.Errorf("nil arena: %w", ErrUseAfterInvalidate)
	}
	return c.arena.Invalidate(c.handle)
}
