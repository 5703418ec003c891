package reactive

import (
	"fmt"
	"reflect"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/copysignals/arena"
)

type signalData[T any] struct {
	name              string
	value             T
	equal             func(a, b T) bool
	height            int
	subscribers       mapset.Set[ScopeID]
	effectSubscribers mapset.Set[EffectID]
}

type signalConfig struct {
	name      string
	deepEqual bool
}

type SignalOption func(*signalConfig)

func WithName(name string) SignalOption {
	return func(c *signalConfig) {
		c.name = name
	}
}

// WithDeepEqual makes SetValue skip values that are reflect.DeepEqual to the
// current one.
func WithDeepEqual() SignalOption {
	return func(c *signalConfig) {
		c.deepEqual = true
	}
}

// WriteableSignal is a copyable handle to a reactive cell.
type WriteableSignal[T any] struct {
	rt    *Runtime
	inner arena.CopyValue[*signalData[T]]
}

func newSignalData[T any](value T, cfg signalConfig) *signalData[T] {
	d := &signalData[T]{
		name:              cfg.name,
		value:             value,
		subscribers:       mapset.NewThreadUnsafeSet[ScopeID](),
		effectSubscribers: mapset.NewThreadUnsafeSet[EffectID](),
	}
	if cfg.deepEqual {
		d.equal = func(a, b T) bool {
			return reflect.DeepEqual(a, b)
		}
	}
	return d
}

// allocSignal reserves an invalid slot. Slots with a zero owner are never
// dropped.
func allocSignal[T any](rt *Runtime, owner ScopeID) WriteableSignal[T] {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	s := WriteableSignal[T]{rt: rt, inner: arena.Invalid[*signalData[T]](rt.arena)}
	rt.ownLocked(owner, s.inner.Handle(), false)
	return s
}

func (s WriteableSignal[T]) setHeight(height int) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	if d, err := s.inner.Get(); err == nil {
		d.height = height
	}
}

func (s WriteableSignal[T]) init(d *signalData[T]) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	if err := s.inner.Set(d); err != nil {
		panic(fmt.Errorf("reactive: init signal: %w", err))
	}
}

func Signal[T any](rt *Runtime, value T, opts ...SignalOption) WriteableSignal[T] {
	cfg := signalConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	// signals may live outside any scope
	owner, _ := rt.currentScope()
	s := allocSignal[T](rt, owner)
	s.init(newSignalData(value, cfg))
	return s
}

func (s WriteableSignal[T]) dataLocked(op string) (*signalData[T], error) {
	if s.rt == nil {
		return nil, fmt.Errorf("reactive: %s zero signal: %w", op, ErrUseAfterInvalidate)
	}
	d, err := s.inner.Get()
	if err != nil {
		return nil, fmt.Errorf("reactive: %s signal %s: %w", op, s.inner.Handle(), err)
	}
	return d, nil
}

func (s WriteableSignal[T]) ID() arena.Handle {
	return s.inner.Handle()
}

func (s WriteableSignal[T]) Valid() bool {
	if s.rt == nil {
		return false
	}
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.inner.Valid()
}

func (s WriteableSignal[T]) Name() string {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	d, err := s.dataLocked("name")
	if err != nil {
		return ""
	}
	return d.name
}

// Value returns the current value and subscribes whoever is evaluating: the
// effect on top of the stack, or else the host's current scope.
// It panics if the signal's scope was dropped.
func (s WriteableSignal[T]) Value() T {
	v, err := s.TryValue()
	if err != nil {
		panic(err)
	}
	return v
}

func (s WriteableSignal[T]) TryValue() (T, error) {
	var zero T
	if s.rt == nil {
		return zero, fmt.Errorf("reactive: read zero signal: %w", ErrUseAfterInvalidate)
	}
	rt := s.rt
	rt.mu.Lock()
	defer rt.mu.Unlock()
	d, err := s.dataLocked("read")
	if err != nil {
		return zero, err
	}
	s.trackLocked(d)
	return d.value, nil
}

// Peek returns the current value without subscribing anything.
func (s WriteableSignal[T]) Peek() T {
	if s.rt == nil {
		panic(fmt.Errorf("reactive: peek zero signal: %w", ErrUseAfterInvalidate))
	}
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	d, err := s.dataLocked("peek")
	if err != nil {
		panic(err)
	}
	return d.value
}

func (s WriteableSignal[T]) trackLocked(d *signalData[T]) {
	rt := s.rt
	if f, ok := rt.topFrameLocked(); ok {
		if f.paused {
			return
		}
		e, err := rt.effectLocked(f.effect)
		if err != nil {
			return
		}
		d.effectSubscribers.Add(f.effect)
		e.sources[s.inner.Handle()] = s
		if d.height >= e.height {
			e.height = d.height + 1
		}
		return
	}
	if rt.host == nil {
		return
	}
	if id, ok := rt.host.CurrentScope(); ok {
		d.subscribers.Add(id)
		rt.subscribeScopeLocked(id, s.inner.Handle(), s)
	}
}

func (s WriteableSignal[T]) unsubscribeEffectLocked(id EffectID) {
	if d, err := s.inner.Get(); err == nil {
		d.effectSubscribers.Remove(id)
	}
}

func (s WriteableSignal[T]) unsubscribeScopeLocked(id ScopeID) {
	if d, err := s.inner.Get(); err == nil {
		d.subscribers.Remove(id)
	}
}

// SetValue replaces the value and propagates: effect subscribers re-run
// before SetValue returns, plain subscribers are handed to the host's
// ScheduleUpdate. Signals created WithDeepEqual skip equal values.
func (s WriteableSignal[T]) SetValue(v T) {
	if _, err := s.write(v, false); err != nil {
		panic(err)
	}
}

func (s WriteableSignal[T]) Update(fn func(T) T) {
	s.SetValue(fn(s.Peek()))
}

// setIfChanged is the memoization boundary used by selectors.
func (s WriteableSignal[T]) setIfChanged(v T, equal func(a, b T) bool) (bool, error) {
	if equal == nil {
		return s.write(v, false)
	}
	rt := s.rt
	rt.mu.Lock()
	d, err := s.dataLocked("write")
	if err != nil {
		rt.mu.Unlock()
		return false, err
	}
	same := equal(d.value, v)
	rt.mu.Unlock()
	if same {
		return false, nil
	}
	return s.write(v, true)
}

func (s WriteableSignal[T]) write(v T, force bool) (bool, error) {
	if s.rt == nil {
		return false, fmt.Errorf("reactive: write zero signal: %w", ErrUseAfterInvalidate)
	}
	rt := s.rt
	rt.mu.Lock()
	d, err := s.dataLocked("write")
	if err != nil {
		rt.mu.Unlock()
		return false, err
	}
	if !force && d.equal != nil && d.equal(d.value, v) {
		rt.mu.Unlock()
		return false, nil
	}
	d.value = v
	rt.stats.SignalWrites++

	if d.effectSubscribers.Cardinality() > 0 {
		ctx := rt.contextLocked()
		d.effectSubscribers.Each(func(id EffectID) bool {
			height := 0
			if e, err := rt.effectLocked(id); err == nil {
				height = e.height
			}
			ctx.enqueue(id, height)
			return false
		})
	}
	scopes := d.subscribers.ToSlice()
	rt.mu.Unlock()

	rt.metrics.SignalWritten()
	rt.scheduleUpdates(scopes)
	rt.flush()
	return true, nil
}

func (s WriteableSignal[T]) ReadOnly() ReadonlySignal[T] {
	return ReadonlySignal[T]{signal: s}
}

// ReadonlySignal hides the setter of a signal, selectors hand these out.
type ReadonlySignal[T any] struct {
	signal WriteableSignal[T]
}

func (s ReadonlySignal[T]) Value() T {
	return s.signal.Value()
}

func (s ReadonlySignal[T]) TryValue() (T, error) {
	return s.signal.TryValue()
}

func (s ReadonlySignal[T]) Peek() T {
	return s.signal.Peek()
}

func (s ReadonlySignal[T]) ID() arena.Handle {
	return s.signal.ID()
}

func (s ReadonlySignal[T]) Valid() bool {
	return s.signal.Valid()
}

func (s ReadonlySignal[T]) Name() string {
	return s.signal.Name()
}

func (s ReadonlySignal[T]) String() string {
	v, err := s.signal.TryValue()
	if err != nil {
		return "<invalid signal>"
	}
	return fmt.Sprint(v)
}

func (s WriteableSignal[T]) String() string {
	v, err := s.TryValue()
	if err != nil {
		return "<invalid signal>"
	}
	return fmt.Sprint(v)
}
