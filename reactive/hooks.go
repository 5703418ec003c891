package reactive

import "fmt"

func once[T any](rt *Runtime, init func() T) T {
	if rt.host == nil {
		panic(fmt.Errorf("reactive: hook: %w", ErrNotInReactiveContext))
	}
	v, err := rt.host.RunOnce(func() any {
		return init()
	})
	if err != nil {
		panic(fmt.Errorf("reactive: hook: %w", err))
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("reactive: hook slot holds %T, want %T; hooks must be called in the same order on every render", v, zero))
	}
	return t
}

// UseSignal creates a signal on the first render of the current scope and
// returns the same handle on every later render.
func UseSignal[T any](rt *Runtime, init func() T, opts ...SignalOption) WriteableSignal[T] {
	return once(rt, func() WriteableSignal[T] {
		return Signal(rt, init(), opts...)
	})
}

func UseEffect(rt *Runtime, fn func()) EffectHandle {
	return once(rt, func() EffectHandle {
		e, err := Effect(rt, fn)
		if err != nil {
			panic(err)
		}
		return e
	})
}

func UseSelector[R comparable](rt *Runtime, compute func() R) ReadonlySignal[R] {
	return once(rt, func() ReadonlySignal[R] {
		return MustSelector(rt, compute)
	})
}

// UseSelectorWithDependencies is UseSelector that also recomputes when deps,
// plain values that are not signals, differ from the ones seen on the
// previous render.
func UseSelectorWithDependencies[D Dependency[D], R comparable](rt *Runtime, deps D, compute func(D) R) ReadonlySignal[R] {
	snapshot := UseSignal(rt, func() D { return deps })
	selector := once(rt, func() ReadonlySignal[R] {
		return MustSelector(rt, func() R {
			return compute(snapshot.Value())
		})
	})
	if deps.Changed(snapshot.Peek()) {
		snapshot.SetValue(deps)
	}
	return selector
}
