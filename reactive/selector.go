package reactive

import "fmt"

// Selector creates a memoized derived signal. compute runs right away and
// again whenever a signal it read changes; the result is only written, and
// only propagated, when it differs from the previous one.
func Selector[R comparable](rt *Runtime, compute func() R) (ReadonlySignal[R], error) {
	return SelectorFunc(rt, func(a, b R) bool { return a == b }, compute)
}

// SelectorFunc is Selector for values that are not comparable with ==.
func SelectorFunc[R any](rt *Runtime, equal func(a, b R) bool, compute func() R) (ReadonlySignal[R], error) {
	owner, err := rt.currentScope()
	if err != nil {
		return ReadonlySignal[R]{}, fmt.Errorf("selector: %w", err)
	}

	state := allocSignal[R](rt, owner)
	initialized := false
	var id EffectID
	id = rt.newEffect(owner, func() {
		value := compute()
		height := rt.effectHeight(id)
		if !initialized {
			initialized = true
			d := newSignalData(value, signalConfig{})
			d.height = height
			state.init(d)
			return
		}
		state.setHeight(height)
		changed, err := state.setIfChanged(value, equal)
		if err != nil {
			panic(err)
		}
		rt.mu.Lock()
		rt.stats.SelectorRecomputes++
		rt.mu.Unlock()
		rt.metrics.SelectorRecomputed(changed)
	})
	rt.runEffect(id)
	rt.flush()

	return state.ReadOnly(), nil
}

// MustSelector panics instead of returning an error.
func MustSelector[R comparable](rt *Runtime, compute func() R) ReadonlySignal[R] {
	s, err := Selector(rt, compute)
	if err != nil {
		panic(err)
	}
	return s
}
