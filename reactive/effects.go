package reactive

import (
	"fmt"
	"time"

	"github.com/delaneyj/copysignals/arena"
)

type effect struct {
	owner    ScopeID
	callback func()
	sources  map[arena.Handle]source
	// one more than the highest signal read during the last run
	height int
}

func (e *effect) clearSourcesLocked(id EffectID) {
	for h, src := range e.sources {
		src.unsubscribeEffectLocked(id)
		delete(e.sources, h)
	}
}

func (rt *Runtime) effectLocked(id EffectID) (*effect, error) {
	return arena.At[*effect](rt.arena, id).Get()
}

func (rt *Runtime) newEffect(owner ScopeID, callback func()) EffectID {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	cv := arena.NewCopyValue[*effect](rt.arena)
	if err := cv.Set(&effect{
		owner:    owner,
		callback: callback,
		sources:  map[arena.Handle]source{},
	}); err != nil {
		panic(err)
	}
	rt.ownLocked(owner, cv.Handle(), true)
	return cv.Handle()
}

// runEffect clears the previous subscriptions of the effect and runs its body
// with a fresh frame on the stack so every read resubscribes it.
func (rt *Runtime) runEffect(id EffectID) {
	rt.mu.Lock()
	e, err := rt.effectLocked(id)
	if err != nil {
		rt.stats.StaleEffects++
		rt.mu.Unlock()
		rt.logger.Debug("skipping stale effect", "effect", id.String())
		rt.metrics.StaleEffectSkipped()
		return
	}
	e.clearSourcesLocked(id)
	e.height = 0
	fn := e.callback
	ctx := rt.pushLocked(frame{effect: id})
	rt.stats.EffectRuns++
	rt.mu.Unlock()

	start := time.Now()
	defer func() {
		rt.mu.Lock()
		rt.popLocked(ctx)
		rt.mu.Unlock()
		rt.metrics.EffectRan(time.Since(start))
	}()
	fn()
}

func (rt *Runtime) effectHeight(id EffectID) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	e, err := rt.effectLocked(id)
	if err != nil {
		return 0
	}
	return e.height
}

// EffectHandle is a copyable reference to a registered effect.
type EffectHandle struct {
	rt *Runtime
	id EffectID
}

func (h EffectHandle) ID() EffectID {
	return h.id
}

func (h EffectHandle) Valid() bool {
	h.rt.mu.Lock()
	defer h.rt.mu.Unlock()
	return h.rt.arena.Valid(h.id)
}

// Stop unsubscribes the effect and invalidates it. Stopping twice is a no-op.
func (h EffectHandle) Stop() {
	rt := h.rt
	rt.mu.Lock()
	defer rt.mu.Unlock()
	e, err := rt.effectLocked(h.id)
	if err != nil {
		return
	}
	e.clearSourcesLocked(h.id)
	_ = rt.arena.Invalidate(h.id)
}

// Effect registers fn under the current scope and runs it once right away.
// fn runs again, synchronously, whenever a signal it read is written.
func Effect(rt *Runtime, fn func()) (EffectHandle, error) {
	owner, err := rt.currentScope()
	if err != nil {
		return EffectHandle{}, fmt.Errorf("effect: %w", err)
	}
	id := rt.newEffect(owner, fn)
	rt.runEffect(id)
	rt.flush()
	return EffectHandle{rt: rt, id: id}, nil
}
