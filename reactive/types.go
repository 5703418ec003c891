package reactive

import (
	"errors"
	"time"

	"github.com/delaneyj/copysignals/arena"
)

var (
	ErrUseAfterInvalidate   = arena.ErrUseAfterInvalidate
	ErrNotInReactiveContext = errors.New("reactive: not in a reactive context")
)

// ScopeID identifies a scope of the host. Zero is never a valid scope.
type ScopeID uint64

// EffectID is the arena handle of an effect record.
type EffectID = arena.Handle

// Host is the surrounding UI framework. CurrentScope is called with the
// runtime lock held and must not call back into the runtime.
type Host interface {
	CurrentScope() (ScopeID, bool)
	// ScheduleUpdate asks the host to re-run a plain consumer later. It must
	// not block and must not run anything synchronously.
	ScheduleUpdate(id ScopeID)
	// RunOnce runs init exactly once per scope instantiation and returns the
	// stored result on every later call from the same call position.
	RunOnce(init func() any) (any, error)
}

type Metrics interface {
	SignalWritten()
	EffectRan(d time.Duration)
	SelectorRecomputed(changed bool)
	UpdateScheduled()
	StaleEffectSkipped()
}

type noopMetrics struct{}

func (noopMetrics) SignalWritten()          {}
func (noopMetrics) EffectRan(time.Duration) {}
func (noopMetrics) SelectorRecomputed(bool) {}
func (noopMetrics) UpdateScheduled()        {}
func (noopMetrics) StaleEffectSkipped()     {}

type Stats struct {
	LiveSlots          int
	SignalWrites       uint64
	EffectRuns         uint64
	UpdatesScheduled   uint64
	StaleEffects       uint64
	SelectorRecomputes uint64
}

// source is anything an effect can subscribe to.
type source interface {
	unsubscribeEffectLocked(id EffectID)
	unsubscribeScopeLocked(id ScopeID)
}

type ownedSlot struct {
	handle arena.Handle
	effect bool
}
