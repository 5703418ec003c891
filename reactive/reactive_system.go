package reactive

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/copysignals/arena"
)

type Option func(*Runtime)

func WithHost(h Host) Option {
	return func(rt *Runtime) {
		rt.host = h
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(rt *Runtime) {
		if m != nil {
			rt.metrics = m
		}
	}
}

// Runtime owns the arena holding every signal and effect plus the tracking
// state used for dependency discovery. One mutex guards all of it and is
// never held while user code runs.
type Runtime struct {
	mu      sync.Mutex
	arena   *arena.Arena
	host    Host
	logger  *slog.Logger
	metrics Metrics

	// tracking contexts by goroutine id
	contexts map[uint64]*trackingContext
	frames   int

	owned        map[ScopeID][]ownedSlot
	scopeSources map[ScopeID]map[arena.Handle]source

	stats Stats
}

func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		arena:        arena.New(),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:      noopMetrics{},
		contexts:     map[uint64]*trackingContext{},
		owned:        map[ScopeID][]ownedSlot{},
		scopeSources: map[ScopeID]map[arena.Handle]source{},
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

type frame struct {
	effect EffectID
	paused bool
}

type pendingEffect struct {
	id     EffectID
	height int
}

type trackingContext struct {
	gid        uint64
	stack      []frame
	queue      []pendingEffect
	queued     mapset.Set[EffectID]
	flushing   bool
	batchDepth int
}

func (ctx *trackingContext) idle() bool {
	return len(ctx.stack) == 0 && len(ctx.queue) == 0 && !ctx.flushing && ctx.batchDepth == 0
}

// enqueue keeps the queue ordered by height, lowest first, so a selector
// settles before anything reading it runs. Equal heights stay FIFO.
func (ctx *trackingContext) enqueue(id EffectID, height int) bool {
	if !ctx.queued.Add(id) {
		return false
	}
	i := sort.Search(len(ctx.queue), func(i int) bool {
		return ctx.queue[i].height > height
	})
	ctx.queue = append(ctx.queue, pendingEffect{})
	copy(ctx.queue[i+1:], ctx.queue[i:])
	ctx.queue[i] = pendingEffect{id: id, height: height}
	return true
}

func (rt *Runtime) contextLocked() *trackingContext {
	gid := goroutineID()
	ctx, ok := rt.contexts[gid]
	if !ok {
		ctx = &trackingContext{gid: gid, queued: mapset.NewThreadUnsafeSet[EffectID]()}
		rt.contexts[gid] = ctx
	}
	return ctx
}

func (rt *Runtime) releaseLocked(ctx *trackingContext) {
	if ctx.idle() {
		delete(rt.contexts, ctx.gid)
	}
}

func (rt *Runtime) pushLocked(f frame) *trackingContext {
	ctx := rt.contextLocked()
	ctx.stack = append(ctx.stack, f)
	rt.frames++
	return ctx
}

func (rt *Runtime) popLocked(ctx *trackingContext) {
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	rt.frames--
	rt.releaseLocked(ctx)
}

func (rt *Runtime) topFrameLocked() (frame, bool) {
	if rt.frames == 0 {
		return frame{}, false
	}
	ctx, ok := rt.contexts[goroutineID()]
	if !ok || len(ctx.stack) == 0 {
		return frame{}, false
	}
	return ctx.stack[len(ctx.stack)-1], true
}

// currentScope asks the host which scope is executing. Inside a running
// effect that the host does not know about, the effect's owner is used.
func (rt *Runtime) currentScope() (ScopeID, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.host != nil {
		if id, ok := rt.host.CurrentScope(); ok {
			return id, nil
		}
	}
	if f, ok := rt.topFrameLocked(); ok && !f.paused {
		if e, err := rt.effectLocked(f.effect); err == nil && e.owner != 0 {
			return e.owner, nil
		}
	}
	return 0, ErrNotInReactiveContext
}

func (rt *Runtime) ownLocked(owner ScopeID, h arena.Handle, effect bool) {
	if owner == 0 {
		return
	}
	rt.owned[owner] = append(rt.owned[owner], ownedSlot{handle: h, effect: effect})
}

func (rt *Runtime) subscribeScopeLocked(id ScopeID, h arena.Handle, src source) {
	sources, ok := rt.scopeSources[id]
	if !ok {
		sources = map[arena.Handle]source{}
		rt.scopeSources[id] = sources
	}
	sources[h] = src
}

func (rt *Runtime) scheduleUpdates(scopes []ScopeID) {
	if rt.host == nil || len(scopes) == 0 {
		return
	}
	for _, id := range scopes {
		rt.host.ScheduleUpdate(id)
		rt.metrics.UpdateScheduled()
	}
	rt.mu.Lock()
	rt.stats.UpdatesScheduled += uint64(len(scopes))
	rt.mu.Unlock()
}

// flush drains the effect queue of the calling goroutine. Nested writes made
// by running effects only enqueue, the outermost flush runs them.
func (rt *Runtime) flush() {
	rt.mu.Lock()
	ctx, ok := rt.contexts[goroutineID()]
	if !ok || ctx.flushing || ctx.batchDepth > 0 {
		rt.mu.Unlock()
		return
	}
	ctx.flushing = true
	rt.mu.Unlock()

	defer func() {
		rt.mu.Lock()
		ctx.flushing = false
		if r := recover(); r != nil {
			ctx.queue = nil
			ctx.queued.Clear()
			rt.releaseLocked(ctx)
			rt.mu.Unlock()
			panic(r)
		}
		rt.releaseLocked(ctx)
		rt.mu.Unlock()
	}()

	for {
		rt.mu.Lock()
		if len(ctx.queue) == 0 {
			rt.mu.Unlock()
			return
		}
		id := ctx.queue[0].id
		ctx.queue = ctx.queue[1:]
		ctx.queued.Remove(id)
		rt.mu.Unlock()

		rt.runEffect(id)
	}
}

func (rt *Runtime) StartBatch() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.contextLocked().batchDepth++
}

func (rt *Runtime) EndBatch() {
	rt.mu.Lock()
	ctx, ok := rt.contexts[goroutineID()]
	if !ok || ctx.batchDepth == 0 {
		rt.mu.Unlock()
		panic("reactive: EndBatch without StartBatch")
	}
	ctx.batchDepth--
	done := ctx.batchDepth == 0
	rt.releaseLocked(ctx)
	rt.mu.Unlock()

	if done {
		rt.flush()
	}
}

// Batch defers effect re-runs until fn returns. Each effect queued by the
// writes inside fn runs once.
func (rt *Runtime) Batch(fn func()) {
	rt.StartBatch()
	defer rt.EndBatch()
	fn()
}

// Untrack runs fn without subscribing anything to the signals it reads.
func (rt *Runtime) Untrack(fn func()) {
	rt.mu.Lock()
	ctx := rt.pushLocked(frame{paused: true})
	rt.mu.Unlock()
	defer func() {
		rt.mu.Lock()
		rt.popLocked(ctx)
		rt.mu.Unlock()
	}()
	fn()
}

// DropScope invalidates every signal and effect created under the scope and
// forgets the scope's plain subscriptions. Handles into those slots fail
// with ErrUseAfterInvalidate afterwards.
func (rt *Runtime) DropScope(id ScopeID) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	for _, src := range rt.scopeSources[id] {
		src.unsubscribeScopeLocked(id)
	}
	delete(rt.scopeSources, id)

	slots := rt.owned[id]
	delete(rt.owned, id)

	dropped := 0
	for _, s := range slots {
		if s.effect {
			if e, err := rt.effectLocked(s.handle); err == nil {
				e.clearSourcesLocked(s.handle)
			}
		}
		if err := rt.arena.Invalidate(s.handle); err == nil {
			dropped++
		}
	}
	rt.logger.Debug("scope dropped", "scope", uint64(id), "slots", dropped)
	return dropped
}

func (rt *Runtime) Stats() Stats {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	s := rt.stats
	s.LiveSlots = rt.arena.Len()
	return s
}

func (rt *Runtime) String() string {
	s := rt.Stats()
	return fmt.Sprintf("runtime{slots: %d, writes: %d, effect runs: %d}", s.LiveSlots, s.SignalWrites, s.EffectRuns)
}
