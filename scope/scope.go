package scope

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/copysignals/reactive"
)

// maxFlushPasses bounds Flush when renders keep scheduling each other.
const maxFlushPasses = 1024

var ErrFlushLimit = errors.New("scope: flush did not settle")

// Component renders into a scope. Hooks must be called in the same order on
// every render.
type Component func(s *Scope)

// Tree is a minimal host for a reactive.Runtime: it knows which scope is
// rendering, stores hook slots per scope and collects scopes that asked for
// an update until Flush re-renders them.
type Tree struct {
	rt     *reactive.Runtime
	logger *slog.Logger

	mu        sync.Mutex
	nextID    uint64
	scopes    map[reactive.ScopeID]*Scope
	rendering []*Scope
	dirty     mapset.Set[reactive.ScopeID]
}

func NewTree(opts ...reactive.Option) *Tree {
	t := &Tree{
		scopes: map[reactive.ScopeID]*Scope{},
		dirty:  mapset.NewThreadUnsafeSet[reactive.ScopeID](),
	}
	t.rt = reactive.NewRuntime(append([]reactive.Option{reactive.WithHost(t)}, opts...)...)
	t.logger = t.rt.Logger()
	return t
}

func (t *Tree) Runtime() *reactive.Runtime {
	return t.rt
}

// Scope is one instantiation of a component.
type Scope struct {
	tree      *Tree
	id        reactive.ScopeID
	name      string
	parent    *Scope
	depth     int
	component Component

	hooks    []any
	hookIdx  int
	children map[uint64]*Scope
	touched  mapset.Set[uint64]
	renders  int
	mounted  bool
}

func (s *Scope) ID() reactive.ScopeID {
	return s.id
}

func (s *Scope) Name() string {
	return s.name
}

func (s *Scope) Parent() *Scope {
	return s.parent
}

func (s *Scope) Runtime() *reactive.Runtime {
	return s.tree.rt
}

func (s *Scope) Renders() int {
	s.tree.mu.Lock()
	defer s.tree.mu.Unlock()
	return s.renders
}

func (s *Scope) Mounted() bool {
	s.tree.mu.Lock()
	defer s.tree.mu.Unlock()
	return s.mounted
}

func (t *Tree) newScopeLocked(name string, parent *Scope, c Component) *Scope {
	t.nextID++
	s := &Scope{
		tree:      t,
		id:        reactive.ScopeID(t.nextID),
		name:      name,
		parent:    parent,
		component: c,
		children:  map[uint64]*Scope{},
		touched:   mapset.NewThreadUnsafeSet[uint64](),
		mounted:   true,
	}
	if parent != nil {
		s.depth = parent.depth + 1
	}
	t.scopes[s.id] = s
	return s
}

// Mount creates a root scope and renders it.
func (t *Tree) Mount(name string, c Component) *Scope {
	t.mu.Lock()
	s := t.newScopeLocked(name, nil, c)
	t.mu.Unlock()

	t.logger.Debug("mount", "scope", name, "id", uint64(s.id))
	t.render(s)
	return s
}

// Child renders the keyed child of s. It must be called while s renders; a
// child whose key is not used during a render of its parent is unmounted.
func (s *Scope) Child(key string, c Component) *Scope {
	t := s.tree
	k := xxhash.Sum64String(key)

	t.mu.Lock()
	child, ok := s.children[k]
	if !ok {
		child = t.newScopeLocked(s.name+"/"+key, s, c)
		s.children[k] = child
	}
	child.component = c
	s.touched.Add(k)
	t.mu.Unlock()

	t.render(child)
	return child
}

func (s *Scope) Rerender() {
	s.tree.render(s)
}

func (t *Tree) render(s *Scope) {
	t.mu.Lock()
	if !s.mounted {
		t.mu.Unlock()
		return
	}
	s.hookIdx = 0
	s.touched.Clear()
	s.renders++
	t.dirty.Remove(s.id)
	t.rendering = append(t.rendering, s)
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.rendering = t.rendering[:len(t.rendering)-1]
		var stale []*Scope
		for k, child := range s.children {
			if !s.touched.Contains(k) {
				stale = append(stale, child)
			}
		}
		t.mu.Unlock()
		for _, child := range stale {
			child.Unmount()
		}
	}()

	s.component(s)
}

// Unmount tears down s and its children, children first, and drops every
// signal and effect they own.
func (s *Scope) Unmount() {
	t := s.tree
	t.mu.Lock()
	if !s.mounted {
		t.mu.Unlock()
		return
	}
	s.mounted = false
	children := make([]*Scope, 0, len(s.children))
	for _, child := range s.children {
		children = append(children, child)
	}
	t.mu.Unlock()

	for _, child := range children {
		child.Unmount()
	}

	dropped := t.rt.DropScope(s.id)

	t.mu.Lock()
	delete(t.scopes, s.id)
	t.dirty.Remove(s.id)
	if s.parent != nil {
		for k, sibling := range s.parent.children {
			if sibling == s {
				delete(s.parent.children, k)
			}
		}
	}
	s.children = map[uint64]*Scope{}
	s.hooks = nil
	t.mu.Unlock()

	t.logger.Debug("unmount", "scope", s.name, "id", uint64(s.id), "slots", dropped)
}

func (t *Tree) CurrentScope() (reactive.ScopeID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.rendering) == 0 {
		return 0, false
	}
	return t.rendering[len(t.rendering)-1].id, true
}

// ScheduleUpdate marks the scope dirty. Nothing renders until Flush.
func (t *Tree) ScheduleUpdate(id reactive.ScopeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.scopes[id]; !ok || !s.mounted {
		return
	}
	t.dirty.Add(id)
}

// RunOnce returns the value stored in the next hook slot of the rendering
// scope, running init to fill the slot on the first render.
func (t *Tree) RunOnce(init func() any) (any, error) {
	t.mu.Lock()
	if len(t.rendering) == 0 {
		t.mu.Unlock()
		return nil, reactive.ErrNotInReactiveContext
	}
	s := t.rendering[len(t.rendering)-1]
	idx := s.hookIdx
	s.hookIdx++
	if idx < len(s.hooks) {
		v := s.hooks[idx]
		t.mu.Unlock()
		return v, nil
	}
	if idx != len(s.hooks) {
		t.mu.Unlock()
		return nil, fmt.Errorf("scope %s: hook %d called before hook %d", s.name, idx, len(s.hooks))
	}
	// reserve the slot so hooks nested in init get the following ones
	s.hooks = append(s.hooks, nil)
	t.mu.Unlock()

	v := init()

	t.mu.Lock()
	if idx < len(s.hooks) {
		s.hooks[idx] = v
	}
	t.mu.Unlock()
	return v, nil
}

func (t *Tree) Dirty() []reactive.ScopeID {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := t.dirty.ToSlice()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Flush re-renders dirty scopes, parents first, until none are left. It
// returns the number of renders performed.
func (t *Tree) Flush() (int, error) {
	renders := 0
	for pass := 0; pass < maxFlushPasses; pass++ {
		t.mu.Lock()
		if t.dirty.Cardinality() == 0 {
			t.mu.Unlock()
			return renders, nil
		}
		pending := make([]*Scope, 0, t.dirty.Cardinality())
		t.dirty.Each(func(id reactive.ScopeID) bool {
			if s, ok := t.scopes[id]; ok {
				pending = append(pending, s)
			}
			return false
		})
		t.dirty.Clear()
		t.mu.Unlock()

		sort.Slice(pending, func(i, j int) bool {
			if pending[i].depth != pending[j].depth {
				return pending[i].depth < pending[j].depth
			}
			return pending[i].id < pending[j].id
		})

		rendered := mapset.NewThreadUnsafeSet[reactive.ScopeID]()
		for _, s := range pending {
			if ancestorRendered(s, rendered) {
				continue
			}
			t.render(s)
			rendered.Add(s.id)
			renders++
		}
	}
	return renders, fmt.Errorf("%w after %d passes", ErrFlushLimit, maxFlushPasses)
}

// ancestorRendered reports whether an ancestor of s already rendered in this
// pass, which rendered s along with it.
func ancestorRendered(s *Scope, rendered mapset.Set[reactive.ScopeID]) bool {
	for p := s.parent; p != nil; p = p.parent {
		if rendered.Contains(p.id) {
			return true
		}
	}
	return false
}
