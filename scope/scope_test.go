package scope_test

import (
	"testing"

	"github.com/delaneyj/copysignals/reactive"
	"github.com/delaneyj/copysignals/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMountAndCurrentScope(t *testing.T) {
	tree := scope.NewTree()

	_, ok := tree.CurrentScope()
	assert.False(t, ok)

	var inside reactive.ScopeID
	root := tree.Mount("root", func(s *scope.Scope) {
		inside, _ = tree.CurrentScope()
	})
	assert.Equal(t, root.ID(), inside)
	assert.Equal(t, "root", root.Name())
	assert.Nil(t, root.Parent())
	assert.True(t, root.Mounted())
	assert.Equal(t, 1, root.Renders())
	assert.Same(t, tree.Runtime(), root.Runtime())
}

func TestKeyedChildren(t *testing.T) {
	tree := scope.NewTree()
	rt := tree.Runtime()
	items := reactive.Signal(rt, []string{"a", "b", "c"})

	children := map[string]*scope.Scope{}
	root := tree.Mount("list", func(s *scope.Scope) {
		for _, item := range items.Value() {
			children[item] = s.Child(item, func(c *scope.Scope) {
				reactive.UseSignal(rt, func() string { return item })
			})
		}
	})
	a, b := children["a"], children["b"]
	require.NotNil(t, a)
	assert.Same(t, root, a.Parent())
	assert.Equal(t, "list/a", a.Name())
	// items plus one signal per child
	assert.Equal(t, 4, rt.Stats().LiveSlots)

	items.SetValue([]string{"a", "c"})
	renders, err := tree.Flush()
	require.NoError(t, err)
	assert.Equal(t, 1, renders)

	assert.Same(t, a, children["a"], "keyed child must be reused")
	assert.Equal(t, 2, a.Renders())
	assert.False(t, b.Mounted())
	assert.Equal(t, 3, rt.Stats().LiveSlots)

	root.Unmount()
	assert.False(t, a.Mounted())
	assert.Equal(t, 1, rt.Stats().LiveSlots)
}

func TestFlushRendersParentsFirstOnce(t *testing.T) {
	tree := scope.NewTree()
	rt := tree.Runtime()
	shared := reactive.Signal(rt, 0)

	var child *scope.Scope
	root := tree.Mount("parent", func(s *scope.Scope) {
		shared.Value()
		child = s.Child("child", func(c *scope.Scope) {
			shared.Value()
		})
	})

	shared.SetValue(1)
	assert.Equal(t, []reactive.ScopeID{root.ID(), child.ID()}, tree.Dirty())

	renders, err := tree.Flush()
	require.NoError(t, err)
	assert.Equal(t, 1, renders, "child renders with its parent")
	assert.Equal(t, 2, root.Renders())
	assert.Equal(t, 2, child.Renders())
}

func TestFlushSkipsUnmounted(t *testing.T) {
	tree := scope.NewTree()
	rt := tree.Runtime()
	count := reactive.Signal(rt, 0)

	root := tree.Mount("app", func(s *scope.Scope) {
		count.Value()
	})
	root.Unmount()

	count.SetValue(1)
	assert.Empty(t, tree.Dirty())
	tree.ScheduleUpdate(root.ID())
	assert.Empty(t, tree.Dirty())

	renders, err := tree.Flush()
	require.NoError(t, err)
	assert.Zero(t, renders)
}

func TestFlushLimit(t *testing.T) {
	tree := scope.NewTree()
	rt := tree.Runtime()
	count := reactive.Signal(rt, 0)

	tree.Mount("loop", func(s *scope.Scope) {
		v := count.Value()
		count.SetValue(v + 1)
	})

	_, err := tree.Flush()
	assert.ErrorIs(t, err, scope.ErrFlushLimit)
}

func TestRunOnceOutsideRender(t *testing.T) {
	tree := scope.NewTree()
	_, err := tree.RunOnce(func() any { return 1 })
	assert.ErrorIs(t, err, reactive.ErrNotInReactiveContext)
}

func TestRunOnceNestedHooks(t *testing.T) {
	tree := scope.NewTree()

	var got []any
	root := tree.Mount("nested", func(s *scope.Scope) {
		outer, err := tree.RunOnce(func() any {
			inner, err := tree.RunOnce(func() any { return "inner" })
			require.NoError(t, err)
			return "outer+" + inner.(string)
		})
		require.NoError(t, err)
		got = append(got, outer)
	})
	root.Rerender()

	assert.Equal(t, []any{"outer+inner", "outer+inner"}, got)
}
