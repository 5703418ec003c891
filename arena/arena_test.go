package arena_test

import (
	"testing"

	"github.com/delaneyj/copysignals/arena"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateStartsInvalid(t *testing.T) {
	a := arena.New()
	h := a.Allocate()

	assert.False(t, a.Valid(h))
	_, err := a.Read(h)
	assert.ErrorIs(t, err, arena.ErrUseAfterInvalidate)
	assert.ErrorIs(t, a.Write(h, 1), arena.ErrUseAfterInvalidate)

	require.NoError(t, a.Init(h, 1))
	v, err := a.Read(h)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, a.Len())
}

func TestWriteReplaces(t *testing.T) {
	a := arena.New()
	h := a.Allocate()
	require.NoError(t, a.Init(h, "a"))
	require.NoError(t, a.Write(h, "b"))

	v, err := a.Read(h)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestInvalidateMakesEveryAliasStale(t *testing.T) {
	a := arena.New()
	h := a.Allocate()
	alias := h
	require.NoError(t, a.Init(h, 42))
	require.NoError(t, a.Invalidate(h))

	for _, handle := range []arena.Handle{h, alias} {
		_, err := a.Read(handle)
		assert.ErrorIs(t, err, arena.ErrUseAfterInvalidate)
		assert.ErrorIs(t, a.Write(handle, 1), arena.ErrUseAfterInvalidate)
		assert.ErrorIs(t, a.Invalidate(handle), arena.ErrUseAfterInvalidate)
	}
	assert.Equal(t, 0, a.Len())
}

func TestFreeListReuseKeepsOldHandlesStale(t *testing.T) {
	a := arena.New()
	old := a.Allocate()
	require.NoError(t, a.Init(old, "old"))
	require.NoError(t, a.Invalidate(old))

	reused := a.Allocate()
	assert.Equal(t, old.Index(), reused.Index())
	assert.NotEqual(t, old.Generation(), reused.Generation())
	assert.Equal(t, 1, a.Cap())

	require.NoError(t, a.Init(reused, "new"))
	_, err := a.Read(old)
	assert.ErrorIs(t, err, arena.ErrUseAfterInvalidate)
	assert.ErrorIs(t, a.Init(old, "sneaky"), arena.ErrUseAfterInvalidate)

	v, err := a.Read(reused)
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestCopyValue(t *testing.T) {
	a := arena.New()
	cv := arena.Invalid[int](a)
	copied := cv

	_, err := cv.Get()
	assert.ErrorIs(t, err, arena.ErrUseAfterInvalidate)

	require.NoError(t, cv.Set(7))
	v, err := copied.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	require.NoError(t, copied.Set(8))
	v, err = cv.Get()
	require.NoError(t, err)
	assert.Equal(t, 8, v)

	require.NoError(t, cv.Invalidate())
	assert.False(t, copied.Valid())
	assert.ErrorIs(t, copied.Set(9), arena.ErrUseAfterInvalidate)

	var zero arena.CopyValue[int]
	_, err = zero.Get()
	assert.ErrorIs(t, err, arena.ErrUseAfterInvalidate)
}

func TestOutOfRangeHandle(t *testing.T) {
	a := arena.New()
	other := arena.New()
	other.Allocate()
	h := other.Allocate()

	_, err := a.Read(h)
	assert.ErrorIs(t, err, arena.ErrUseAfterInvalidate)
}
