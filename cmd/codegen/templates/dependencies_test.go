package templates

import (
	"go/format"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixedStrings(t *testing.T) {
	assert.Equal(t, "T0", prefixedStrings("T", 1))
	assert.Equal(t, "T0, T1, T2", prefixedStrings("T", 3))
	assert.Equal(t, "", prefixedStrings("T", 0))
}

func TestIndexedList(t *testing.T) {
	assert.Equal(t, "v0 T0, v1 T1", indexedList("v%[1]d T%[1]d", ", ", 2))
	assert.Equal(t, "d.V0 != prev.V0 || d.V1 != prev.V1", indexedList("d.V%[1]d != prev.V%[1]d", " || ", 2))
}

func TestDependenciesGenIsValidGo(t *testing.T) {
	src := DependenciesGen(3)
	formatted, err := format.Source([]byte(src))
	require.NoError(t, err)

	out := string(formatted)
	assert.Contains(t, out, "package reactive")
	assert.Contains(t, out, "type Deps3[T0, T1, T2 comparable] struct {")
	assert.Contains(t, out, "func Dependencies2[T0, T1 comparable](v0 T0, v1 T1) Deps2[T0, T1] {")
	assert.Contains(t, out, "return d.V0 != prev.V0 || d.V1 != prev.V1 || d.V2 != prev.V2")
	assert.NotContains(t, out, "Deps4")
}

func TestCheckedInOutputIsCurrent(t *testing.T) {
	checkedIn, err := os.ReadFile("../../../reactive/dependencies_gen.go")
	require.NoError(t, err)

	formatted, err := format.Source([]byte(DependenciesGen(6)))
	require.NoError(t, err)
	assert.Equal(t, string(checkedIn), string(formatted))
}
