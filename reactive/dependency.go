package reactive

//go:generate go run ../cmd/codegen --count 6 --out dependencies_gen.go

// Dependency is a set of plain values a selector recomputes on.
type Dependency[D any] interface {
	Changed(prev D) bool
}

// DepsSlice compares element by element.
type DepsSlice[T comparable] []T

func (d DepsSlice[T]) Changed(prev DepsSlice[T]) bool {
	if len(d) != len(prev) {
		return true
	}
	for i := range d {
		if d[i] != prev[i] {
			return true
		}
	}
	return false
}
