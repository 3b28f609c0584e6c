// Package postingops implements the set algebra over posting lists: all
// three operations are single linear merge walks over strictly-ascending
// uint32 slices, with no auxiliary hash state.
package postingops

// Intersect returns the strictly-ascending elements common to a and b.
// The result has length at most min(len(a), len(b)).
func Intersect(a, b []uint32) []uint32 {
	out := make([]uint32, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Union returns the strictly-ascending elements present in a or b, with
// equal heads emitted once.
func Union(a, b []uint32) []uint32 {
	out := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Complement returns universe minus excluded: the elements of universe
// that do not appear in excluded. excluded is not required to be a
// subset of universe; any element of excluded absent from universe is
// simply discarded.
func Complement(excluded, universe []uint32) []uint32 {
	out := make([]uint32, 0, len(universe))
	i, j := 0, 0
	for i < len(universe) {
		for j < len(excluded) && excluded[j] < universe[i] {
			j++
		}
		if j < len(excluded) && excluded[j] == universe[i] {
			i++
			continue
		}
		out = append(out, universe[i])
		i++
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
