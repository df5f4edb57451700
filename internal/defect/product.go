package defect

import "iter"

// Product yields the Cartesian product of dims, one value from each
// dimension per combination. The last dimension varies fastest. With no
// dimensions it yields a single empty combination; if any dimension is
// empty it yields nothing. Every yielded slice is freshly allocated.
func Product(dims [][]int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		for _, d := range dims {
			if len(d) == 0 {
				return
			}
		}
		pos := make([]int, len(dims))
		for {
			combo := make([]int, len(dims))
			for k, d := range dims {
				combo[k] = d[pos[k]]
			}
			if !yield(combo) {
				return
			}

			k := len(dims) - 1
			for ; k >= 0; k-- {
				pos[k]++
				if pos[k] < len(dims[k]) {
					break
				}
				pos[k] = 0
			}
			if k < 0 {
				return
			}
		}
	}
}
