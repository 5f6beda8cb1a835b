package chunker

import "iter"

// Combinations yields, for each sentence independently, every r-combination
// of its chunk sequence in index order. Selection is order-preserving and
// without repetition: for r=2 a sentence with n chunks yields exactly
// n*(n-1)/2 pairs, (A,B) once and never (B,A). Sentences with fewer than r
// chunks contribute nothing. The iterator is stateless and restartable.
func Combinations(sentences [][]Chunk, r int) iter.Seq[[]Chunk] {
	return func(yield func([]Chunk) bool) {
		if r <= 0 {
			return
		}
		for _, chunks := range sentences {
			if len(chunks) < r {
				continue
			}
			if !combine(chunks, r, yield) {
				return
			}
		}
	}
}

// combine emits r-combinations of chunks in lexicographic index order.
// Returns false if the consumer stopped early.
func combine(chunks []Chunk, r int, yield func([]Chunk) bool) bool {
	idx := make([]int, r)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]Chunk, r)
		for i, j := range idx {
			combo[i] = chunks[j]
		}
		if !yield(combo) {
			return false
		}

		// Advance the rightmost index that can still move.
		i := r - 1
		for i >= 0 && idx[i] == len(chunks)-r+i {
			i--
		}
		if i < 0 {
			return true
		}
		idx[i]++
		for j := i + 1; j < r; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
