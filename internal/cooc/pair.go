package cooc

// Pair is an unordered pair of reference keys stored with A <= B.
// A == B denotes a self-loop.
type Pair struct {
	A uint64 `json:"a"`
	B uint64 `json:"b"`
}

// NewPair returns the canonical pair for a and b.
func NewPair(a, b uint64) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// SelfLoop reports whether the pair joins a reference with itself.
func (p Pair) SelfLoop() bool {
	return p.A == p.B
}

// ForEachPair calls fn for every unordered pair of distinct keys in refs and,
// when selfLoops is set, for every key paired with itself. refs must be
// sorted and free of duplicates; each pair is produced exactly once.
func ForEachPair(refs []uint64, selfLoops bool, fn func(Pair)) {
	for i, a := range refs {
		if selfLoops {
			fn(Pair{A: a, B: a})
		}
		for _, b := range refs[i+1:] {
			fn(Pair{A: a, B: b})
		}
	}
}

// PairCount returns how many pairs ForEachPair yields for k references.
func PairCount(k int, selfLoops bool) int {
	n := k * (k - 1) / 2
	if selfLoops {
		n += k
	}
	return n
}

// normalized reports whether refs is strictly ascending.
func normalized(refs []uint64) bool {
	for i := 1; i < len(refs); i++ {
		if refs[i] <= refs[i-1] {
			return false
		}
	}
	return true
}
