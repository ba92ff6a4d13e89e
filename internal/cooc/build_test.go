package cooc

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

func doc(id uint64, year int, refs ...uint64) document.Document {
	return document.Document{ID: id, Year: year, References: document.NormalizeReferences(refs)}
}

// randomDocs generates a reproducible corpus spread over 2016-2020.
func randomDocs(seed int64, n int) []document.Document {
	rng := rand.New(rand.NewSource(seed))
	docs := make([]document.Document, n)
	for i := range docs {
		k := rng.Intn(12)
		refs := make([]uint64, k)
		for j := range refs {
			refs[j] = uint64(rng.Intn(40))
		}
		docs[i] = doc(uint64(i+1), 2016+rng.Intn(5), refs...)
	}
	return docs
}

func TestBuild_CountsDocumentsPerPair(t *testing.T) {
	docs := []document.Document{
		doc(1, 2020, 1, 2, 3),
		doc(2, 2020, 1, 2),
		doc(3, 2021, 2, 3),
		doc(4, 2019, 1, 2), // outside window
	}

	g, err := Build(docs, Window{Start: 2020, End: 2021}, Options{Weighted: true, SelfLoops: true})
	require.NoError(t, err)

	assert.Equal(t, int64(2), g.Weight(1, 2))
	assert.Equal(t, int64(1), g.Weight(1, 3))
	assert.Equal(t, int64(2), g.Weight(2, 3))
	assert.Equal(t, int64(2), g.Weight(1, 1))
	assert.Equal(t, int64(3), g.Weight(2, 2))
	assert.Equal(t, int64(2), g.Weight(3, 3))
	assert.Equal(t, int64(0), g.Weight(1, 4))
	assert.False(t, g.Has(1, 4))

	// 3 pairs + 3 loops from doc 1, 1 + 2 from doc 2, 1 + 2 from doc 3.
	assert.Equal(t, int64(12), g.Total())
	assert.Equal(t, 6, g.Len())
	assert.Equal(t, []uint64{1, 2, 3}, g.Nodes())

	st := g.Stats()
	assert.Equal(t, 3, st.SelfLoops)
	assert.Equal(t, int64(3), st.MaxWeight)
}

func TestBuild_NoSelfLoops(t *testing.T) {
	g, err := Build([]document.Document{doc(1, 2020, 5, 6), doc(2, 2020, 7)}, Window{2020, 2020}, Options{Weighted: true})
	require.NoError(t, err)

	assert.Equal(t, 1, g.Len())
	assert.False(t, g.Has(5, 5))
	assert.True(t, g.HasNode(7), "single-reference documents still register nodes")
	assert.Equal(t, int64(1), g.Total())
}

func TestBuild_DuplicateReferencesCountOnce(t *testing.T) {
	d := document.Document{ID: 1, Year: 2020, References: []uint64{4, 3, 4, 3}}
	g, err := Build([]document.Document{d}, Window{2020, 2020}, Options{Weighted: true, SelfLoops: true})
	require.NoError(t, err)

	assert.Equal(t, int64(1), g.Weight(3, 4))
	assert.Equal(t, int64(1), g.Weight(4, 4))
	assert.Equal(t, int64(3), g.Total())
}

func TestBuild_Unweighted(t *testing.T) {
	docs := []document.Document{doc(1, 2020, 1, 2), doc(2, 2020, 1, 2), doc(3, 2020, 1, 2)}
	g, err := Build(docs, Window{2020, 2020}, Options{Weighted: false, SelfLoops: true})
	require.NoError(t, err)

	for _, e := range g.Edges() {
		assert.Equal(t, int64(1), e.Weight, "edge %v", e.Pair)
	}
	assert.Equal(t, int64(3), g.Total())
}

func TestBuild_EmptyWindow(t *testing.T) {
	g, err := Build(randomDocs(1, 50), Window{1990, 1995}, Options{Weighted: true, SelfLoops: true})
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, int64(0), g.Total())
}

func TestBuild_InvalidWindow(t *testing.T) {
	_, err := Build(nil, Window{2021, 2020}, Options{})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = BuildParallel(context.Background(), nil, Window{2021, 2020}, Options{}, 4)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestBuild_Symmetry(t *testing.T) {
	g, err := Build(randomDocs(2, 200), Window{2016, 2020}, Options{Weighted: true, SelfLoops: true})
	require.NoError(t, err)

	for _, e := range g.Edges() {
		require.Equal(t, g.Weight(e.A, e.B), g.Weight(e.B, e.A))
		require.LessOrEqual(t, e.A, e.B)
	}
}

func TestBuild_OrderIndependent(t *testing.T) {
	docs := randomDocs(3, 300)
	w := Window{2017, 2019}
	opts := Options{Weighted: true, SelfLoops: true}

	want, err := Build(docs, w, opts)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 5; i++ {
		shuffled := make([]document.Document, len(docs))
		copy(shuffled, docs)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := Build(shuffled, w, opts)
		require.NoError(t, err)
		assert.True(t, want.Equal(got))
		assert.Equal(t, want.Edges(), got.Edges())
	}
}

func TestBuildParallel_MatchesSerial(t *testing.T) {
	docs := randomDocs(4, 500)
	w := Window{2016, 2020}

	for _, opts := range []Options{
		{Weighted: true, SelfLoops: true},
		{Weighted: true, SelfLoops: false},
		{Weighted: false, SelfLoops: true},
	} {
		want, err := Build(docs, w, opts)
		require.NoError(t, err)

		for _, workers := range []int{0, 1, 3, 8} {
			got, err := BuildParallel(context.Background(), docs, w, opts, workers)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "opts=%+v workers=%d", opts, workers)
			assert.Equal(t, opts, got.Options())
		}
	}
}

func TestBuildParallel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := BuildParallel(ctx, randomDocs(5, 400), Window{2016, 2020}, Options{Weighted: true}, 4)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMerge_Commutative(t *testing.T) {
	docs := randomDocs(6, 400)
	w := Window{2016, 2020}
	opts := Options{Weighted: true, SelfLoops: true}

	whole, err := Build(docs, w, opts)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	parts := make([][]document.Document, 4)
	for _, d := range docs {
		i := rng.Intn(len(parts))
		parts[i] = append(parts[i], d)
	}

	graphs := make([]*Graph, len(parts))
	for i, p := range parts {
		graphs[i], err = Build(p, w, opts)
		require.NoError(t, err)
	}

	forward, err := Merge(graphs...)
	require.NoError(t, err)
	backward, err := Merge(graphs[3], graphs[2], graphs[1], graphs[0])
	require.NoError(t, err)
	left, err := Merge(graphs[0], graphs[1])
	require.NoError(t, err)
	right, err := Merge(graphs[2], graphs[3])
	require.NoError(t, err)
	nested, err := Merge(left, right)
	require.NoError(t, err)

	assert.True(t, whole.Equal(forward))
	assert.True(t, whole.Equal(backward))
	assert.True(t, whole.Equal(nested))
}

func TestMerge_Incompatible(t *testing.T) {
	a, _ := Build(nil, Window{2020, 2020}, Options{Weighted: true})
	b, _ := Build(nil, Window{2020, 2020}, Options{Weighted: false})
	_, err := Merge(a, b)
	assert.ErrorIs(t, err, ErrIncompatibleGraphs)
}

func TestMerge_WidensWindow(t *testing.T) {
	a, _ := Build(nil, Window{2016, 2018}, Options{Weighted: true})
	b, _ := Build(nil, Window{2019, 2021}, Options{Weighted: true})
	m, err := Merge(a, b)
	require.NoError(t, err)
	assert.Equal(t, Window{2016, 2021}, m.Window())
}

func TestBuild_Monotonic(t *testing.T) {
	docs := randomDocs(8, 150)
	w := Window{2016, 2020}
	opts := Options{Weighted: true, SelfLoops: true}

	before, err := Build(docs, w, opts)
	require.NoError(t, err)

	extra := doc(10_000, 2018, 1, 2, 3, 4, 5, 39)
	after, err := Build(append(docs, extra), w, opts)
	require.NoError(t, err)

	for _, e := range before.Edges() {
		require.GreaterOrEqual(t, after.Weight(e.A, e.B), e.Weight)
	}
	assert.GreaterOrEqual(t, after.Total(), before.Total())
}

func TestForEachPair(t *testing.T) {
	var got []Pair
	ForEachPair([]uint64{1, 2, 3}, true, func(p Pair) { got = append(got, p) })
	assert.Equal(t, []Pair{{1, 1}, {1, 2}, {1, 3}, {2, 2}, {2, 3}, {3, 3}}, got)
	assert.Equal(t, len(got), PairCount(3, true))
	assert.Equal(t, 3, PairCount(3, false))
	assert.Equal(t, 0, PairCount(1, false))
	assert.Equal(t, 0, PairCount(0, true))
}

func TestNewPair(t *testing.T) {
	assert.Equal(t, Pair{A: 1, B: 9}, NewPair(9, 1))
	assert.True(t, NewPair(4, 4).SelfLoop())
}
