package novelty

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/cooc"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

const (
	refA uint64 = iota + 100
	refB
	refC
	refD
	refX
	refY
	refZ
)

func doc(id uint64, year int, refs ...uint64) document.Document {
	return document.Document{ID: id, Year: year, References: document.NormalizeReferences(refs)}
}

// baseline: {A,B} cited together twice, {C,D} once, and X, Y each cited but
// never together.
func baseline() []document.Document {
	return []document.Document{
		doc(1, 2020, refA, refB),
		doc(2, 2020, refA, refB),
		doc(3, 2020, refC, refD),
		doc(4, 2020, refX, refA),
		doc(5, 2020, refY, refB),
	}
}

func mustEngine(t *testing.T, p Policy) *Engine {
	t.Helper()
	e, err := New(p)
	require.NoError(t, err)
	return e
}

func mustGraph(t *testing.T, docs []document.Document, opts cooc.Options) *cooc.Graph {
	t.Helper()
	g, err := cooc.Build(docs, cooc.Window{Start: 2020, End: 2020}, opts)
	require.NoError(t, err)
	return g
}

func scoreOf(t *testing.T, recs []Record, id uint64) *float64 {
	t.Helper()
	for _, r := range recs {
		if r.DocumentID == id {
			return r.Score
		}
	}
	t.Fatalf("no record for document %d", id)
	return nil
}

func TestScenario_MostCommonPairIsLeastNovel(t *testing.T) {
	docs := append(baseline(),
		doc(10, 2021, refA, refB),
		doc(11, 2021, refC, refD),
		doc(12, 2021, refX, refY),
	)
	e := mustEngine(t, DefaultPolicy())
	g := mustGraph(t, docs, cooc.Options{Weighted: true, SelfLoops: true})

	recs, err := e.ScoreYear(2021, docs, g)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	ab := *scoreOf(t, recs, 10)
	cd := *scoreOf(t, recs, 11)
	xy := *scoreOf(t, recs, 12)

	assert.Less(t, ab, cd)
	assert.Less(t, ab, xy)
	// Every pair of {A,B} has weight 2 except the A and B self-loops (3).
	assert.InDelta(t, -2.0/float64(g.Total()), ab, 1e-12)
}

func TestScenario_UnseenPairIsMaximallyRare(t *testing.T) {
	docs := append(baseline(), doc(12, 2021, refX, refY))
	e := mustEngine(t, DefaultPolicy())
	g := mustGraph(t, docs, cooc.Options{Weighted: true, SelfLoops: true})

	require.False(t, g.Has(refX, refY))
	recs, err := e.ScoreYear(2021, docs, g)
	require.NoError(t, err)

	s := scoreOf(t, recs, 12)
	require.NotNil(t, s, "a rare pair is evaluable, not absent")
	assert.Equal(t, 0.0, *s)
	assert.False(t, math.Signbit(*s), "score must be +0, not -0")
}

func TestScenario_EmptyReferencesAbsent(t *testing.T) {
	docs := append(baseline(), doc(13, 2021))
	e := mustEngine(t, DefaultPolicy())
	g := mustGraph(t, docs, cooc.Options{Weighted: true, SelfLoops: true})

	recs, err := e.ScoreYear(2021, docs, g)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].Score)
	assert.False(t, recs[0].Scored())
	assert.Equal(t, 2021, recs[0].FocalYear)
}

func TestScenario_DensityOnlyRescales(t *testing.T) {
	docs := append(baseline(),
		doc(10, 2021, refA, refB),
		doc(11, 2021, refC, refD, refA),
		doc(14, 2021, refA, refB, refY),
	)
	for _, st := range []Statistic{DefaultStatistic(), {Kind: KindMin}, {Kind: KindMean}, {Kind: KindPercentile, P: 50}} {
		g := mustGraph(t, docs, cooc.Options{Weighted: true, SelfLoops: true})

		dense := mustEngine(t, Policy{Density: true, Statistic: st})
		raw := mustEngine(t, Policy{Density: false, Statistic: st})

		dRecs, err := dense.ScoreYear(2021, docs, g)
		require.NoError(t, err)
		rRecs, err := raw.ScoreYear(2021, docs, g)
		require.NoError(t, err)
		require.Len(t, dRecs, len(rRecs))

		total := float64(g.Total())
		for i := range dRecs {
			require.NotNil(t, dRecs[i].Score)
			require.NotNil(t, rRecs[i].Score)
			assert.InDelta(t, *rRecs[i].Score, *dRecs[i].Score*total, 1e-9, "statistic %s doc %d", st, dRecs[i].DocumentID)
		}
	}
}

func TestAbsentVersusZero(t *testing.T) {
	docs := append(baseline(), doc(20, 2021, refA), doc(21, 2021))
	e := mustEngine(t, DefaultPolicy())

	noLoops := mustGraph(t, docs, cooc.Options{Weighted: true, SelfLoops: false})
	recs, err := e.ScoreYear(2021, docs, noLoops)
	require.NoError(t, err)
	for _, r := range recs {
		assert.Nil(t, r.Score, "document %d", r.DocumentID)
		assert.Equal(t, 0, r.Pairs)
	}

	// With self-loops a single known reference forms one evaluable pair.
	loops := mustGraph(t, docs, cooc.Options{Weighted: true, SelfLoops: true})
	recs, err = e.ScoreYear(2021, docs, loops)
	require.NoError(t, err)
	assert.NotNil(t, scoreOf(t, recs, 20))
	assert.Nil(t, scoreOf(t, recs, 21))
}

func TestUnknownReferences(t *testing.T) {
	docs := append(baseline(),
		doc(30, 2021, refA, refZ),
		doc(31, 2021, refZ, refZ+1),
		doc(32, 2021, refA, refB, refZ),
	)
	g := mustGraph(t, docs, cooc.Options{Weighted: true, SelfLoops: false})
	require.False(t, g.HasNode(refZ))
	ab := float64(g.Weight(refA, refB)) / float64(g.Total())

	// Unknown references pair with commonness 0.
	recs, err := mustEngine(t, DefaultPolicy()).ScoreYear(2021, docs, g)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	require.NotNil(t, scoreOf(t, recs, 30))
	assert.Equal(t, 0.0, *scoreOf(t, recs, 30))
	assert.Nil(t, scoreOf(t, recs, 31), "no reference is in the comparison graph")
	assert.Equal(t, 0, recs[1].Known)
	assert.Equal(t, 0, recs[1].Pairs)

	partial := recs[2]
	require.NotNil(t, partial.Score)
	assert.Equal(t, 0.0, *partial.Score)
	assert.Equal(t, 3, partial.Pairs)
	assert.Equal(t, 2, partial.Known)

	mean := mustEngine(t, Policy{Density: true, Statistic: Statistic{Kind: KindMean}})
	rec := mean.ScoreDocument(docs[len(docs)-1], g)
	require.NotNil(t, rec.Score)
	assert.InDelta(t, -ab/3, *rec.Score, 1e-12)

	// Skipping unknown references scores the known pairs only.
	skip := mustEngine(t, Policy{Density: true, SkipUnknown: true, Statistic: DefaultStatistic()})
	recs, err = skip.ScoreYear(2021, docs, g)
	require.NoError(t, err)

	assert.Nil(t, scoreOf(t, recs, 30), "one known reference forms no pair")
	assert.Nil(t, scoreOf(t, recs, 31))
	require.NotNil(t, scoreOf(t, recs, 32))
	assert.InDelta(t, -ab, *scoreOf(t, recs, 32), 1e-12)
	assert.Equal(t, 1, recs[2].Pairs)
}

func TestScoreYear_Deterministic(t *testing.T) {
	docs := append(baseline(),
		doc(40, 2021, refA, refB, refC),
		doc(41, 2021, refD, refX, refB, refY),
		doc(42, 2021, refC),
	)
	e := mustEngine(t, DefaultPolicy())
	g := mustGraph(t, docs, cooc.Options{Weighted: true, SelfLoops: true})

	first, err := e.ScoreYear(2021, docs, g)
	require.NoError(t, err)

	reversed := make([]document.Document, len(docs))
	for i, d := range docs {
		reversed[len(docs)-1-i] = d
	}
	g2 := mustGraph(t, reversed, cooc.Options{Weighted: true, SelfLoops: true})
	second, err := e.ScoreYear(2021, reversed, g2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].DocumentID, first[i].DocumentID)
	}
}

func TestScoreYear_IgnoresOtherYears(t *testing.T) {
	docs := append(baseline(), doc(50, 2021, refA, refB))
	e := mustEngine(t, DefaultPolicy())
	g := mustGraph(t, docs, cooc.Options{Weighted: true, SelfLoops: true})

	recs, err := e.ScoreYear(2019, docs, g)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestScoreWindow_InvalidWindow(t *testing.T) {
	e := mustEngine(t, DefaultPolicy())
	_, err := e.ScoreWindow(2021, baseline(), cooc.Window{Start: 2021, End: 2019}, cooc.Options{Weighted: true})
	assert.ErrorIs(t, err, cooc.ErrInvalidWindow)
}

func TestScoreWindow(t *testing.T) {
	docs := append(baseline(), doc(10, 2021, refA, refB))
	e := mustEngine(t, DefaultPolicy())

	recs, err := e.ScoreWindow(2021, docs, cooc.Window{Start: 2020, End: 2020}, cooc.Options{Weighted: true, SelfLoops: true})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotNil(t, recs[0].Score)
}

func TestNew_RejectsInvalidPolicy(t *testing.T) {
	_, err := New(Policy{Statistic: Statistic{Kind: KindPercentile, P: 140}})
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestScoreDocument_RawWeights(t *testing.T) {
	e := mustEngine(t, Policy{Density: false, Statistic: Statistic{Kind: KindMin}})
	g := mustGraph(t, baseline(), cooc.Options{Weighted: true, SelfLoops: false})

	rec := e.ScoreDocument(doc(60, 2021, refA, refB), g)
	require.NotNil(t, rec.Score)
	assert.Equal(t, -2.0, *rec.Score)
	assert.Equal(t, 2021, rec.FocalYear)
}
