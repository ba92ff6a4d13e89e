package viz

import (
	"sort"
	"strconv"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/cooc"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

// LabelMaxLen bounds node labels taken from titles.
const LabelMaxLen = 40

// Lookup resolves a canonical key to an ingested document.
type Lookup func(key uint64) (document.Document, bool)

// FromGraph keeps the maxEdges heaviest co-citation pairs of g (all of them
// when maxEdges <= 0) and the works they connect. Self-loops are dropped: they
// only record that a work was cited. lookup may be nil.
func FromGraph(g *cooc.Graph, lookup Lookup, maxEdges int) *GraphData {
	edges := make([]cooc.Edge, 0, g.Len())
	for _, e := range g.Edges() {
		if !e.SelfLoop() {
			edges = append(edges, e)
		}
	}
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].Weight > edges[j].Weight })
	if maxEdges > 0 && len(edges) > maxEdges {
		edges = edges[:maxEdges]
	}

	data := &GraphData{Nodes: []Node{}, Edges: make([]Edge, 0, len(edges))}
	connections := make(map[uint64]int)
	var order []uint64
	for _, e := range edges {
		for _, k := range []uint64{e.A, e.B} {
			if _, seen := connections[k]; !seen {
				order = append(order, k)
			}
			connections[k]++
		}
		data.Edges = append(data.Edges, Edge{
			Source: key(e.A),
			Target: key(e.B),
			Weight: e.Weight,
		})
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	for _, k := range order {
		data.Nodes = append(data.Nodes, newNode(k, connections[k], lookup))
	}
	return data
}

func newNode(k uint64, connections int, lookup Lookup) Node {
	n := Node{ID: key(k), Label: key(k), ConnectionCount: connections}
	if lookup == nil {
		return n
	}
	d, ok := lookup(k)
	if !ok {
		return n
	}
	n.InCorpus = true
	n.SourceID = d.Metadata.SourceID
	n.Title = d.Metadata.Title
	n.Year = d.Year
	if d.Metadata.Title != "" {
		n.Label = truncate(d.Metadata.Title, LabelMaxLen)
	}
	return n
}

func key(k uint64) string {
	return strconv.FormatUint(k, 10)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
