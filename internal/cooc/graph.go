// Package cooc builds weighted reference co-occurrence graphs over sliding
// windows of publication years.
//
// The weight of edge (a, b) is the number of in-window documents citing both
// a and b; the self-loop (a, a) counts documents citing a at all. Graphs are
// rebuilt from scratch for every window and never updated in place.
package cooc

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidWindow is returned for windows whose end precedes their start.
var ErrInvalidWindow = errors.New("invalid window")

// ErrIncompatibleGraphs is returned when merging graphs built with different options.
var ErrIncompatibleGraphs = errors.New("graphs built with different options")

// Window is an inclusive span of publication years.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Validate returns ErrInvalidWindow when End < Start.
func (w Window) Validate() error {
	if w.End < w.Start {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

// Contains reports whether year lies in the window.
func (w Window) Contains(year int) bool {
	return year >= w.Start && year <= w.End
}

func (w Window) String() string {
	return fmt.Sprintf("%d-%d", w.Start, w.End)
}

// Options controls graph construction.
type Options struct {
	Weighted  bool `json:"weighted"`   // false: every present edge has weight 1
	SelfLoops bool `json:"self_loops"` // include (a, a) edges
}

// Graph is an undirected weighted co-occurrence graph for one window.
type Graph struct {
	window  Window
	opts    Options
	weights map[Pair]int64
	nodes   map[uint64]struct{}
	total   int64
}

func newGraph(w Window, opts Options) *Graph {
	return &Graph{
		window:  w,
		opts:    opts,
		weights: make(map[Pair]int64),
		nodes:   make(map[uint64]struct{}),
	}
}

// Window returns the span of years the graph was built from.
func (g *Graph) Window() Window {
	return g.window
}

// Options returns the construction options.
func (g *Graph) Options() Options {
	return g.opts
}

// Weight returns the weight of the edge between a and b, 0 when absent.
// Weight(a, b) == Weight(b, a).
func (g *Graph) Weight(a, b uint64) int64 {
	return g.weights[NewPair(a, b)]
}

// Has reports whether the edge between a and b is present.
func (g *Graph) Has(a, b uint64) bool {
	_, ok := g.weights[NewPair(a, b)]
	return ok
}

// HasNode reports whether key was cited by any in-window document.
func (g *Graph) HasNode(key uint64) bool {
	_, ok := g.nodes[key]
	return ok
}

// Total returns the sum of all edge weights.
func (g *Graph) Total() int64 {
	return g.total
}

// Len returns the number of edges.
func (g *Graph) Len() int {
	return len(g.weights)
}

// NumNodes returns the number of distinct references cited in the window.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// Nodes returns the cited reference keys, ascending.
func (g *Graph) Nodes() []uint64 {
	out := make([]uint64, 0, len(g.nodes))
	for k := range g.nodes {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Edge is a pair with its weight.
type Edge struct {
	Pair
	Weight int64 `json:"weight"`
}

// Edges returns every edge ordered by (A, B).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.weights))
	for p, w := range g.weights {
		out = append(out, Edge{Pair: p, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Stats summarizes a graph.
type Stats struct {
	Window    Window `json:"window"`
	Edges     int    `json:"edges"`
	Nodes     int    `json:"nodes"`
	SelfLoops int    `json:"self_loops"`
	Total     int64  `json:"total"`
	MaxWeight int64  `json:"max_weight"`
}

// Stats computes summary counts.
func (g *Graph) Stats() Stats {
	s := Stats{
		Window: g.window,
		Edges:  len(g.weights),
		Nodes:  len(g.nodes),
		Total:  g.total,
	}
	for p, w := range g.weights {
		if p.SelfLoop() {
			s.SelfLoops++
		}
		if w > s.MaxWeight {
			s.MaxWeight = w
		}
	}
	return s
}

// Equal reports whether two graphs have identical edges, weights and nodes.
func (g *Graph) Equal(o *Graph) bool {
	if g.total != o.total || len(g.weights) != len(o.weights) || len(g.nodes) != len(o.nodes) {
		return false
	}
	for p, w := range g.weights {
		if o.weights[p] != w {
			return false
		}
	}
	for k := range g.nodes {
		if _, ok := o.nodes[k]; !ok {
			return false
		}
	}
	return true
}

func (g *Graph) add(p Pair, delta int64) {
	g.weights[p] += delta
	g.total += delta
}

// binarize sets every present edge to weight 1.
func (g *Graph) binarize() {
	g.total = 0
	for p := range g.weights {
		g.weights[p] = 1
		g.total++
	}
}
