package cooc

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

// Build constructs the co-occurrence graph of the documents whose year falls
// in w. Each document adds at most 1 to any edge. Cost is O(sum of k^2) over
// in-window documents with k references.
func Build(docs []document.Document, w Window, opts Options) (*Graph, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	g := newGraph(w, opts)
	for _, d := range docs {
		if w.Contains(d.Year) {
			g.addDocument(d)
		}
	}
	if !opts.Weighted {
		g.binarize()
	}
	return g, nil
}

// BuildParallel is Build with the in-window documents split across workers.
// Partial graphs are merged by summing weights, which is order independent,
// so the result equals Build's.
func BuildParallel(ctx context.Context, docs []document.Document, w Window, opts Options, workers int) (*Graph, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	var inWindow []document.Document
	for _, d := range docs {
		if w.Contains(d.Year) {
			inWindow = append(inWindow, d)
		}
	}
	if workers == 1 || len(inWindow) < 2*workers {
		return Build(inWindow, w, opts)
	}

	partialOpts := Options{Weighted: true, SelfLoops: opts.SelfLoops}
	partials := make([]*Graph, workers)
	chunk := (len(inWindow) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		lo := i * chunk
		hi := min(lo+chunk, len(inWindow))
		if lo >= hi {
			partials[i] = newGraph(w, partialOpts)
			continue
		}
		g.Go(func() error {
			part := newGraph(w, partialOpts)
			for _, d := range inWindow[lo:hi] {
				if err := ctx.Err(); err != nil {
					return err
				}
				part.addDocument(d)
			}
			partials[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building partial graphs: %w", err)
	}

	merged, err := Merge(partials...)
	if err != nil {
		return nil, err
	}
	merged.opts = opts
	if !opts.Weighted {
		merged.binarize()
	}
	return merged, nil
}

// Merge sums the weights of graphs built with identical options. The merged
// window spans all inputs. Merging is commutative and associative.
// Unweighted inputs produce an unweighted (presence-only) result.
func Merge(graphs ...*Graph) (*Graph, error) {
	if len(graphs) == 0 {
		return newGraph(Window{}, Options{}), nil
	}
	first := graphs[0]
	w := first.window
	for _, g := range graphs[1:] {
		if g.opts != first.opts {
			return nil, fmt.Errorf("%w: %+v vs %+v", ErrIncompatibleGraphs, first.opts, g.opts)
		}
		w.Start = min(w.Start, g.window.Start)
		w.End = max(w.End, g.window.End)
	}

	out := newGraph(w, first.opts)
	for _, g := range graphs {
		for p, wt := range g.weights {
			out.add(p, wt)
		}
		for k := range g.nodes {
			out.nodes[k] = struct{}{}
		}
	}
	if !first.opts.Weighted {
		out.binarize()
	}
	return out, nil
}

func (g *Graph) addDocument(d document.Document) {
	refs := d.References
	if !normalized(refs) {
		refs = document.NormalizeReferences(refs)
	}
	for _, r := range refs {
		g.nodes[r] = struct{}{}
	}
	ForEachPair(refs, g.opts.SelfLoops, func(p Pair) {
		g.add(p, 1)
	})
}
