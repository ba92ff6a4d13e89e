// Package viz renders co-occurrence graphs for Cytoscape.js.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a cited work.
type Node struct {
	ID    string `json:"id"` // canonical key in decimal
	Label string `json:"label"`

	// Tooltip fields, set when the work is itself an ingested document.
	SourceID string `json:"sourceId,omitempty"`
	Title    string `json:"title,omitempty"`
	Year     int    `json:"year,omitempty"`
	InCorpus bool   `json:"inCorpus"`

	// Sizing
	ConnectionCount int `json:"connectionCount"`
}

// Edge is a co-citation pair.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Weight   int64  `json:"weight"`
	SelfLoop bool   `json:"selfLoop,omitempty"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
