package routing

import (
	"fmt"
	"sort"

	"github.com/Maanisha27/MediTriage/internal/storage/models"
)

// CollaborationGraph holds directed collaboration strengths keyed by
// specialist id. Looking edges up by id means any subset of specialists can be
// turned into an aligned adjacency matrix.
type CollaborationGraph struct {
	weights map[string]map[string]float64
}

func NewCollaborationGraph() *CollaborationGraph {
	return &CollaborationGraph{weights: make(map[string]map[string]float64)}
}

// GraphFromEdges builds a graph from an edge list; see ApplyEdges.
func GraphFromEdges(edges []models.CollaborationEdge) *CollaborationGraph {
	g := NewCollaborationGraph()
	g.ApplyEdges(edges)
	return g
}

// GraphFromMatrix reads a square matrix whose rows and columns follow ids.
// Every cell is kept, so an asymmetric matrix stays asymmetric.
func GraphFromMatrix(ids []string, matrix [][]float64) (*CollaborationGraph, error) {
	if len(matrix) != len(ids) {
		return nil, fmt.Errorf("adjacency has %d rows for %d specialists", len(matrix), len(ids))
	}
	g := NewCollaborationGraph()
	for i, row := range matrix {
		if len(row) != len(ids) {
			return nil, fmt.Errorf("adjacency row %d has %d values, want %d", i, len(row), len(ids))
		}
		for j, w := range row {
			g.Set(ids[i], ids[j], w)
		}
	}
	return g, nil
}

// ApplyEdges adds an edge list to the graph. An edge holds in both directions
// unless the list also carries its reverse, in which case each direction
// keeps its own weight. A later edge for the same direction overrides an
// earlier one.
func (g *CollaborationGraph) ApplyEdges(edges []models.CollaborationEdge) {
	directed := make(map[[2]string]bool, len(edges))
	for _, e := range edges {
		directed[[2]string{e.From, e.To}] = true
	}
	for _, e := range edges {
		if e.From != e.To && directed[[2]string{e.To, e.From}] {
			g.Set(e.From, e.To, e.Weight)
		} else {
			g.SetUndirected(e.From, e.To, e.Weight)
		}
	}
}

// Set stores the weight from a to b only.
func (g *CollaborationGraph) Set(a, b string, w float64) {
	if g.weights[a] == nil {
		g.weights[a] = make(map[string]float64)
	}
	g.weights[a][b] = w
}

func (g *CollaborationGraph) SetUndirected(a, b string, w float64) {
	g.Set(a, b, w)
	g.Set(b, a, w)
}

// Weight returns the collaboration strength between a and b, 0 when unknown.
func (g *CollaborationGraph) Weight(a, b string) float64 {
	if g == nil {
		return 0
	}
	return g.weights[a][b]
}

// SubMatrix returns the adjacency matrix restricted to ids, in that order.
func (g *CollaborationGraph) SubMatrix(ids []string) [][]float64 {
	out := make([][]float64, len(ids))
	for i, a := range ids {
		out[i] = make([]float64, len(ids))
		for j, b := range ids {
			out[i][j] = g.Weight(a, b)
		}
	}
	return out
}

// Edges lists the graph in the form ApplyEdges reads back: one edge per pair
// whose directions agree, both directed edges when they differ. Edges are
// sorted by endpoint ids.
func (g *CollaborationGraph) Edges() []models.CollaborationEdge {
	if g == nil {
		return nil
	}

	pairs := make(map[[2]string]bool)
	for a, row := range g.weights {
		for b := range row {
			if b < a {
				pairs[[2]string{b, a}] = true
			} else {
				pairs[[2]string{a, b}] = true
			}
		}
	}

	var edges []models.CollaborationEdge
	for p := range pairs {
		ab, ba := g.Weight(p[0], p[1]), g.Weight(p[1], p[0])
		edges = append(edges, models.CollaborationEdge{From: p[0], To: p[1], Weight: ab})
		if p[0] != p[1] && ab != ba {
			edges = append(edges, models.CollaborationEdge{From: p[1], To: p[0], Weight: ba})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}
