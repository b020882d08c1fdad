// Package lattice provides the periodic hexagonal grid and the point-defect
// occupancy state it carries.
//
// Sites are addressed in axial coordinates (a, b). The grid is periodic in
// both directions: every neighbor query wraps its result back into the unit
// cell, so callers never see out-of-range coordinates.
package lattice

import "fmt"

// Node is a lattice site in axial coordinates.
type Node struct {
	A int `json:"a"`
	B int `json:"b"`
}

func (n Node) String() string {
	return fmt.Sprintf("(%d,%d)", n.A, n.B)
}

// neighborSteps are the six axial displacements to a site's nearest
// neighbors: the sixfold rotations of the cubic displacement (-1, 0, 1).
var neighborSteps = [6]Node{
	{-1, 0}, {0, -1}, {1, -1}, {1, 0}, {0, 1}, {-1, 1},
}

// trefoilSteps are the six axial displacements to the sites with which a
// site can participate in a trefoil defect: the sixfold rotations of the
// cubic displacement (2, -2, 0). Three sites form a trefoil only when all
// three are mutually related by one of these displacements.
var trefoilSteps = [6]Node{
	{2, -2}, {2, 0}, {0, 2}, {-2, 2}, {-2, 0}, {0, -2},
}

// Grid is a periodic hexagonal lattice with DimA x DimB unit cells.
type Grid struct {
	DimA int
	DimB int
}

// NewGrid creates a periodic grid. Dimensions must be positive.
func NewGrid(dimA, dimB int) (Grid, error) {
	if dimA <= 0 || dimB <= 0 {
		return Grid{}, fmt.Errorf("grid dimensions must be positive, got %dx%d", dimA, dimB)
	}
	return Grid{DimA: dimA, DimB: dimB}, nil
}

// Len returns the number of sites in the unit cell.
func (g Grid) Len() int {
	return g.DimA * g.DimB
}

// Nodes returns all sites in row-major order. The order is deterministic;
// enumeration code relies on it for reproducible catalog construction.
func (g Grid) Nodes() []Node {
	nodes := make([]Node, 0, g.Len())
	for a := 0; a < g.DimA; a++ {
		for b := 0; b < g.DimB; b++ {
			nodes = append(nodes, Node{a, b})
		}
	}
	return nodes
}

// Wrap maps a node to its periodic image inside the unit cell.
func (g Grid) Wrap(n Node) Node {
	return Node{
		A: ((n.A % g.DimA) + g.DimA) % g.DimA,
		B: ((n.B % g.DimB) + g.DimB) % g.DimB,
	}
}

// Neighbors returns the six nearest neighbors of a site, wrapped.
func (g Grid) Neighbors(n Node) [6]Node {
	var out [6]Node
	for i, d := range neighborSteps {
		out[i] = g.Wrap(Node{n.A + d.A, n.B + d.B})
	}
	return out
}

// TrefoilNeighbors returns the six sites with which n can form a trefoil
// defect, wrapped. For a trefoil to actually form, three sites must all
// mutually be trefoil neighbors.
func (g Grid) TrefoilNeighbors(n Node) [6]Node {
	var out [6]Node
	for i, d := range trefoilSteps {
		out[i] = g.Wrap(Node{n.A + d.A, n.B + d.B})
	}
	return out
}

// IsTrefoilNeighbor reports whether v is one of u's trefoil neighbors.
func (g Grid) IsTrefoilNeighbor(u, v Node) bool {
	for _, w := range g.TrefoilNeighbors(u) {
		if w == v {
			return true
		}
	}
	return false
}

// CanFormTrefoil reports whether the three sites are mutually
// trefoil-adjacent.
func (g Grid) CanFormTrefoil(a, b, c Node) bool {
	return g.IsTrefoilNeighbor(a, b) &&
		g.IsTrefoilNeighbor(b, c) &&
		g.IsTrefoilNeighbor(c, a)
}

// CanonicalTrio orders three sites into the canonical representation used
// for trio identities: sorted by (A, B). The same three sites always produce
// the same trio regardless of input order.
func CanonicalTrio(a, b, c Node) [3]Node {
	trio := [3]Node{a, b, c}
	for i := 1; i < 3; i++ {
		for j := i; j > 0 && less(trio[j], trio[j-1]); j-- {
			trio[j], trio[j-1] = trio[j-1], trio[j]
		}
	}
	return trio
}

func less(u, v Node) bool {
	if u.A != v.A {
		return u.A < v.A
	}
	return u.B < v.B
}
