package kmc

import (
	"fmt"
	"strings"

	"github.com/ExpHP/kmc-dichalcogen/kmc/lattice"
)

// Kind tags a transformation kind. The engine treats kinds as opaque; the
// physical model assigns their meaning and names.
type Kind uint8

// ID is the stable identity of a candidate transformation: a kind plus the
// lattice sites it acts on. IDs are comparable and usable as map keys. The
// footprint holds up to three sites; Arity says how many are meaningful.
//
// A transformation's enabled-status and rate depend only on the occupancy of
// its own footprint. The incremental updater's locality reasoning rests on
// this.
type ID struct {
	Kind  Kind
	Nodes [3]lattice.Node
	Arity uint8
}

// SiteID identifies a transformation acting on a single site.
func SiteID(k Kind, n lattice.Node) ID {
	return ID{Kind: k, Nodes: [3]lattice.Node{n}, Arity: 1}
}

// PairID identifies a directed transformation from one site to another.
func PairID(k Kind, from, to lattice.Node) ID {
	return ID{Kind: k, Nodes: [3]lattice.Node{from, to}, Arity: 2}
}

// TrioID identifies a transformation acting on three sites. The trio is
// canonicalized so the same three sites always yield the same identity.
func TrioID(k Kind, a, b, c lattice.Node) ID {
	trio := lattice.CanonicalTrio(a, b, c)
	return ID{Kind: k, Nodes: trio, Arity: 3}
}

// Footprint returns the sites the transformation acts on.
func (id ID) Footprint() []lattice.Node {
	return id.Nodes[:id.Arity]
}

func (id ID) String() string {
	parts := make([]string, 0, id.Arity)
	for _, n := range id.Footprint() {
		parts = append(parts, n.String())
	}
	return fmt.Sprintf("kind%d[%s]", id.Kind, strings.Join(parts, " "))
}

// Event is a candidate transformation together with its instantaneous rate.
// Rates are strictly positive inside the catalog; rate zero means disabled
// and excluded.
type Event struct {
	ID   ID
	Rate float64
}
