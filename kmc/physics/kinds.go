// Package physics implements the dichalcogenide point-defect model behind
// the kmc.Model interface: five transformation kinds over divacancies and
// trefoil defects on the hexagonal lattice, with per-kind rates supplied
// directly or derived from Arrhenius energy barriers.
package physics

import "github.com/ExpHP/kmc-dichalcogen/kmc"

// Transformation kinds. The engine treats these as opaque tags; all
// semantics live in this package.
const (
	// KindCreateDivacancy places a divacancy on a pristine site.
	KindCreateDivacancy kmc.Kind = iota
	// KindFillDivacancy removes a divacancy, restoring the pristine site.
	KindFillDivacancy
	// KindMigrateDivacancy hops a divacancy to an adjacent pristine site.
	KindMigrateDivacancy
	// KindFormTrefoil rotates three mutually trefoil-adjacent divacancies
	// into a trefoil defect.
	KindFormTrefoil
	// KindDissolveTrefoil rotates a trefoil back into three divacancies.
	KindDissolveTrefoil

	numKinds = 5
)

// kindNames double as YAML config keys.
var kindNames = [numKinds]string{
	KindCreateDivacancy:  "create_divacancy",
	KindFillDivacancy:    "fill_divacancy",
	KindMigrateDivacancy: "migrate_divacancy",
	KindFormTrefoil:      "form_trefoil",
	KindDissolveTrefoil:  "dissolve_trefoil",
}

// KindName returns the stable name of a kind, or "unknown" for tags outside
// this model.
func KindName(k kmc.Kind) string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}
