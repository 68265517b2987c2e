package matching

import "strings"

type unitFamily map[string]float64

var (
	weightUnits = unitFamily{
		"mg": 0.001,
		"g":  1,
		"kg": 1000,
	}

	volumeUnits = unitFamily{
		"ml":   1,
		"l":    1000,
		"tbsp": 15,
	}

	families = []unitFamily{weightUnits, volumeUnits}
)

// NormalizeUnit trims and lowercases a unit name.
func NormalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// Convert converts quantity from one unit to another within the same family.
// Units from different families, unknown units and empty units leave the
// quantity unchanged. Callers cannot tell a no-op apart from a real conversion.
func Convert(quantity float64, fromUnit, toUnit string) float64 {
	from, to := NormalizeUnit(fromUnit), NormalizeUnit(toUnit)
	if from == "" || to == "" {
		return quantity
	}

	for _, fam := range families {
		ff, okFrom := fam[from]
		tf, okTo := fam[to]
		if okFrom && okTo {
			return quantity * ff / tf
		}
	}

	return quantity
}

// Compatible reports whether two units belong to the same family.
func Compatible(a, b string) bool {
	a, b = NormalizeUnit(a), NormalizeUnit(b)
	for _, fam := range families {
		_, okA := fam[a]
		_, okB := fam[b]
		if okA && okB {
			return true
		}
	}
	return false
}
