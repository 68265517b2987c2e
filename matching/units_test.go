package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		qty  float64
		from string
		to   string
		want float64
	}{
		{"kg to g", 1, "kg", "g", 1000},
		{"g to kg", 500, "g", "kg", 0.5},
		{"mg to g", 2500, "mg", "g", 2.5},
		{"l to ml", 1, "l", "ml", 1000},
		{"tbsp to ml", 2, "tbsp", "ml", 30},
		{"case and whitespace", 1, " KG ", "G", 1000},
		{"same unit", 42, "g", "g", 42},
		{"cross family is a no-op", 3, "kg", "ml", 3},
		{"unknown unit is a no-op", 7, "cup", "ml", 7},
		{"empty from is a no-op", 7, "", "ml", 7},
		{"empty to is a no-op", 7, "g", "", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Convert(tt.qty, tt.from, tt.to), 1e-9)
		})
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	for _, fam := range families {
		for a := range fam {
			for b := range fam {
				q := 123.456
				got := Convert(Convert(q, a, b), b, a)
				assert.InDelta(t, q, got, 1e-9, "%s -> %s -> %s", a, b, a)
			}
		}
	}
}

func TestCompatible(t *testing.T) {
	assert.True(t, Compatible("g", "KG"))
	assert.True(t, Compatible("tbsp", "l"))
	assert.False(t, Compatible("g", "ml"))
	assert.False(t, Compatible("pinch", "pinch"))
}
