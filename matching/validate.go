package matching

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"pantrypilot/recipe"
)

// DefaultIngredientRatio is the divisor applied to the pantry size when bounding
// how many ingredients a generated recipe may list.
const DefaultIngredientRatio = 0.75

// ErrValidationRejected marks a generated recipe that must not be accepted.
var ErrValidationRejected = errors.New("generated recipe rejected")

// Validator checks generated recipes before they are cached or persisted.
type Validator struct {
	ratio    float64
	validate *validator.Validate
}

func NewValidator(ratio float64) *Validator {
	if ratio <= 0 {
		ratio = DefaultIngredientRatio
	}
	return &Validator{
		ratio:    ratio,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MaxIngredients is floor(pantryCount / ratio).
func (v *Validator) MaxIngredients(pantryCount int) int {
	return int(math.Floor(float64(pantryCount) / v.ratio))
}

// Validate returns an error wrapping ErrValidationRejected when r is unusable.
func (v *Validator) Validate(r recipe.Recipe, pantryCount int) error {
	if recipe.NormalizeTitle(r.Title) == "" {
		return fmt.Errorf("%w: empty title", ErrValidationRejected)
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("%w: %q has no ingredients", ErrValidationRejected, r.Title)
	}
	if err := v.validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrValidationRejected, r.Title, err)
	}
	if limit := v.MaxIngredients(pantryCount); len(r.Ingredients) > limit {
		return fmt.Errorf("%w: %q lists %d ingredients, limit is %d", ErrValidationRejected, r.Title, len(r.Ingredients), limit)
	}
	return nil
}
