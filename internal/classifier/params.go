package classifier

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fyrsmithlabs/archetype/internal/distance"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
}

// Parameters are the classification hyperparameters.
type Parameters struct {
	// K is the number of neighbours that vote.
	K int `koanf:"k" json:"k" validate:"gte=1"`

	// DistanceWeighted weights each vote by 1/distance instead of 1.
	DistanceWeighted bool `koanf:"distance_weighted" json:"distance_weighted"`

	// PrimaryWeight scales the primary-feature distance.
	PrimaryWeight float64 `koanf:"primary_weight" json:"primary_weight" validate:"finite,gte=0"`

	// SecondaryWeight scales the secondary-feature distance.
	SecondaryWeight float64 `koanf:"secondary_weight" json:"secondary_weight" validate:"finite,gte=0"`
}

// DefaultParameters returns k=1, unweighted votes, primary weight 2 and
// secondary weight 1.
func DefaultParameters() Parameters {
	w := distance.DefaultWeights()
	return Parameters{
		K:               1,
		PrimaryWeight:   w.Primary,
		SecondaryWeight: w.Secondary,
	}
}

// Weights returns the distance weights.
func (p Parameters) Weights() distance.Weights {
	return distance.Weights{Primary: p.PrimaryWeight, Secondary: p.SecondaryWeight}
}

// Validate rejects k <= 0 and negative or non-finite weights. The returned
// error wraps ErrInvalidParameters.
func (p Parameters) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("%s fails %q (value: %v)", e.Field(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidParameters, strings.Join(msgs, "; "))
}
