// ABOUTME: Bmi record: height, weight, date and the derived body-mass index.
// ABOUTME: Immutable once constructed; the index is computed on construction.
package health

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// BMI category boundaries (kg/m²).
const (
	underweightLimit = 18.5
	normalLimit      = 25.0
	overweightLimit  = 30.0
	obeseLimit       = 40.0
)

// Bmi is a single body-mass-index measurement.
type Bmi struct {
	ID     uuid.UUID
	Height float64 // metres
	Weight float64 // kilograms
	Date   time.Time
	Value  float64
}

// NewBmi builds a Bmi from validated height, weight and DD-MM-YYYY date strings.
func NewBmi(height, weight, date string) (*Bmi, error) {
	h, err := strconv.ParseFloat(height, 64)
	if err != nil {
		return nil, Invalidf("height %q is not a number", height)
	}
	w, err := strconv.ParseFloat(weight, 64)
	if err != nil {
		return nil, Invalidf("weight %q is not a number", weight)
	}
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	return &Bmi{
		ID:     uuid.New(),
		Height: h,
		Weight: w,
		Date:   d,
		Value:  CalculateBmi(h, w),
	}, nil
}

// CalculateBmi returns weight / height².
func CalculateBmi(height, weight float64) float64 {
	return weight / (height * height)
}

// Category names the weight class for the index.
func (b *Bmi) Category() string {
	switch {
	case b.Value < underweightLimit:
		return "Underweight"
	case b.Value < normalLimit:
		return "Normal"
	case b.Value < overweightLimit:
		return "Overweight"
	case b.Value < obeseLimit:
		return "Obese"
	default:
		return "Severely Obese"
	}
}

func (b *Bmi) String() string {
	return fmt.Sprintf("%s: %.2f (%s)", FormatDate(b.Date), b.Value, b.Category())
}
