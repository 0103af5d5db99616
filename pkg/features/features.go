package features

import (
	"strconv"

	"github.com/mchmarny/cardiorisk/pkg/input"
)

// Count is the number of features the tree was trained on.
const Count = 10

// Feature indexes, in training order.
const (
	IndexAge = iota
	IndexGender
	IndexBMI
	IndexAPHi
	IndexAPLo
	IndexCholesterol
	IndexGluc
	IndexSmoke
	IndexAlco
	IndexActive
)

// Names are the trained column names, indexed the same way as Vector.
var Names = [Count]string{
	"AgeinYr",
	"gender",
	"BMI",
	"ap_hi",
	"ap_lo",
	"cholesterol",
	"gluc",
	"smoke",
	"alco",
	"active",
}

// Vector is the model input in training column order.
type Vector [Count]float64

// Build assembles the feature vector from validated input and returns the
// derived BMI alongside it. The input must come from input.Parse with no
// validation messages.
func Build(in input.Input) (Vector, float64) {
	bmi := BMI(in.Height, in.Weight)

	var v Vector
	v[IndexAge] = float64(in.Age)
	v[IndexGender] = float64(in.Gender)
	v[IndexBMI] = bmi
	v[IndexAPHi] = float64(in.APHi)
	v[IndexAPLo] = float64(in.APLo)
	v[IndexCholesterol] = float64(in.Cholesterol)
	v[IndexGluc] = float64(in.Gluc)
	v[IndexSmoke] = float64(in.Smoke)
	v[IndexAlco] = float64(in.Alco)
	v[IndexActive] = float64(in.Active)

	return v, bmi
}

// BMI returns weight / height(m)^2 rounded to 2 decimals.
func BMI(heightCm, weightKg float64) float64 {
	m := heightCm / 100.0
	return Round(weightKg/(m*m), 2)
}

// Round rounds v to the given number of decimal places. Ties resolve to even
// on the exact binary value, so Round(0.125, 2) is 0.12 and Round(6.25, 1) is 6.2.
func Round(v float64, places int) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	return f
}
