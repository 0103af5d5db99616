package input

import (
	"fmt"
	"slices"
)

const (
	msgRequired = "%s is required."
	msgNumber   = "%s must be a valid number."

	msgAgeRange    = "Age must be between 1 and 120 years."
	msgHeightRange = "Height must be between 100 and 220 cm."
	msgWeightRange = "Weight must be between 30 and 200 kg."
	msgAPHiRange   = "Systolic BP must be between 90 and 250 mmHg."
	msgAPLoRange   = "Diastolic BP must be between 40 and 150 mmHg."
	msgAPOrder     = "Systolic BP must be greater than Diastolic BP."

	msgLevel  = "%s must be 1 (Normal), 2 (Above Normal), or 3 (High)."
	msgBinary = "%s must be 0 or 1."
)

type numericField struct {
	name    string
	label   string
	integer bool
}

type categoricalField struct {
	name  string
	label string
}

var (
	numericFields = []numericField{
		{FieldAge, "Age", true},
		{FieldHeight, "Height", false},
		{FieldWeight, "Weight", false},
		{FieldAPHi, "Systolic BP", true},
		{FieldAPLo, "Diastolic BP", true},
	}

	levelFields = []categoricalField{
		{FieldCholesterol, "Cholesterol"},
		{FieldGluc, "Glucose"},
	}

	binaryFields = []categoricalField{
		{FieldGender, "Gender"},
		{FieldSmoke, "Smoking"},
		{FieldAlco, "Alcohol"},
		{FieldActive, "Physical Activity"},
	}

	levelValues  = []string{"1", "2", "3"}
	binaryValues = []string{"0", "1"}
)

// Validate checks raw input and returns the list of messages to show the
// user, empty when the input is accepted. Numeric parse failures stop the
// check before any range or categorical rule is evaluated.
func Validate(raw RawInput) []string {
	errs := make([]string, 0)
	parsed := make(map[string]float64, len(numericFields))

	for _, f := range numericFields {
		val := raw.Get(f.name)
		if val == "" {
			errs = append(errs, fmt.Sprintf(msgRequired, f.label))
			continue
		}
		n, ok := parseNumber(val, f.integer)
		if !ok {
			errs = append(errs, fmt.Sprintf(msgNumber, f.label))
			continue
		}
		parsed[f.name] = n
	}

	if len(errs) > 0 {
		return errs
	}

	age := parsed[FieldAge]
	if !between(age, 1, 120) {
		errs = append(errs, msgAgeRange)
	}
	if !between(parsed[FieldHeight], 100, 220) {
		errs = append(errs, msgHeightRange)
	}
	if !between(parsed[FieldWeight], 30, 200) {
		errs = append(errs, msgWeightRange)
	}

	apHi, apLo := parsed[FieldAPHi], parsed[FieldAPLo]
	if !between(apHi, 90, 250) {
		errs = append(errs, msgAPHiRange)
	}
	if !between(apLo, 40, 150) {
		errs = append(errs, msgAPLoRange)
	}
	if apHi <= apLo {
		errs = append(errs, msgAPOrder)
	}

	for _, f := range levelFields {
		if !slices.Contains(levelValues, raw.Get(f.name)) {
			errs = append(errs, fmt.Sprintf(msgLevel, f.label))
		}
	}
	for _, f := range binaryFields {
		if !slices.Contains(binaryValues, raw.Get(f.name)) {
			errs = append(errs, fmt.Sprintf(msgBinary, f.label))
		}
	}

	return errs
}

// between is false for NaN.
func between(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
