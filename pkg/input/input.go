package input

import (
	"net/url"
	"strconv"
	"strings"
)

// Field names of the submitted form.
const (
	FieldAge         = "age"
	FieldGender      = "gender"
	FieldHeight      = "height"
	FieldWeight      = "weight"
	FieldAPHi        = "ap_hi"
	FieldAPLo        = "ap_lo"
	FieldCholesterol = "cholesterol"
	FieldGluc        = "gluc"
	FieldSmoke       = "smoke"
	FieldAlco        = "alco"
	FieldActive      = "active"
)

// Fields lists every accepted field in form order.
var Fields = []string{
	FieldAge,
	FieldGender,
	FieldHeight,
	FieldWeight,
	FieldAPHi,
	FieldAPLo,
	FieldCholesterol,
	FieldGluc,
	FieldSmoke,
	FieldAlco,
	FieldActive,
}

// RawInput is the untyped submission keyed by field name.
type RawInput map[string]string

// Input is the typed submission. Only Parse produces a populated Input, and
// only after the raw values passed validation.
type Input struct {
	Age         int     `json:"age" yaml:"age"`
	Gender      int     `json:"gender" yaml:"gender"`
	Height      float64 `json:"height" yaml:"height"`
	Weight      float64 `json:"weight" yaml:"weight"`
	APHi        int     `json:"ap_hi" yaml:"apHi"`
	APLo        int     `json:"ap_lo" yaml:"apLo"`
	Cholesterol int     `json:"cholesterol" yaml:"cholesterol"`
	Gluc        int     `json:"gluc" yaml:"gluc"`
	Smoke       int     `json:"smoke" yaml:"smoke"`
	Alco        int     `json:"alco" yaml:"alco"`
	Active      int     `json:"active" yaml:"active"`
}

// FromValues builds a RawInput from submitted form values, keeping the first
// value of each known field.
func FromValues(v url.Values) RawInput {
	raw := make(RawInput, len(Fields))
	for _, f := range Fields {
		if vals, ok := v[f]; ok && len(vals) > 0 {
			raw[f] = vals[0]
		}
	}
	return raw
}

// Get returns the trimmed value of a field, empty when missing.
func (r RawInput) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Parse validates raw and, when there are no messages, returns the typed input.
func Parse(raw RawInput) (Input, []string) {
	if errs := Validate(raw); len(errs) > 0 {
		return Input{}, errs
	}

	// values are known good at this point
	return Input{
		Age:         int(number(raw, FieldAge)),
		Gender:      atoi(raw.Get(FieldGender)),
		Height:      number(raw, FieldHeight),
		Weight:      number(raw, FieldWeight),
		APHi:        int(number(raw, FieldAPHi)),
		APLo:        int(number(raw, FieldAPLo)),
		Cholesterol: atoi(raw.Get(FieldCholesterol)),
		Gluc:        atoi(raw.Get(FieldGluc)),
		Smoke:       atoi(raw.Get(FieldSmoke)),
		Alco:        atoi(raw.Get(FieldAlco)),
		Active:      atoi(raw.Get(FieldActive)),
	}, nil
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}
