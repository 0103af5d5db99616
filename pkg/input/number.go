package input

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Decimal literals only. Single underscores may group digits; base
// prefixes, hex floats and dangling or doubled underscores are rejected.
var (
	intPattern     = regexp.MustCompile(`^[+-]?\d(?:_?\d)*$`)
	floatPattern   = regexp.MustCompile(`^[+-]?(?:\d(?:_?\d)*(?:\.(?:\d(?:_?\d)*)?)?|\.\d(?:_?\d)*)(?:[eE][+-]?\d(?:_?\d)*)?$`)
	specialPattern = regexp.MustCompile(`(?i)^[+-]?(?:inf|infinity|nan)$`)
)

// parseNumber parses a trimmed field value. An integer that is well formed
// but does not fit in int64 parses to a signed infinity so the range rules
// report it. Float overflow does the same.
func parseNumber(val string, integer bool) (float64, bool) {
	if integer {
		if !intPattern.MatchString(val) {
			return 0, false
		}
		i, err := strconv.ParseInt(strings.ReplaceAll(val, "_", ""), 10, 64)
		if err != nil {
			return math.Inf(sign(val)), true
		}
		return float64(i), true
	}

	if specialPattern.MatchString(val) {
		if strings.HasSuffix(strings.ToLower(val), "nan") {
			return math.NaN(), true
		}
		return math.Inf(sign(val)), true
	}

	if !floatPattern.MatchString(val) {
		return 0, false
	}
	// past the pattern the only possible error is ErrRange, with f at ±Inf
	f, _ := strconv.ParseFloat(strings.ReplaceAll(val, "_", ""), 64)
	return f, true
}

func sign(val string) int {
	if strings.HasPrefix(val, "-") {
		return -1
	}
	return 1
}

// number returns the value of a field that already passed Validate.
func number(raw RawInput, field string) float64 {
	f, _ := parseNumber(raw.Get(field), isIntegerField(field))
	return f
}

func isIntegerField(field string) bool {
	for _, f := range numericFields {
		if f.name == field {
			return f.integer
		}
	}
	return false
}
