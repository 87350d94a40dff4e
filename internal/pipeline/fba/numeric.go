package fba

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

var emptyNumericTokens = map[string]struct{}{
	"-":         {},
	"n/a":       {},
	"null":      {},
	"undefined": {},
	"nan":       {},
}

// ParseNumeric coerces a CSV cell into a number. Blank cells, placeholder
// tokens ("-", "N/A", "null", ...) and anything that is not a number after
// stripping "$", "," and whitespace yield 0. It never panics.
func ParseNumeric(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return finiteOrZero(v)
	case float32:
		return finiteOrZero(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case uint:
		return float64(v)
	case uint64:
		return float64(v)
	case uint32:
		return float64(v)
	case string:
		return parseNumericString(v)
	case []byte:
		return parseNumericString(string(v))
	case interface{ String() string }:
		return parseNumericString(v.String())
	default:
		return 0
	}
}

func parseNumericString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if _, ok := emptyNumericTokens[strings.ToLower(s)]; ok {
		return 0
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == '$' || r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return 0
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return finiteOrZero(f)
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// roundHalfUp rounds halves toward positive infinity, matching how the
// dashboard has always rounded derived metrics (-2.5 -> -2, 2.5 -> 3).
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
