package scoring

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Numeric is the coerced form of a raw vital value. Valid is false when the
// raw value was absent, empty or not a number.
type Numeric struct {
	Value float64
	Valid bool
}

// Unparseable is the sentinel returned when a raw value cannot be read as a number.
var Unparseable = Numeric{}

// Number wraps a float as a valid Numeric.
func Number(v float64) Numeric {
	return Numeric{Value: v, Valid: true}
}

// Coerce converts a raw request value into a Numeric. It never fails:
// anything that is not a number becomes Unparseable. NaN and Inf pass through.
func Coerce(raw any) Numeric {
	switch v := raw.(type) {
	case nil:
		return Unparseable
	case string:
		return parseFloat(v)
	case json.Number:
		return parseFloat(string(v))
	case float64:
		return Number(v)
	case float32:
		return Number(float64(v))
	case int:
		return Number(float64(v))
	case int32:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	case uint:
		return Number(float64(v))
	case uint32:
		return Number(float64(v))
	case uint64:
		return Number(float64(v))
	default:
		return Unparseable
	}
}

func parseFloat(s string) Numeric {
	if s == "" {
		return Unparseable
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		// Overflow still yields ±Inf, which is what a float parser returns.
		if errors.Is(err, strconv.ErrRange) {
			return Number(f)
		}
		return Unparseable
	}
	return Number(f)
}

// isBlank reports whether a raw value counts as missing for the guard.
func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case json.Number:
		return v == ""
	}
	return false
}
