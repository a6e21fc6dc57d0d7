package signal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// valueString renders a value the way it is parsed and compared: nil is
// empty, floats use the shortest round-trip form, NaN is "NaN".
func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if math.IsNaN(t) {
			return "NaN"
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return valueString(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}

	return fmt.Sprintf("%v", v)
}

// parseFloat parses a value as a locale-invariant float. Anything
// unparseable becomes NaN.
func parseFloat(v any) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(valueString(v)), 64)
	if err != nil {
		return math.NaN()
	}

	return f
}

// numericValue reports a value's float form when it is numeric.
func numericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}

	return 0, false
}

// ValuesEqual compares two signal values for the change-event gate. Numeric
// values compare numerically across int/float representations, and NaN
// compares equal to NaN so that rewriting a NaN-default signal with NaN does
// not emit a spurious change event.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	fa, aNum := numericValue(a)
	fb, bNum := numericValue(b)
	if aNum || bNum {
		if !aNum || !bNum {
			return false
		}
		if math.IsNaN(fa) || math.IsNaN(fb) {
			return math.IsNaN(fa) && math.IsNaN(fb)
		}
		return fa == fb
	}

	return a == b
}

// TransformToInt truncates a numeric value toward zero, so "7.9" stores as
// 7. Unparseable input and values outside the int64 range yield nil.
func TransformToInt() Transformer {
	return func(value any, name string) any {
		f := parseFloat(value)
		if math.IsNaN(f) {
			return nil
		}
		// int64 conversion of a float beyond the range is undefined
		if f < -(1 << 63) || f >= 1<<63 {
			return nil
		}

		return int64(math.Trunc(f))
	}
}

// TransformToFloat parses a value as float. Unparseable input yields NaN.
func TransformToFloat() Transformer {
	return func(value any, name string) any {
		return parseFloat(value)
	}
}
