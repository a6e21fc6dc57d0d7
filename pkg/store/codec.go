package store

import (
	"bytes"
	"encoding/json"
	"math"
)

// nanSentinel stands in for float NaN inside stored JSON documents, which
// cannot carry NaN directly. No catalog signal can legally hold the literal
// string "NaN" (every enum, percentage and geo validator rejects it), so the
// mapping is unambiguous on decode.
const nanSentinel = "NaN"

// encodeValue maps a signal value onto a JSON-safe representation.
func encodeValue(v any) any {
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return nanSentinel
	}
	return v
}

// decodeValue normalizes JSON numbers, which come back as json.Number
// (see unmarshalDoc): int64 for integral values, float64 otherwise, so
// transformed integers survive a storage round trip. The NaN sentinel is
// left as the string "NaN", which is also its external presentation.
func decodeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	}
	return v
}

// decodeSignalValue additionally restores the NaN sentinel to float NaN.
// It is used for override data, which the signal manager compares
// numerically; log and event read paths keep the presentation form.
func decodeSignalValue(v any) any {
	if s, ok := v.(string); ok && s == nanSentinel {
		return math.NaN()
	}

	return decodeValue(v)
}

// unmarshalDoc decodes a stored JSON document with number preservation
// enabled, so decodeValue can distinguish integral from fractional values.
func unmarshalDoc(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}
