package store

import (
	"encoding/json"
	"math"
	"testing"
)

func TestEncodeValue_NaNBecomesSentinel(t *testing.T) {
	if got := encodeValue(math.NaN()); got != "NaN" {
		t.Errorf("encodeValue(NaN) = %v, expected \"NaN\"", got)
	}
	if got := encodeValue(1.5); got != 1.5 {
		t.Errorf("encodeValue(1.5) = %v", got)
	}
	if got := encodeValue("on"); got != "on" {
		t.Errorf("encodeValue(on) = %v", got)
	}

	// the encoded form must be JSON-marshalable even for NaN input
	if _, err := json.Marshal(encodeValue(math.NaN())); err != nil {
		t.Errorf("json.Marshal(encoded NaN) error = %v", err)
	}
}

func TestDecodeValue_SplitsIntegersAndFloats(t *testing.T) {
	if got := decodeValue(json.Number("42")); got != int64(42) {
		t.Errorf("decodeValue(42) = %v (%T), expected int64", got, got)
	}
	if got := decodeValue(json.Number("42.5")); got != float64(42.5) {
		t.Errorf("decodeValue(42.5) = %v (%T), expected float64", got, got)
	}
	// display paths keep the sentinel string so responses stay marshalable
	if got := decodeValue("NaN"); got != "NaN" {
		t.Errorf("decodeValue(NaN) = %v, expected sentinel string", got)
	}
}

func TestDecodeSignalValue_RestoresNaN(t *testing.T) {
	got := decodeSignalValue("NaN")
	f, ok := got.(float64)
	if !ok || !math.IsNaN(f) {
		t.Errorf("decodeSignalValue(NaN) = %v (%T), expected NaN float64", got, got)
	}

	if got := decodeSignalValue(json.Number("7")); got != int64(7) {
		t.Errorf("decodeSignalValue(7) = %v (%T), expected int64", got, got)
	}
}
