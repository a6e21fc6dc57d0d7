// Package signal implements the vehicle signal core: the static catalog of
// named, typed, validated signals, the per-write validation/transformation
// pipeline and the per-vehicle access manager that coordinates persistence,
// audit logging, change events and the snapshot cache.
package signal

import (
	"github.com/egomobility/vehicle-signals/pkg/store"
)

// AccessDirection describes how a signal value is being accessed.
type AccessDirection int

const (
	// DirectionRead is a read access.
	DirectionRead AccessDirection = iota
	// DirectionWrite is a write access before the override state is known.
	DirectionWrite
	// DirectionNew is a write that created the first override.
	DirectionNew
	// DirectionUpdate is a write that updated an existing override.
	DirectionUpdate
)

// AccessContext is passed to a definition's post-access hook.
type AccessContext struct {
	// Direction is the access direction.
	Direction AccessDirection
	// Value is the value that was resolved or written.
	Value any
	// Override is the override document after the access, if any.
	Override *store.SignalOverride
	// OldOverride is the override document before a write, if any.
	OldOverride *store.SignalOverride
}

// Validator checks a candidate value for a signal. It returns a
// human-readable message when the value is rejected and "" when it passes.
type Validator func(value any, name string) string

// Transformer converts a validated value into its canonical stored form.
// Transformers are total and idempotent.
type Transformer func(value any, name string) any

// Hook runs after a signal access has been resolved. Every catalog entry
// currently leaves it nil; it exists as an extension point.
type Hook func(ctx *AccessContext)

// Definition describes one named vehicle signal.
type Definition struct {
	// Name is the unique signal identifier (lowercase, [a-z0-9_]+).
	Name string
	// Default is the value returned while no override exists.
	Default any
	// Writable indicates whether external writes are allowed.
	Writable bool
	// Validator rejects candidate values, if set.
	Validator Validator
	// Transformer normalizes accepted values before persistence, if set.
	// Signals without one store the raw validated value.
	Transformer Transformer
	// Hook is the optional post-access extension point.
	Hook Hook
}
