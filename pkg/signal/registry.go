package signal

import (
	"fmt"
	"regexp"
	"strings"
)

// signalNameRegex gates lookups against the backing store: names that do not
// match it are treated as unknown even if a definition with that literal
// name existed.
var signalNameRegex = regexp.MustCompile(`^[a-z0-9_]+$`)

// NormalizeName lowercases and trims a signal name. All lookups and store
// keys use the normalized form.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Registry is the static, ordered catalog of signal definitions. It is
// built once at startup and never mutated, so lookups need no locking.
type Registry struct {
	defs  map[string]*Definition
	names []string
}

// NewRegistry builds a registry from definitions in declaration order.
// Definitions are build-time configuration; an invalid or duplicate name is
// a programming error and panics.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{
		defs:  make(map[string]*Definition, len(defs)),
		names: make([]string, 0, len(defs)),
	}

	for i := range defs {
		def := defs[i]
		if !signalNameRegex.MatchString(def.Name) {
			panic(fmt.Sprintf("invalid signal name %q", def.Name))
		}
		if _, exists := r.defs[def.Name]; exists {
			panic(fmt.Sprintf("signal %s already registered", def.Name))
		}

		r.defs[def.Name] = &def
		r.names = append(r.names, def.Name)
	}

	return r
}

// Lookup returns the definition for a name, or nil when the name is unknown.
// The name is normalized first; names failing the identifier pattern fail
// closed.
func (r *Registry) Lookup(name string) *Definition {
	name = NormalizeName(name)
	if !signalNameRegex.MatchString(name) {
		return nil
	}

	return r.defs[name]
}

// Names returns every defined signal name in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)

	return names
}

// Count returns the number of defined signals.
func (r *Registry) Count() int {
	return len(r.names)
}
