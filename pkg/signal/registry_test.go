package signal

import (
	"testing"
)

func TestDefaultRegistry_Catalog(t *testing.T) {
	registry := DefaultRegistry()

	if registry.Count() != 49 {
		t.Fatalf("Count() = %d, expected 49", registry.Count())
	}

	names := registry.Names()
	if names[0] != "battery_charging" {
		t.Errorf("first signal = %s, expected battery_charging", names[0])
	}
	if names[len(names)-1] != "wiping_water_level" {
		t.Errorf("last signal = %s, expected wiping_water_level", names[len(names)-1])
	}

	for _, name := range names {
		def := registry.Lookup(name)
		if def == nil {
			t.Fatalf("Lookup(%s) = nil for a listed name", name)
		}
		if def.Name != name {
			t.Errorf("Lookup(%s).Name = %s", name, def.Name)
		}
	}
}

func TestDefaultRegistry_NamesOrderIsStable(t *testing.T) {
	first := DefaultRegistry().Names()
	second := DefaultRegistry().Names()

	if len(first) != len(second) {
		t.Fatalf("Names() lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Names()[%d] differs: %s vs %s", i, first[i], second[i])
		}
	}

	// callers must not be able to reorder the catalog
	first[0] = "tampered"
	if DefaultRegistry().Names()[0] == "tampered" {
		t.Error("Names() exposed internal slice")
	}
}

func TestRegistry_LookupNormalizes(t *testing.T) {
	registry := DefaultRegistry()

	if registry.Lookup(" Speed ") == nil {
		t.Error("Lookup( Speed ) = nil, expected normalized match")
	}
	if registry.Lookup("SPEED") == nil {
		t.Error("Lookup(SPEED) = nil, expected normalized match")
	}
}

func TestRegistry_LookupFailsClosed(t *testing.T) {
	registry := DefaultRegistry()

	for _, name := range []string{
		"",
		"no such signal",
		"speed!",
		"speed;drop",
		"türöffner",
	} {
		if registry.Lookup(name) != nil {
			t.Errorf("Lookup(%q) matched, expected nil", name)
		}
	}
}

func TestNewRegistry_PanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate signal name")
		}
	}()

	NewRegistry(
		Definition{Name: "speed", Default: int64(0), Writable: true},
		Definition{Name: "speed", Default: int64(0), Writable: true},
	)
}

func TestNewRegistry_PanicsOnInvalidName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on invalid signal name")
		}
	}()

	NewRegistry(Definition{Name: "Not Valid", Default: "x", Writable: true})
}
