package transform

import (
	"errors"
	"strings"
	"testing"
)

func TestNamesCanonical(t *testing.T) {
	expected := []string{
		"fade", "slide-left", "slide-right", "slide-up", "slide-down",
		"scale", "rotate-scale", "zoom-blur", "flip-horizontal", "flip-vertical",
		"bounce-in", "swing", "glitch", "wave-reveal", "fragment-reassembly",
	}
	names := Names()
	if len(names) != len(expected) {
		t.Fatalf("Expected %d names, got %d: %v", len(expected), len(names), names)
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("Name %d: expected %s, got %s", i, name, names[i])
		}
		if !IsValid(name) {
			t.Errorf("IsValid(%q) = false", name)
		}
	}

	// Callers get a copy.
	names[0] = "mutated"
	if Names()[0] != "fade" {
		t.Error("Names() exposes internal state")
	}
}

func TestUnknownStrategyListsNames(t *testing.T) {
	_, err := Default().Strategy("nonexistent")
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("Expected ErrUnknownStrategy, got %v", err)
	}
	for _, name := range Names() {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("Error %q does not mention %s", err, name)
		}
	}

	if _, err := Calculate("nonexistent", 0.5, testCard, testCanvas); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("Calculate: expected ErrUnknownStrategy, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry()

	spin := StrategyFunc(func(p float64, card CardGeometry, _ CanvasGeometry) Descriptor {
		d := resting(card, 1)
		d.Rotation = 720 * (1 - p)
		return d
	})
	if err := r.Register("spin", spin); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	d, err := r.Calculate("spin", 0.5, testCard, testCanvas)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if d.Rotation != 360 {
		t.Errorf("Expected 360°, got %v", d.Rotation)
	}

	// The shared validation still applies to custom strategies.
	if _, err := r.Calculate("spin", 2, testCard, testCanvas); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}

	names := r.Names()
	if names[len(names)-1] != "spin" {
		t.Errorf("Expected spin appended to names, got %v", names)
	}
	if IsValid("spin") {
		t.Error("Custom strategy leaked into the default registry")
	}

	_, err = r.Strategy("missing")
	if err == nil || !strings.Contains(err.Error(), "spin") {
		t.Errorf("Expected error listing custom names, got %v", err)
	}
}

func TestRegisterInvalid(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("", StrategyFunc(fade)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Empty name: expected ErrInvalidArgument, got %v", err)
	}
	if err := r.Register("  ", StrategyFunc(fade)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Blank name: expected ErrInvalidArgument, got %v", err)
	}
	if err := r.Register("nothing", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Nil strategy: expected ErrInvalidArgument, got %v", err)
	}
	if err := r.Register("nil func", StrategyFunc(nil)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Nil StrategyFunc: expected ErrInvalidArgument, got %v", err)
	}
	if err := r.Register("nil directional", DirectionalFunc(nil)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Nil DirectionalFunc: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := r.Strategy("nil func"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("Rejected strategy should stay unregistered, got %v", err)
	}
	if err := Default().Register("extra", StrategyFunc(fade)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Default registry: expected ErrInvalidArgument, got %v", err)
	}
}
