package transform

import (
	"fmt"
	"strings"
)

// Canonical strategy names. The order is the display order.
const (
	Fade               = "fade"
	SlideLeft          = "slide-left"
	SlideRight         = "slide-right"
	SlideUp            = "slide-up"
	SlideDown          = "slide-down"
	Scale              = "scale"
	RotateScale        = "rotate-scale"
	ZoomBlur           = "zoom-blur"
	FlipHorizontal     = "flip-horizontal"
	FlipVertical       = "flip-vertical"
	BounceIn           = "bounce-in"
	Swing              = "swing"
	Glitch             = "glitch"
	WaveReveal         = "wave-reveal"
	FragmentReassembly = "fragment-reassembly"
)

var builtin = []struct {
	name     string
	strategy Strategy
}{
	{Fade, StrategyFunc(fade)},
	{SlideLeft, StrategyFunc(slideLeft)},
	{SlideRight, StrategyFunc(slideRight)},
	{SlideUp, StrategyFunc(slideUp)},
	{SlideDown, StrategyFunc(slideDown)},
	{Scale, StrategyFunc(scale)},
	{RotateScale, StrategyFunc(rotateScale)},
	{ZoomBlur, StrategyFunc(zoomBlur)},
	{FlipHorizontal, StrategyFunc(flipHorizontal)},
	{FlipVertical, StrategyFunc(flipVertical)},
	{BounceIn, StrategyFunc(bounceIn)},
	{Swing, StrategyFunc(swing)},
	{Glitch, StrategyFunc(glitch)},
	{WaveReveal, DirectionalFunc(waveReveal)},
	{FragmentReassembly, DirectionalFunc(fragmentReassembly)},
}

var defaultRegistry = func() *Registry {
	r := &Registry{strategies: make(map[string]Strategy, len(builtin))}
	for _, b := range builtin {
		r.names = append(r.names, b.name)
		r.strategies[b.name] = b.strategy
	}
	return r
}()

// Names returns the canonical strategy names in display order. Config
// validation and the CLI listing both use this list.
func Names() []string {
	return defaultRegistry.Names()
}

// IsValid reports whether name is a canonical strategy name.
func IsValid(name string) bool {
	_, ok := defaultRegistry.strategies[name]
	return ok
}

// Default returns the built-in registry. It is shared and must not be
// extended; use NewRegistry for custom strategies.
func Default() *Registry {
	return defaultRegistry
}

// Calculate dispatches to a built-in strategy.
func Calculate(name string, progress float64, card CardGeometry, canvas CanvasGeometry) (Descriptor, error) {
	return defaultRegistry.Calculate(name, progress, card, canvas)
}

// Registry maps names to strategies. Registries are not safe for concurrent
// Register calls; lookups are safe once registration is done.
type Registry struct {
	names      []string
	strategies map[string]Strategy
}

// NewRegistry returns a registry holding the built-in strategies, ready for
// Register.
func NewRegistry() *Registry {
	r := &Registry{
		names:      append([]string(nil), defaultRegistry.names...),
		strategies: make(map[string]Strategy, len(defaultRegistry.strategies)),
	}
	for name, s := range defaultRegistry.strategies {
		r.strategies[name] = s
	}
	return r
}

// Register adds or replaces the strategy under name.
func (r *Registry) Register(name string, s Strategy) error {
	if r == defaultRegistry {
		return fmt.Errorf("%w: the default registry is read-only", ErrInvalidArgument)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: strategy name must be a non-empty string", ErrInvalidArgument)
	}
	if isNil(s) {
		return fmt.Errorf("%w: strategy %q is nil", ErrInvalidArgument, name)
	}
	if _, exists := r.strategies[name]; !exists {
		r.names = append(r.names, name)
	}
	r.strategies[name] = s
	return nil
}

// isNil also catches func-typed strategies holding a nil func.
func isNil(s Strategy) bool {
	switch f := s.(type) {
	case nil:
		return true
	case StrategyFunc:
		return f == nil
	case DirectionalFunc:
		return f == nil
	}
	return false
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Strategy looks up name. The error for an unknown name lists every valid
// one.
func (r *Registry) Strategy(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w %q, valid strategies: %s", ErrUnknownStrategy, name, strings.Join(r.names, ", "))
	}
	return s, nil
}

// Calculate looks up name and applies it.
func (r *Registry) Calculate(name string, progress float64, card CardGeometry, canvas CanvasGeometry) (Descriptor, error) {
	s, err := r.Strategy(name)
	if err != nil {
		return Descriptor{}, err
	}
	return s.Calculate(progress, card, canvas)
}
