package filter

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Presets holds named filters compiled from configuration
type Presets struct {
	compiler *Compiler
	filters  map[string]*ExprFilter
	mu       sync.RWMutex
}

// NewPresets creates an empty preset registry backed by compiler
func NewPresets(compiler *Compiler) *Presets {
	if compiler == nil {
		compiler = NewCompiler(DefaultCacheSize)
	}
	return &Presets{
		compiler: compiler,
		filters:  make(map[string]*ExprFilter),
	}
}

// Register compiles and stores a named filter, replacing any previous one
func (p *Presets) Register(name, expression string) error {
	f, err := p.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile filter '%s': %w", name, err)
	}

	p.mu.Lock()
	p.filters[name] = f
	p.mu.Unlock()

	return nil
}

// RegisterAll compiles every filter first and stores them only if all succeed
func (p *Presets) RegisterAll(filters map[string]string) error {
	compiled := make(map[string]*ExprFilter, len(filters))

	for _, name := range slices.Sorted(maps.Keys(filters)) {
		f, err := p.compiler.Compile(filters[name])
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[name] = f
	}

	p.mu.Lock()
	maps.Copy(p.filters, compiled)
	p.mu.Unlock()

	return nil
}

// Get returns a preset by name
func (p *Presets) Get(name string) (*ExprFilter, bool) {
	p.mu.RLock()
	f, exists := p.filters[name]
	p.mu.RUnlock()
	return f, exists
}

// Names returns the registered preset names in sorted order
func (p *Presets) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.filters))
}

// Resolve returns the named preset when preset is set, otherwise compiles
// expression. Both empty yields nil.
func (p *Presets) Resolve(preset, expression string) (*ExprFilter, error) {
	switch {
	case preset != "" && expression != "":
		return nil, fmt.Errorf("use either a filter expression or a preset, not both")
	case preset != "":
		f, ok := p.Get(preset)
		if !ok {
			return nil, fmt.Errorf("filter preset '%s' not found", preset)
		}
		return f, nil
	case expression != "":
		return p.compiler.Compile(expression)
	default:
		return nil, nil
	}
}
