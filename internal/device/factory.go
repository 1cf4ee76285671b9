package device

import (
	"fmt"
	"sync"
)

// Constructor builds a device of one type from config and a driver.
type Constructor func(cfg Config, drv Driver) (Device, error)

// Factory creates devices by type.
//
// The four built-in types are registered by NewFactory. Additional
// types can be registered at startup; registration after that point is
// safe but unusual.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Factory struct {
	mu           sync.RWMutex
	constructors map[Type]Constructor
}

// NewFactory creates a factory with the built-in device types registered.
func NewFactory() *Factory {
	f := &Factory{
		constructors: make(map[Type]Constructor),
	}
	f.Register(TypeLight, NewLight)
	f.Register(TypeThermostat, NewThermostat)
	f.Register(TypeCamera, NewCamera)
	f.Register(TypeLock, NewLock)
	return f
}

// Register adds or replaces the constructor for a device type.
func (f *Factory) Register(t Type, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[t] = ctor
}

// Create builds a device from config.
//
// The config is validated first (ID generated if empty, name required).
// Returns ErrUnknownType if no constructor is registered for cfg.Type.
func (f *Factory) Create(cfg Config, drv Driver) (Device, error) {
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	f.mu.RLock()
	ctor, ok := f.constructors[cfg.Type]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}

	dev, err := ctor(cfg, drv)
	if err != nil {
		return nil, fmt.Errorf("creating %s %q: %w", cfg.Type, cfg.ID, err)
	}
	return dev, nil
}

// Types returns the registered device types.
func (f *Factory) Types() []Type {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]Type, 0, len(f.constructors))
	for t := range f.constructors {
		types = append(types, t)
	}
	return types
}
