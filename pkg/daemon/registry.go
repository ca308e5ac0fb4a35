package daemon

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/touch"
)

// Registry is the coordinator that owns the device-name to engine map.
// It is built in Run and torn down on shutdown; handlers resolve engines
// through it instead of package globals.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*touch.Engine
}

func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]*touch.Engine)}
}

// Register adds an engine under a device name. Names are unique.
func (r *Registry) Register(device string, e *touch.Engine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.engines[device]; ok {
		return fmt.Errorf("device %q already registered", device)
	}
	r.engines[device] = e
	return nil
}

// Get resolves a device name to its engine.
func (r *Registry) Get(device string) (*touch.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[device]
	return e, ok
}

// Devices returns the registered device names.
func (r *Registry) Devices() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	return names
}

// StopAll stops every running session. Idle engines are left alone.
func (r *Registry) StopAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for device, e := range r.engines {
		if err := e.Stop(); err != nil && !errors.Is(err, touch.ErrNotRunning) {
			logrus.WithError(err).Errorf("failed to stop session on %s", device)
		}
	}
}
