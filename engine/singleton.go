package engine

import (
	"sync"

	"github.com/vedastro/ephem/errs"
)

var (
	singletonMu     sync.Mutex
	singletonEngine *Engine
)

// Singleton is an opt-in, process-wide wrapper around a single Engine
// instance. Most callers should construct and hold an *Engine directly;
// Singleton exists only for call sites (e.g. a package-level convenience
// function in a larger application) that need one shared instance without
// threading it through every call.
type Singleton struct{}

// Init constructs the process-wide Engine from cfg. A second call without
// an intervening Reset fails with ErrAlreadyInitialized.
func (Singleton) Init(cfg Config) error {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singletonEngine != nil {
		return errs.ErrAlreadyInitialized
	}
	e, err := New(cfg)
	if err != nil {
		return err
	}
	singletonEngine = e
	return nil
}

// Get returns the process-wide Engine, or ErrNotInitialized if Init has
// not been called (or was reset).
func (Singleton) Get() (*Engine, error) {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singletonEngine == nil {
		return nil, errs.ErrNotInitialized
	}
	return singletonEngine, nil
}

// Reset clears the process-wide Engine, chiefly so tests can re-Init.
func (Singleton) Reset() {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	singletonEngine = nil
}
