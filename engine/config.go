package engine

import "github.com/vedastro/ephem/frames"

// Config describes everything an Engine needs at construction: which
// kernels and time tables to load, how the query cache is sized and
// guarded, and which precession model backs ecliptic-of-date frame
// requests. Like the rest of this module's constructors, configuration is
// an explicit argument, not a file or environment variable read implicitly.
type Config struct {
	// KernelPaths lists SPK files to open, in priority order. A body is
	// resolved against the first kernel whose segment chain reaches it;
	// later kernels are consulted only if an earlier one lacks a path to
	// SSB for that body. At least one path is required.
	KernelPaths []string

	// LSKPath is a NAIF leapseconds kernel (.tls). Required.
	LSKPath string

	// EOPPath is an IERS Bulletin-A-style finals file supplying UT1-UTC
	// (DUT1). Optional: an empty path means DUT1 is taken as 0 (UT1 ==
	// UTC).
	EOPPath string

	// CacheCapacity bounds the number of distinct (target, observer,
	// frame, precession model, epoch) fingerprints held at once. Zero or
	// negative means the default of 256.
	CacheCapacity int

	// PrecessionModel selects the ecliptic-of-date theory. Zero value is
	// frames.Vondrak2011, the package default.
	PrecessionModel frames.PrecessionModel

	// SingleThreaded opts out of the cache's locking: false (the zero
	// value, and the default) wraps every access in hashicorp/golang-lru's
	// internal mutex for concurrent Engine use; true drops to its
	// unsynchronized simplelru.LRU building block for single-goroutine
	// embeddings that don't want the lock overhead. The zero value of
	// Config is therefore the safe, concurrent default even when built as
	// a struct literal rather than through DefaultConfig.
	SingleThreaded bool
}

const defaultCacheCapacity = 256

// DefaultConfig returns a Config with every optional field at its
// documented default; callers still need to set KernelPaths and LSKPath.
func DefaultConfig() Config {
	return Config{
		CacheCapacity:   defaultCacheCapacity,
		PrecessionModel: frames.Vondrak2011,
	}
}
