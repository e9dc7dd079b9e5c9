// Package engine is the public entry point of the ephemeris query engine:
// it owns the parsed kernels and time tables, evaluates a target/observer
// state vector at an epoch, and memoizes results behind a bounded cache.
package engine

import (
	"math"
	"time"

	"github.com/vedastro/ephem/errs"
	"github.com/vedastro/ephem/frames"
	"github.com/vedastro/ephem/spk"
	"github.com/vedastro/ephem/timescale"
)

// StateVector is a Cartesian position/velocity pair: kilometers and
// kilometers per second, in the frame the query requested.
type StateVector struct {
	PositionKm       [3]float64
	VelocityKmPerSec [3]float64
}

// Epoch is a (time scale, instant) pair, the data model's own epoch
// representation: most callers build one from a wall-clock time.Time and
// let the Engine carry it through UTC->TT->TDB, but golden ephemeris
// vectors and API callers working natively in TDB (Julian date or seconds
// past J2000) can skip that chain entirely. The zero value is a TDB-native
// Epoch at J2000.0 (zero TDB seconds past J2000).
type Epoch struct {
	wallClock       time.Time
	isWallClock     bool
	tdbSecPastJ2000 float64
}

// EpochFromTime builds an Epoch from a wall-clock instant, interpreted as
// UTC and converted to TDB via the Engine's own leapsecond/EOP tables.
func EpochFromTime(t time.Time) Epoch {
	return Epoch{wallClock: t, isWallClock: true}
}

// EpochFromTDBSeconds builds an Epoch directly from TDB seconds past J2000,
// bypassing the UTC->TT->TDB chain. This is the form the cache fingerprint
// and the kernel/chain layers operate on natively.
func EpochFromTDBSeconds(sec float64) Epoch {
	return Epoch{tdbSecPastJ2000: sec}
}

// EpochFromJDTDB builds an Epoch from a TDB Julian date, the form golden
// ephemeris test vectors are conventionally given in.
func EpochFromJDTDB(jdTDB float64) Epoch {
	return EpochFromTDBSeconds(timescale.JDTDBToSecondsPastJ2000(jdTDB))
}

// Query names a single state-vector request: the target body observed
// from the observer body, expressed in frame, at epoch.
type Query struct {
	Target   int
	Observer int
	Frame    frames.Frame
	Epoch    Epoch
}

// Engine evaluates Query against a fixed set of kernels and time tables.
// It is safe for concurrent use: every kernel is fully parsed into memory
// at Open time and never mutated afterward, and the cache synchronizes its
// own access per Config.SingleThreaded.
type Engine struct {
	kernels     []*spk.Kernel
	tables      *timescale.Tables
	transformer frames.Transformer
	model       frames.PrecessionModel
	cache       *cache
}

// New parses every kernel and time table named in cfg and returns a ready
// Engine. All parse errors surface here, at construction, rather than on
// the first query.
func New(cfg Config) (*Engine, error) {
	if len(cfg.KernelPaths) == 0 {
		return nil, errs.Wrap(errs.ErrConfigError, "engine: at least one kernel path is required")
	}
	if cfg.LSKPath == "" {
		return nil, errs.Wrap(errs.ErrConfigError, "engine: a leapseconds kernel path is required")
	}

	tables, err := timescale.NewTables(cfg.LSKPath, cfg.EOPPath)
	if err != nil {
		return nil, err
	}

	kernels := make([]*spk.Kernel, 0, len(cfg.KernelPaths))
	for _, p := range cfg.KernelPaths {
		k, err := spk.Open(p)
		if err != nil {
			return nil, err
		}
		kernels = append(kernels, k)
	}

	c, err := newCache(cfg.CacheCapacity, !cfg.SingleThreaded)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfigError, "engine: building cache: %v", err)
	}

	return &Engine{
		kernels:     kernels,
		tables:      tables,
		transformer: frames.NewTransformer(cfg.PrecessionModel),
		model:       cfg.PrecessionModel,
		cache:       c,
	}, nil
}

// NewEngine is an alias of New, kept for callers that prefer the
// type-qualified spelling.
func NewEngine(cfg Config) (*Engine, error) { return New(cfg) }

const ticksPerSecond = 1e6

func ticksFromSeconds(sec float64) int64 {
	return int64(math.Round(sec * ticksPerSecond))
}

func secondsFromTicks(ticks int64) float64 {
	return float64(ticks) / ticksPerSecond
}

// tdbSecondsFor resolves an Epoch to TDB seconds past J2000: wall-clock
// epochs run the engine's own UTC->TT->TDB chain, TDB-native epochs pass
// through untouched.
func (e *Engine) tdbSecondsFor(epoch Epoch) float64 {
	if !epoch.isWallClock {
		return epoch.tdbSecPastJ2000
	}
	jdUTC := timescale.TimeToJDUTC(epoch.wallClock)
	jdTT := e.tables.UTCToTT(jdUTC)
	jdTDB := jdTT + timescale.TDBMinusTT(jdTT)/timescale.SecPerDay
	return timescale.JDTDBToSecondsPastJ2000(jdTDB)
}

// bodyStateWrtSSB returns body's ICRF/J2000 state relative to SSB at
// tdbSec, trying each configured kernel in order and memoizing the result
// in posMemo/velMemo so a batch of queries sharing an epoch only resolves
// a given body once.
func (e *Engine) bodyStateWrtSSB(body int, tdbSec float64, posMemo, velMemo map[int][3]float64) ([3]float64, [3]float64, error) {
	if p, ok := posMemo[body]; ok {
		return p, velMemo[body], nil
	}
	var lastErr error
	for _, k := range e.kernels {
		p, v, err := k.StateWrtSSB(body, tdbSec)
		if err == nil {
			posMemo[body] = p
			velMemo[body] = v
			return p, v, nil
		}
		lastErr = err
	}
	return [3]float64{}, [3]float64{}, lastErr
}

func (e *Engine) queryAtSeconds(q Query, tdbSec float64, posMemo, velMemo map[int][3]float64) (StateVector, error) {
	key := fingerprint{
		target: q.Target, observer: q.Observer,
		frame: int(q.Frame), model: int(e.model),
		ticks: ticksFromSeconds(tdbSec),
	}
	if v, ok := e.cache.get(key); ok {
		return v, nil
	}

	tp, tv, err := e.bodyStateWrtSSB(q.Target, tdbSec, posMemo, velMemo)
	if err != nil {
		return StateVector{}, err
	}
	op, ov, err := e.bodyStateWrtSSB(q.Observer, tdbSec, posMemo, velMemo)
	if err != nil {
		return StateVector{}, err
	}

	pos := sub3(tp, op)
	vel := sub3(tv, ov)
	outPos, outVel := e.transformer.ToFrame(q.Frame, pos, vel, tdbSec)
	sv := StateVector{PositionKm: outPos, VelocityKmPerSec: outVel}
	e.cache.put(key, sv)
	return sv, nil
}

// Query resolves a single target/observer state vector. It is
// referentially transparent: the same Query (to within a microsecond of
// epoch) always returns the same StateVector, served from cache on repeat.
func (e *Engine) Query(q Query) (StateVector, error) {
	tdbSec := e.tdbSecondsFor(q.Epoch)
	return e.queryAtSeconds(q, tdbSec, map[int][3]float64{}, map[int][3]float64{})
}

// BatchResult is one slot of a QueryBatch result: either a resolved SV or
// the Err that query alone hit. A failing query never affects its siblings.
type BatchResult struct {
	SV  StateVector
	Err error
}

// QueryBatch resolves every query in qs, preserving input order. Queries
// sharing an epoch (to within a microsecond) are grouped so each body's
// SSB-relative state is computed at most once per group, rather than once
// per query. A query that fails (unknown body, epoch outside a kernel's
// coverage, ...) reports its error in its own slot; every other query in
// the batch still resolves.
func (e *Engine) QueryBatch(qs []Query) []BatchResult {
	out := make([]BatchResult, len(qs))
	groups := make(map[int64][]int)
	var order []int64
	tdbByIndex := make([]float64, len(qs))

	for i, q := range qs {
		tdbSec := e.tdbSecondsFor(q.Epoch)
		tdbByIndex[i] = tdbSec
		tick := ticksFromSeconds(tdbSec)
		if _, seen := groups[tick]; !seen {
			order = append(order, tick)
		}
		groups[tick] = append(groups[tick], i)
	}

	for _, tick := range order {
		posMemo := make(map[int][3]float64)
		velMemo := make(map[int][3]float64)
		for _, idx := range groups[tick] {
			sv, err := e.queryAtSeconds(qs[idx], tdbByIndex[idx], posMemo, velMemo)
			out[idx] = BatchResult{SV: sv, Err: err}
		}
	}
	return out
}

// CacheLen reports how many fingerprints are currently cached; mainly
// useful for tests and diagnostics.
func (e *Engine) CacheLen() int { return e.cache.len() }

func sub3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}
