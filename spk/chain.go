package spk

import (
	"sort"

	"github.com/vedastro/ephem/errs"
)

// buildChains resolves, for every body with at least one segment in the
// kernel, the minimum-hop-count path to SSB, and records it as a chain of
// links. A body with several segments naming different centers is resolved
// deterministically: among centers that themselves reach SSB, the one with
// the fewest hops wins; ties are broken by the lower NAIF body ID.
func (k *Kernel) buildChains() error {
	candidates := make(map[int][]int)
	for key := range k.segMap {
		target, center := key[0], key[1]
		candidates[target] = appendUnique(candidates[target], center)
	}
	for t := range candidates {
		sort.Ints(candidates[t])
	}

	hops := map[int]int{SSB: 0}
	chosen := make(map[int]int)

	var resolve func(body int, visiting map[int]bool) (int, error)
	resolve = func(body int, visiting map[int]bool) (int, error) {
		if h, ok := hops[body]; ok {
			return h, nil
		}
		if visiting[body] {
			return 0, errs.Wrap(errs.ErrKernelInvalid, "cycle detected in segment graph at body %d", body)
		}
		centers := candidates[body]
		if len(centers) == 0 {
			return 0, errs.Wrap(errs.ErrNoSegment, "body %d has no segment linking it toward the barycenter", body)
		}
		visiting[body] = true
		best := -1
		bestCenter := 0
		var lastErr error
		for _, c := range centers {
			h, err := resolve(c, visiting)
			if err != nil {
				lastErr = err
				continue
			}
			if best == -1 || h < best || (h == best && c < bestCenter) {
				best, bestCenter = h, c
			}
		}
		delete(visiting, body)
		if best == -1 {
			if lastErr != nil {
				return 0, lastErr
			}
			return 0, errs.Wrap(errs.ErrNoSegment, "body %d has no path to the barycenter", body)
		}
		hops[body] = best + 1
		chosen[body] = bestCenter
		return hops[body], nil
	}

	bodies := make([]int, 0, len(candidates))
	for t := range candidates {
		bodies = append(bodies, t)
	}
	sort.Ints(bodies)

	for _, t := range bodies {
		if _, err := resolve(t, make(map[int]bool)); err != nil {
			return err
		}
	}

	for body := range chosen {
		var path []ChainLink
		cur := body
		for cur != SSB {
			c, ok := chosen[cur]
			if !ok {
				break
			}
			path = append(path, ChainLink{Target: cur, Center: c})
			cur = c
		}
		k.chains[body] = path
	}
	return nil
}

func appendUnique(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// Chain returns the resolved sequence of links from body to SSB, in order
// from body outward. A nil chain with a nil error means body is SSB itself.
func (k *Kernel) Chain(body int) ([]ChainLink, error) {
	if body == SSB {
		return nil, nil
	}
	chain, ok := k.chains[body]
	if !ok {
		return nil, errs.Wrap(errs.ErrNoSegment, "body %d is not reachable from this kernel", body)
	}
	return chain, nil
}

// StateWrtSSB returns body's position and velocity (km, km/s, ICRF/J2000)
// relative to the Solar System Barycenter at tdbSec TDB seconds past J2000,
// by summing every link in its resolved chain.
func (k *Kernel) StateWrtSSB(body int, tdbSec float64) (pos, vel [3]float64, err error) {
	chain, err := k.Chain(body)
	if err != nil {
		return pos, vel, err
	}
	for _, link := range chain {
		p, v, err := k.PositionVelocity(link.Target, link.Center, tdbSec)
		if err != nil {
			return pos, vel, err
		}
		pos = add3(pos, p)
		vel = add3(vel, v)
	}
	return pos, vel, nil
}

// State returns target's position and velocity (km, km/s, ICRF/J2000)
// relative to observer at tdbSec TDB seconds past J2000, computed as the
// difference of each body's state relative to SSB.
func (k *Kernel) State(target, observer int, tdbSec float64) (pos, vel [3]float64, err error) {
	tp, tv, err := k.StateWrtSSB(target, tdbSec)
	if err != nil {
		return pos, vel, err
	}
	op, ov, err := k.StateWrtSSB(observer, tdbSec)
	if err != nil {
		return pos, vel, err
	}
	return sub3(tp, op), sub3(tv, ov), nil
}
