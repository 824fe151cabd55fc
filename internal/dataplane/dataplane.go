// Package dataplane implements the post-propagation data-plane traceback
// (spec.md section 4.6): for every AS, walks next-hop chains toward a
// fixed destination IP and classifies its fate. Grounded on
// original_source/bgpsimulator/simulation_engine/simulation_engine.py's
// outcome computation, adapted to a recursive, per-call visited set, with
// the original's module-level outcome cache scoped to one Propagator
// instead (spec.md section 9, "Global state").
package dataplane

import (
	"github.com/Emeline-1/bgpsim/internal/announce"
	"github.com/Emeline-1/bgpsim/internal/asgraph"
	"github.com/Emeline-1/bgpsim/internal/ipaddr"
	"github.com/Emeline-1/bgpsim/internal/policy"
	"github.com/Emeline-1/bgpsim/internal/util"
)

// Outcome is an AS's classified fate for a destination IP (spec.md
// section 6, "Outcomes enum (wire values)").
type Outcome int

const (
	ATTACKER_SUCCESS           Outcome = 0
	LEGITIMATE_ORIGIN_SUCCESS  Outcome = 1
	DISCONNECTED               Outcome = 2
	DATA_PLANE_LOOP            Outcome = 3
	// UNDETERMINED is internal only: it never appears in a returned
	// outcomes map, only as a recursion sentinel while a traceback is
	// in flight.
	UNDETERMINED Outcome = -1
)

func (o Outcome) String() string {
	switch o {
	case ATTACKER_SUCCESS:
		return "ATTACKER_SUCCESS"
	case LEGITIMATE_ORIGIN_SUCCESS:
		return "LEGITIMATE_ORIGIN_SUCCESS"
	case DISCONNECTED:
		return "DISCONNECTED"
	case DATA_PLANE_LOOP:
		return "DATA_PLANE_LOOP"
	default:
		return "UNDETERMINED"
	}
}

// maxVisited bounds the traceback visited set (spec.md section 4.6, step
// 4: "visited size > 64").
const maxVisited = 64

// Propagator computes outcomes for every AS in a graph against a fixed
// destination, given the per-trial policy Store that owns each AS's
// local RIB.
type Propagator struct {
	Graph          *asgraph.Graph
	Store          *policy.Store
	AttackerASNs   *util.SafeSet[int32]
	LegitimateASNs *util.SafeSet[int32]

	cache map[int32]Outcome
}

// NewPropagator builds a Propagator for one destination computation.
// attackerASNs and legitimateASNs are the scenario's attacker_asns and
// legitimate_origin_asns sets. They are held in a util.SafeSet, a
// mutex-protected set, so that a caller computing outcomes for several
// destinations concurrently can share one Propagator's membership sets
// safely.
func NewPropagator(g *asgraph.Graph, st *policy.Store, attackerASNs, legitimateASNs []int32) *Propagator {
	pr := &Propagator{
		Graph:          g,
		Store:          st,
		AttackerASNs:   toSet(attackerASNs),
		LegitimateASNs: toSet(legitimateASNs),
		cache:          make(map[int32]Outcome),
	}
	return pr
}

func toSet(asns []int32) *util.SafeSet[int32] {
	s := util.NewSafeSet[int32]()
	for _, a := range asns {
		s.Add(a)
	}
	return s
}

// Outcomes computes the outcome for every AS in the graph against dst
// (spec.md section 4.6).
func (pr *Propagator) Outcomes(dst ipaddr.IPAddr) map[int32]Outcome {
	out := make(map[int32]Outcome, pr.Graph.Len())
	for _, a := range pr.Graph.All() {
		out[a.ASN] = pr.trace(a.ASN, dst, make(map[int32]bool))
	}
	return out
}

// trace implements the recursive classification of spec.md section 4.6,
// steps 1-5.
func (pr *Propagator) trace(asn int32, dst ipaddr.IPAddr, visited map[int32]bool) Outcome {
	if o, ok := pr.cache[asn]; ok {
		return o
	}

	if pr.AttackerASNs.Contains(asn) {
		return pr.store(asn, ATTACKER_SUCCESS)
	}
	if pr.LegitimateASNs.Contains(asn) {
		return pr.store(asn, LEGITIMATE_ORIGIN_SUCCESS)
	}

	p := pr.Store.Policy(asn)
	if p == nil {
		return pr.store(asn, DISCONNECTED)
	}
	ann, found := p.GetMostSpecificAnn(dst)
	if !found || len(ann.ASPath) == 1 || ann.RecvRelationship == announce.ORIGIN ||
		ann.NextHopASN == asn || !p.PassesSAV(dst, ann) {
		return pr.store(asn, DISCONNECTED)
	}

	if visited[asn] || len(visited) > maxVisited {
		return pr.store(asn, DATA_PLANE_LOOP)
	}
	visited[asn] = true

	next := pr.trace(ann.NextHopASN, dst, visited)
	return pr.store(asn, next)
}

func (pr *Propagator) store(asn int32, o Outcome) Outcome {
	pr.cache[asn] = o
	return o
}
