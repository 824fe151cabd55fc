// Package engine implements the simulation engine (spec.md section 4.3):
// orchestrates per-trial clearing, settings application, ROA loading,
// announcement seeding, and the three-sweep rank-ordered propagation
// schedule. Grounded on
// original_source/bgpsimulator/simulation_engine/simulation_engine.py's
// run loop, adapted to the teacher's single-threaded, deterministic
// trial-owns-its-state model (spec.md section 5).
package engine

import (
	"fmt"

	"github.com/Emeline-1/bgpsim/internal/announce"
	"github.com/Emeline-1/bgpsim/internal/asgraph"
	"github.com/Emeline-1/bgpsim/internal/policy"
	"github.com/Emeline-1/bgpsim/internal/scenario"
)

// Engine owns one trial's worth of mutable simulation state layered over
// a shared, read-only AS graph (spec.md section 5: "the ASGraph topology
// is shared read-only" across trials).
type Engine struct {
	Graph *asgraph.Graph
	Store *policy.Store

	seedErr error
}

// New builds an Engine over g. The graph must already be finalized
// (graphsetup.Finalize) before being handed to an Engine.
func New(g *asgraph.Graph) *Engine {
	return &Engine{
		Graph: g,
		Store: policy.NewStore(g),
	}
}

// Run executes propagationRound of sc. Round 0 performs trial setup
// (clear state, apply settings, load ROAs, seed announcements) before
// running the propagation schedule; later rounds skip setup and only
// propagate, supporting scenarios whose attacker replays a learned path
// as a second-round origin (spec.md section 4.3, step 1; section 8,
// "Accidental route leak + Path-End").
func (e *Engine) Run(sc *scenario.Scenario, propagationRound int) error {
	if propagationRound == 0 {
		e.setup(sc)
	}
	e.propagate()
	return e.seedErr
}

// setup implements spec.md section 4.3 step 1.
func (e *Engine) setup(sc *scenario.Scenario) {
	e.Store.Reset()
	for _, a := range e.Graph.All() {
		e.Store.SetSettings(a.ASN, sc.SettingsFor(a.ASN))
	}
	e.Store.Validator.Load(sc.ROAs)
	e.seedErr = nil
	for _, asn := range sc.SortedSeedASNs() {
		p := e.Store.Policy(asn)
		if p == nil {
			continue
		}
		for _, ann := range sc.SeedAnnouncements[asn] {
			if err := p.SeedAnn(ann); err != nil {
				e.seedErr = fmt.Errorf("engine: seed AS %d: %w", asn, err)
				return
			}
		}
	}
}

// propagate runs the three relationship sweeps spec.md section 4.3
// requires per propagation round.
func (e *Engine) propagate() {
	buckets := e.Graph.RankBuckets()

	// 1. Customer->Provider sweep: ranks ascending; propagate, then the
	// next rank up drains with from_rel=CUSTOMERS.
	for r := 0; r < len(buckets); r++ {
		for _, asn := range buckets[r] {
			if p := e.Store.Policy(asn); p != nil {
				p.PropagateToProviders()
			}
		}
		if r+1 < len(buckets) {
			for _, asn := range buckets[r+1] {
				if p := e.Store.Policy(asn); p != nil {
					p.ProcessIncomingAnns(announce.CUSTOMERS)
				}
			}
		}
	}

	// 2. Peer sweep: every AS propagates to peers, then every AS drains
	// with from_rel=PEERS.
	for _, a := range e.Graph.All() {
		if p := e.Store.Policy(a.ASN); p != nil {
			p.PropagateToPeers()
		}
	}
	for _, a := range e.Graph.All() {
		if p := e.Store.Policy(a.ASN); p != nil {
			p.ProcessIncomingAnns(announce.PEERS)
		}
	}

	// 3. Provider->Customer sweep: ranks descending; propagate, then the
	// next rank down drains with from_rel=PROVIDERS.
	for r := len(buckets) - 1; r >= 0; r-- {
		for _, asn := range buckets[r] {
			if p := e.Store.Policy(asn); p != nil {
				p.PropagateToCustomers()
			}
		}
		if r-1 >= 0 {
			for _, asn := range buckets[r-1] {
				if p := e.Store.Policy(asn); p != nil {
					p.ProcessIncomingAnns(announce.PROVIDERS)
				}
			}
		}
	}
}
