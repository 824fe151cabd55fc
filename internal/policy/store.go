package policy

import (
	"github.com/Emeline-1/bgpsim/internal/asgraph"
	"github.com/Emeline-1/bgpsim/internal/roa"
)

// Store is the per-trial owner of every AS's Policy plus the shared
// read-only graph and the per-trial Route Validator. It exists because
// asgraph.AS deliberately carries no policy reference (spec.md section 9's
// AS<->Policy cyclic-reference note): any extension that needs another
// AS's settings or the graph topology goes through the Store instead of a
// pointer cycle.
type Store struct {
	Graph     *asgraph.Graph
	Validator *roa.Validator
	policies  map[int32]*Policy
}

// NewStore builds a Store with one empty Policy per AS in g. The graph is
// shared read-only across trials; Store and every Policy it owns are not.
func NewStore(g *asgraph.Graph) *Store {
	st := &Store{
		Graph:     g,
		Validator: roa.NewValidator(),
		policies:  make(map[int32]*Policy, g.Len()),
	}
	for _, a := range g.All() {
		st.policies[a.ASN] = newPolicy(a.ASN, st)
	}
	return st
}

// Policy returns the Policy owned by asn, or nil if asn is not in the
// graph.
func (st *Store) Policy(asn int32) *Policy { return st.policies[asn] }

// SetSettings installs asn's per-trial security-extension settings.
func (st *Store) SetSettings(asn int32, s Settings) {
	if p := st.policies[asn]; p != nil {
		p.Settings = s
	}
}

func (st *Store) settingsOf(asn int32) Settings {
	if p := st.policies[asn]; p != nil {
		return p.Settings
	}
	return 0
}

// Reset clears every Policy's RIB, recv queue, and cache, and zeroes every
// Policy's settings -- the per-trial state the engine clears at the start
// of propagation_round 0 (spec.md section 4.3).
func (st *Store) Reset() {
	for _, p := range st.policies {
		p.clear()
		p.Settings = 0
	}
}
