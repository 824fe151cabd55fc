// Package asgraph implements the AS-relationship graph: node entities,
// relationships, propagation ranks, and ASN groupings (spec.md section
// 3, "AS" and "ASGraph").
//
// The graph is a dense arena (spec.md's design notes on cyclic
// references): ASes are stored in a slice and referenced everywhere else
// by integer ASN, never by pointer, so the graph has no lifetime cycles
// and can be shared read-only across trial goroutines (spec.md section
// 5).
package asgraph

import (
	"fmt"
	"slices"
	"sort"

	"github.com/Emeline-1/bgpsim/internal/announce"
)

// Group names one of the ASN groupings spec.md section 3 requires the
// graph to expose.
type Group string

const (
	GroupTier1       Group = "TIER_1"
	GroupIXPs        Group = "IXPS"
	GroupStubs       Group = "STUBS"
	GroupMultihomed  Group = "MULTIHOMED"
	GroupStubsOrMH   Group = "STUBS_OR_MH"
	GroupTransit     Group = "TRANSIT"
	GroupETC         Group = "ETC"
	GroupAllWoutIXPs Group = "ALL_WOUT_IXPS"
)

// AS is a single autonomous system's topology data: identity, relationship
// sets, and setup-phase derived attributes. It carries no policy state --
// per-trial Policy instances live in package policy, keyed by ASN, so
// that this type stays immutable and shareable after graph construction.
type AS struct {
	ASN int32

	PeerASNs     []int32
	CustomerASNs []int32
	ProviderASNs []int32

	Tier1 bool
	IXP   bool

	// ProviderConeASNs is the transitive closure of provider edges,
	// computed by the graph extra-setup phase.
	ProviderConeASNs []int32
	// PropagationRank is the leaf-to-clique distance (0 = leaf),
	// computed by the graph extra-setup phase.
	PropagationRank int
}

// NeighborASNs returns customers+peers+providers, deduplicated and sorted.
func (a *AS) NeighborASNs() []int32 {
	out := make([]int32, 0, len(a.CustomerASNs)+len(a.PeerASNs)+len(a.ProviderASNs))
	out = append(out, a.CustomerASNs...)
	out = append(out, a.PeerASNs...)
	out = append(out, a.ProviderASNs...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return slices.Compact(out)
}

// Stub reports whether the AS has exactly one neighbor (RFC 1772).
func (a *AS) Stub() bool {
	return len(a.CustomerASNs)+len(a.PeerASNs)+len(a.ProviderASNs) == 1
}

// Multihomed reports whether the AS has no customers but more than one
// peer/provider (RFC 1772).
func (a *AS) Multihomed() bool {
	return len(a.CustomerASNs) == 0 && len(a.PeerASNs)+len(a.ProviderASNs) > 1
}

// Transit reports whether the AS has customers and more than one neighbor
// overall (RFC 1772).
func (a *AS) Transit() bool {
	total := len(a.CustomerASNs) + len(a.PeerASNs) + len(a.ProviderASNs)
	return len(a.CustomerASNs) > 0 && total > 1
}

// NeighborsByRelationship picks out which neighbor set corresponds to a propagation
// direction (PROVIDERS/PEERS/CUSTOMERS only -- ORIGIN/UNKNOWN have no
// neighbor set and are a caller error).
func (a *AS) NeighborsByRelationship(rel announce.Relationship) []int32 {
	switch rel {
	case announce.PEERS:
		return a.PeerASNs
	case announce.PROVIDERS:
		return a.ProviderASNs
	case announce.CUSTOMERS:
		return a.CustomerASNs
	default:
		panic(fmt.Sprintf("asgraph: invalid neighbor relationship %s", rel))
	}
}

// InputSpec is the raw per-AS relationship data the graph is built from --
// the "graph contract" spec.md section 1 says CAIDA ingest must deliver.
type InputSpec struct {
	ASN          int32
	PeerASNs     []int32
	CustomerASNs []int32
	ProviderASNs []int32
	Tier1        bool
	IXP          bool
}

// Graph is the full AS-relationship graph: a dense arena of AS values plus
// ASN groupings and rank buckets. Immutable after New returns; safe to
// share read-only across trials (spec.md section 5).
type Graph struct {
	ases      []AS
	asnToIdx  map[int32]int
	groups    map[Group][]int32
	rankAsns  [][]int32 // rankAsns[r] = sorted ASNs at propagation rank r
}

// New builds a Graph arena from raw per-AS specs, without running
// extra-setup (cycle check / provider cone / rank assignment): those are
// package graphsetup's job, invoked via Finalize.
func New(specs []InputSpec) *Graph {
	g := &Graph{
		ases:     make([]AS, len(specs)),
		asnToIdx: make(map[int32]int, len(specs)),
	}
	sorted := append([]InputSpec(nil), specs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ASN < sorted[j].ASN })
	for i, s := range sorted {
		g.ases[i] = AS{
			ASN:          s.ASN,
			PeerASNs:     sortedCopy(s.PeerASNs),
			CustomerASNs: sortedCopy(s.CustomerASNs),
			ProviderASNs: sortedCopy(s.ProviderASNs),
			Tier1:        s.Tier1,
			IXP:          s.IXP,
		}
		g.asnToIdx[s.ASN] = i
	}
	return g
}

func sortedCopy(in []int32) []int32 {
	out := append([]int32(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AS returns a pointer into the arena for asn, or nil if unknown. Callers
// must not mutate the returned AS: the graph is shared read-only once
// built.
func (g *Graph) AS(asn int32) *AS {
	idx, ok := g.asnToIdx[asn]
	if !ok {
		return nil
	}
	return &g.ases[idx]
}

// Has reports whether asn is present in the graph.
func (g *Graph) Has(asn int32) bool {
	_, ok := g.asnToIdx[asn]
	return ok
}

// All returns every AS in ASN-sorted order (determinism per spec.md
// section 9, "Iterate ASN-sorted wherever iteration order affects ties").
func (g *Graph) All() []*AS {
	out := make([]*AS, len(g.ases))
	for i := range g.ases {
		out[i] = &g.ases[i]
	}
	return out
}

// Len returns the number of ASes in the graph.
func (g *Graph) Len() int { return len(g.ases) }

// SetProviderCone is called by package graphsetup during Finalize.
func (g *Graph) SetProviderCone(asn int32, cone []int32) {
	idx := g.asnToIdx[asn]
	g.ases[idx].ProviderConeASNs = cone
}

// SetRank is called by package graphsetup during Finalize.
func (g *Graph) SetRank(asn int32, rank int) {
	idx := g.asnToIdx[asn]
	g.ases[idx].PropagationRank = rank
}

// SetRankBuckets stores the ASN-sorted rank buckets computed by
// graphsetup.
func (g *Graph) SetRankBuckets(buckets [][]int32) {
	g.rankAsns = buckets
}

// SetGroups stores the ASN group membership computed by graphsetup.
func (g *Graph) SetGroups(groups map[Group][]int32) {
	g.groups = groups
}

// RankBuckets returns propagation-rank buckets in ascending rank order,
// each bucket ASN-sorted, as spec.md section 4.2 requires for
// deterministic propagation scheduling.
func (g *Graph) RankBuckets() [][]int32 { return g.rankAsns }

// MaxRank returns the highest propagation rank present in the graph.
func (g *Graph) MaxRank() int {
	if len(g.rankAsns) == 0 {
		return 0
	}
	return len(g.rankAsns) - 1
}

// Group returns the ASN membership of a named group, ASN-sorted.
func (g *Graph) Group(name Group) []int32 { return g.groups[name] }

