// Package graphsetup implements the pre-engine graph extra-setup phase
// described in spec.md section 4.2: cycle detection, provider-cone
// closure, and propagation-rank assignment. It runs once, after the graph
// is built and before any trial uses it.
package graphsetup

import (
	"errors"
	"fmt"
	"sort"

	graph "github.com/Emeline-1/basic_graph"

	"github.com/Emeline-1/bgpsim/internal/asgraph"
)

// ErrCycle is returned when the provider or customer relation contains a
// cycle -- spec.md section 7's CycleError, fatal at setup.
var ErrCycle = errors.New("graphsetup: cycle detected")

// Finalize runs cycle detection, provider-cone computation, propagation
// rank assignment, and ASN-group computation on g, in that order, exactly
// once. It mutates g in place via its exported setters and is not safe to
// call concurrently with trials that read g.
func Finalize(g *asgraph.Graph) error {
	if err := checkCycles(g, providerEdges); err != nil {
		return err
	}
	if err := checkCycles(g, customerEdges); err != nil {
		return err
	}
	if err := connectivitySanityCheck(g); err != nil {
		return err
	}

	coneCache := make(map[int32][]int32, g.Len())
	for _, a := range g.All() {
		cone := providerCone(g, a.ASN, coneCache, make(map[int32]bool))
		g.SetProviderCone(a.ASN, sortedUnique(cone))
	}

	assignRanks(g)
	assignGroups(g)
	return nil
}

func providerEdges(a *asgraph.AS) []int32 { return a.ProviderASNs }
func customerEdges(a *asgraph.AS) []int32 { return a.CustomerASNs }

// checkCycles runs DFS along edge(a) for every AS, using both a
// fully-visited set and a recursion-stack set so a back-edge (a node
// still on the current DFS stack) is flagged as a cycle. Running this
// separately for providers and for customers, as spec.md directs, catches
// malformed inputs that a single direction might miss.
func checkCycles(g *asgraph.Graph, edges func(*asgraph.AS) []int32) error {
	visited := make(map[int32]bool, g.Len())
	onStack := make(map[int32]bool, g.Len())

	var visit func(asn int32) error
	visit = func(asn int32) error {
		if visited[asn] {
			return nil
		}
		visited[asn] = true
		onStack[asn] = true
		a := g.AS(asn)
		for _, next := range edges(a) {
			if onStack[next] {
				return fmt.Errorf("%w: AS %d", ErrCycle, asn)
			}
			if !visited[next] {
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		onStack[asn] = false
		return nil
	}

	for _, a := range g.All() {
		if err := visit(a.ASN); err != nil {
			return err
		}
	}
	return nil
}

// connectivitySanityCheck cross-checks the directed provider/customer/peer
// edges by building an auxiliary undirected graph
// (github.com/Emeline-1/basic_graph, the library the teacher already uses
// to compute overlay closures in overlays_processing.go via
// Set_iterator/Next_connected_component/Connected_component) and
// confirming every AS falls into the graph's single largest connected
// component. A graph with an isolated AS, or a whole cluster of ASes
// reachable from each other but disconnected from the rest of the
// Internet, almost always indicates a malformed ingest -- something the
// directed cycle checks above, which never cross an undirected component
// boundary, cannot detect on their own.
func connectivitySanityCheck(g *asgraph.Graph) error {
	if g.Len() <= 1 {
		return nil
	}

	ug := graph.New()
	for _, a := range g.All() {
		for _, n := range a.NeighborASNs() {
			ug.Add_edge(asnLabel(a.ASN), asnLabel(n))
		}
	}

	componentOf := make(map[string]int)
	var componentSizes []int
	ug.Set_iterator()
	for ug.Next_connected_component() {
		cc := ug.Connected_component()
		idx := len(componentSizes)
		componentSizes = append(componentSizes, len(cc))
		for _, label := range cc {
			componentOf[label] = idx
		}
	}

	largest := -1
	for idx, size := range componentSizes {
		if largest == -1 || size > componentSizes[largest] {
			largest = idx
		}
	}

	for _, a := range g.All() {
		idx, ok := componentOf[asnLabel(a.ASN)]
		if !ok || idx != largest {
			return fmt.Errorf("graphsetup: AS %d is disconnected from the graph's main connected component", a.ASN)
		}
	}
	return nil
}

func asnLabel(asn int32) string { return fmt.Sprintf("%d", asn) }

// providerCone recursively computes the transitive closure of provider
// edges for asn, memoized across the whole graph. Providers have already
// been proven acyclic by checkCycles, so plain memoized recursion is
// cycle-safe.
func providerCone(g *asgraph.Graph, asn int32, cache map[int32][]int32, inProgress map[int32]bool) []int32 {
	if cone, ok := cache[asn]; ok {
		return cone
	}
	a := g.AS(asn)
	set := make(map[int32]bool)
	for _, p := range a.ProviderASNs {
		set[p] = true
		for _, pp := range providerCone(g, p, cache, inProgress) {
			set[pp] = true
		}
	}
	cone := make([]int32, 0, len(set))
	for asn := range set {
		cone = append(cone, asn)
	}
	cache[asn] = cone
	return cone
}

// assignRanks implements spec.md's leaf-to-clique rank assignment:
// initialize every rank to 0, then for each AS walk its providers and
// raise provider.rank to max(provider.rank, child.rank+1). Because a
// provider's rank only ever increases, and the provider graph is acyclic,
// a single pass per AS (propagating upward whenever it raises a rank)
// converges.
func assignRanks(g *asgraph.Graph) {
	ranks := make(map[int32]int, g.Len())
	for _, a := range g.All() {
		ranks[a.ASN] = 0
	}

	var raise func(asn int32, rank int)
	raise = func(asn int32, rank int) {
		if ranks[asn] >= rank {
			return
		}
		ranks[asn] = rank
		for _, p := range g.AS(asn).ProviderASNs {
			raise(p, rank+1)
		}
	}
	for _, a := range g.All() {
		for _, p := range a.ProviderASNs {
			raise(p, ranks[a.ASN]+1)
		}
	}

	maxRank := 0
	for _, r := range ranks {
		if r > maxRank {
			maxRank = r
		}
	}
	buckets := make([][]int32, maxRank+1)
	for _, a := range g.All() {
		r := ranks[a.ASN]
		buckets[r] = append(buckets[r], a.ASN)
		g.SetRank(a.ASN, r)
	}
	for _, b := range buckets {
		sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })
	}
	g.SetRankBuckets(buckets)
}

// assignGroups computes the named ASN groupings of spec.md section 3,
// each ASN-sorted for deterministic downstream iteration.
func assignGroups(g *asgraph.Graph) {
	groups := map[asgraph.Group][]int32{
		asgraph.GroupTier1:       nil,
		asgraph.GroupIXPs:        nil,
		asgraph.GroupStubs:       nil,
		asgraph.GroupMultihomed:  nil,
		asgraph.GroupStubsOrMH:   nil,
		asgraph.GroupTransit:     nil,
		asgraph.GroupETC:         nil,
		asgraph.GroupAllWoutIXPs: nil,
	}
	for _, a := range g.All() {
		if a.Tier1 {
			groups[asgraph.GroupTier1] = append(groups[asgraph.GroupTier1], a.ASN)
		}
		if a.IXP {
			groups[asgraph.GroupIXPs] = append(groups[asgraph.GroupIXPs], a.ASN)
			continue
		}
		groups[asgraph.GroupAllWoutIXPs] = append(groups[asgraph.GroupAllWoutIXPs], a.ASN)

		stub := a.Stub()
		mh := a.Multihomed()
		switch {
		case stub:
			groups[asgraph.GroupStubs] = append(groups[asgraph.GroupStubs], a.ASN)
			groups[asgraph.GroupStubsOrMH] = append(groups[asgraph.GroupStubsOrMH], a.ASN)
		case mh:
			groups[asgraph.GroupMultihomed] = append(groups[asgraph.GroupMultihomed], a.ASN)
			groups[asgraph.GroupStubsOrMH] = append(groups[asgraph.GroupStubsOrMH], a.ASN)
		case a.Transit():
			groups[asgraph.GroupTransit] = append(groups[asgraph.GroupTransit], a.ASN)
		default:
			groups[asgraph.GroupETC] = append(groups[asgraph.GroupETC], a.ASN)
		}
	}
	for name := range groups {
		sort.Slice(groups[name], func(i, j int) bool { return groups[name][i] < groups[name][j] })
	}
	g.SetGroups(groups)
}

func sortedUnique(in []int32) []int32 {
	out := append([]int32(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
