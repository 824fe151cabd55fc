package asgraph

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// wireAS is one entry of the "ases" map in the ASGraph JSON contract
// (spec.md section 6).
type wireAS struct {
	ASN              int32   `json:"asn"`
	PeerASNs         []int32 `json:"peer_asns"`
	ProviderASNs     []int32 `json:"provider_asns"`
	CustomerASNs     []int32 `json:"customer_asns"`
	Tier1            bool    `json:"tier_1"`
	IXP              bool    `json:"ixp"`
	ProviderConeASNs []int32 `json:"provider_cone_asns"`
	PropagationRank  int     `json:"propagation_rank"`
}

type wireGraph struct {
	ASes                map[string]wireAS  `json:"ases"`
	ASNGroups           map[string][]int32 `json:"asn_groups"`
	PropagationRanks    [][]int32          `json:"propagation_ranks"`
	ExtraSetupComplete  bool               `json:"extra_setup_complete"`
	CyclesDetected      bool               `json:"cycles_detected"`
}

// MarshalJSON renders the graph per the ASGraph JSON contract of spec.md
// section 6.
func (g *Graph) MarshalJSON() ([]byte, error) {
	w := wireGraph{
		ASes:               make(map[string]wireAS, len(g.ases)),
		ASNGroups:          make(map[string][]int32, len(g.groups)),
		PropagationRanks:   g.rankAsns,
		ExtraSetupComplete: true,
		CyclesDetected:     false,
	}
	for _, a := range g.ases {
		w.ASes[strconv.Itoa(int(a.ASN))] = wireAS{
			ASN:              a.ASN,
			PeerASNs:         a.PeerASNs,
			ProviderASNs:     a.ProviderASNs,
			CustomerASNs:     a.CustomerASNs,
			Tier1:            a.Tier1,
			IXP:              a.IXP,
			ProviderConeASNs: a.ProviderConeASNs,
			PropagationRank:  a.PropagationRank,
		}
	}
	for name, asns := range g.groups {
		w.ASNGroups[string(name)] = asns
	}
	return json.Marshal(w)
}

// UnmarshalJSON reconstructs a Graph from its ASGraph JSON contract
// representation, satisfying spec.md section 8's round-trip law: the
// result has identical adjacencies, ranks, provider cones, and asn_groups
// to whatever produced the JSON.
func (g *Graph) UnmarshalJSON(b []byte) error {
	var w wireGraph
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("asgraph: decode: %w", err)
	}

	specs := make([]InputSpec, 0, len(w.ASes))
	for key, wa := range w.ASes {
		asn, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("asgraph: bad asn key %q: %w", key, err)
		}
		if int32(asn) != wa.ASN {
			return fmt.Errorf("asgraph: asn key %q does not match embedded asn %d", key, wa.ASN)
		}
		specs = append(specs, InputSpec{
			ASN:          wa.ASN,
			PeerASNs:     wa.PeerASNs,
			CustomerASNs: wa.CustomerASNs,
			ProviderASNs: wa.ProviderASNs,
			Tier1:        wa.Tier1,
			IXP:          wa.IXP,
		})
	}
	built := New(specs)
	for _, wa := range w.ASes {
		built.SetProviderCone(wa.ASN, sortedCopy(wa.ProviderConeASNs))
		built.SetRank(wa.ASN, wa.PropagationRank)
	}
	ranks := make([][]int32, len(w.PropagationRanks))
	for i, bucket := range w.PropagationRanks {
		ranks[i] = sortedCopy(bucket)
	}
	built.SetRankBuckets(ranks)

	groups := make(map[Group][]int32, len(w.ASNGroups))
	for name, asns := range w.ASNGroups {
		cp := sortedCopy(asns)
		groups[Group(name)] = cp
	}
	built.SetGroups(groups)

	*g = *built
	return nil
}

// sortedGroupNames is a small helper for deterministic iteration/printing
// over a group map.
func sortedGroupNames(groups map[Group][]int32) []Group {
	names := make([]Group, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
