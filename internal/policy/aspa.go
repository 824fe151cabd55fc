package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

// aspaValid implements ASPA RFC v18 as described in spec.md section 4.5
// and grounded on the original's as_graphs/custom_policies/aspa.py: the
// next hop must be the path's most recent hop (route servers at an IXP
// are exempt), and depending on the direction the announcement arrived
// from, either the up-ramp alone or the combined up+down ramp must cover
// the whole path.
func aspaValid(p *Policy, ann announce.Announcement, fromRel announce.Relationship) bool {
	if !aspaNextHopValid(p.store, ann) {
		return false
	}
	switch fromRel {
	case announce.PROVIDERS:
		return maxUpRamp(p.store, ann)+maxDownRamp(p.store, ann) >= len(ann.ASPath)
	case announce.CUSTOMERS, announce.PEERS:
		if len(ann.ASPath) == 1 {
			return true
		}
		return maxUpRamp(p.store, ann) >= len(ann.ASPath)
	default:
		return true
	}
}

func aspaNextHopValid(st *Store, ann announce.Announcement) bool {
	if ann.NextHopASN == ann.ASPath[0] {
		return true
	}
	a := st.Graph.AS(ann.NextHopASN)
	return a != nil && a.IXP
}

// maxUpRamp is the longest prefix of the reversed (origin-first) path for
// which every consecutive (customer, provider) pair is authorized.
func maxUpRamp(st *Store, ann announce.Announcement) int {
	reversed := reversePath(ann.ASPath)
	for i := 0; i < len(reversed)-1; i++ {
		if !aspaProviderCheck(st, reversed[i], reversed[i+1]) {
			return i + 1
		}
	}
	return len(ann.ASPath)
}

// maxDownRamp is the longest suffix of the reversed path for which every
// consecutive (provider, customer) pair is authorized.
func maxDownRamp(st *Store, ann announce.Announcement) int {
	reversed := reversePath(ann.ASPath)
	for i := len(reversed) - 1; i > 0; i-- {
		if !aspaProviderCheck(st, reversed[i], reversed[i-1]) {
			j := i + 1
			return len(reversed) - j + 1
		}
	}
	return len(ann.ASPath)
}

// aspaProviderCheck returns false ("Not Provider+") only when asn1 adopts
// ASPA and asn2 is not among asn1's providers.
func aspaProviderCheck(st *Store, asn1, asn2 int32) bool {
	a1 := st.Graph.AS(asn1)
	if a1 == nil || !st.settingsOf(asn1).Has(ASPA) {
		return true
	}
	for _, provider := range a1.ProviderASNs {
		if provider == asn2 {
			return true
		}
	}
	return false
}

func reversePath(path []int32) []int32 {
	out := make([]int32, len(path))
	for i, asn := range path {
		out[len(path)-1-i] = asn
	}
	return out
}

// aspaWithNeighborsValid is ASPA plus a check against the "invalid
// neighbor edge" attack signals described for the ASPA+N draft: private
// ASNs and immediately-repeated hops in the path (spec.md section 4.5,
// "ASPA+N").
func aspaWithNeighborsValid(p *Policy, ann announce.Announcement, fromRel announce.Relationship) bool {
	if !aspaValid(p, ann, fromRel) {
		return false
	}
	for i, asn := range ann.ASPath {
		if isPrivateASN(asn) {
			return false
		}
		if i > 0 && ann.ASPath[i] == ann.ASPath[i-1] {
			return false
		}
	}
	return true
}

func isPrivateASN(asn int32) bool {
	return (asn >= 64512 && asn <= 65534) || (uint32(asn) >= 4200000000 && uint32(asn) <= 4294967294)
}

// asraValid is the Route-Server-Aware ASPA extension. ASRA is a superset
// of ASPA and ASPA+N (spec.md section 4.5); declared-peering-set handling
// is not otherwise specified by the retrieved sources, so it is modeled
// here as ASPA+N's validity (documented in DESIGN.md).
func asraValid(p *Policy, ann announce.Announcement, fromRel announce.Relationship) bool {
	return aspaWithNeighborsValid(p, ann, fromRel)
}
