package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

// edgeFilterValid rejects paths that route transit traffic through a stub
// or multihomed neighbor: if the most recent hop is a direct neighbor and
// that neighbor is a stub or multihomed AS, the whole path must consist
// of just that AS -- stubs and multihomed ASes never appear mid-path
// (spec.md section 4.5, "AS-Path-Edge-Filter", grounded on
// custom_policies/edge_filter.py).
func edgeFilterValid(p *Policy, ann announce.Announcement) bool {
	immediateHop := ann.ASPath[0]
	self := p.store.Graph.AS(p.ASN)
	isNeighbor := false
	for _, n := range self.NeighborASNs() {
		if n == immediateHop {
			isNeighbor = true
			break
		}
	}
	if !isNeighbor {
		return true
	}
	neighbor := p.store.Graph.AS(immediateHop)
	if neighbor == nil || !(neighbor.Stub() || neighbor.Multihomed()) {
		return true
	}
	for _, asn := range ann.ASPath {
		if asn != immediateHop {
			return false
		}
	}
	return true
}
