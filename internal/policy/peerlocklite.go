package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

// peerLockLiteValid detects route leaks: an announcement received from a
// customer must never have traversed a tier-1 AS, since tier-1 ASes have
// no providers and would never legitimately appear upstream of a customer
// (spec.md section 4.5, "PeerLock-Lite").
func peerLockLiteValid(p *Policy, ann announce.Announcement, fromRel announce.Relationship) bool {
	if fromRel != announce.CUSTOMERS {
		return true
	}
	for _, asn := range ann.ASPath {
		if a := p.store.Graph.AS(asn); a != nil && a.Tier1 {
			return false
		}
	}
	return true
}
