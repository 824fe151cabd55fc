package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

// bgpLoopFree is the baseline BGP validity check every announcement must
// pass regardless of settings: the receiving AS must not already be on
// the path, and AS 0 must never appear (spec.md section 4.4 step 1).
func bgpLoopFree(p *Policy, ann announce.Announcement) bool {
	for _, asn := range ann.ASPath {
		if asn == p.ASN || asn == 0 {
			return false
		}
	}
	return true
}
