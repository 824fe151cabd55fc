package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

// originPrefixHijackCustomersHook is the attacker-only transform that
// forges a maximally-short path when lying to customers: a two-hop path
// naming only the attacker and the victim's origin out-competes any
// legitimate longer path under Gao-Rexford path-length preference
// (spec.md section 4.5, "Origin-Prefix-Hijack-Customers (attacker-only)").
func originPrefixHijackCustomersHook(st *Store, owner *Policy, neighborASN int32, ann announce.Announcement, to announce.Relationship, sendRels map[announce.Relationship]bool) (bool, announce.Announcement, bool) {
	if !owner.Settings.Has(OriginPrefixHijackCustomers) || to != announce.CUSTOMERS {
		return false, ann, false
	}
	forged := ann.Copy(announce.SetASPath([]int32{owner.ASN, ann.Origin()}))
	return true, forged, true
}

// firstASNStrippingPrefixHijackCustomersHook is the attacker-only
// transform that strips its own hop from the AS path before forwarding to
// customers, masquerading as a direct peer of whoever is next in the path
// (spec.md section 4.5, "First-ASN-Stripping-Prefix-Hijack-Customers
// (attacker-only)").
func firstASNStrippingPrefixHijackCustomersHook(st *Store, owner *Policy, neighborASN int32, ann announce.Announcement, to announce.Relationship, sendRels map[announce.Relationship]bool) (bool, announce.Announcement, bool) {
	if !owner.Settings.Has(FirstASNStrippingPrefixHijackCustomers) || to != announce.CUSTOMERS {
		return false, ann, false
	}
	path := ann.ASPath
	if len(path) <= 1 {
		return true, ann, true
	}
	stripped := ann.Copy(announce.SetASPath(append([]int32(nil), path[1:]...)))
	return true, stripped, true
}
