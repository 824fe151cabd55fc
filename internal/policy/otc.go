package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

// otcValid rejects an OTC-attested announcement reannounced by the peer
// it names a different next hop for, and any OTC-attested announcement
// received from a customer at all -- a customer should never be
// re-exporting a route it was only handed for onward distribution to its
// own customers (spec.md section 4.5, "Only-To-Customers", RFC 9234).
func otcValid(ann announce.Announcement, fromRel announce.Relationship) bool {
	if ann.OnlyToCustomers == nil {
		return true
	}
	if fromRel == announce.PEERS && ann.NextHopASN != *ann.OnlyToCustomers {
		return false
	}
	if fromRel == announce.CUSTOMERS {
		return false
	}
	return true
}

// otcPropagateHook stamps only_to_customers with this AS's ASN on egress
// to customers or providers, if not already set.
func otcPropagateHook(st *Store, owner *Policy, neighborASN int32, ann announce.Announcement, to announce.Relationship, sendRels map[announce.Relationship]bool) (bool, announce.Announcement, bool) {
	if !owner.Settings.Has(OnlyToCustomers) {
		return false, ann, false
	}
	if ann.OnlyToCustomers != nil {
		return false, ann, false
	}
	if to != announce.CUSTOMERS && to != announce.PROVIDERS {
		return false, ann, false
	}
	return true, ann.Copy(announce.SetOnlyToCustomers(owner.ASN)), true
}
