package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

// rovValid rejects announcements whose ROA outcome is any INVALID_*
// variant. UNKNOWN never rejects (spec.md section 4.5, "ROV").
func rovValid(p *Policy, ann announce.Announcement) bool {
	validity, _ := p.store.Validator.Outcome(ann.Prefix, ann.Origin())
	return !validity.IsInvalid()
}

// peerROVValid applies ROV only to announcements received from a peer
// (spec.md section 4.5, "Peer-ROV").
func peerROVValid(p *Policy, ann announce.Announcement, fromRel announce.Relationship) bool {
	if fromRel == announce.PEERS {
		return rovValid(p, ann)
	}
	return true
}
