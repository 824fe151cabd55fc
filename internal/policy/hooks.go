package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

// propagateHook is one extension's propagation-time transform. It returns
// handled=false when its setting doesn't apply; when handled, send
// indicates whether the (possibly transformed) announcement should still
// be delivered (spec.md section 4.4: "If a hook claims handled and
// send=false, propagation to this neighbor stops; if handled and
// send=true and the ann mutated, process the mutated ann and return
// true").
type propagateHook func(st *Store, owner *Policy, neighborASN int32, ann announce.Announcement, to announce.Relationship, sendRels map[announce.Relationship]bool) (handled bool, out announce.Announcement, send bool)

var propagateHooks = []propagateHook{
	bgpsecPropagateHook,
	otcPropagateHook,
	rovppPropagateHook,
	originPrefixHijackCustomersHook,
	firstASNStrippingPrefixHijackCustomersHook,
}

// policyPropagate runs the ordered extension hook chain for a single
// (owner, neighbor, ann) triple, first-handler-wins. If no hook claims
// the announcement, the core does the default enqueue.
func (st *Store) policyPropagate(owner *Policy, neighborASN int32, ann announce.Announcement, to announce.Relationship, sendRels map[announce.Relationship]bool) (bool, announce.Announcement) {
	for _, hook := range propagateHooks {
		handled, out, send := hook(st, owner, neighborASN, ann, to, sendRels)
		if !handled {
			continue
		}
		if send {
			st.processOutgoingAnn(neighborASN, out)
		}
		return true, out
	}
	return false, ann
}

// processOutgoingAnn delivers ann to neighborASN's receive queue.
func (st *Store) processOutgoingAnn(neighborASN int32, ann announce.Announcement) {
	if p := st.policies[neighborASN]; p != nil {
		p.ReceiveAnn(ann)
	}
}
