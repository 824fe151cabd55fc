// Package announce implements the immutable BGP announcement record
// propagated between policies during a simulation trial.
package announce

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Emeline-1/bgpsim/internal/ipaddr"
)

// Relationship is the relationship over which an announcement was
// received, doubling as its Gao-Rexford local-preference rank. Wire
// values are fixed by spec.md section 6 and must never change.
type Relationship int

const (
	// UNKNOWN is never a legal recv_relationship on an announcement that
	// lives in a local RIB or recv queue; it exists only so external
	// callers (e.g. an extrapolator) have a value to report "don't know".
	UNKNOWN Relationship = 5
	// PROVIDERS is the lowest local preference: learned from a provider.
	PROVIDERS Relationship = 1
	// PEERS is learned from a settlement-free peer.
	PEERS Relationship = 2
	// CUSTOMERS is the highest preference among learned routes.
	CUSTOMERS Relationship = 3
	// ORIGIN dominates all others: the AS originated the route itself.
	ORIGIN Relationship = 4
)

func (r Relationship) String() string {
	switch r {
	case PROVIDERS:
		return "PROVIDERS"
	case PEERS:
		return "PEERS"
	case CUSTOMERS:
		return "CUSTOMERS"
	case ORIGIN:
		return "ORIGIN"
	case UNKNOWN:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("Relationship(%d)", int(r))
	}
}

// Valid reports whether r is one of the four relationships a local RIB
// entry or recv-queue entry is allowed to carry. UNKNOWN is deliberately
// excluded: spec.md's design notes flag the original's ranking of UNKNOWN
// above ORIGIN as almost certainly a bug, and direct that implementations
// treat UNKNOWN as illegal on any internally-produced announcement.
func (r Relationship) Valid() bool {
	switch r {
	case PROVIDERS, PEERS, CUSTOMERS, ORIGIN:
		return true
	default:
		return false
	}
}

// ErrEmptyASPath is returned when an Announcement is constructed with a
// zero-length AS path; an announcement always carries at least an origin.
var ErrEmptyASPath = errors.New("announce: as_path must be non-empty")

// ErrAmbiguousNextHop is returned when an Announcement is constructed with
// a multi-hop AS path but no explicit next_hop_asn.
var ErrAmbiguousNextHop = errors.New("announce: next_hop_asn is ambiguous for a multi-hop as_path")

// Announcement is an immutable BGP UPDATE-like record. Every mutation
// produces a new value via Copy; nothing here is ever mutated in place.
type Announcement struct {
	Prefix           ipaddr.Prefix
	ASPath           []int32 // leftmost = most recent hop, rightmost = origin
	NextHopASN       int32
	RecvRelationship Relationship
	Timestamp        int64

	// BGPsec / BGP-iSec
	BGPsecNextASN *int32
	BGPsecASPath  []int32 // signed sub-path, possibly shorter than ASPath

	// Only-To-Customers attesting ASN (RFC 9234), nil if unset.
	OnlyToCustomers *int32

	// ROV++ synthetic blackhole marker.
	ROVPPBlackhole bool
}

// New constructs an Announcement, defaulting next_hop_asn to the leftmost
// path element when the path is a single hop, and rejecting ambiguous
// construction otherwise (spec.md section 3).
func New(prefix ipaddr.Prefix, asPath []int32, opts ...Option) (Announcement, error) {
	if len(asPath) == 0 {
		return Announcement{}, ErrEmptyASPath
	}
	a := Announcement{
		Prefix:           prefix,
		ASPath:           append([]int32(nil), asPath...),
		RecvRelationship: ORIGIN,
	}
	for _, opt := range opts {
		opt(&a)
	}
	if a.NextHopASN == 0 {
		if len(a.ASPath) == 1 {
			a.NextHopASN = a.ASPath[0]
		} else {
			return Announcement{}, ErrAmbiguousNextHop
		}
	}
	return a, nil
}

// Option customizes an Announcement at construction time.
type Option func(*Announcement)

func WithNextHopASN(asn int32) Option        { return func(a *Announcement) { a.NextHopASN = asn } }
func WithRecvRelationship(r Relationship) Option {
	return func(a *Announcement) { a.RecvRelationship = r }
}
func WithTimestamp(ts int64) Option { return func(a *Announcement) { a.Timestamp = ts } }
func WithBGPsecNextASN(asn int32) Option {
	return func(a *Announcement) { a.BGPsecNextASN = &asn }
}
func WithBGPsecASPath(path []int32) Option {
	return func(a *Announcement) { a.BGPsecASPath = append([]int32(nil), path...) }
}
func WithOnlyToCustomers(asn int32) Option {
	return func(a *Announcement) { a.OnlyToCustomers = &asn }
}
func WithROVPPBlackhole(b bool) Option { return func(a *Announcement) { a.ROVPPBlackhole = b } }

// Origin returns the rightmost (originating) ASN on the path.
func (a Announcement) Origin() int32 { return a.ASPath[len(a.ASPath)-1] }

// NeighborASN returns the ASN of the neighbor that sent this announcement,
// per the Gao-Rexford tiebreak definition: the second path element if
// present, else the first.
func (a Announcement) NeighborASN() int32 {
	idx := 1
	if len(a.ASPath) <= 1 {
		idx = 0
	}
	return a.ASPath[idx]
}

// Copy returns a new Announcement with the given overrides applied; the
// receiver is never mutated. Slice fields are deep-copied so that callers
// can freely mutate the returned value's slices.
func (a Announcement) Copy(opts ...CopyOption) Announcement {
	next := a
	next.ASPath = append([]int32(nil), a.ASPath...)
	next.BGPsecASPath = append([]int32(nil), a.BGPsecASPath...)
	for _, opt := range opts {
		opt(&next)
	}
	return next
}

// CopyOption overrides a single field during Copy.
type CopyOption func(*Announcement)

func SetPrefix(p ipaddr.Prefix) CopyOption { return func(a *Announcement) { a.Prefix = p } }
func SetASPath(path []int32) CopyOption {
	return func(a *Announcement) { a.ASPath = append([]int32(nil), path...) }
}
func PrependASPath(asn int32) CopyOption {
	return func(a *Announcement) {
		a.ASPath = append([]int32{asn}, a.ASPath...)
	}
}
func SetNextHopASN(asn int32) CopyOption { return func(a *Announcement) { a.NextHopASN = asn } }
func SetRecvRelationship(r Relationship) CopyOption {
	return func(a *Announcement) { a.RecvRelationship = r }
}
func SetTimestamp(ts int64) CopyOption { return func(a *Announcement) { a.Timestamp = ts } }
func SetBGPsecNextASN(asn int32) CopyOption {
	return func(a *Announcement) { a.BGPsecNextASN = &asn }
}
func ClearBGPsec() CopyOption {
	return func(a *Announcement) {
		a.BGPsecNextASN = nil
		a.BGPsecASPath = nil
	}
}
func SetBGPsecASPath(path []int32) CopyOption {
	return func(a *Announcement) { a.BGPsecASPath = append([]int32(nil), path...) }
}
func SetOnlyToCustomers(asn int32) CopyOption {
	return func(a *Announcement) { a.OnlyToCustomers = &asn }
}
func SetROVPPBlackhole(b bool) CopyOption { return func(a *Announcement) { a.ROVPPBlackhole = b } }

func (a Announcement) String() string {
	return fmt.Sprintf("%s %v %s", a.Prefix, a.ASPath, a.RecvRelationship)
}

// wireAnnouncement is the JSON shape from spec.md section 6.
type wireAnnouncement struct {
	Prefix           ipaddr.Prefix `json:"prefix"`
	ASPath           []int32       `json:"as_path"`
	NextHopASN       int32         `json:"next_hop_asn"`
	RecvRelationship int           `json:"recv_relationship"`
	Timestamp        int64         `json:"timestamp"`
	BGPsecNextASN    *int32        `json:"bgpsec_next_asn,omitempty"`
	BGPsecASPath     []int32       `json:"bgpsec_as_path,omitempty"`
	OnlyToCustomers  *int32        `json:"only_to_customers,omitempty"`
	ROVPPBlackhole   bool          `json:"rovpp_blackhole"`
}

func (a Announcement) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireAnnouncement{
		Prefix:           a.Prefix,
		ASPath:           a.ASPath,
		NextHopASN:       a.NextHopASN,
		RecvRelationship: int(a.RecvRelationship),
		Timestamp:        a.Timestamp,
		BGPsecNextASN:    a.BGPsecNextASN,
		BGPsecASPath:     a.BGPsecASPath,
		OnlyToCustomers:  a.OnlyToCustomers,
		ROVPPBlackhole:   a.ROVPPBlackhole,
	})
}

func (a *Announcement) UnmarshalJSON(b []byte) error {
	var w wireAnnouncement
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	rel := Relationship(w.RecvRelationship)
	if !rel.Valid() {
		return fmt.Errorf("announce: invalid recv_relationship %d", w.RecvRelationship)
	}
	*a = Announcement{
		Prefix:           w.Prefix,
		ASPath:           w.ASPath,
		NextHopASN:       w.NextHopASN,
		RecvRelationship: rel,
		Timestamp:        w.Timestamp,
		BGPsecNextASN:    w.BGPsecNextASN,
		BGPsecASPath:     w.BGPsecASPath,
		OnlyToCustomers:  w.OnlyToCustomers,
		ROVPPBlackhole:   w.ROVPPBlackhole,
	}
	if len(a.ASPath) == 0 {
		return ErrEmptyASPath
	}
	return nil
}
