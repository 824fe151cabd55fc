// Package roa implements Route Origin Authorization records and the
// Route Validator described in spec.md section 4.1: prefix-origin
// validation returning a validity x routed status pair.
package roa

import (
	"fmt"
	"strings"

	radix "github.com/Emeline-1/radix"
	"github.com/gaissmai/bart"

	"github.com/Emeline-1/bgpsim/internal/ipaddr"
)

// Validity is the outcome of validating an observed (prefix, origin)
// against the covering ROA set. Wire-compatible with spec.md section 3.
type Validity int

const (
	VALID Validity = iota
	UNKNOWN
	InvalidLength
	InvalidOrigin
	InvalidBoth
)

func (v Validity) String() string {
	switch v {
	case VALID:
		return "VALID"
	case UNKNOWN:
		return "UNKNOWN"
	case InvalidLength:
		return "INVALID_LENGTH"
	case InvalidOrigin:
		return "INVALID_ORIGIN"
	case InvalidBoth:
		return "INVALID_BOTH"
	default:
		return fmt.Sprintf("Validity(%d)", int(v))
	}
}

// IsInvalid reports true for any INVALID_* variant. It must never return
// true for UNKNOWN -- ROV's entire "fail open on no data" behavior hinges
// on that distinction (spec.md section 8, "Boundaries").
func (v Validity) IsInvalid() bool {
	return v == InvalidLength || v == InvalidOrigin || v == InvalidBoth
}

// Routed reports whether any ROA covering a prefix authorizes a real
// (non-zero) origin.
type Routed int

const (
	RoutedUnknown Routed = iota
	ROUTED
	NonRouted
)

func (r Routed) String() string {
	switch r {
	case ROUTED:
		return "ROUTED"
	case NonRouted:
		return "NON_ROUTED"
	default:
		return "UNKNOWN"
	}
}

// ROA is a Route Origin Authorization: an attestation that originASN may
// originate Prefix, up to MaxLength.
type ROA struct {
	Prefix    ipaddr.Prefix
	OriginASN int32
	MaxLength int
}

// Validator holds a set of ROAs indexed for longest-prefix-match lookup.
// It is per-trial: spec.md section 5 requires ROA state to be scoped to a
// single trial, never shared across trial goroutines.
//
// Two indexes are kept over the same data, each grounded in a different
// corpus example: a bart.Table (github.com/gaissmai/bart) drives the hot
// validation path, and a binary-string radix trie
// (github.com/Emeline-1/radix, the structure the teacher already uses for
// overlay/aggregate computation in overlays_processing.go) backs Walk.
// The covering-ROA set used by Outcome comes from the bart.Table alone.
type Validator struct {
	table *bart.Table[[]ROA]
	trie  *radix.Tree
	all   []ROA
}

// NewValidator returns an empty Validator ready to accept ROAs via Load.
func NewValidator() *Validator {
	return &Validator{
		table: new(bart.Table[[]ROA]),
		trie:  radix.New(),
	}
}

// Load replaces the validator's ROA set wholesale, as the engine does at
// the start of every trial (spec.md section 3, "Lifecycle").
func (v *Validator) Load(roas []ROA) {
	v.table = new(bart.Table[[]ROA])
	v.trie = radix.New()
	v.all = append([]ROA(nil), roas...)
	for _, r := range roas {
		key := r.Prefix.CanonicalV6()
		existing, _ := v.table.Get(key)
		v.table.Insert(key, append(existing, r))
		v.trie.Insert(binaryString(r.Prefix), r)
	}
}

// Outcome returns the (Validity, Routed) pair for an observed
// (prefix, origin) pair per spec.md section 4.1.
func (v *Validator) Outcome(prefix ipaddr.Prefix, origin int32) (Validity, Routed) {
	covering := v.covering(prefix)
	if len(covering) == 0 {
		return UNKNOWN, RoutedUnknown
	}

	anyValid := false
	anyLengthOK := false
	anyOriginOK := false
	allNonRouted := true
	for _, r := range covering {
		lengthOK := prefix.Bits() <= r.MaxLength
		originOK := r.OriginASN == origin
		if lengthOK {
			anyLengthOK = true
		}
		if originOK {
			anyOriginOK = true
		}
		if lengthOK && originOK {
			anyValid = true
		}
		if r.OriginASN != 0 {
			allNonRouted = false
		}
	}

	routed := ROUTED
	if allNonRouted {
		routed = NonRouted
	}

	if anyValid {
		return VALID, routed
	}
	switch {
	case !anyLengthOK && !anyOriginOK:
		return InvalidBoth, routed
	case !anyLengthOK:
		return InvalidLength, routed
	default:
		return InvalidOrigin, routed
	}
}

// covering returns every ROA whose prefix is a supernet of (or equal to)
// the observed prefix -- i.e. prefix is contained within roa.Prefix.
func (v *Validator) covering(prefix ipaddr.Prefix) []ROA {
	key := prefix.CanonicalV6()
	var out []ROA
	// Supernets includes pfx itself when an exact-match entry exists, so a
	// separate exact Get would double-count it.
	for _, roas := range v.table.Supernets(key) {
		out = append(out, roas...)
	}
	return out
}

// Walk visits every stored ROA via a post-order walk of the binary radix
// trie; useful for debug dumps of the loaded ROA set grouped by aggregate.
func (v *Validator) Walk(fn func(ROA)) {
	seen := make(map[string]bool, len(v.all))
	visit := func(parent *radix.LeafNode, children []*radix.LeafNode) {
		if parent != nil && !seen[parent.Key] {
			seen[parent.Key] = true
			if r, ok := parent.Val.(ROA); ok {
				fn(r)
			}
		}
		for _, c := range children {
			if seen[c.Key] {
				continue
			}
			seen[c.Key] = true
			if r, ok := c.Val.(ROA); ok {
				fn(r)
			}
		}
	}
	v.trie.Walk_post(visit)
}

// All returns every loaded ROA.
func (v *Validator) All() []ROA { return append([]ROA(nil), v.all...) }

// binaryString renders a prefix's network bits as a '0'/'1' string cut at
// its mask length, matching the teacher's get_binary_string encoding so
// the radix trie can do byte-free bit-level LPM.
func binaryString(p ipaddr.Prefix) string {
	addr := p.CanonicalV6()
	bits := addr.Addr().As16()
	var sb strings.Builder
	sb.Grow(addr.Bits())
	for i := 0; i < addr.Bits(); i++ {
		byteIdx := i / 8
		bitIdx := 7 - (i % 8)
		if bits[byteIdx]&(1<<uint(bitIdx)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
