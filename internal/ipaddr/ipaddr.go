// Package ipaddr implements the unified IPv4/IPv6 prefix type used
// throughout the simulator: announcements, ROAs, and routing tables all
// key off ipaddr.Prefix rather than net.IPNet or a raw netip.Prefix, so
// that longest-prefix-match, ordering, and hashing are defined exactly
// once.
package ipaddr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
)

// ErrReservedPrefix is returned when a prefix falls in a reserved block
// (loopback, link-local, multicast, or unspecified) that the simulator
// refuses to route.
var ErrReservedPrefix = errors.New("ipaddr: reserved prefix")

// ErrInvalidIPAddress is returned when an IPAddr is constructed from a
// prefix whose length does not equal its address family's width.
var ErrInvalidIPAddress = errors.New("ipaddr: prefix length does not describe a single host")

// Prefix is an immutable IPv4 or IPv6 CIDR block. The zero value is not a
// valid Prefix; construct one with Parse or FromNetip.
type Prefix struct {
	p netip.Prefix
}

// Parse parses a CIDR string ("1.2.0.0/16" or "2001:db8::/32") into a
// canonical, masked Prefix.
func Parse(s string) (Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return Prefix{}, fmt.Errorf("ipaddr: parse %q: %w", s, err)
	}
	return FromNetip(p)
}

// FromNetip adopts a netip.Prefix, masking it to its canonical network
// form as required by spec: "hash and equality defined on canonical
// network form".
func FromNetip(p netip.Prefix) (Prefix, error) {
	if !p.IsValid() {
		return Prefix{}, fmt.Errorf("ipaddr: invalid netip.Prefix")
	}
	if isReserved(p.Addr()) {
		return Prefix{}, fmt.Errorf("%w: %s", ErrReservedPrefix, p)
	}
	return Prefix{p: p.Masked()}, nil
}

// MustParse is Parse, panicking on error. Intended for tests and literal
// table construction, never for untrusted input.
func MustParse(s string) Prefix {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Netip returns the underlying canonical netip.Prefix.
func (p Prefix) Netip() netip.Prefix { return p.p }

// Bits returns the prefix length (0-32 for v4, 0-128 for v6).
func (p Prefix) Bits() int { return p.p.Bits() }

// Is4 reports whether this is an IPv4 prefix.
func (p Prefix) Is4() bool { return p.p.Addr().Is4() }

// CanonicalV6 returns the prefix lifted into the unified IPv6-mapped
// address space, as required by spec.md so that a single comparable
// representation backs tries across both families. IPv4 /n becomes a
// /(96+n) under ::ffff:0:0/96.
func (p Prefix) CanonicalV6() netip.Prefix {
	if p.p.Addr().Is4() {
		addr := netip.AddrFrom16(p.p.Addr().As16())
		return netip.PrefixFrom(addr, p.p.Bits()+96)
	}
	return p.p
}

// Contains reports whether other is longest-prefix-match contained within
// p (p.Bits() <= other.Bits() and p's network covers other's).
func (p Prefix) Contains(other Prefix) bool {
	if p.Is4() != other.Is4() {
		return false
	}
	return p.p.Bits() <= other.p.Bits() && p.p.Overlaps(other.p) && p.p.Contains(other.p.Addr())
}

// CoversAddr is the single well-defined "prefix covers address" predicate
// spec.md's design notes call for (replacing the original's inconsistent
// supernet_of/`in` spellings).
func (p Prefix) CoversAddr(addr IPAddr) bool {
	if p.Is4() != addr.p.Is4() {
		return false
	}
	return p.p.Contains(addr.p.p.Addr())
}

// Less defines the total order required by spec.md: IPv4 before IPv6,
// then by canonical v6-mapped network address, then by prefix length.
func (p Prefix) Less(other Prefix) bool {
	if p.Is4() != other.Is4() {
		return p.Is4()
	}
	pc, oc := p.CanonicalV6(), other.CanonicalV6()
	if c := pc.Addr().Compare(oc.Addr()); c != 0 {
		return c < 0
	}
	return pc.Bits() < oc.Bits()
}

// Equal reports canonical-form equality.
func (p Prefix) Equal(other Prefix) bool { return p.p == other.p }

func (p Prefix) String() string { return p.p.String() }

func (p Prefix) MarshalJSON() ([]byte, error) { return json.Marshal(p.p.String()) }

func (p *Prefix) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// IPAddr is a Prefix whose length equals its address family's full width
// (a single routable host address).
type IPAddr struct {
	p Prefix
}

// ParseIPAddr parses a bare address ("1.2.3.4" or a CIDR with a host-width
// mask) into an IPAddr.
func ParseIPAddr(s string) (IPAddr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		// allow "/32" or "/128" CIDR spelling too
		pfx, perr := Parse(s)
		if perr != nil {
			return IPAddr{}, fmt.Errorf("ipaddr: parse address %q: %w", s, err)
		}
		return NewIPAddr(pfx)
	}
	bits := 32
	if addr.Is6() && !addr.Is4In6() {
		bits = 128
	}
	pfx, err := FromNetip(netip.PrefixFrom(addr, bits))
	if err != nil {
		return IPAddr{}, err
	}
	return NewIPAddr(pfx)
}

// NewIPAddr validates that pfx is host-width before wrapping it.
func NewIPAddr(pfx Prefix) (IPAddr, error) {
	want := 32
	if !pfx.Is4() {
		want = 128
	}
	if pfx.Bits() != want {
		return IPAddr{}, fmt.Errorf("%w: %s", ErrInvalidIPAddress, pfx)
	}
	return IPAddr{p: pfx}, nil
}

// MustIPAddr is ParseIPAddr, panicking on error.
func MustIPAddr(s string) IPAddr {
	a, err := ParseIPAddr(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a IPAddr) Prefix() Prefix    { return a.p }
func (a IPAddr) Netip() netip.Addr { return a.p.p.Addr() }
func (a IPAddr) String() string    { return a.p.p.Addr().String() }

func (a IPAddr) MarshalJSON() ([]byte, error) { return a.p.MarshalJSON() }

func (a *IPAddr) UnmarshalJSON(b []byte) error {
	var pfx Prefix
	if err := pfx.UnmarshalJSON(b); err != nil {
		return err
	}
	ipa, err := NewIPAddr(pfx)
	if err != nil {
		return err
	}
	*a = ipa
	return nil
}

// isReserved rejects loopback, link-local, multicast, and unspecified
// addresses --
// never routable in a CAIDA-scale AS graph.
func isReserved(addr netip.Addr) bool {
	return addr.IsLoopback() || addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified() || addr.IsMulticast()
}
