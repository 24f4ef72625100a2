// Package netblock provides CIDR block parsing and containment checks for
// topology validation.
package netblock

import (
	"fmt"
	"net/netip"
)

// AllIPv4 is the "all addresses" destination used for default routes.
var AllIPv4 = netip.MustParsePrefix("0.0.0.0/0")

// Parse parses a CIDR block in canonical form. Unlike netip.ParsePrefix it
// rejects blocks with host bits set, since a topology declaration such as
// "10.0.1.5/24" is almost always an authoring mistake.
func Parse(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid CIDR block %q: %w", s, err)
	}
	if p != p.Masked() {
		return netip.Prefix{}, fmt.Errorf("invalid CIDR block %q: host bits set, expected %s", s, p.Masked())
	}
	return p, nil
}

// Contains reports whether inner is fully contained within outer.
// Prefixes of different address families never contain each other.
func Contains(outer, inner netip.Prefix) bool {
	if outer.Addr().Is4() != inner.Addr().Is4() {
		return false
	}
	return outer.Bits() <= inner.Bits() && outer.Contains(inner.Addr())
}

// Overlaps reports whether the two blocks share any addresses.
func Overlaps(a, b netip.Prefix) bool {
	return a.Overlaps(b)
}

// IsDefault reports whether the block is the "all addresses" destination.
func IsDefault(p netip.Prefix) bool {
	return p.Bits() == 0
}
