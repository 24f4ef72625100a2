package topology

import (
	"fmt"
	"net/netip"
)

// OverlapError reports a subnet whose CIDR block intersects a sibling
// subnet's block in the same network.
type OverlapError struct {
	Subnet    string
	CIDR      netip.Prefix
	Other     string
	OtherCIDR netip.Prefix
	Network   string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("subnet %q (%s) overlaps subnet %q (%s) in network %q",
		e.Subnet, e.CIDR, e.Other, e.OtherCIDR, e.Network)
}

// ContainmentError reports a subnet whose CIDR block is not fully contained
// within its parent network's block.
type ContainmentError struct {
	Subnet      string
	CIDR        netip.Prefix
	Network     string
	NetworkCIDR netip.Prefix
}

func (e *ContainmentError) Error() string {
	return fmt.Sprintf("subnet %q (%s) is not contained in network %q (%s)",
		e.Subnet, e.CIDR, e.Network, e.NetworkCIDR)
}

// AmbiguousRouteError reports a route whose destination already routes to a
// different gateway in the same table.
type AmbiguousRouteError struct {
	Table       string
	Destination netip.Prefix
	Existing    string
	Proposed    string
}

func (e *AmbiguousRouteError) Error() string {
	return fmt.Sprintf("route table %q already routes %s to %q, cannot also route to %q",
		e.Table, e.Destination, e.Existing, e.Proposed)
}

// InvalidPlacementError reports an entity that requires a public subnet but
// was attached to a private one.
type InvalidPlacementError struct {
	Entity string
	Kind   string
	Subnet string
}

func (e *InvalidPlacementError) Error() string {
	return fmt.Sprintf("%s %q requires a public subnet, but %q is private", e.Kind, e.Entity, e.Subnet)
}

// InsufficientZonesError reports a load balancer whose subnets span fewer
// than two distinct availability zones.
type InsufficientZonesError struct {
	LoadBalancer string
	Zones        []string
}

func (e *InsufficientZonesError) Error() string {
	return fmt.Sprintf("load balancer %q requires subnets in at least 2 distinct zones, got %d (%v)",
		e.LoadBalancer, len(e.Zones), e.Zones)
}

// NetworkReachabilityError reports a service placement whose address
// assignment contradicts its subnet visibility.
type NetworkReachabilityError struct {
	Service string
	Subnet  string
	Reason  string
}

func (e *NetworkReachabilityError) Error() string {
	return fmt.Sprintf("service %q in subnet %q: %s", e.Service, e.Subnet, e.Reason)
}
