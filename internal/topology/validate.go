package topology

import (
	"fmt"
	"iter"

	"github.com/topowire/topowire"
	"github.com/topowire/topowire/internal/netblock"
)

// Validate re-checks every invariant over the declared graph and yields one
// Violation per breach, lazily. An empty sequence means the topology is
// consistent and safe to emit.
//
// The Add*/Attach*/Build*/Place* operations already reject most breaches at
// declaration time; Validate is the authoritative single pass that also
// covers cross-entity invariants no single operation can see, such as NAT
// redundancy and target group attachment counts.
func (t *Topology) Validate() iter.Seq[topowire.Violation] {
	return func(yield func(topowire.Violation) bool) {
		if !t.checkSubnets(yield) {
			return
		}
		if !t.checkGateways(yield) {
			return
		}
		if !t.checkRouteTables(yield) {
			return
		}
		if !t.checkNatRedundancy(yield) {
			return
		}
		if !t.checkLoadBalancers(yield) {
			return
		}
		if !t.checkTargetGroups(yield) {
			return
		}
		t.checkServices(yield)
	}
}

// checkSubnets verifies containment, pairwise overlap, and route table
// attachment for every subnet.
func (t *Topology) checkSubnets(yield func(topowire.Violation) bool) bool {
	for i, name := range t.subnetOrder {
		sub := t.subnets[name]
		network := t.networks[sub.Network]

		if !netblock.Contains(network.CIDR, sub.CIDR) {
			if !yield(topowire.Violation{
				Code:    topowire.CodeContainment,
				Kind:    topowire.KindSubnet,
				Entity:  name,
				Message: fmt.Sprintf("block %s is not contained in network %q (%s)", sub.CIDR, sub.Network, network.CIDR),
			}) {
				return false
			}
		}

		for _, otherName := range t.subnetOrder[:i] {
			other := t.subnets[otherName]
			if other.Network != sub.Network {
				continue
			}
			if netblock.Overlaps(sub.CIDR, other.CIDR) {
				if !yield(topowire.Violation{
					Code:    topowire.CodeOverlap,
					Kind:    topowire.KindSubnet,
					Entity:  name,
					Message: fmt.Sprintf("block %s overlaps subnet %q (%s)", sub.CIDR, otherName, other.CIDR),
				}) {
					return false
				}
			}
		}

		if _, attached := t.subnetTable[name]; !attached {
			if !yield(topowire.Violation{
				Code:    topowire.CodeNetworkReachability,
				Kind:    topowire.KindSubnet,
				Entity:  name,
				Message: "subnet has no route table",
			}) {
				return false
			}
		}
	}
	return true
}

// checkGateways verifies NAT gateway placement. Internet gateway uniqueness
// is enforced structurally at attach time.
func (t *Topology) checkGateways(yield func(topowire.Violation) bool) bool {
	for _, name := range t.natOrder {
		nat := t.nats[name]
		sub := t.subnets[nat.Subnet]
		if sub.Visibility != VisibilityPublic {
			if !yield(topowire.Violation{
				Code:    topowire.CodeInvalidPlacement,
				Kind:    topowire.KindNatGateway,
				Entity:  name,
				Message: fmt.Sprintf("must reside in a public subnet, but %q is private", nat.Subnet),
			}) {
				return false
			}
		}
	}
	return true
}

// checkRouteTables verifies that each table's subnets share one network and
// that route targets are reachable from that network.
func (t *Topology) checkRouteTables(yield func(topowire.Violation) bool) bool {
	for _, name := range t.tableOrder {
		table := t.tables[name]

		network := ""
		for _, subName := range table.Subnets {
			sub := t.subnets[subName]
			if network == "" {
				network = sub.Network
				continue
			}
			if sub.Network != network {
				if !yield(topowire.Violation{
					Code:    topowire.CodeDanglingReference,
					Kind:    topowire.KindRouteTable,
					Entity:  name,
					Message: fmt.Sprintf("subnets span networks %q and %q", network, sub.Network),
				}) {
					return false
				}
			}
		}

		for _, r := range table.Routes {
			targetNetwork := t.gatewayNetwork(r.Target)
			if network != "" && targetNetwork != "" && targetNetwork != network {
				if !yield(topowire.Violation{
					Code:    topowire.CodeDanglingReference,
					Kind:    topowire.KindRouteTable,
					Entity:  name,
					Message: fmt.Sprintf("route %s targets gateway %q in network %q, table serves network %q", r.Destination, r.Target.Name, targetNetwork, network),
				}) {
					return false
				}
			}
		}
	}
	return true
}

// gatewayNetwork returns the network a route target lives in.
func (t *Topology) gatewayNetwork(target RouteTarget) string {
	switch target.Kind {
	case GatewayInternet:
		if g, ok := t.igws[target.Name]; ok {
			return g.Network
		}
	case GatewayNat:
		if g, ok := t.nats[target.Name]; ok {
			if sub, ok := t.subnets[g.Subnet]; ok {
				return sub.Network
			}
		}
	}
	return ""
}

// checkNatRedundancy verifies that, per network, private subnets routing
// through NAT do not outnumber the public subnets hosting their own NAT
// gateway. Fewer NAT hosts than NAT consumers means a zone outage takes
// egress down for more than its own zone.
func (t *Topology) checkNatRedundancy(yield func(topowire.Violation) bool) bool {
	for _, netName := range t.networkOrder {
		privateViaNat := 0
		for _, subName := range t.subnetOrder {
			sub := t.subnets[subName]
			if sub.Network == netName && sub.Visibility == VisibilityPrivate && t.subnetHasNatRoute(subName) {
				privateViaNat++
			}
		}

		natHosts := make(map[string]bool)
		for _, natName := range t.natOrder {
			nat := t.nats[natName]
			if sub, ok := t.subnets[nat.Subnet]; ok && sub.Network == netName && sub.Visibility == VisibilityPublic {
				natHosts[nat.Subnet] = true
			}
		}

		if privateViaNat > len(natHosts) {
			if !yield(topowire.Violation{
				Code:    topowire.CodeNetworkReachability,
				Kind:    topowire.KindNetwork,
				Entity:  netName,
				Message: fmt.Sprintf("%d private subnets route through NAT but only %d public subnets host a NAT gateway", privateViaNat, len(natHosts)),
			}) {
				return false
			}
		}
	}
	return true
}

// checkLoadBalancers verifies zone spread, subnet visibility, and listener
// wiring for every balancer.
func (t *Topology) checkLoadBalancers(yield func(topowire.Violation) bool) bool {
	for _, name := range t.balancerOrder {
		lb := t.balancers[name]

		zones := make(map[string]bool)
		for _, subName := range lb.Subnets {
			sub := t.subnets[subName]
			zones[sub.Zone] = true
			if sub.Visibility != VisibilityPublic {
				if !yield(topowire.Violation{
					Code:    topowire.CodeInvalidPlacement,
					Kind:    topowire.KindLoadBalancer,
					Entity:  name,
					Message: fmt.Sprintf("subnet %q is private, load balancers require public subnets", subName),
				}) {
					return false
				}
			}
		}
		if len(zones) < 2 {
			if !yield(topowire.Violation{
				Code:    topowire.CodeInsufficientZones,
				Kind:    topowire.KindLoadBalancer,
				Entity:  name,
				Message: fmt.Sprintf("subnets span %d zone(s), at least 2 distinct zones required", len(zones)),
			}) {
				return false
			}
		}

		for _, l := range lb.Listeners {
			if err := t.checkListener(name, l, lb.Listeners); err != nil {
				if !yield(topowire.Violation{
					Code:    topowire.CodeDanglingReference,
					Kind:    topowire.KindLoadBalancer,
					Entity:  name,
					Message: err.Error(),
				}) {
					return false
				}
			}
		}
	}
	return true
}

// checkTargetGroups verifies that each target group is referenced by exactly
// one service at attachment time.
func (t *Topology) checkTargetGroups(yield func(topowire.Violation) bool) bool {
	refs := make(map[string]int)
	for _, svcName := range t.serviceOrder {
		if tg := t.services[svcName].TargetGroup; tg != "" {
			refs[tg]++
		}
	}

	for _, name := range t.tgOrder {
		switch n := refs[name]; {
		case n == 0:
			if !yield(topowire.Violation{
				Code:    topowire.CodeDanglingReference,
				Kind:    topowire.KindTargetGroup,
				Entity:  name,
				Message: "not referenced by any service",
			}) {
				return false
			}
		case n > 1:
			if !yield(topowire.Violation{
				Code:    topowire.CodeDanglingReference,
				Kind:    topowire.KindTargetGroup,
				Entity:  name,
				Message: fmt.Sprintf("referenced by %d services, exactly one expected", n),
			}) {
				return false
			}
		}
	}
	return true
}

// checkServices re-applies the placement reachability rules.
func (t *Topology) checkServices(yield func(topowire.Violation) bool) bool {
	for _, name := range t.serviceOrder {
		svc := t.services[name]
		for _, subName := range svc.Subnets {
			sub := t.subnets[subName]
			if err := t.checkPlacement(name, sub, svc.AssignPublicIP); err != nil {
				if !yield(topowire.Violation{
					Code:    topowire.CodeNetworkReachability,
					Kind:    topowire.KindService,
					Entity:  name,
					Message: err.Error(),
				}) {
					return false
				}
			}
		}
	}
	return true
}
