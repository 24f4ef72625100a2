// Package topology holds the declared network topology as a typed graph and
// rejects invalid configurations before they reach the provisioning tool.
//
// Entities are added through the Add*/Attach*/Build*/Place* operations, which
// fail fast on addressing and placement breaches. Validate re-checks every
// invariant over the whole graph and is the authoritative pre-emission check.
package topology

import (
	"fmt"
	"net/netip"

	"github.com/topowire/topowire/internal/netblock"
)

// Visibility distinguishes public from private subnets.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility converts a declaration string into a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityPrivate:
		return Visibility(s), nil
	}
	return "", fmt.Errorf("invalid visibility %q: must be %q or %q", s, VisibilityPublic, VisibilityPrivate)
}

// GatewayKind identifies the kind of a route target.
type GatewayKind string

const (
	GatewayInternet GatewayKind = "internet_gateway"
	GatewayNat      GatewayKind = "nat_gateway"
)

// Network is a virtual network owning an address block.
type Network struct {
	Name string
	CIDR netip.Prefix
}

// Subnet is a slice of a network's address block in one availability zone.
type Subnet struct {
	Name       string
	Network    string
	CIDR       netip.Prefix
	Zone       string
	Visibility Visibility
}

// RouteTarget references the gateway a route forwards to.
type RouteTarget struct {
	Kind GatewayKind
	Name string
}

// Route is a single forwarding rule.
type Route struct {
	Destination netip.Prefix
	Target      RouteTarget
}

// RouteTable is an ordered list of routes attached to a set of subnets.
type RouteTable struct {
	Name    string
	Subnets []string
	Routes  []Route
}

// InternetGateway provides internet access for a network's public subnets.
type InternetGateway struct {
	Name    string
	Network string
}

// NatGateway is an outbound-only egress point hosted in a public subnet.
type NatGateway struct {
	Name    string
	Subnet  string
	Address string
}

// Listener accepts traffic on a port and either forwards it to a target
// group or redirects it to another listener's port.
type Listener struct {
	Port       int
	Protocol   string
	ForwardTo  string
	RedirectTo int
}

// LoadBalancer spreads traffic over public subnets in distinct zones.
type LoadBalancer struct {
	Name      string
	Subnets   []string
	Listeners []Listener
}

// HealthCheck configures target group health probing.
type HealthCheck struct {
	Path             string
	IntervalSeconds  int
	HealthyThreshold int
}

// TargetGroup is a named set of backends a load balancer forwards to.
type TargetGroup struct {
	Name        string
	Port        int
	Protocol    string
	HealthCheck HealthCheck
}

// Service is a compute workload placed in one or more subnets.
type Service struct {
	Name           string
	Subnets        []string
	SecurityGroup  string
	TargetGroup    string
	AssignPublicIP bool
}

// Topology is the declared graph of one authoring session. It is not safe
// for concurrent use; the session owns it exclusively.
type Topology struct {
	networks     map[string]*Network
	subnets      map[string]*Subnet
	tables       map[string]*RouteTable
	igws         map[string]*InternetGateway
	nats         map[string]*NatGateway
	balancers    map[string]*LoadBalancer
	targetGroups map[string]*TargetGroup
	services     map[string]*Service

	// Declaration order, preserved for deterministic emission.
	networkOrder  []string
	subnetOrder   []string
	tableOrder    []string
	igwOrder      []string
	natOrder      []string
	balancerOrder []string
	tgOrder       []string
	serviceOrder  []string

	// subnetTable maps a subnet name to the route table it belongs to.
	subnetTable map[string]string
}

// New returns an empty topology.
func New() *Topology {
	return &Topology{
		networks:     make(map[string]*Network),
		subnets:      make(map[string]*Subnet),
		tables:       make(map[string]*RouteTable),
		igws:         make(map[string]*InternetGateway),
		nats:         make(map[string]*NatGateway),
		balancers:    make(map[string]*LoadBalancer),
		targetGroups: make(map[string]*TargetGroup),
		services:     make(map[string]*Service),
		subnetTable:  make(map[string]string),
	}
}

// AddNetwork declares a network owning the given address block.
func (t *Topology) AddNetwork(name, cidr string) (*Network, error) {
	if _, exists := t.networks[name]; exists {
		return nil, fmt.Errorf("network %q already declared", name)
	}
	block, err := netblock.Parse(cidr)
	if err != nil {
		return nil, fmt.Errorf("network %q: %w", name, err)
	}
	n := &Network{Name: name, CIDR: block}
	t.networks[name] = n
	t.networkOrder = append(t.networkOrder, name)
	return n, nil
}

// AddSubnet declares a subnet inside a network. It fails with a
// *ContainmentError if the block is not inside the network's block, and with
// an *OverlapError if it intersects an existing subnet in the same network.
func (t *Topology) AddSubnet(network, name, cidr, zone string, visibility Visibility) (*Subnet, error) {
	if _, exists := t.subnets[name]; exists {
		return nil, fmt.Errorf("subnet %q already declared", name)
	}
	parent, ok := t.networks[network]
	if !ok {
		return nil, fmt.Errorf("subnet %q references unknown network %q", name, network)
	}
	block, err := netblock.Parse(cidr)
	if err != nil {
		return nil, fmt.Errorf("subnet %q: %w", name, err)
	}

	if !netblock.Contains(parent.CIDR, block) {
		return nil, &ContainmentError{
			Subnet:      name,
			CIDR:        block,
			Network:     network,
			NetworkCIDR: parent.CIDR,
		}
	}
	for _, otherName := range t.subnetOrder {
		other := t.subnets[otherName]
		if other.Network != network {
			continue
		}
		if netblock.Overlaps(block, other.CIDR) {
			return nil, &OverlapError{
				Subnet:    name,
				CIDR:      block,
				Other:     other.Name,
				OtherCIDR: other.CIDR,
				Network:   network,
			}
		}
	}

	s := &Subnet{Name: name, Network: network, CIDR: block, Zone: zone, Visibility: visibility}
	t.subnets[name] = s
	t.subnetOrder = append(t.subnetOrder, name)
	return s, nil
}

// AddRouteTable declares a route table attached to the given subnets. A
// subnet belongs to exactly one table.
func (t *Topology) AddRouteTable(name string, subnets ...string) (*RouteTable, error) {
	if _, exists := t.tables[name]; exists {
		return nil, fmt.Errorf("route table %q already declared", name)
	}
	for _, sub := range subnets {
		if _, ok := t.subnets[sub]; !ok {
			return nil, fmt.Errorf("route table %q references unknown subnet %q", name, sub)
		}
		if owner, attached := t.subnetTable[sub]; attached {
			return nil, fmt.Errorf("subnet %q is already attached to route table %q", sub, owner)
		}
	}

	table := &RouteTable{Name: name, Subnets: append([]string(nil), subnets...)}
	t.tables[name] = table
	t.tableOrder = append(t.tableOrder, name)
	for _, sub := range subnets {
		t.subnetTable[sub] = name
	}
	return table, nil
}

// AddRoute appends a forwarding rule to a table. Re-declaring an identical
// route is a no-op; the same destination with a different target fails with
// an *AmbiguousRouteError.
func (t *Topology) AddRoute(table, destination, gateway string) error {
	tbl, ok := t.tables[table]
	if !ok {
		return fmt.Errorf("route references unknown route table %q", table)
	}
	dest, err := netblock.Parse(destination)
	if err != nil {
		return fmt.Errorf("route table %q: %w", table, err)
	}
	target, err := t.resolveGateway(gateway)
	if err != nil {
		return fmt.Errorf("route table %q: %w", table, err)
	}

	for _, r := range tbl.Routes {
		if r.Destination != dest {
			continue
		}
		if r.Target == target {
			return nil
		}
		return &AmbiguousRouteError{
			Table:       table,
			Destination: dest,
			Existing:    r.Target.Name,
			Proposed:    target.Name,
		}
	}

	tbl.Routes = append(tbl.Routes, Route{Destination: dest, Target: target})
	return nil
}

// resolveGateway resolves a gateway name to a typed route target.
func (t *Topology) resolveGateway(name string) (RouteTarget, error) {
	if _, ok := t.igws[name]; ok {
		return RouteTarget{Kind: GatewayInternet, Name: name}, nil
	}
	if _, ok := t.nats[name]; ok {
		return RouteTarget{Kind: GatewayNat, Name: name}, nil
	}
	return RouteTarget{}, fmt.Errorf("unknown gateway %q", name)
}

// AttachInternetGateway declares the internet gateway for a network.
// A network has exactly one.
func (t *Topology) AttachInternetGateway(name, network string) (*InternetGateway, error) {
	if _, exists := t.igws[name]; exists {
		return nil, fmt.Errorf("internet gateway %q already declared", name)
	}
	if _, ok := t.networks[network]; !ok {
		return nil, fmt.Errorf("internet gateway %q references unknown network %q", name, network)
	}
	for _, other := range t.igwOrder {
		if t.igws[other].Network == network {
			return nil, fmt.Errorf("network %q already has internet gateway %q", network, other)
		}
	}

	g := &InternetGateway{Name: name, Network: network}
	t.igws[name] = g
	t.igwOrder = append(t.igwOrder, name)
	return g, nil
}

// AttachNatGateway declares a NAT gateway hosted in a public subnet. It
// fails with an *InvalidPlacementError if the subnet is private.
func (t *Topology) AttachNatGateway(name, subnet, address string) (*NatGateway, error) {
	if _, exists := t.nats[name]; exists {
		return nil, fmt.Errorf("nat gateway %q already declared", name)
	}
	sub, ok := t.subnets[subnet]
	if !ok {
		return nil, fmt.Errorf("nat gateway %q references unknown subnet %q", name, subnet)
	}
	if sub.Visibility != VisibilityPublic {
		return nil, &InvalidPlacementError{Entity: name, Kind: "nat gateway", Subnet: subnet}
	}

	g := &NatGateway{Name: name, Subnet: subnet, Address: address}
	t.nats[name] = g
	t.natOrder = append(t.natOrder, name)
	return g, nil
}

// AddTargetGroup declares a target group with its health check.
func (t *Topology) AddTargetGroup(name string, port int, protocol string, hc HealthCheck) (*TargetGroup, error) {
	if _, exists := t.targetGroups[name]; exists {
		return nil, fmt.Errorf("target group %q already declared", name)
	}
	tg := &TargetGroup{Name: name, Port: port, Protocol: protocol, HealthCheck: hc}
	t.targetGroups[name] = tg
	t.tgOrder = append(t.tgOrder, name)
	return tg, nil
}

// BuildLoadBalancer declares a load balancer across public subnets. It
// fails with an *InsufficientZonesError when the subnets span fewer than 2
// distinct zones, and with an *InvalidPlacementError when a subnet is
// private. An HTTP listener redirect must reference an HTTPS listener on
// the same balancer.
func (t *Topology) BuildLoadBalancer(name string, subnets []string, listeners []Listener) (*LoadBalancer, error) {
	if _, exists := t.balancers[name]; exists {
		return nil, fmt.Errorf("load balancer %q already declared", name)
	}

	zones := make(map[string]bool)
	var zoneList []string
	for _, subName := range subnets {
		sub, ok := t.subnets[subName]
		if !ok {
			return nil, fmt.Errorf("load balancer %q references unknown subnet %q", name, subName)
		}
		if sub.Visibility != VisibilityPublic {
			return nil, &InvalidPlacementError{Entity: name, Kind: "load balancer", Subnet: subName}
		}
		if !zones[sub.Zone] {
			zones[sub.Zone] = true
			zoneList = append(zoneList, sub.Zone)
		}
	}
	if len(zones) < 2 {
		return nil, &InsufficientZonesError{LoadBalancer: name, Zones: zoneList}
	}

	for _, l := range listeners {
		if err := t.checkListener(name, l, listeners); err != nil {
			return nil, err
		}
	}

	lb := &LoadBalancer{
		Name:      name,
		Subnets:   append([]string(nil), subnets...),
		Listeners: append([]Listener(nil), listeners...),
	}
	t.balancers[name] = lb
	t.balancerOrder = append(t.balancerOrder, name)
	return lb, nil
}

// checkListener validates one listener against its siblings on the balancer.
func (t *Topology) checkListener(lb string, l Listener, siblings []Listener) error {
	if l.ForwardTo != "" && l.RedirectTo != 0 {
		return fmt.Errorf("load balancer %q: listener %d declares both forward and redirect", lb, l.Port)
	}
	if l.ForwardTo == "" && l.RedirectTo == 0 {
		return fmt.Errorf("load balancer %q: listener %d declares neither forward nor redirect", lb, l.Port)
	}
	if l.ForwardTo != "" {
		if _, ok := t.targetGroups[l.ForwardTo]; !ok {
			return fmt.Errorf("load balancer %q: listener %d forwards to unknown target group %q", lb, l.Port, l.ForwardTo)
		}
		return nil
	}

	// Redirect target must be an HTTPS listener on the same balancer.
	for _, s := range siblings {
		if s.Port == l.RedirectTo {
			if s.Protocol != "HTTPS" {
				return fmt.Errorf("load balancer %q: listener %d redirects to listener %d which is %s, not HTTPS",
					lb, l.Port, l.RedirectTo, s.Protocol)
			}
			return nil
		}
	}
	return fmt.Errorf("load balancer %q: listener %d redirects to undeclared listener port %d", lb, l.Port, l.RedirectTo)
}

// PlaceService places a compute service into subnets. It fails with a
// *NetworkReachabilityError when a private placement requests a public
// address, or a public placement without NAT egress omits one.
func (t *Topology) PlaceService(name string, subnets []string, securityGroup, targetGroup string, assignPublicIP bool) (*Service, error) {
	if _, exists := t.services[name]; exists {
		return nil, fmt.Errorf("service %q already declared", name)
	}
	if len(subnets) == 0 {
		return nil, fmt.Errorf("service %q declares no subnets", name)
	}
	if targetGroup != "" {
		if _, ok := t.targetGroups[targetGroup]; !ok {
			return nil, fmt.Errorf("service %q references unknown target group %q", name, targetGroup)
		}
	}
	for _, subName := range subnets {
		sub, ok := t.subnets[subName]
		if !ok {
			return nil, fmt.Errorf("service %q references unknown subnet %q", name, subName)
		}
		if err := t.checkPlacement(name, sub, assignPublicIP); err != nil {
			return nil, err
		}
	}

	svc := &Service{
		Name:           name,
		Subnets:        append([]string(nil), subnets...),
		SecurityGroup:  securityGroup,
		TargetGroup:    targetGroup,
		AssignPublicIP: assignPublicIP,
	}
	t.services[name] = svc
	t.serviceOrder = append(t.serviceOrder, name)
	return svc, nil
}

// checkPlacement applies the reachability rules for one placement subnet.
func (t *Topology) checkPlacement(service string, sub *Subnet, assignPublicIP bool) error {
	if sub.Visibility == VisibilityPrivate && assignPublicIP {
		return &NetworkReachabilityError{
			Service: service,
			Subnet:  sub.Name,
			Reason:  "private placement must not request a public address",
		}
	}
	if sub.Visibility == VisibilityPublic && !assignPublicIP && !t.subnetHasNatRoute(sub.Name) {
		return &NetworkReachabilityError{
			Service: service,
			Subnet:  sub.Name,
			Reason:  "public placement without NAT egress must request a public address",
		}
	}
	return nil
}

// subnetHasNatRoute reports whether the subnet's route table forwards any
// destination through a NAT gateway.
func (t *Topology) subnetHasNatRoute(subnet string) bool {
	tableName, ok := t.subnetTable[subnet]
	if !ok {
		return false
	}
	for _, r := range t.tables[tableName].Routes {
		if r.Target.Kind == GatewayNat {
			return true
		}
	}
	return false
}

// RouteTableFor returns the route table a subnet is attached to, if any.
func (t *Topology) RouteTableFor(subnet string) (*RouteTable, bool) {
	name, ok := t.subnetTable[subnet]
	if !ok {
		return nil, false
	}
	return t.tables[name], true
}

// EntityCount returns the number of declared entities of all kinds.
func (t *Topology) EntityCount() int {
	return len(t.networks) + len(t.subnets) + len(t.tables) + len(t.igws) +
		len(t.nats) + len(t.balancers) + len(t.targetGroups) + len(t.services)
}

// Lookup helpers. Accessors return entities in declaration order so that
// emission and graph output are deterministic.

func (t *Topology) Network(name string) (*Network, bool) { n, ok := t.networks[name]; return n, ok }
func (t *Topology) Subnet(name string) (*Subnet, bool)   { s, ok := t.subnets[name]; return s, ok }

func (t *Topology) Networks() []*Network {
	out := make([]*Network, 0, len(t.networkOrder))
	for _, name := range t.networkOrder {
		out = append(out, t.networks[name])
	}
	return out
}

func (t *Topology) Subnets() []*Subnet {
	out := make([]*Subnet, 0, len(t.subnetOrder))
	for _, name := range t.subnetOrder {
		out = append(out, t.subnets[name])
	}
	return out
}

func (t *Topology) RouteTables() []*RouteTable {
	out := make([]*RouteTable, 0, len(t.tableOrder))
	for _, name := range t.tableOrder {
		out = append(out, t.tables[name])
	}
	return out
}

func (t *Topology) InternetGateways() []*InternetGateway {
	out := make([]*InternetGateway, 0, len(t.igwOrder))
	for _, name := range t.igwOrder {
		out = append(out, t.igws[name])
	}
	return out
}

func (t *Topology) NatGateways() []*NatGateway {
	out := make([]*NatGateway, 0, len(t.natOrder))
	for _, name := range t.natOrder {
		out = append(out, t.nats[name])
	}
	return out
}

func (t *Topology) LoadBalancers() []*LoadBalancer {
	out := make([]*LoadBalancer, 0, len(t.balancerOrder))
	for _, name := range t.balancerOrder {
		out = append(out, t.balancers[name])
	}
	return out
}

func (t *Topology) TargetGroups() []*TargetGroup {
	out := make([]*TargetGroup, 0, len(t.tgOrder))
	for _, name := range t.tgOrder {
		out = append(out, t.targetGroups[name])
	}
	return out
}

func (t *Topology) Services() []*Service {
	out := make([]*Service, 0, len(t.serviceOrder))
	for _, name := range t.serviceOrder {
		out = append(out, t.services[name])
	}
	return out
}
