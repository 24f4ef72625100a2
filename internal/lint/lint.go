// Package lint provides advisory rules for declared topologies.
//
// Lint findings are softer than validation violations: the topology is
// consistent and will provision, but the declaration has a property the
// author probably did not intend.
//
// Rules:
//
//	TPW001: Network declares public subnets but no internet gateway
//	TPW002: HTTP listener forwards traffic instead of redirecting to HTTPS
//	TPW003: Health check interval or path is suspicious
//	TPW004: Private subnet routes through a NAT gateway in another zone
package lint

import (
	"fmt"

	"github.com/topowire/topowire"
	"github.com/topowire/topowire/internal/netblock"
	"github.com/topowire/topowire/internal/topology"
)

// Rule checks one advisory property of a topology.
type Rule interface {
	ID() string
	Description() string
	Check(topo *topology.Topology) []topowire.LintIssue
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
}

// Result contains the outcome of linting.
type Result struct {
	Success bool
	Issues  []topowire.LintIssue
}

// AllRules returns every registered rule in ID order.
func AllRules() []Rule {
	return []Rule{
		MissingInternetGateway{},
		PlainHTTPForward{},
		HealthCheckTuning{},
		CrossZoneNat{},
	}
}

// Check runs the enabled rules against the topology.
func Check(topo *topology.Topology, opts Options) Result {
	rules := AllRules()
	if len(opts.EnabledRules) > 0 {
		enabled := make(map[string]bool, len(opts.EnabledRules))
		for _, id := range opts.EnabledRules {
			enabled[id] = true
		}
		var filtered []Rule
		for _, r := range rules {
			if enabled[r.ID()] {
				filtered = append(filtered, r)
			}
		}
		rules = filtered
	}

	var issues []topowire.LintIssue
	for _, rule := range rules {
		issues = append(issues, rule.Check(topo)...)
	}

	return Result{
		Success: len(issues) == 0,
		Issues:  issues,
	}
}

// MissingInternetGateway flags networks that declare public subnets without
// an internet gateway. The subnets are public in name only.
type MissingInternetGateway struct{}

func (r MissingInternetGateway) ID() string { return "TPW001" }
func (r MissingInternetGateway) Description() string {
	return "Network declares public subnets but no internet gateway"
}

func (r MissingInternetGateway) Check(topo *topology.Topology) []topowire.LintIssue {
	withIGW := make(map[string]bool)
	for _, igw := range topo.InternetGateways() {
		withIGW[igw.Network] = true
	}

	publicCount := make(map[string]int)
	for _, sub := range topo.Subnets() {
		if sub.Visibility == topology.VisibilityPublic {
			publicCount[sub.Network]++
		}
	}

	var issues []topowire.LintIssue
	for _, network := range topo.Networks() {
		if n := publicCount[network.Name]; n > 0 && !withIGW[network.Name] {
			issues = append(issues, topowire.LintIssue{
				Rule:     r.ID(),
				Severity: "warning",
				Kind:     topowire.KindNetwork,
				Entity:   network.Name,
				Message:  fmt.Sprintf("%d public subnet(s) but no internet gateway", n),
			})
		}
	}
	return issues
}

// PlainHTTPForward flags HTTP listeners that forward to a target group
// instead of redirecting to an HTTPS listener.
type PlainHTTPForward struct{}

func (r PlainHTTPForward) ID() string { return "TPW002" }
func (r PlainHTTPForward) Description() string {
	return "HTTP listener forwards traffic instead of redirecting to HTTPS"
}

func (r PlainHTTPForward) Check(topo *topology.Topology) []topowire.LintIssue {
	var issues []topowire.LintIssue
	for _, lb := range topo.LoadBalancers() {
		for _, l := range lb.Listeners {
			if l.Protocol == "HTTP" && l.ForwardTo != "" {
				issues = append(issues, topowire.LintIssue{
					Rule:     r.ID(),
					Severity: "warning",
					Kind:     topowire.KindLoadBalancer,
					Entity:   lb.Name,
					Message:  fmt.Sprintf("listener %d forwards plain HTTP to %q; prefer a redirect to an HTTPS listener", l.Port, l.ForwardTo),
				})
			}
		}
	}
	return issues
}

// HealthCheckTuning flags health checks that probe too aggressively or use
// a relative path.
type HealthCheckTuning struct{}

func (r HealthCheckTuning) ID() string { return "TPW003" }
func (r HealthCheckTuning) Description() string {
	return "Health check interval or path is suspicious"
}

// minHealthCheckInterval is the smallest interval most providers accept.
const minHealthCheckInterval = 5

func (r HealthCheckTuning) Check(topo *topology.Topology) []topowire.LintIssue {
	var issues []topowire.LintIssue
	for _, tg := range topo.TargetGroups() {
		hc := tg.HealthCheck
		if hc.IntervalSeconds < minHealthCheckInterval {
			issues = append(issues, topowire.LintIssue{
				Rule:     r.ID(),
				Severity: "warning",
				Kind:     topowire.KindTargetGroup,
				Entity:   tg.Name,
				Message:  fmt.Sprintf("health check interval %ds is below the %ds floor", hc.IntervalSeconds, minHealthCheckInterval),
			})
		}
		if len(hc.Path) == 0 || hc.Path[0] != '/' {
			issues = append(issues, topowire.LintIssue{
				Rule:     r.ID(),
				Severity: "warning",
				Kind:     topowire.KindTargetGroup,
				Entity:   tg.Name,
				Message:  fmt.Sprintf("health check path %q is not absolute", hc.Path),
			})
		}
	}
	return issues
}

// CrossZoneNat flags private subnets whose NAT egress crosses an
// availability zone boundary, which adds a cross-zone data path.
type CrossZoneNat struct{}

func (r CrossZoneNat) ID() string { return "TPW004" }
func (r CrossZoneNat) Description() string {
	return "Private subnet routes through a NAT gateway in another zone"
}

func (r CrossZoneNat) Check(topo *topology.Topology) []topowire.LintIssue {
	var issues []topowire.LintIssue
	for _, sub := range topo.Subnets() {
		if sub.Visibility != topology.VisibilityPrivate {
			continue
		}
		table, ok := topo.RouteTableFor(sub.Name)
		if !ok {
			continue
		}
		for _, route := range table.Routes {
			if route.Target.Kind != topology.GatewayNat || !netblock.IsDefault(route.Destination) {
				continue
			}
			natZone := r.natZone(topo, route.Target.Name)
			if natZone != "" && natZone != sub.Zone {
				issues = append(issues, topowire.LintIssue{
					Rule:     r.ID(),
					Severity: "info",
					Kind:     topowire.KindSubnet,
					Entity:   sub.Name,
					Message:  fmt.Sprintf("zone %s routes through NAT gateway %q in zone %s", sub.Zone, route.Target.Name, natZone),
				})
			}
		}
	}
	return issues
}

func (r CrossZoneNat) natZone(topo *topology.Topology, nat string) string {
	for _, g := range topo.NatGateways() {
		if g.Name != nat {
			continue
		}
		if sub, ok := topo.Subnet(g.Subnet); ok {
			return sub.Zone
		}
	}
	return ""
}
