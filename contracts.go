// Package topowire provides shared types for describing and validating
// virtual network topologies.
//
// A topology is declared in HCL block files:
//
//	network "main" {
//	    cidr = "10.0.0.0/16"
//	}
//
//	subnet "public_a" {
//	    network    = "main"
//	    cidr       = "10.0.0.0/24"
//	    zone       = "us-east-1a"
//	    visibility = "public"
//	}
//
// The topowire CLI loads these declarations into a typed graph, checks
// referential and addressing invariants, and emits a normalized document
// for an external provisioning tool.
package topowire

import "fmt"

// EntityKind identifies the kind of a declared topology entity.
type EntityKind string

const (
	KindNetwork         EntityKind = "network"
	KindSubnet          EntityKind = "subnet"
	KindRouteTable      EntityKind = "route_table"
	KindInternetGateway EntityKind = "internet_gateway"
	KindNatGateway      EntityKind = "nat_gateway"
	KindLoadBalancer    EntityKind = "load_balancer"
	KindTargetGroup     EntityKind = "target_group"
	KindService         EntityKind = "service"
)

// Violation codes reported by topology validation. Each code corresponds to
// one class of invariant breach.
const (
	CodeOverlap             = "overlap"
	CodeContainment         = "containment"
	CodeAmbiguousRoute      = "ambiguous_route"
	CodeInvalidPlacement    = "invalid_placement"
	CodeInsufficientZones   = "insufficient_zones"
	CodeNetworkReachability = "network_reachability"
	CodeDanglingReference   = "dangling_reference"
)

// Violation is a single invariant breach found by validation.
type Violation struct {
	// Code classifies the breach (see Code* constants).
	Code string `json:"code"`
	// Kind is the kind of the offending entity.
	Kind EntityKind `json:"kind"`
	// Entity is the name of the offending entity.
	Entity string `json:"entity"`
	// Message is a human-readable description.
	Message string `json:"message"`
}

// String formats the violation for text output.
func (v Violation) String() string {
	return fmt.Sprintf("%s %s %q: %s", v.Code, v.Kind, v.Entity, v.Message)
}

// Document is the normalized emission shape of a validated topology.
// It round-trips through JSON and YAML and is the input format for diffing.
type Document struct {
	Version          int                  `json:"version" yaml:"version"`
	Networks         []NetworkDoc         `json:"networks" yaml:"networks"`
	Subnets          []SubnetDoc          `json:"subnets,omitempty" yaml:"subnets,omitempty"`
	RouteTables      []RouteTableDoc      `json:"route_tables,omitempty" yaml:"route_tables,omitempty"`
	InternetGateways []InternetGatewayDoc `json:"internet_gateways,omitempty" yaml:"internet_gateways,omitempty"`
	NatGateways      []NatGatewayDoc      `json:"nat_gateways,omitempty" yaml:"nat_gateways,omitempty"`
	LoadBalancers    []LoadBalancerDoc    `json:"load_balancers,omitempty" yaml:"load_balancers,omitempty"`
	TargetGroups     []TargetGroupDoc     `json:"target_groups,omitempty" yaml:"target_groups,omitempty"`
	Services         []ServiceDoc         `json:"services,omitempty" yaml:"services,omitempty"`
}

// NetworkDoc is a network entry in a Document.
type NetworkDoc struct {
	Name string `json:"name" yaml:"name"`
	CIDR string `json:"cidr" yaml:"cidr"`
}

// SubnetDoc is a subnet entry in a Document.
type SubnetDoc struct {
	Name       string `json:"name" yaml:"name"`
	Network    string `json:"network" yaml:"network"`
	CIDR       string `json:"cidr" yaml:"cidr"`
	Zone       string `json:"zone" yaml:"zone"`
	Visibility string `json:"visibility" yaml:"visibility"`
}

// RouteDoc is a single forwarding rule inside a RouteTableDoc.
type RouteDoc struct {
	Destination string `json:"destination" yaml:"destination"`
	Gateway     string `json:"gateway" yaml:"gateway"`
}

// RouteTableDoc is a route table entry in a Document.
type RouteTableDoc struct {
	Name    string     `json:"name" yaml:"name"`
	Subnets []string   `json:"subnets" yaml:"subnets"`
	Routes  []RouteDoc `json:"routes,omitempty" yaml:"routes,omitempty"`
}

// InternetGatewayDoc is an internet gateway entry in a Document.
type InternetGatewayDoc struct {
	Name    string `json:"name" yaml:"name"`
	Network string `json:"network" yaml:"network"`
}

// NatGatewayDoc is a NAT gateway entry in a Document.
type NatGatewayDoc struct {
	Name    string `json:"name" yaml:"name"`
	Subnet  string `json:"subnet" yaml:"subnet"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
}

// ListenerDoc is a listener entry inside a LoadBalancerDoc.
type ListenerDoc struct {
	Port       int    `json:"port" yaml:"port"`
	Protocol   string `json:"protocol" yaml:"protocol"`
	Forward    string `json:"forward,omitempty" yaml:"forward,omitempty"`
	RedirectTo int    `json:"redirect_to,omitempty" yaml:"redirect_to,omitempty"`
}

// LoadBalancerDoc is a load balancer entry in a Document.
type LoadBalancerDoc struct {
	Name      string        `json:"name" yaml:"name"`
	Subnets   []string      `json:"subnets" yaml:"subnets"`
	Listeners []ListenerDoc `json:"listeners,omitempty" yaml:"listeners,omitempty"`
}

// HealthCheckDoc is the health check entry inside a TargetGroupDoc.
type HealthCheckDoc struct {
	Path             string `json:"path" yaml:"path"`
	IntervalSeconds  int    `json:"interval_seconds" yaml:"interval_seconds"`
	HealthyThreshold int    `json:"healthy_threshold" yaml:"healthy_threshold"`
}

// TargetGroupDoc is a target group entry in a Document.
type TargetGroupDoc struct {
	Name        string         `json:"name" yaml:"name"`
	Port        int            `json:"port" yaml:"port"`
	Protocol    string         `json:"protocol" yaml:"protocol"`
	HealthCheck HealthCheckDoc `json:"health_check" yaml:"health_check"`
}

// ServiceDoc is a compute service entry in a Document.
type ServiceDoc struct {
	Name           string   `json:"name" yaml:"name"`
	Subnets        []string `json:"subnets" yaml:"subnets"`
	SecurityGroup  string   `json:"security_group,omitempty" yaml:"security_group,omitempty"`
	TargetGroup    string   `json:"target_group" yaml:"target_group"`
	AssignPublicIP bool     `json:"assign_public_ip" yaml:"assign_public_ip"`
}

// ValidateResult is the JSON output from `topowire validate`.
type ValidateResult struct {
	Success    bool        `json:"success"`
	Entities   int         `json:"entities"`
	Violations []Violation `json:"violations,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
}

// BuildResult is the JSON output from `topowire build`.
type BuildResult struct {
	Success  bool      `json:"success"`
	Document *Document `json:"document,omitempty"`
	Errors   []string  `json:"errors,omitempty"`
}

// ListEntity is a single entry in the output of `topowire list`.
type ListEntity struct {
	Name string     `json:"name"`
	Kind EntityKind `json:"kind"`
	File string     `json:"file,omitempty"`
	Line int        `json:"line,omitempty"`
}

// ListResult is the JSON output from `topowire list`.
type ListResult struct {
	Entities []ListEntity `json:"entities"`
}

// LintIssue is a single advisory finding from `topowire lint`.
type LintIssue struct {
	Rule     string     `json:"rule"`
	Severity string     `json:"severity"` // "warning" or "info"
	Kind     EntityKind `json:"kind,omitempty"`
	Entity   string     `json:"entity,omitempty"`
	Message  string     `json:"message"`
}

// LintResult is the JSON output from `topowire lint`.
type LintResult struct {
	Success bool        `json:"success"`
	Issues  []LintIssue `json:"issues,omitempty"`
}

// DiffEntry describes one added, removed, or modified entity in a diff.
type DiffEntry struct {
	Entity  string     `json:"entity"`
	Kind    EntityKind `json:"kind"`
	Changes []string   `json:"changes,omitempty"`
}

// TopologyDiff contains the differences between two topology documents.
type TopologyDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
}

// DiffSummary contains counts for a TopologyDiff.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}
