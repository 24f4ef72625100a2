// Package loader parses declarative HCL topology files and replays their
// blocks through the topology model, so addressing and placement errors
// surface with source locations attached.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/topowire/topowire"
	"github.com/topowire/topowire/internal/ctxlog"
	"github.com/topowire/topowire/internal/topology"
)

// Health check defaults applied when a target_group omits them.
const (
	defaultHealthCheckPath      = "/"
	defaultHealthCheckInterval  = 30
	defaultHealthCheckThreshold = 3
)

// Loader loads topology declarations from HCL files.
type Loader struct{}

// NewLoader creates a new topology file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Result is the outcome of loading a set of topology files.
type Result struct {
	// Topology is the fully replayed model.
	Topology *topology.Topology
	// Entities lists every declared entity with its source location, in
	// application order.
	Entities []topowire.ListEntity
}

// decl pairs a decoded block with the source range of its declaration.
type decl[T any] struct {
	block T
	rng   hcl.Range
}

// collected aggregates blocks of each kind across all input files.
type collected struct {
	networks     []decl[*networkBlock]
	subnets      []decl[*subnetBlock]
	tables       []decl[*routeTableBlock]
	igws         []decl[*internetGatewayBlock]
	nats         []decl[*natGatewayBlock]
	balancers    []decl[*loadBalancerBlock]
	targetGroups []decl[*targetGroupBlock]
	services     []decl[*serviceBlock]
}

// Load discovers .hcl files under the given paths (files or directories)
// and loads them into a topology.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Result, error) {
	files, err := findHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl topology files found in %v", paths)
	}
	return l.LoadFiles(ctx, files)
}

// LoadFiles loads an explicit list of topology files.
func (l *Loader) LoadFiles(ctx context.Context, files []string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("loading topology files", "count", len(files))

	parser := hclparse.NewParser()
	parsed := make([]*hcl.File, 0, len(files))
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", file, diags)
		}
		parsed = append(parsed, hclFile)
	}

	evalCtx, err := buildEvalContext(parsed)
	if err != nil {
		return nil, err
	}

	var c collected
	for _, hclFile := range parsed {
		var root fileRoot
		diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode topology file: %w", diags)
		}
		c.merge(&root, blockRanges(hclFile))
	}

	result, err := apply(&c)
	if err != nil {
		return nil, err
	}
	logger.Debug("topology loaded", "entities", len(result.Entities))
	return result, nil
}

// buildEvalContext evaluates all variable blocks and exposes them as
// var.<name> to every other block attribute. Variable values must be
// literals; they cannot reference other variables.
func buildEvalContext(parsed []*hcl.File) (*hcl.EvalContext, error) {
	values := make(map[string]cty.Value)
	for _, hclFile := range parsed {
		var root variableRoot
		diags := gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode variable blocks: %w", diags)
		}
		for _, v := range root.Variables {
			if _, exists := values[v.Name]; exists {
				return nil, fmt.Errorf("variable %q declared more than once", v.Name)
			}
			val, diags := v.Value.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("variable %q: %w", v.Name, diags)
			}
			values[v.Name] = val
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var": cty.ObjectVal(values),
		},
	}, nil
}

// merge appends one file's decoded blocks, pairing each with its source range.
func (c *collected) merge(root *fileRoot, ranges map[string][]hcl.Range) {
	for i, b := range root.Networks {
		c.networks = append(c.networks, decl[*networkBlock]{b, rangeAt(ranges, "network", i)})
	}
	for i, b := range root.Subnets {
		c.subnets = append(c.subnets, decl[*subnetBlock]{b, rangeAt(ranges, "subnet", i)})
	}
	for i, b := range root.RouteTables {
		c.tables = append(c.tables, decl[*routeTableBlock]{b, rangeAt(ranges, "route_table", i)})
	}
	for i, b := range root.InternetGateways {
		c.igws = append(c.igws, decl[*internetGatewayBlock]{b, rangeAt(ranges, "internet_gateway", i)})
	}
	for i, b := range root.NatGateways {
		c.nats = append(c.nats, decl[*natGatewayBlock]{b, rangeAt(ranges, "nat_gateway", i)})
	}
	for i, b := range root.LoadBalancers {
		c.balancers = append(c.balancers, decl[*loadBalancerBlock]{b, rangeAt(ranges, "load_balancer", i)})
	}
	for i, b := range root.TargetGroups {
		c.targetGroups = append(c.targetGroups, decl[*targetGroupBlock]{b, rangeAt(ranges, "target_group", i)})
	}
	for i, b := range root.Services {
		c.services = append(c.services, decl[*serviceBlock]{b, rangeAt(ranges, "service", i)})
	}
}

// blockRanges indexes the declaration range of each top-level block by block
// type, in file order. gohcl preserves block order, so the i-th decoded
// block of a type corresponds to the i-th range here.
func blockRanges(f *hcl.File) map[string][]hcl.Range {
	out := make(map[string][]hcl.Range)
	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return out
	}
	for _, b := range body.Blocks {
		out[b.Type] = append(out[b.Type], b.TypeRange)
	}
	return out
}

func rangeAt(ranges map[string][]hcl.Range, blockType string, i int) hcl.Range {
	rs := ranges[blockType]
	if i < len(rs) {
		return rs[i]
	}
	return hcl.Range{}
}

// apply replays all collected blocks through the model in dependency order:
// networks, subnets, gateways, route tables, target groups, balancers,
// services. References therefore resolve regardless of file layout.
func apply(c *collected) (*Result, error) {
	topo := topology.New()
	result := &Result{Topology: topo}

	record := func(kind topowire.EntityKind, name string, rng hcl.Range) {
		result.Entities = append(result.Entities, topowire.ListEntity{
			Name: name,
			Kind: kind,
			File: rng.Filename,
			Line: rng.Start.Line,
		})
	}

	for _, d := range c.networks {
		if _, err := topo.AddNetwork(d.block.Name, d.block.CIDR); err != nil {
			return nil, declErr(d.rng, err)
		}
		record(topowire.KindNetwork, d.block.Name, d.rng)
	}

	for _, d := range c.subnets {
		visibility, err := topology.ParseVisibility(d.block.Visibility)
		if err != nil {
			return nil, declErr(d.rng, fmt.Errorf("subnet %q: %w", d.block.Name, err))
		}
		if _, err := topo.AddSubnet(d.block.Network, d.block.Name, d.block.CIDR, d.block.Zone, visibility); err != nil {
			return nil, declErr(d.rng, err)
		}
		record(topowire.KindSubnet, d.block.Name, d.rng)
	}

	for _, d := range c.igws {
		if _, err := topo.AttachInternetGateway(d.block.Name, d.block.Network); err != nil {
			return nil, declErr(d.rng, err)
		}
		record(topowire.KindInternetGateway, d.block.Name, d.rng)
	}

	for _, d := range c.nats {
		address := d.block.Address
		if address == "" {
			address = "auto"
		}
		if _, err := topo.AttachNatGateway(d.block.Name, d.block.Subnet, address); err != nil {
			return nil, declErr(d.rng, err)
		}
		record(topowire.KindNatGateway, d.block.Name, d.rng)
	}

	for _, d := range c.tables {
		if _, err := topo.AddRouteTable(d.block.Name, d.block.Subnets...); err != nil {
			return nil, declErr(d.rng, err)
		}
		for _, r := range d.block.Routes {
			if err := topo.AddRoute(d.block.Name, r.Destination, r.Gateway); err != nil {
				return nil, declErr(d.rng, err)
			}
		}
		record(topowire.KindRouteTable, d.block.Name, d.rng)
	}

	for _, d := range c.targetGroups {
		hc := translateHealthCheck(d.block.HealthCheck)
		if _, err := topo.AddTargetGroup(d.block.Name, d.block.Port, d.block.Protocol, hc); err != nil {
			return nil, declErr(d.rng, err)
		}
		record(topowire.KindTargetGroup, d.block.Name, d.rng)
	}

	for _, d := range c.balancers {
		listeners := make([]topology.Listener, 0, len(d.block.Listeners))
		for _, l := range d.block.Listeners {
			listeners = append(listeners, topology.Listener{
				Port:       l.Port,
				Protocol:   l.Protocol,
				ForwardTo:  l.Forward,
				RedirectTo: l.RedirectTo,
			})
		}
		if _, err := topo.BuildLoadBalancer(d.block.Name, d.block.Subnets, listeners); err != nil {
			return nil, declErr(d.rng, err)
		}
		record(topowire.KindLoadBalancer, d.block.Name, d.rng)
	}

	for _, d := range c.services {
		_, err := topo.PlaceService(d.block.Name, d.block.Subnets, d.block.SecurityGroup,
			d.block.TargetGroup, d.block.AssignPublicIP)
		if err != nil {
			return nil, declErr(d.rng, err)
		}
		record(topowire.KindService, d.block.Name, d.rng)
	}

	return result, nil
}

// translateHealthCheck fills in defaults for omitted health check settings.
func translateHealthCheck(b *healthCheckBlock) topology.HealthCheck {
	hc := topology.HealthCheck{
		Path:             defaultHealthCheckPath,
		IntervalSeconds:  defaultHealthCheckInterval,
		HealthyThreshold: defaultHealthCheckThreshold,
	}
	if b == nil {
		return hc
	}
	if b.Path != "" {
		hc.Path = b.Path
	}
	if b.IntervalSeconds != 0 {
		hc.IntervalSeconds = b.IntervalSeconds
	}
	if b.HealthyThreshold != 0 {
		hc.HealthyThreshold = b.HealthyThreshold
	}
	return hc
}

// declErr attaches a declaration's source range to an operation error.
func declErr(rng hcl.Range, err error) error {
	if rng.Filename == "" {
		return err
	}
	return fmt.Errorf("%s: %w", rng, err)
}

// findHCLFiles resolves files and directories to a sorted list of .hcl files.
func findHCLFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read path %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(p, ".hcl") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", path, err)
		}
	}
	sort.Strings(files)
	return files, nil
}
