// Package graph generates DOT and Mermaid format graphs of a declared
// topology.
package graph

import (
	"io"
	"strconv"
	"strings"

	"github.com/emicklei/dot"

	"github.com/topowire/topowire/internal/topology"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates topology graphs.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByNetwork groups subnets and gateways under their network.
	ClusterByNetwork bool
}

// Generate renders the topology graph and writes it to w.
func (g *Generator) Generate(topo *topology.Topology, w io.Writer) error {
	graph := g.buildGraph(topo)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(topo *topology.Topology) (string, error) {
	var sb strings.Builder
	if err := g.Generate(topo, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// buildGraph creates the dot.Graph structure from the topology. Edges point
// from an entity to what it depends on: subnets to networks, routes to
// gateways, balancers to subnets and target groups, services to placement
// and backends.
func (g *Generator) buildGraph(topo *topology.Topology) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	containers := g.addNetworkNodes(graph, topo)

	nodeIn := func(network, name, label string) dot.Node {
		if c, ok := containers[network]; ok {
			n := c.Node(name)
			n.Label(label)
			return n
		}
		n := graph.Node(name)
		n.Label(label)
		return n
	}

	for _, sub := range topo.Subnets() {
		label := sub.Name + "\\n[" + string(sub.Visibility) + " " + sub.CIDR.String() + "]"
		n := nodeIn(sub.Network, sub.Name, label)
		if sub.Visibility == topology.VisibilityPublic {
			n.Attr("style", "bold")
		}
		graph.Edge(n, graph.Node(sub.Network)).Attr("style", "dashed")
	}

	for _, igw := range topo.InternetGateways() {
		n := nodeIn(igw.Network, igw.Name, igw.Name+"\\n[internet gateway]")
		n.Attr("shape", "hexagon")
		graph.Edge(n, graph.Node(igw.Network)).Attr("style", "dashed")
	}

	for _, nat := range topo.NatGateways() {
		network := ""
		if sub, ok := topo.Subnet(nat.Subnet); ok {
			network = sub.Network
		}
		n := nodeIn(network, nat.Name, nat.Name+"\\n[nat gateway]")
		n.Attr("shape", "hexagon")
		graph.Edge(n, graph.Node(nat.Subnet))
	}

	for _, table := range topo.RouteTables() {
		n := graph.Node(table.Name)
		n.Label(table.Name + "\\n[route table]")
		for _, sub := range table.Subnets {
			graph.Edge(graph.Node(sub), n).Attr("style", "dotted")
		}
		for _, r := range table.Routes {
			e := graph.Edge(n, graph.Node(r.Target.Name))
			e.Label(r.Destination.String())
			if r.Target.Kind == topology.GatewayNat {
				e.Attr("color", "blue")
			}
		}
	}

	for _, tg := range topo.TargetGroups() {
		n := graph.Node(tg.Name)
		n.Label(tg.Name + "\\n[target group :" + strconv.Itoa(tg.Port) + "]")
		n.Attr("shape", "ellipse")
	}

	for _, lb := range topo.LoadBalancers() {
		n := graph.Node(lb.Name)
		n.Label(lb.Name + "\\n[load balancer]")
		for _, sub := range lb.Subnets {
			graph.Edge(n, graph.Node(sub)).Attr("style", "dashed")
		}
		for _, l := range lb.Listeners {
			if l.ForwardTo != "" {
				e := graph.Edge(n, graph.Node(l.ForwardTo))
				e.Label(l.Protocol + " :" + strconv.Itoa(l.Port))
			}
		}
	}

	for _, svc := range topo.Services() {
		n := graph.Node(svc.Name)
		n.Label(svc.Name + "\\n[service]")
		for _, sub := range svc.Subnets {
			graph.Edge(n, graph.Node(sub)).Attr("style", "dashed")
		}
		if svc.TargetGroup != "" {
			graph.Edge(graph.Node(svc.TargetGroup), n)
		}
	}

	return graph
}

// addNetworkNodes adds one node per network, optionally as a cluster that
// will contain the network's subnets and gateways.
func (g *Generator) addNetworkNodes(graph *dot.Graph, topo *topology.Topology) map[string]*dot.Graph {
	containers := make(map[string]*dot.Graph)

	for _, network := range topo.Networks() {
		label := network.Name + "\\n[" + network.CIDR.String() + "]"
		if g.ClusterByNetwork {
			cluster := graph.Subgraph("cluster_"+network.Name, dot.ClusterOption{})
			cluster.Attr("label", network.Name+" ("+network.CIDR.String()+")")
			cluster.Attr("style", "rounded")
			cluster.Attr("bgcolor", "lightyellow")
			containers[network.Name] = cluster

			n := cluster.Node(network.Name)
			n.Label(label)
		} else {
			n := graph.Node(network.Name)
			n.Label(label)
		}
	}

	return containers
}
