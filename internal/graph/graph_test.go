package graph

import (
	"strings"
	"testing"

	"github.com/topowire/topowire/internal/topology"
)

func simpleTopology(t *testing.T) *topology.Topology {
	t.Helper()
	topo := topology.New()
	if _, err := topo.AddNetwork("core", "10.0.0.0/16"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := topo.AddSubnet("core", "public-a", "10.0.1.0/24", "us-east-1a", topology.VisibilityPublic); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := topo.AddSubnet("core", "public-b", "10.0.2.0/24", "us-east-1b", topology.VisibilityPublic); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := topo.AttachInternetGateway("igw", "core"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := topo.AddRouteTable("public", "public-a", "public-b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := topo.AddRoute("public", "0.0.0.0/0", "igw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return topo
}

func TestGenerator_Generate_SimpleGraph(t *testing.T) {
	gen := &Generator{}
	output, err := gen.GenerateString(simpleTopology(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should be a digraph
	if !strings.Contains(output, "digraph") {
		t.Error("expected digraph declaration")
	}

	// Should have nodes for the declared entities
	for _, name := range []string{"core", "public-a", "public-b", "igw", "public"} {
		if !strings.Contains(output, name) {
			t.Errorf("expected %s node", name)
		}
	}

	// Route edge carries the destination label
	if !strings.Contains(output, "0.0.0.0/0") {
		t.Error("expected route destination label")
	}
}

func TestGenerator_Generate_Mermaid(t *testing.T) {
	gen := &Generator{Format: FormatMermaid}
	output, err := gen.GenerateString(simpleTopology(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(output, "digraph") {
		t.Error("mermaid output should not contain DOT syntax")
	}
	if !strings.Contains(output, "public-a") {
		t.Error("expected public-a node")
	}
}

func TestGenerator_Generate_ClusterByNetwork(t *testing.T) {
	gen := &Generator{ClusterByNetwork: true}
	output, err := gen.GenerateString(simpleTopology(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "cluster_core") {
		t.Error("expected cluster for network core")
	}
	if !strings.Contains(output, "lightyellow") {
		t.Error("expected cluster background attribute")
	}
}

func TestGenerator_Generate_ServiceAndBalancerEdges(t *testing.T) {
	topo := simpleTopology(t)
	if _, err := topo.AddTargetGroup("web", 8080, "HTTP", topology.HealthCheck{Path: "/", IntervalSeconds: 30, HealthyThreshold: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := topo.BuildLoadBalancer("edge", []string{"public-a", "public-b"}, []topology.Listener{
		{Port: 443, Protocol: "HTTPS", ForwardTo: "web"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := topo.PlaceService("api", []string{"public-a"}, "sg-api", "web", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gen := &Generator{}
	output, err := gen.GenerateString(topo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "HTTPS :443") {
		t.Error("expected listener edge label")
	}
	if !strings.Contains(output, "target group :8080") {
		t.Error("expected target group label")
	}
	if !strings.Contains(output, "api") {
		t.Error("expected service node")
	}
}
