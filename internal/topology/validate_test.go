package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topowire/topowire"
)

func collect(t *Topology) []topowire.Violation {
	var out []topowire.Violation
	for v := range t.Validate() {
		out = append(out, v)
	}
	return out
}

// twoZoneTopology declares the canonical two-zone layout: a /16 network with
// public and private subnets in two zones, internet and NAT egress, a load
// balancer, and one service behind it.
func twoZoneTopology(t *testing.T) *Topology {
	t.Helper()
	topo := New()

	_, err := topo.AddNetwork("core", "10.0.0.0/16")
	require.NoError(t, err)
	_, err = topo.AddSubnet("core", "public-a", "10.0.1.0/24", "us-east-1a", VisibilityPublic)
	require.NoError(t, err)
	_, err = topo.AddSubnet("core", "public-b", "10.0.2.0/24", "us-east-1b", VisibilityPublic)
	require.NoError(t, err)
	_, err = topo.AddSubnet("core", "app-a", "10.0.10.0/24", "us-east-1a", VisibilityPrivate)
	require.NoError(t, err)
	_, err = topo.AddSubnet("core", "app-b", "10.0.11.0/24", "us-east-1b", VisibilityPrivate)
	require.NoError(t, err)

	_, err = topo.AttachInternetGateway("igw", "core")
	require.NoError(t, err)
	_, err = topo.AttachNatGateway("nat-a", "public-a", "auto")
	require.NoError(t, err)
	_, err = topo.AttachNatGateway("nat-b", "public-b", "auto")
	require.NoError(t, err)

	_, err = topo.AddRouteTable("public", "public-a", "public-b")
	require.NoError(t, err)
	require.NoError(t, topo.AddRoute("public", "0.0.0.0/0", "igw"))
	_, err = topo.AddRouteTable("app-a", "app-a")
	require.NoError(t, err)
	require.NoError(t, topo.AddRoute("app-a", "0.0.0.0/0", "nat-a"))
	_, err = topo.AddRouteTable("app-b", "app-b")
	require.NoError(t, err)
	require.NoError(t, topo.AddRoute("app-b", "0.0.0.0/0", "nat-b"))

	_, err = topo.AddTargetGroup("web", 8080, "HTTP", HealthCheck{Path: "/healthz", IntervalSeconds: 30, HealthyThreshold: 3})
	require.NoError(t, err)
	_, err = topo.BuildLoadBalancer("edge", []string{"public-a", "public-b"}, []Listener{
		{Port: 443, Protocol: "HTTPS", ForwardTo: "web"},
		{Port: 80, Protocol: "HTTP", RedirectTo: 443},
	})
	require.NoError(t, err)
	_, err = topo.PlaceService("api", []string{"app-a", "app-b"}, "sg-api", "web", false)
	require.NoError(t, err)

	return topo
}

func TestValidateCleanTopology(t *testing.T) {
	topo := twoZoneTopology(t)
	assert.Empty(t, collect(topo))
}

func TestValidateSubnetWithoutRouteTable(t *testing.T) {
	topo := New()
	_, err := topo.AddNetwork("core", "10.0.0.0/16")
	require.NoError(t, err)
	_, err = topo.AddSubnet("core", "public-a", "10.0.1.0/24", "us-east-1a", VisibilityPublic)
	require.NoError(t, err)

	violations := collect(topo)
	require.Len(t, violations, 1)
	assert.Equal(t, topowire.CodeNetworkReachability, violations[0].Code)
	assert.Equal(t, topowire.KindSubnet, violations[0].Kind)
	assert.Equal(t, "public-a", violations[0].Entity)
	assert.Equal(t, "subnet has no route table", violations[0].Message)
}

func TestValidateRouteTableSpansNetworks(t *testing.T) {
	topo := twoZoneTopology(t)
	_, err := topo.AddNetwork("edge", "172.16.0.0/16")
	require.NoError(t, err)
	_, err = topo.AddSubnet("edge", "edge-a", "172.16.1.0/24", "us-east-1a", VisibilityPublic)
	require.NoError(t, err)
	_, err = topo.AddSubnet("edge", "edge-b", "172.16.2.0/24", "us-east-1b", VisibilityPublic)
	require.NoError(t, err)
	_, err = topo.AddRouteTable("mixed", "edge-a", "edge-b")
	require.NoError(t, err)
	require.NoError(t, topo.AddRoute("mixed", "0.0.0.0/0", "igw"))

	var got []topowire.Violation
	for v := range topo.Validate() {
		if v.Kind == topowire.KindRouteTable {
			got = append(got, v)
		}
	}
	require.Len(t, got, 1)
	assert.Equal(t, topowire.CodeDanglingReference, got[0].Code)
	assert.Equal(t, "mixed", got[0].Entity)
	assert.Contains(t, got[0].Message, `gateway "igw" in network "core"`)
}

func TestValidateNatRedundancy(t *testing.T) {
	topo := New()
	_, err := topo.AddNetwork("core", "10.0.0.0/16")
	require.NoError(t, err)
	_, err = topo.AddSubnet("core", "public-a", "10.0.1.0/24", "us-east-1a", VisibilityPublic)
	require.NoError(t, err)
	_, err = topo.AddSubnet("core", "app-a", "10.0.10.0/24", "us-east-1a", VisibilityPrivate)
	require.NoError(t, err)
	_, err = topo.AddSubnet("core", "app-b", "10.0.11.0/24", "us-east-1b", VisibilityPrivate)
	require.NoError(t, err)
	_, err = topo.AttachInternetGateway("igw", "core")
	require.NoError(t, err)
	_, err = topo.AttachNatGateway("nat-a", "public-a", "auto")
	require.NoError(t, err)

	_, err = topo.AddRouteTable("public", "public-a")
	require.NoError(t, err)
	require.NoError(t, topo.AddRoute("public", "0.0.0.0/0", "igw"))
	_, err = topo.AddRouteTable("app", "app-a", "app-b")
	require.NoError(t, err)
	require.NoError(t, topo.AddRoute("app", "0.0.0.0/0", "nat-a"))

	var got []topowire.Violation
	for v := range topo.Validate() {
		if v.Kind == topowire.KindNetwork {
			got = append(got, v)
		}
	}
	require.Len(t, got, 1)
	assert.Equal(t, topowire.CodeNetworkReachability, got[0].Code)
	assert.Equal(t, "core", got[0].Entity)
	assert.Contains(t, got[0].Message, "2 private subnets route through NAT but only 1 public subnets host a NAT gateway")
}

func TestValidateTargetGroupReferences(t *testing.T) {
	topo := twoZoneTopology(t)

	// Orphaned group.
	_, err := topo.AddTargetGroup("orphan", 9090, "HTTP", HealthCheck{Path: "/", IntervalSeconds: 30, HealthyThreshold: 3})
	require.NoError(t, err)

	violations := collect(topo)
	require.Len(t, violations, 1)
	assert.Equal(t, topowire.CodeDanglingReference, violations[0].Code)
	assert.Equal(t, topowire.KindTargetGroup, violations[0].Kind)
	assert.Equal(t, "orphan", violations[0].Entity)
	assert.Equal(t, "not referenced by any service", violations[0].Message)

	// Doubly attached group.
	_, err = topo.PlaceService("api2", []string{"app-a"}, "sg-api", "web", false)
	require.NoError(t, err)

	var doubled []topowire.Violation
	for v := range topo.Validate() {
		if v.Entity == "web" {
			doubled = append(doubled, v)
		}
	}
	require.Len(t, doubled, 1)
	assert.Contains(t, doubled[0].Message, "referenced by 2 services, exactly one expected")
}

func TestValidateIsLazy(t *testing.T) {
	topo := New()
	_, err := topo.AddNetwork("core", "10.0.0.0/16")
	require.NoError(t, err)
	// Three subnets, none attached to a route table: three violations available.
	for _, sub := range []struct{ name, cidr string }{
		{"a", "10.0.1.0/24"}, {"b", "10.0.2.0/24"}, {"c", "10.0.3.0/24"},
	} {
		_, err = topo.AddSubnet("core", sub.name, sub.cidr, "us-east-1a", VisibilityPublic)
		require.NoError(t, err)
	}

	seen := 0
	for range topo.Validate() {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
	assert.Len(t, collect(topo), 3)
}
