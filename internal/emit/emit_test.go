package emit

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topowire/topowire"
	"github.com/topowire/topowire/internal/topology"
)

func sampleTopology(t *testing.T) *topology.Topology {
	t.Helper()
	topo := topology.New()
	_, err := topo.AddNetwork("core", "10.0.0.0/16")
	require.NoError(t, err)
	_, err = topo.AddSubnet("core", "public-a", "10.0.1.0/24", "us-east-1a", topology.VisibilityPublic)
	require.NoError(t, err)
	_, err = topo.AddSubnet("core", "public-b", "10.0.2.0/24", "us-east-1b", topology.VisibilityPublic)
	require.NoError(t, err)
	_, err = topo.AttachInternetGateway("igw", "core")
	require.NoError(t, err)
	_, err = topo.AddRouteTable("public", "public-a", "public-b")
	require.NoError(t, err)
	require.NoError(t, topo.AddRoute("public", "0.0.0.0/0", "igw"))
	_, err = topo.AddTargetGroup("web", 8080, "HTTP", topology.HealthCheck{
		Path: "/healthz", IntervalSeconds: 30, HealthyThreshold: 3,
	})
	require.NoError(t, err)
	_, err = topo.BuildLoadBalancer("edge", []string{"public-a", "public-b"}, []topology.Listener{
		{Port: 443, Protocol: "HTTPS", ForwardTo: "web"},
	})
	require.NoError(t, err)
	_, err = topo.PlaceService("api", []string{"public-a"}, "sg-api", "web", true)
	require.NoError(t, err)
	return topo
}

func TestFromTopology(t *testing.T) {
	doc := FromTopology(sampleTopology(t))

	assert.Equal(t, DocumentVersion, doc.Version)

	require.Len(t, doc.Networks, 1)
	assert.Equal(t, "core", doc.Networks[0].Name)
	assert.Equal(t, "10.0.0.0/16", doc.Networks[0].CIDR)

	require.Len(t, doc.Subnets, 2)
	assert.Equal(t, "public-a", doc.Subnets[0].Name)
	assert.Equal(t, "public", doc.Subnets[0].Visibility)

	require.Len(t, doc.RouteTables, 1)
	require.Len(t, doc.RouteTables[0].Routes, 1)
	assert.Equal(t, "0.0.0.0/0", doc.RouteTables[0].Routes[0].Destination)
	assert.Equal(t, "igw", doc.RouteTables[0].Routes[0].Gateway)

	require.Len(t, doc.LoadBalancers, 1)
	require.Len(t, doc.LoadBalancers[0].Listeners, 1)
	assert.Equal(t, "web", doc.LoadBalancers[0].Listeners[0].Forward)

	require.Len(t, doc.TargetGroups, 1)
	assert.Equal(t, "/healthz", doc.TargetGroups[0].HealthCheck.Path)

	require.Len(t, doc.Services, 1)
	assert.True(t, doc.Services[0].AssignPublicIP)
}

func TestFromTopologyPreservesDeclarationOrder(t *testing.T) {
	topo := topology.New()
	_, err := topo.AddNetwork("zulu", "10.0.0.0/16")
	require.NoError(t, err)
	_, err = topo.AddNetwork("alpha", "10.1.0.0/16")
	require.NoError(t, err)

	doc := FromTopology(topo)
	require.Len(t, doc.Networks, 2)
	assert.Equal(t, "zulu", doc.Networks[0].Name)
	assert.Equal(t, "alpha", doc.Networks[1].Name)
}

func TestToJSON(t *testing.T) {
	data, err := ToJSON(FromTopology(sampleTopology(t)))
	require.NoError(t, err)

	var doc topowire.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, DocumentVersion, doc.Version)
	assert.True(t, strings.HasPrefix(string(data), "{\n  "), "output is indented")
}

func TestToYAML(t *testing.T) {
	data, err := ToYAML(FromTopology(sampleTopology(t)))
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "version: 1")
	assert.Contains(t, out, "name: core")
	assert.Contains(t, out, "cidr: 10.0.0.0/16")
}
