// Package emit converts a validated topology into the normalized document
// shape consumed by the external provisioning tool.
package emit

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/topowire/topowire"
	"github.com/topowire/topowire/internal/topology"
)

// DocumentVersion is the current emission format version.
const DocumentVersion = 1

// FromTopology builds a Document from the declared graph, preserving
// declaration order.
func FromTopology(t *topology.Topology) *topowire.Document {
	doc := &topowire.Document{Version: DocumentVersion}

	for _, n := range t.Networks() {
		doc.Networks = append(doc.Networks, topowire.NetworkDoc{
			Name: n.Name,
			CIDR: n.CIDR.String(),
		})
	}

	for _, s := range t.Subnets() {
		doc.Subnets = append(doc.Subnets, topowire.SubnetDoc{
			Name:       s.Name,
			Network:    s.Network,
			CIDR:       s.CIDR.String(),
			Zone:       s.Zone,
			Visibility: string(s.Visibility),
		})
	}

	for _, tbl := range t.RouteTables() {
		entry := topowire.RouteTableDoc{
			Name:    tbl.Name,
			Subnets: tbl.Subnets,
		}
		for _, r := range tbl.Routes {
			entry.Routes = append(entry.Routes, topowire.RouteDoc{
				Destination: r.Destination.String(),
				Gateway:     r.Target.Name,
			})
		}
		doc.RouteTables = append(doc.RouteTables, entry)
	}

	for _, g := range t.InternetGateways() {
		doc.InternetGateways = append(doc.InternetGateways, topowire.InternetGatewayDoc{
			Name:    g.Name,
			Network: g.Network,
		})
	}

	for _, g := range t.NatGateways() {
		doc.NatGateways = append(doc.NatGateways, topowire.NatGatewayDoc{
			Name:    g.Name,
			Subnet:  g.Subnet,
			Address: g.Address,
		})
	}

	for _, lb := range t.LoadBalancers() {
		entry := topowire.LoadBalancerDoc{
			Name:    lb.Name,
			Subnets: lb.Subnets,
		}
		for _, l := range lb.Listeners {
			entry.Listeners = append(entry.Listeners, topowire.ListenerDoc{
				Port:       l.Port,
				Protocol:   l.Protocol,
				Forward:    l.ForwardTo,
				RedirectTo: l.RedirectTo,
			})
		}
		doc.LoadBalancers = append(doc.LoadBalancers, entry)
	}

	for _, tg := range t.TargetGroups() {
		doc.TargetGroups = append(doc.TargetGroups, topowire.TargetGroupDoc{
			Name:     tg.Name,
			Port:     tg.Port,
			Protocol: tg.Protocol,
			HealthCheck: topowire.HealthCheckDoc{
				Path:             tg.HealthCheck.Path,
				IntervalSeconds:  tg.HealthCheck.IntervalSeconds,
				HealthyThreshold: tg.HealthCheck.HealthyThreshold,
			},
		})
	}

	for _, svc := range t.Services() {
		doc.Services = append(doc.Services, topowire.ServiceDoc{
			Name:           svc.Name,
			Subnets:        svc.Subnets,
			SecurityGroup:  svc.SecurityGroup,
			TargetGroup:    svc.TargetGroup,
			AssignPublicIP: svc.AssignPublicIP,
		})
	}

	return doc
}

// ToJSON serializes the document to indented JSON.
func ToJSON(d *topowire.Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// ToYAML serializes the document to YAML.
func ToYAML(d *topowire.Document) ([]byte, error) {
	return yaml.Marshal(d)
}
