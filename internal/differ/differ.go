// Package differ provides semantic comparison of emitted topology documents.
package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/topowire/topowire"
)

// Result contains the difference between two topology documents.
type Result struct {
	Diff    topowire.TopologyDiff `json:"diff"`
	Summary topowire.DiffSummary  `json:"summary"`
}

// entity is one named entry of a document, normalized for comparison.
type entity struct {
	kind  topowire.EntityKind
	props map[string]any
}

// Compare compares two topology documents and returns differences keyed by
// entity kind and name.
func Compare(doc1, doc2 *topowire.Document) (*Result, error) {
	ents1, err := flatten(doc1)
	if err != nil {
		return nil, err
	}
	ents2, err := flatten(doc2)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	for key, e := range ents2 {
		if _, exists := ents1[key]; !exists {
			result.Diff.Added = append(result.Diff.Added, topowire.DiffEntry{
				Entity: key,
				Kind:   e.kind,
			})
		}
	}

	for key, e := range ents1 {
		if _, exists := ents2[key]; !exists {
			result.Diff.Removed = append(result.Diff.Removed, topowire.DiffEntry{
				Entity: key,
				Kind:   e.kind,
			})
		}
	}

	for key, e1 := range ents1 {
		e2, exists := ents2[key]
		if !exists {
			continue
		}
		changes := compareProps("", e1.props, e2.props)
		if len(changes) > 0 {
			result.Diff.Modified = append(result.Diff.Modified, topowire.DiffEntry{
				Entity:  key,
				Kind:    e1.kind,
				Changes: changes,
			})
		}
	}

	sortEntries(result.Diff.Added)
	sortEntries(result.Diff.Removed)
	sortEntries(result.Diff.Modified)

	result.Summary = topowire.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified

	return result, nil
}

// CompareFiles compares two document files.
func CompareFiles(file1, file2 string) (*Result, error) {
	d1, err := LoadDocument(file1)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file1, err)
	}

	d2, err := LoadDocument(file2)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file2, err)
	}

	return Compare(d1, d2)
}

// LoadDocument loads a topology document from a JSON or YAML file.
func LoadDocument(path string) (*topowire.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc topowire.Document

	// Try JSON first
	if err := json.Unmarshal(data, &doc); err != nil {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse as JSON or YAML: %w", err)
		}
	}

	return &doc, nil
}

// flatten indexes every entity of a document as kind/name -> properties.
func flatten(doc *topowire.Document) (map[string]entity, error) {
	out := make(map[string]entity)

	add := func(kind topowire.EntityKind, name string, v any) error {
		props, err := toMap(v)
		if err != nil {
			return err
		}
		delete(props, "name")
		out[string(kind)+"/"+name] = entity{kind: kind, props: props}
		return nil
	}

	for _, e := range doc.Networks {
		if err := add(topowire.KindNetwork, e.Name, e); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.Subnets {
		if err := add(topowire.KindSubnet, e.Name, e); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.RouteTables {
		if err := add(topowire.KindRouteTable, e.Name, e); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.InternetGateways {
		if err := add(topowire.KindInternetGateway, e.Name, e); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.NatGateways {
		if err := add(topowire.KindNatGateway, e.Name, e); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.LoadBalancers {
		if err := add(topowire.KindLoadBalancer, e.Name, e); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.TargetGroups {
		if err := add(topowire.KindTargetGroup, e.Name, e); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.Services {
		if err := add(topowire.KindService, e.Name, e); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// toMap converts a document entry to a generic property map via JSON.
func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// compareProps recursively compares property maps and describes changes.
func compareProps(prefix string, props1, props2 map[string]any) []string {
	var changes []string

	for key, val2 := range props2 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if val1, exists := props1[key]; exists {
			if !reflect.DeepEqual(val1, val2) {
				m1, ok1 := val1.(map[string]any)
				m2, ok2 := val2.(map[string]any)
				if ok1 && ok2 {
					changes = append(changes, compareProps(path, m1, m2)...)
				} else {
					changes = append(changes, fmt.Sprintf("%s modified", path))
				}
			}
		} else {
			changes = append(changes, fmt.Sprintf("%s added", path))
		}
	}

	for key := range props1 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if _, exists := props2[key]; !exists {
			changes = append(changes, fmt.Sprintf("%s removed", path))
		}
	}

	sort.Strings(changes)
	return changes
}

// sortEntries sorts diff entries by entity key.
func sortEntries(entries []topowire.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Entity < entries[j].Entity
	})
}
