package differ

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topowire/topowire"
)

func baseDocument() *topowire.Document {
	return &topowire.Document{
		Version: 1,
		Networks: []topowire.NetworkDoc{
			{Name: "core", CIDR: "10.0.0.0/16"},
		},
		Subnets: []topowire.SubnetDoc{
			{Name: "public-a", Network: "core", CIDR: "10.0.1.0/24", Zone: "us-east-1a", Visibility: "public"},
		},
		TargetGroups: []topowire.TargetGroupDoc{
			{Name: "web", Port: 8080, Protocol: "HTTP", HealthCheck: topowire.HealthCheckDoc{
				Path: "/healthz", IntervalSeconds: 30, HealthyThreshold: 3,
			}},
		},
	}
}

func TestCompareIdentical(t *testing.T) {
	result, err := Compare(baseDocument(), baseDocument())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Summary.Total)
	assert.Empty(t, result.Diff.Added)
	assert.Empty(t, result.Diff.Removed)
	assert.Empty(t, result.Diff.Modified)
}

func TestCompareAddedAndRemoved(t *testing.T) {
	doc2 := baseDocument()
	doc2.Subnets = append(doc2.Subnets, topowire.SubnetDoc{
		Name: "public-b", Network: "core", CIDR: "10.0.2.0/24", Zone: "us-east-1b", Visibility: "public",
	})
	doc2.TargetGroups = nil

	result, err := Compare(baseDocument(), doc2)
	require.NoError(t, err)

	require.Len(t, result.Diff.Added, 1)
	assert.Equal(t, "subnet/public-b", result.Diff.Added[0].Entity)
	assert.Equal(t, topowire.KindSubnet, result.Diff.Added[0].Kind)

	require.Len(t, result.Diff.Removed, 1)
	assert.Equal(t, "target_group/web", result.Diff.Removed[0].Entity)

	assert.Equal(t, topowire.DiffSummary{Added: 1, Removed: 1, Modified: 0, Total: 2}, result.Summary)
}

func TestCompareModified(t *testing.T) {
	doc2 := baseDocument()
	doc2.Subnets[0].Visibility = "private"
	doc2.Subnets[0].Zone = "us-east-1b"

	result, err := Compare(baseDocument(), doc2)
	require.NoError(t, err)

	require.Len(t, result.Diff.Modified, 1)
	entry := result.Diff.Modified[0]
	assert.Equal(t, "subnet/public-a", entry.Entity)
	assert.Equal(t, []string{"visibility modified", "zone modified"}, entry.Changes)
}

func TestCompareNestedChange(t *testing.T) {
	doc2 := baseDocument()
	doc2.TargetGroups[0].HealthCheck.IntervalSeconds = 10

	result, err := Compare(baseDocument(), doc2)
	require.NoError(t, err)

	require.Len(t, result.Diff.Modified, 1)
	assert.Equal(t, "target_group/web", result.Diff.Modified[0].Entity)
	assert.Equal(t, []string{"health_check.interval_seconds modified"}, result.Diff.Modified[0].Changes)
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()

	jsonDoc := `{"version": 1, "networks": [{"name": "core", "cidr": "10.0.0.0/16"}]}`
	yamlDoc := "version: 1\nnetworks:\n  - name: core\n    cidr: 10.1.0.0/16\n"

	jsonPath := filepath.Join(dir, "before.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonDoc), 0644))
	yamlPath := filepath.Join(dir, "after.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlDoc), 0644))

	result, err := CompareFiles(jsonPath, yamlPath)
	require.NoError(t, err)

	require.Len(t, result.Diff.Modified, 1)
	assert.Equal(t, "network/core", result.Diff.Modified[0].Entity)
	assert.Equal(t, []string{"cidr modified"}, result.Diff.Modified[0].Changes)
}

func TestCompareFilesMissing(t *testing.T) {
	_, err := CompareFiles("does-not-exist.json", "also-missing.json")
	assert.ErrorContains(t, err, "failed to load does-not-exist.json")
}

func TestLoadDocumentRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{{"), 0644))

	_, err := LoadDocument(path)
	assert.ErrorContains(t, err, "failed to parse as JSON or YAML")
}
