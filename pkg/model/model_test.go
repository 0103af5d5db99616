package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mchmarny/cardiorisk/pkg/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testArtifact = "testdata/model.json"
	testMetadata = "testdata/model_metadata.json"
)

func loadTestModel(t *testing.T) *Model {
	t.Helper()
	m, err := Load(testArtifact, testMetadata)
	require.NoError(t, err)
	return m
}

// mutateArtifact decodes the test artifact, applies fn and re-encodes it.
func mutateArtifact(t *testing.T, fn func(a map[string]any)) []byte {
	t.Helper()
	b, err := os.ReadFile(testArtifact)
	require.NoError(t, err)

	var a map[string]any
	require.NoError(t, json.Unmarshal(b, &a))
	fn(a)

	out, err := json.Marshal(a)
	require.NoError(t, err)
	return out
}

func treeArrays(a map[string]any) map[string]any {
	return a["tree"].(map[string]any)
}

func TestLoad(t *testing.T) {
	m := loadTestModel(t)
	assert.Equal(t, testArtifact, m.Name)
	assert.Equal(t, 9, m.Tree.Len())
	assert.Equal(t, 3, m.Tree.Depth())
	assert.Equal(t, 0.7, m.Importance[features.IndexAPHi])

	require.NotNil(t, m.Metadata)
	assert.Equal(t, "DecisionTreeClassifier", m.Metadata.ModelType)
	require.NotNil(t, m.Metadata.Hyperparameters.MaxDepth)
	assert.Equal(t, 5, *m.Metadata.Hyperparameters.MaxDepth)
	assert.Equal(t, "gini", m.Metadata.Hyperparameters.Criterion)
	assert.Equal(t, 70000, m.Metadata.Dataset.TotalRecords)
	assert.Equal(t, 0.7896, m.Metadata.Metrics.ROCAUC)
	assert.Len(t, m.Metadata.FeatureColumns, features.Count)
}

func TestLoad_MissingFiles(t *testing.T) {
	_, err := Load("", testMetadata)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "nope.json"), testMetadata)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(testArtifact, filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseArtifact_NormalizesLeaves(t *testing.T) {
	b, err := os.ReadFile(testArtifact)
	require.NoError(t, err)

	tree, _, err := ParseArtifact(b)
	require.NoError(t, err)

	leaf := tree.Node(2)
	assert.True(t, leaf.IsLeaf())
	assert.InDelta(t, 0.7, leaf.Value[0], 1e-12)
	assert.InDelta(t, 0.3, leaf.Value[1], 1e-12)

	root := tree.Node(0)
	assert.False(t, root.IsLeaf())
	assert.Equal(t, features.IndexAPHi, root.Feature)
}

func TestParseArtifact_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a map[string]any)
	}{
		{"missing tree", func(a map[string]any) { delete(a, "tree") }},
		{"wrong feature order", func(a map[string]any) {
			names := a["feature_names"].([]any)
			names[0], names[1] = names[1], names[0]
		}},
		{"too few features", func(a map[string]any) {
			a["feature_names"] = a["feature_names"].([]any)[:9]
		}},
		{"unexpected classes", func(a map[string]any) { a["classes"] = []int{1, 2} }},
		{"importances do not sum to one", func(a map[string]any) {
			a["feature_importances"] = []float64{0.5, 0, 0, 0, 0, 0, 0, 0, 0, 0}
		}},
		{"negative importance", func(a map[string]any) {
			a["feature_importances"] = []float64{1.1, -0.1, 0, 0, 0, 0, 0, 0, 0, 0}
		}},
		{"array length mismatch", func(a map[string]any) {
			tr := treeArrays(a)
			tr["threshold"] = tr["threshold"].([]any)[:8]
		}},
		{"child points backwards", func(a map[string]any) {
			tr := treeArrays(a)
			tr["children_left"].([]any)[4] = 0
		}},
		{"child out of range", func(a map[string]any) {
			tr := treeArrays(a)
			tr["children_right"].([]any)[0] = 42
		}},
		{"unknown split feature", func(a map[string]any) {
			tr := treeArrays(a)
			tr["feature"].([]any)[0] = 10
		}},
		{"empty leaf distribution", func(a map[string]any) {
			tr := treeArrays(a)
			tr["value"].([]any)[2] = []float64{0, 0}
		}},
		{"three class distribution", func(a map[string]any) {
			tr := treeArrays(a)
			tr["value"].([]any)[2] = []float64{1, 2, 3}
		}},
		{"non-integer child", func(a map[string]any) {
			tr := treeArrays(a)
			tr["children_left"].([]any)[0] = 1.5
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseArtifact(mutateArtifact(t, tt.mutate))
			assert.ErrorIs(t, err, ErrInvalidArtifact)
		})
	}
}

func TestParseArtifact_NotJSON(t *testing.T) {
	_, _, err := ParseArtifact([]byte("not json"))
	assert.ErrorIs(t, err, ErrInvalidArtifact)
}

func TestParseMetadata_Invalid(t *testing.T) {
	_, err := ParseMetadata([]byte(`{"model_type": "DecisionTreeClassifier"}`))
	assert.Error(t, err)

	b, err := os.ReadFile(testMetadata)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	doc["metrics"] = "great"
	b, err = json.Marshal(doc)
	require.NoError(t, err)

	_, err = ParseMetadata(b)
	assert.Error(t, err)
}

func TestNewTree(t *testing.T) {
	_, err := NewTree(nil)
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	tree, err := NewTree([]Node{{Left: -1, Right: -1, Value: [2]float64{3, 1}}})
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Len())
	assert.Equal(t, 0, tree.Depth())
	assert.Equal(t, [2]float64{0.75, 0.25}, tree.Node(0).Value)
}

func TestNewTree_CopiesInput(t *testing.T) {
	nodes := []Node{{Left: -1, Right: -1, Value: [2]float64{1, 1}}}
	tree, err := NewTree(nodes)
	require.NoError(t, err)

	nodes[0].Value = [2]float64{9, 0}
	assert.Equal(t, [2]float64{0.5, 0.5}, tree.Node(0).Value)
}
