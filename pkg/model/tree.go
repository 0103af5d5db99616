package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mchmarny/cardiorisk/pkg/features"
)

const (
	classCount      = 2
	importanceDelta = 1e-3
)

// ErrInvalidArtifact is returned when a tree artifact fails schema or
// structural checks.
var ErrInvalidArtifact = errors.New("invalid model artifact")

// Node is one entry of the tree arena. Feature and Threshold are only
// meaningful on internal nodes, Value only on leaves.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     [classCount]float64
}

// IsLeaf reports whether the node has no split.
func (n *Node) IsLeaf() bool {
	return n.Left == n.Right
}

// Tree is an immutable decision tree rooted at node 0. Children always have a
// larger index than their parent.
type Tree struct {
	nodes []Node
}

// Importance holds the global per-feature importance, in feature order.
type Importance [features.Count]float64

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node at index i.
func (t *Tree) Node(i int) Node {
	return t.nodes[i]
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	depth := make([]int, len(t.nodes))
	deepest := 0
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.IsLeaf() {
			if depth[i] > deepest {
				deepest = depth[i]
			}
			continue
		}
		depth[n.Left] = depth[i] + 1
		depth[n.Right] = depth[i] + 1
	}
	return deepest
}

// NewTree builds a tree from an arena of nodes after checking that it is a
// well formed, acyclic binary tree over the known features.
func NewTree(nodes []Node) (*Tree, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: tree has no nodes", ErrInvalidArtifact)
	}

	arena := make([]Node, len(nodes))
	copy(arena, nodes)

	for i := range arena {
		n := &arena[i]
		if n.IsLeaf() {
			sum := n.Value[0] + n.Value[1]
			if n.Value[0] < 0 || n.Value[1] < 0 || sum <= 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
				return nil, fmt.Errorf("%w: leaf %d has invalid class distribution %v", ErrInvalidArtifact, i, n.Value)
			}
			n.Value[0] /= sum
			n.Value[1] /= sum
			continue
		}

		if n.Feature < 0 || n.Feature >= features.Count {
			return nil, fmt.Errorf("%w: node %d splits on unknown feature %d", ErrInvalidArtifact, i, n.Feature)
		}
		if math.IsNaN(n.Threshold) {
			return nil, fmt.Errorf("%w: node %d has NaN threshold", ErrInvalidArtifact, i)
		}
		for _, c := range []int{n.Left, n.Right} {
			if c <= i || c >= len(arena) {
				return nil, fmt.Errorf("%w: node %d has invalid child %d", ErrInvalidArtifact, i, c)
			}
		}
	}

	return &Tree{nodes: arena}, nil
}

// artifact is the JSON export of a fitted tree: the per-node arrays are
// indexed in lockstep by node id.
type artifact struct {
	ModelType          string         `json:"model_type"`
	FeatureNames       []string       `json:"feature_names"`
	Classes            []int          `json:"classes"`
	Tree               artifactArrays `json:"tree"`
	FeatureImportances []float64      `json:"feature_importances"`
}

type artifactArrays struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// ParseArtifact validates a JSON tree artifact and converts it into a tree
// and its global feature importance.
func ParseArtifact(b []byte) (*Tree, Importance, error) {
	var imp Importance

	if errs := validateDocument(artifactSchema, b); len(errs) > 0 {
		return nil, imp, fmt.Errorf("%w: %s", ErrInvalidArtifact, strings.Join(errs, "; "))
	}

	var a artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, imp, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}

	if len(a.FeatureNames) != features.Count {
		return nil, imp, fmt.Errorf("%w: expected %d features, got %d", ErrInvalidArtifact, features.Count, len(a.FeatureNames))
	}
	for i, name := range a.FeatureNames {
		if name != features.Names[i] {
			return nil, imp, fmt.Errorf("%w: feature %d is %q, expected %q", ErrInvalidArtifact, i, name, features.Names[i])
		}
	}

	if a.Classes[0] != 0 || a.Classes[1] != 1 {
		return nil, imp, fmt.Errorf("%w: expected classes [0 1], got %v", ErrInvalidArtifact, a.Classes)
	}

	if len(a.FeatureImportances) != features.Count {
		return nil, imp, fmt.Errorf("%w: expected %d importances, got %d", ErrInvalidArtifact, features.Count, len(a.FeatureImportances))
	}
	sum := 0.0
	for i, v := range a.FeatureImportances {
		imp[i] = v
		sum += v
	}
	if math.Abs(sum-1) > importanceDelta {
		return nil, imp, fmt.Errorf("%w: importances sum to %f", ErrInvalidArtifact, sum)
	}

	arr := a.Tree
	n := len(arr.ChildrenLeft)
	if len(arr.ChildrenRight) != n || len(arr.Feature) != n || len(arr.Threshold) != n || len(arr.Value) != n {
		return nil, imp, fmt.Errorf("%w: tree arrays differ in length", ErrInvalidArtifact)
	}

	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = Node{
			Feature:   arr.Feature[i],
			Threshold: arr.Threshold[i],
			Left:      arr.ChildrenLeft[i],
			Right:     arr.ChildrenRight[i],
			Value:     [classCount]float64{arr.Value[i][0], arr.Value[i][1]},
		}
	}

	t, err := NewTree(nodes)
	if err != nil {
		return nil, imp, err
	}
	return t, imp, nil
}
