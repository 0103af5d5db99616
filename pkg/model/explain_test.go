package model

import (
	"testing"

	"github.com/mchmarny/cardiorisk/pkg/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplain(t *testing.T) {
	m := loadTestModel(t)

	rules := Explain(m.Tree, vector(40, 30.5, 140, 2))
	require.Len(t, rules, 3)
	assert.Equal(t, PathEntry{"ap_hi", 129.5, 140, DirectionRight}, *rules[0])
	assert.Equal(t, PathEntry{"cholesterol", 2.5, 2, DirectionLeft}, *rules[1])
	assert.Equal(t, PathEntry{"BMI", 27.35, 30.5, DirectionRight}, *rules[2])
}

func TestExplain_ShallowLeaf(t *testing.T) {
	m := loadTestModel(t)

	rules := Explain(m.Tree, vector(50, 24.22, 120, 1))
	require.Len(t, rules, 2)
	assert.Equal(t, "ap_hi", rules[0].Feature)
	assert.Equal(t, "AgeinYr", rules[1].Feature)
	assert.Equal(t, 54.5, rules[1].Threshold)
	assert.Equal(t, 50.0, rules[1].Value)
	assert.Equal(t, DirectionLeft, rules[1].Direction)
}

func TestExplain_SingleLeaf(t *testing.T) {
	tree, err := NewTree([]Node{{Left: -1, Right: -1, Value: [2]float64{1, 3}}})
	require.NoError(t, err)

	rules := Explain(tree, features.Vector{})
	assert.NotNil(t, rules)
	assert.Empty(t, rules)
}

func TestExplain_DirectionMatchesComparison(t *testing.T) {
	m := loadTestModel(t)

	for _, apHi := range []float64{90, 129, 129.5, 130, 250} {
		for _, age := range []float64{1, 54, 55, 120} {
			for _, bmi := range []float64{15, 27.34, 27.35, 45} {
				for _, chol := range []float64{1, 2, 3} {
					v := vector(age, bmi, apHi, chol)
					rules := Explain(m.Tree, v)
					require.NotEmpty(t, rules)

					for _, r := range rules {
						idx := featureIndex(t, r.Feature)
						node := findSplit(t, m.Tree, idx)
						if v[idx] <= node.Threshold {
							assert.Equal(t, DirectionLeft, r.Direction)
						} else {
							assert.Equal(t, DirectionRight, r.Direction)
						}
					}

					// the path ends where the predictor ends
					assert.Len(t, rules, pathLength(m.Tree, v))
				}
			}
		}
	}
}

func featureIndex(t *testing.T, name string) int {
	t.Helper()
	for i, n := range features.Names {
		if n == name {
			return i
		}
	}
	t.Fatalf("unknown feature %s", name)
	return -1
}

// findSplit returns the single split on feature idx in the test tree.
func findSplit(t *testing.T, tree *Tree, idx int) Node {
	t.Helper()
	for i := 0; i < tree.Len(); i++ {
		n := tree.Node(i)
		if !n.IsLeaf() && n.Feature == idx {
			return n
		}
	}
	t.Fatalf("no split on feature %d", idx)
	return Node{}
}

func pathLength(tree *Tree, v features.Vector) int {
	leaf := Leaf(tree, v)
	depth := 0
	for i := leaf; i != 0; depth++ {
		for p := 0; p < tree.Len(); p++ {
			n := tree.Node(p)
			if !n.IsLeaf() && (n.Left == i || n.Right == i) {
				i = p
				break
			}
		}
	}
	return depth
}
