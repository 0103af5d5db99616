package model

import (
	"github.com/mchmarny/cardiorisk/pkg/features"
)

const (
	ClassNoRisk = 0
	ClassRisk   = 1

	LabelLowRisk  = "LOW RISK"
	LabelHighRisk = "HIGH RISK"
)

// Prediction is the outcome of scoring one feature vector.
type Prediction struct {
	Class            int     `json:"prediction" yaml:"prediction"`
	Label            string  `json:"label" yaml:"label"`
	ProbabilityNoCVD float64 `json:"probability_no_cvd" yaml:"probabilityNoCvd"`
	ProbabilityCVD   float64 `json:"probability_cvd" yaml:"probabilityCvd"`
}

// Leaf walks the tree from the root and returns the index of the leaf the
// vector lands in.
func Leaf(t *Tree, v features.Vector) int {
	i := 0
	for {
		n := &t.nodes[i]
		if n.IsLeaf() {
			return i
		}
		if v[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Predict scores the vector. The class is the most probable one at the leaf;
// on an exact tie the lower class index wins, matching the argmax used by the
// library that trained the tree.
func Predict(t *Tree, v features.Vector) *Prediction {
	dist := t.nodes[Leaf(t, v)].Value

	class := ClassNoRisk
	if dist[ClassRisk] > dist[ClassNoRisk] {
		class = ClassRisk
	}

	label := LabelLowRisk
	if class == ClassRisk {
		label = LabelHighRisk
	}

	return &Prediction{
		Class:            class,
		Label:            label,
		ProbabilityNoCVD: features.Round(dist[ClassNoRisk]*100, 1),
		ProbabilityCVD:   features.Round(dist[ClassRisk]*100, 1),
	}
}
