package model

import (
	"github.com/mchmarny/cardiorisk/pkg/features"
)

const (
	DirectionLeft  = "<="
	DirectionRight = ">"
)

// PathEntry is one split rule applied on the way from the root to the leaf.
type PathEntry struct {
	Feature   string  `json:"feature" yaml:"feature"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Value     float64 `json:"value" yaml:"value"`
	Direction string  `json:"direction" yaml:"direction"`
}

// Explain returns the split rules the vector triggers, root first. The leaf
// itself contributes no entry, so a single-leaf tree yields an empty list.
func Explain(t *Tree, v features.Vector) []*PathEntry {
	rules := make([]*PathEntry, 0)

	i := 0
	for {
		n := &t.nodes[i]
		if n.IsLeaf() {
			return rules
		}

		val := v[n.Feature]
		dir := DirectionRight
		next := n.Right
		if val <= n.Threshold {
			dir = DirectionLeft
			next = n.Left
		}

		rules = append(rules, &PathEntry{
			Feature:   features.Names[n.Feature],
			Threshold: features.Round(n.Threshold, 2),
			Value:     features.Round(val, 2),
			Direction: dir,
		})
		i = next
	}
}
