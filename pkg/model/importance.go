package model

import (
	"sort"

	"github.com/mchmarny/cardiorisk/pkg/features"
)

// ImportanceEntry is one feature's share of the tree's total impurity
// reduction.
type ImportanceEntry struct {
	Feature    string  `json:"feature" yaml:"feature"`
	Importance float64 `json:"importance" yaml:"importance"`
}

// RankImportance returns the features ordered by descending importance.
// Equal scores keep training column order.
func RankImportance(imp Importance) []*ImportanceEntry {
	idx := make([]int, features.Count)
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return imp[idx[a]] > imp[idx[b]]
	})

	list := make([]*ImportanceEntry, 0, features.Count)
	for _, i := range idx {
		list = append(list, &ImportanceEntry{
			Feature:    features.Names[i],
			Importance: features.Round(imp[i], 4),
		})
	}
	return list
}
