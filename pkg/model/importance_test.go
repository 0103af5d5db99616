package model

import (
	"testing"

	"github.com/mchmarny/cardiorisk/pkg/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankImportance(t *testing.T) {
	m := loadTestModel(t)

	list := RankImportance(m.Importance)
	require.Len(t, list, features.Count)

	names := make([]string, 0, len(list))
	sum := 0.0
	for i, e := range list {
		names = append(names, e.Feature)
		sum += e.Importance
		if i > 0 {
			assert.GreaterOrEqual(t, list[i-1].Importance, e.Importance)
		}
	}

	assert.InDelta(t, 1.0, sum, 1e-3)
	assert.Equal(t, []string{
		"ap_hi", "AgeinYr", "cholesterol", "BMI",
		"gender", "ap_lo", "gluc", "smoke", "alco", "active",
	}, names)
}

func TestRankImportance_StableTies(t *testing.T) {
	var imp Importance
	for i := range imp {
		imp[i] = 0.1
	}

	list := RankImportance(imp)
	for i, e := range list {
		assert.Equal(t, features.Names[i], e.Feature)
		assert.Equal(t, 0.1, e.Importance)
	}
}

func TestRankImportance_RoundsToFourPlaces(t *testing.T) {
	imp := Importance{0.123456, 0.876544}

	list := RankImportance(imp)
	assert.Equal(t, "gender", list[0].Feature)
	assert.Equal(t, 0.8765, list[0].Importance)
	assert.Equal(t, 0.1235, list[1].Importance)
}

func TestRankImportance_Deterministic(t *testing.T) {
	m := loadTestModel(t)
	assert.Equal(t, RankImportance(m.Importance), RankImportance(m.Importance))
}
