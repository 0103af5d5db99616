package features

import (
	"testing"

	"github.com/mchmarny/cardiorisk/pkg/input"
	"github.com/stretchr/testify/assert"
)

func TestBMI(t *testing.T) {
	assert.Equal(t, 24.22, BMI(170, 70))
	assert.Equal(t, 25.0, BMI(200, 100))
	assert.Equal(t, 30.86, BMI(180, 100))
	// 78.125 and 28.125 are exact binary ties
	assert.Equal(t, 78.12, BMI(128, 128))
	assert.Equal(t, 28.12, BMI(120, 40.5))
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   float64
	}{
		{1.23456, 2, 1.23},
		{1.235001, 2, 1.24},
		{0.5, 0, 0},
		{1.5, 0, 2},
		{-1.25, 1, -1.2},
		{0.125, 2, 0.12},
		{1.0 / 16 * 100, 1, 6.2},
		{6.35, 1, 6.3},
		{0.123456, 4, 0.1235},
		{64.28571, 1, 64.3},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Round(tt.v, tt.places), 1e-12)
	}
}

func TestBuild(t *testing.T) {
	in := input.Input{
		Age:         50,
		Gender:      1,
		Height:      170,
		Weight:      70,
		APHi:        130,
		APLo:        85,
		Cholesterol: 2,
		Gluc:        3,
		Smoke:       1,
		Alco:        0,
		Active:      1,
	}

	v, bmi := Build(in)
	assert.Equal(t, 24.22, bmi)
	assert.Equal(t, Vector{50, 1, 24.22, 130, 85, 2, 3, 1, 0, 1}, v)
	assert.Equal(t, bmi, v[IndexBMI])
}

func TestNames(t *testing.T) {
	assert.Len(t, Names, Count)
	assert.Equal(t, "AgeinYr", Names[IndexAge])
	assert.Equal(t, "BMI", Names[IndexBMI])
	assert.Equal(t, "active", Names[IndexActive])
}
