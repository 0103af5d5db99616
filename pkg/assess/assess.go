// Package assess runs the full scoring pipeline for one submission:
// validation, feature assembly, prediction, importance ranking and decision
// path extraction.
package assess

import (
	"context"
	"errors"
	"fmt"

	"github.com/mchmarny/cardiorisk/pkg/features"
	"github.com/mchmarny/cardiorisk/pkg/input"
	"github.com/mchmarny/cardiorisk/pkg/model"
	"golang.org/x/sync/errgroup"
)

var ErrModelNotLoaded = errors.New("model not loaded")

// Assessment is the response for one submission. When Errors is not empty
// the input was rejected and no other field is set.
type Assessment struct {
	Errors     []string                 `json:"errors,omitempty" yaml:"errors,omitempty"`
	Input      *input.Input             `json:"input,omitempty" yaml:"input,omitempty"`
	Prediction *model.Prediction        `json:"prediction,omitempty" yaml:"prediction,omitempty"`
	BMI        float64                  `json:"bmi,omitempty" yaml:"bmi,omitempty"`
	Importance []*model.ImportanceEntry `json:"feature_importance,omitempty" yaml:"featureImportance,omitempty"`
	Path       []*model.PathEntry       `json:"decision_path,omitempty" yaml:"decisionPath,omitempty"`
}

// Valid reports whether the submission passed validation.
func (a *Assessment) Valid() bool {
	return len(a.Errors) == 0
}

// Assess validates raw and, when it is accepted, scores and explains it
// against m. Validation failures are returned in the Assessment, not as an
// error.
func Assess(ctx context.Context, m *model.Model, raw input.RawInput) (*Assessment, error) {
	if m == nil || m.Tree == nil {
		return nil, ErrModelNotLoaded
	}

	in, errs := input.Parse(raw)
	if len(errs) > 0 {
		return &Assessment{Errors: errs}, nil
	}

	v, bmi := features.Build(in)
	a := &Assessment{
		Input: &in,
		BMI:   bmi,
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Prediction = model.Predict(m.Tree, v)
		return nil
	})
	g.Go(func() error {
		a.Importance = model.RankImportance(m.Importance)
		return nil
	})
	g.Go(func() error {
		a.Path = model.Explain(m.Tree, v)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error assessing input: %w", err)
	}

	return a, nil
}
