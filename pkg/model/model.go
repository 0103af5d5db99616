package model

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	ArtifactFileName = "model.json"
	MetadataFileName = "model_metadata.json"
)

// Metadata describes how the model was trained. It is informational only.
type Metadata struct {
	ModelType          string             `json:"model_type" yaml:"modelType"`
	Hyperparameters    Hyperparameters    `json:"hyperparameters" yaml:"hyperparameters"`
	FeatureColumns     []string           `json:"feature_columns" yaml:"featureColumns"`
	Metrics            Metrics            `json:"metrics" yaml:"metrics"`
	FeatureImportances map[string]float64 `json:"feature_importances" yaml:"featureImportances"`
	Dataset            Dataset            `json:"dataset" yaml:"dataset"`
	TrainingDate       string             `json:"training_date" yaml:"trainingDate"`
}

type Hyperparameters struct {
	MaxDepth        *int    `json:"max_depth" yaml:"maxDepth"`
	MinSamplesSplit float64 `json:"min_samples_split" yaml:"minSamplesSplit"`
	MinSamplesLeaf  float64 `json:"min_samples_leaf" yaml:"minSamplesLeaf"`
	Criterion       string  `json:"criterion" yaml:"criterion"`
	RandomState     *int    `json:"random_state" yaml:"randomState"`
}

type Metrics struct {
	Accuracy  float64 `json:"accuracy" yaml:"accuracy"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1Score   float64 `json:"f1_score" yaml:"f1Score"`
	ROCAUC    float64 `json:"roc_auc" yaml:"rocAuc"`
}

type Dataset struct {
	TotalRecords         int `json:"total_records" yaml:"totalRecords"`
	RecordsAfterCleaning int `json:"records_after_cleaning" yaml:"recordsAfterCleaning"`
	TrainingSamples      int `json:"training_samples" yaml:"trainingSamples"`
	TestSamples          int `json:"test_samples" yaml:"testSamples"`
}

// ParseMetadata decodes a metadata document after checking its shape.
func ParseMetadata(b []byte) (*Metadata, error) {
	if errs := validateDocument(metadataSchema, b); len(errs) > 0 {
		return nil, fmt.Errorf("invalid model metadata: %s", strings.Join(errs, "; "))
	}

	var m Metadata
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("error decoding model metadata: %w", err)
	}
	return &m, nil
}

// Model is the loaded, read-only model shared by all requests.
type Model struct {
	Name       string
	Tree       *Tree
	Importance Importance
	Metadata   *Metadata
}

// New builds a model from raw artifact and metadata documents.
func New(name string, artifact, metadata []byte) (*Model, error) {
	t, imp, err := ParseArtifact(artifact)
	if err != nil {
		return nil, fmt.Errorf("error parsing model artifact: %w", err)
	}

	meta, err := ParseMetadata(metadata)
	if err != nil {
		return nil, err
	}

	return &Model{
		Name:       name,
		Tree:       t,
		Importance: imp,
		Metadata:   meta,
	}, nil
}

// Load reads the model artifact and metadata from files.
func Load(artifactPath, metadataPath string) (*Model, error) {
	if artifactPath == "" || metadataPath == "" {
		return nil, fmt.Errorf("artifact path (%q) and metadata path (%q) are both required", artifactPath, metadataPath)
	}

	a, err := os.ReadFile(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("error reading model artifact %s: %w", artifactPath, err)
	}

	m, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("error reading model metadata %s: %w", metadataPath, err)
	}

	return New(artifactPath, a, m)
}
