package cli

import (
	"fmt"
	"log/slog"

	"github.com/mchmarny/cardiorisk/pkg/data"
	"github.com/mchmarny/cardiorisk/pkg/model"
	urfave "github.com/urfave/cli/v3"
)

var (
	modelFileFlag = &urfave.StringFlag{
		Name:    "model",
		Aliases: []string{"m"},
		Usage:   fmt.Sprintf("Path to the model artifact (default: ./%s)", model.ArtifactFileName),
	}

	metadataFileFlag = &urfave.StringFlag{
		Name:  "metadata",
		Usage: fmt.Sprintf("Path to the model metadata document (default: ./%s)", model.MetadataFileName),
	}

	modelNameFlag = &urfave.StringFlag{
		Name:    "name",
		Aliases: []string{"n"},
		Usage:   "Name of a model in the registry, used when no files are given",
	}
)

// modelFlags returns the flags that select the model to load.
func modelFlags() []urfave.Flag {
	return []urfave.Flag{
		modelFileFlag,
		metadataFileFlag,
		modelNameFlag,
	}
}

// loadModel resolves the model from flags, then config. Files win over a
// registry name. With neither set, the default files in the working directory
// are used.
func loadModel(cmd *urfave.Command) (*model.Model, error) {
	cfg := getConfig(cmd)

	artifactPath := cfg.Conf.ModelPath
	if cmd.IsSet(modelFileFlag.Name) {
		artifactPath = cmd.String(modelFileFlag.Name)
	}

	metadataPath := cfg.Conf.MetadataPath
	if cmd.IsSet(metadataFileFlag.Name) {
		metadataPath = cmd.String(metadataFileFlag.Name)
	}

	name := cfg.Conf.ModelName
	if cmd.IsSet(modelNameFlag.Name) {
		name = cmd.String(modelNameFlag.Name)
	}

	if artifactPath == "" && metadataPath == "" && name != "" {
		return loadRegisteredModel(cfg, name)
	}

	if artifactPath == "" {
		artifactPath = model.ArtifactFileName
	}
	if metadataPath == "" {
		metadataPath = model.MetadataFileName
	}

	m, err := model.Load(artifactPath, metadataPath)
	if err != nil {
		return nil, fmt.Errorf("error loading model: %w", err)
	}
	slog.Debug("model loaded", "artifact", artifactPath, "metadata", metadataPath, "nodes", m.Tree.Len())
	return m, nil
}

func loadRegisteredModel(cfg *appConfig, name string) (*model.Model, error) {
	db, err := cfg.DB()
	if err != nil {
		return nil, err
	}

	r, err := data.GetModel(db, name)
	if err != nil {
		return nil, fmt.Errorf("error getting model %s: %w", name, err)
	}

	if err := r.Verify(); err != nil {
		return nil, err
	}

	m, err := model.New(r.Name, r.Artifact, r.Metadata)
	if err != nil {
		return nil, fmt.Errorf("error loading model %s: %w", name, err)
	}

	slog.Debug("model loaded", "name", name, "source", r.Source, "nodes", m.Tree.Len())
	return m, nil
}
