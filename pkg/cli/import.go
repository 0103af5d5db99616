package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mchmarny/cardiorisk/pkg/data"
	"github.com/mchmarny/cardiorisk/pkg/model"
	"github.com/mchmarny/cardiorisk/pkg/net"
	urfave "github.com/urfave/cli/v3"
)

var (
	importNameFlag = &urfave.StringFlag{
		Name:     "name",
		Aliases:  []string{"n"},
		Usage:    "Name to register the model under (replaces an existing entry)",
		Required: true,
	}

	importModelFlag = &urfave.StringFlag{
		Name:  "model",
		Usage: "Model artifact file path or URL",
	}

	importMetadataFlag = &urfave.StringFlag{
		Name:  "metadata",
		Usage: "Model metadata file path or URL",
	}

	repoFlag = &urfave.StringFlag{
		Name:  "repo",
		Usage: "GitHub repository (owner/repo) with the model release",
	}

	tagFlag = &urfave.StringFlag{
		Name:  "tag",
		Usage: "Release tag to import from",
	}

	modelAssetFlag = &urfave.StringFlag{
		Name:  "model-asset",
		Usage: "Name of the release asset with the model artifact",
		Value: model.ArtifactFileName,
	}

	metadataAssetFlag = &urfave.StringFlag{
		Name:  "metadata-asset",
		Usage: "Name of the release asset with the model metadata",
		Value: model.MetadataFileName,
	}

	apiURLFlag = &urfave.StringFlag{
		Name:    "api-url",
		Usage:   "GitHub API root, for GitHub Enterprise (optional)",
		Sources: urfave.EnvVars("GITHUB_API_URL"),
	}

	importCmd = &urfave.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Validate a model artifact and metadata pair and store it in the registry",
		UsageText: `cardiorisk import --name v1 --model model.json --metadata model_metadata.json      # local files
   cardiorisk import --name v1 --model https://host/model.json --metadata https://host/meta.json  # URLs
   cardiorisk import --name v1 --repo acme/cardio-models --tag v1.0.0                   # GitHub release`,
		Action: cmdImport,
		Flags: []urfave.Flag{
			importNameFlag,
			importModelFlag,
			importMetadataFlag,
			repoFlag,
			tagFlag,
			modelAssetFlag,
			metadataAssetFlag,
			apiURLFlag,
		},
	}
)

// ImportResult describes a registered model.
type ImportResult struct {
	Model    *data.ModelRecord `json:"model" yaml:"model"`
	Nodes    int               `json:"nodes" yaml:"nodes"`
	Depth    int               `json:"depth" yaml:"depth"`
	Duration string            `json:"duration" yaml:"duration"`
}

func cmdImport(ctx context.Context, cmd *urfave.Command) error {
	start := time.Now()
	name := cmd.String(importNameFlag.Name)

	var (
		artifact, metadata []byte
		source             string
		err                error
	)

	switch {
	case cmd.String(repoFlag.Name) != "":
		artifact, metadata, source, err = fetchRelease(ctx, cmd)
	case cmd.String(importModelFlag.Name) != "" && cmd.String(importMetadataFlag.Name) != "":
		artifact, metadata, source, err = fetchDocuments(ctx, cmd.String(importModelFlag.Name), cmd.String(importMetadataFlag.Name))
	default:
		return errors.New("either --repo and --tag, or both --model and --metadata are required")
	}
	if err != nil {
		return err
	}

	m, err := model.New(name, artifact, metadata)
	if err != nil {
		return fmt.Errorf("error validating model %s: %w", name, err)
	}

	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}

	r := &data.ModelRecord{
		Name:       name,
		Source:     source,
		Artifact:   artifact,
		Metadata:   metadata,
		Checksum:   data.Checksum(artifact, metadata),
		ModelType:  m.Metadata.ModelType,
		ImportedAt: time.Now().UTC(),
	}
	if err := data.SaveModel(db, r); err != nil {
		return fmt.Errorf("error saving model %s: %w", name, err)
	}
	slog.Debug("model imported", "name", name, "source", source)

	return output(cmd, &ImportResult{
		Model:    r,
		Nodes:    m.Tree.Len(),
		Depth:    m.Tree.Depth(),
		Duration: time.Since(start).String(),
	})
}

func fetchRelease(ctx context.Context, cmd *urfave.Command) (artifact, metadata []byte, source string, err error) {
	owner, repo, err := net.ParseRepo(cmd.String(repoFlag.Name))
	if err != nil {
		return nil, nil, "", err
	}

	tag := cmd.String(tagFlag.Name)
	if tag == "" {
		return nil, nil, "", errors.New("--tag is required with --repo")
	}

	token, err := getGitHubToken()
	if err != nil {
		slog.Debug("no GitHub token, using anonymous access", "error", err)
	}

	c := net.NewReleaseClient(ctx, token)
	if u := cmd.String(apiURLFlag.Name); u != "" {
		if err := c.WithBaseURL(u); err != nil {
			return nil, nil, "", err
		}
	}

	docs, err := c.DownloadAssets(ctx, owner, repo, tag,
		cmd.String(modelAssetFlag.Name), cmd.String(metadataAssetFlag.Name))
	if err != nil {
		return nil, nil, "", fmt.Errorf("error downloading release assets: %w", err)
	}

	return docs[0], docs[1], fmt.Sprintf("github:%s/%s@%s", owner, repo, tag), nil
}

func fetchDocuments(ctx context.Context, artifactLoc, metadataLoc string) (artifact, metadata []byte, source string, err error) {
	if artifact, err = readDocument(ctx, artifactLoc); err != nil {
		return nil, nil, "", err
	}
	if metadata, err = readDocument(ctx, metadataLoc); err != nil {
		return nil, nil, "", err
	}
	return artifact, metadata, artifactLoc, nil
}

// readDocument reads loc from a URL or the local file system.
func readDocument(ctx context.Context, loc string) ([]byte, error) {
	if net.IsURL(loc) {
		b, err := net.Fetch(ctx, loc)
		if err != nil {
			return nil, fmt.Errorf("error downloading %s: %w", loc, err)
		}
		return b, nil
	}

	b, err := os.ReadFile(loc)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", loc, err)
	}
	return b, nil
}
