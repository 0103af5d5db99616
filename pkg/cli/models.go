package cli

import (
	"context"
	"fmt"

	"github.com/mchmarny/cardiorisk/pkg/data"
	"github.com/mchmarny/cardiorisk/pkg/model"
	urfave "github.com/urfave/cli/v3"
)

var (
	removeNameFlag = &urfave.StringFlag{
		Name:     "name",
		Aliases:  []string{"n"},
		Usage:    "Name of the registered model to remove",
		Required: true,
	}

	modelsCmd = &urfave.Command{
		Name:   "models",
		Usage:  "List models in the registry",
		Action: cmdListModels,
		Commands: []*urfave.Command{
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a model from the registry",
				Action:  cmdRemoveModel,
				Flags: []urfave.Flag{
					removeNameFlag,
				},
			},
		},
	}

	aboutCmd = &urfave.Command{
		Name:   "about",
		Usage:  "Print how the model was trained and how it performs",
		Action: cmdAbout,
		Flags:  modelFlags(),
	}
)

func cmdListModels(_ context.Context, cmd *urfave.Command) error {
	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}

	list, err := data.ListModels(db)
	if err != nil {
		return fmt.Errorf("error listing models: %w", err)
	}
	return output(cmd, list)
}

func cmdRemoveModel(_ context.Context, cmd *urfave.Command) error {
	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}

	name := cmd.String(removeNameFlag.Name)
	if err := data.DeleteModel(db, name); err != nil {
		return fmt.Errorf("error removing model %s: %w", name, err)
	}
	return output(cmd, map[string]string{"removed": name})
}

// AboutResult is what the about command prints.
type AboutResult struct {
	Name       string                   `json:"name" yaml:"name"`
	Metadata   *model.Metadata          `json:"metadata" yaml:"metadata"`
	Importance []*model.ImportanceEntry `json:"feature_importance" yaml:"featureImportance"`
	Nodes      int                      `json:"nodes" yaml:"nodes"`
	Depth      int                      `json:"depth" yaml:"depth"`
}

func cmdAbout(_ context.Context, cmd *urfave.Command) error {
	m, err := loadModel(cmd)
	if err != nil {
		return err
	}

	return output(cmd, &AboutResult{
		Name:       m.Name,
		Metadata:   m.Metadata,
		Importance: model.RankImportance(m.Importance),
		Nodes:      m.Tree.Len(),
		Depth:      m.Tree.Depth(),
	})
}
