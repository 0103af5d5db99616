package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mchmarny/cardiorisk/pkg/config"
	urfave "github.com/urfave/cli/v3"
)

var (
	saveFlag = &urfave.BoolFlag{
		Name:  "save",
		Usage: "Write the effective configuration to the config file",
	}

	configCmd = &urfave.Command{
		Name:   "config",
		Usage:  "Print the effective configuration (file, .env, environment and global flags)",
		Action: cmdConfig,
		Flags: []urfave.Flag{
			saveFlag,
		},
	}
)

func cmdConfig(_ context.Context, cmd *urfave.Command) error {
	conf := getConfig(cmd).Conf

	if cmd.Bool(saveFlag.Name) {
		path := cmd.String(configFlag.Name)
		if path == "" {
			path = filepath.Join(getHomeDir(), config.FileName)
		}
		if err := config.Save(path, conf); err != nil {
			return fmt.Errorf("error saving config: %w", err)
		}
		slog.Info("config saved", "path", path)
	}

	return output(cmd, conf)
}
