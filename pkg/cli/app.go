package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mchmarny/cardiorisk/pkg/config"
	"github.com/mchmarny/cardiorisk/pkg/data"
	"github.com/mchmarny/cardiorisk/pkg/logging"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "cardiorisk"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	configFlag = &urfave.StringFlag{
		Name:    "config",
		Usage:   fmt.Sprintf("Path to the YAML config file (default: $HOME/.%s/%s when present)", appName, config.FileName),
		Sources: urfave.EnvVars("CARDIORISK_CONFIG"),
	}

	dbFlag = &urfave.StringFlag{
		Name:  "db",
		Usage: fmt.Sprintf("Model registry, SQLite file path or postgres:// URL (default: $HOME/.%s/%s)", appName, data.DataFileName),
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Conf   *config.Config
	Debug  bool
	Format string

	dbOnce sync.Once
	db     *sql.DB
	dbErr  error
}

// DB opens the model registry on first use and applies pending migrations.
func (a *appConfig) DB() (*sql.DB, error) {
	a.dbOnce.Do(func() {
		dsn := a.Conf.DBPath
		if dsn == "" {
			dsn = filepath.Join(getHomeDir(), data.DataFileName)
		}
		slog.Debug("opening registry", "driver", data.Driver(dsn))

		if err := data.Init(dsn); err != nil {
			a.dbErr = fmt.Errorf("initializing database: %w", err)
			return
		}
		a.db, a.dbErr = data.GetDB(dsn)
	})
	return a.db, a.dbErr
}

func (a *appConfig) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			slog.Debug("error closing database", "error", err)
		}
	}
}

func getConfig(cmd *urfave.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Cardiovascular risk scoring and explanation from a pretrained decision tree",
		Metadata:              map[string]any{},
		Flags: []urfave.Flag{
			debugFlag,
			configFlag,
			dbFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			serverCmd,
			predictCmd,
			importCmd,
			modelsCmd,
			aboutCmd,
			authCmd,
			configCmd,
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			conf, err := loadConfig(cmd.String(configFlag.Name))
			if err != nil {
				return ctx, err
			}

			debug := cmd.Bool(debugFlag.Name)
			if debug {
				conf.LogLevel = "debug"
			}
			logging.SetDefaultCLILogger(conf.LogLevel)

			if cmd.IsSet(dbFlag.Name) {
				conf.DBPath = cmd.String(dbFlag.Name)
			}

			f := cmd.String(formatFlag.Name)
			switch f {
			case formatJSON:
			case formatYAML, "yml":
				f = formatYAML
			default:
				return ctx, fmt.Errorf("unsupported output format: %s", f)
			}

			cmd.Root().Metadata[appConfigKey] = &appConfig{
				Conf:   conf,
				Debug:  debug,
				Format: f,
			}
			return ctx, nil
		},
		After: func(_ context.Context, cmd *urfave.Command) error {
			if cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok {
				cfg.close()
			}
			return nil
		},
	}
}

// loadConfig reads the config file at path. With no path, the file in the
// app home dir is used when it exists.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		p := filepath.Join(getHomeDir(), config.FileName)
		if _, err := os.Stat(p); err == nil {
			path = p
		}
	}

	conf, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return conf, nil
}

func getHomeDir() string {
	dir, created, err := config.GetOrCreateHomeDir(appName)
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		return "."
	}
	if created {
		slog.Debug("created app dir", "path", dir)
	}
	return dir
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

// output writes v to the command's writer in the selected format.
func output(cmd *urfave.Command, v any) error {
	if err := encode(cmd.Root().Writer, getConfig(cmd).Format, v); err != nil {
		return fmt.Errorf("error encoding output: %w", err)
	}
	return nil
}
