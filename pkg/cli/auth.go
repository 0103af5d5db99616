package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	urfave "github.com/urfave/cli/v3"
	"github.com/zalando/go-keyring"
)

const (
	tokenFileName  = "github_token"
	tokenEnvVar    = "GITHUB_TOKEN"
	keyringService = "cardiorisk"
	keyringUser    = "github_token"
)

var (
	tokenFlag = &urfave.StringFlag{
		Name:  "token",
		Usage: "GitHub token with read access to the model release repositories (prompted when omitted)",
	}

	authCmd = &urfave.Command{
		Name:   "auth",
		Usage:  "Store a GitHub token used to import models from private releases",
		Action: cmdAuth,
		Flags: []urfave.Flag{
			tokenFlag,
		},
	}
)

func cmdAuth(_ context.Context, cmd *urfave.Command) error {
	token := cmd.String(tokenFlag.Name)
	if token == "" {
		fmt.Fprint(cmd.Root().Writer, "GitHub token: ")
		if _, err := fmt.Fscanln(cmd.Root().Reader, &token); err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token cannot be empty")
	}

	if err := saveGitHubToken(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Fprintln(cmd.Root().Writer, "Token saved")
	return nil
}

func saveGitHubToken(token string) error {
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return saveGitHubTokenFile(token)
	}

	// Clean up the file copy if it exists
	os.Remove(filepath.Join(getHomeDir(), tokenFileName))

	return nil
}

// getGitHubToken returns the token from the environment, the OS keychain, or
// the token file, in that order.
func getGitHubToken() (string, error) {
	if token := os.Getenv(tokenEnvVar); token != "" {
		return token, nil
	}

	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token, nil
	}

	// Fall back to file
	token, err = getGitHubTokenFile()
	if err != nil {
		return "", err
	}

	// Migrate to keychain
	if migrateErr := keyring.Set(keyringService, keyringUser, token); migrateErr == nil {
		slog.Info("migrated token from file to OS keychain")
		os.Remove(filepath.Join(getHomeDir(), tokenFileName))
	}

	return token, nil
}

func saveGitHubTokenFile(token string) error {
	return os.WriteFile(filepath.Join(getHomeDir(), tokenFileName), []byte(token), 0600)
}

func getGitHubTokenFile() (string, error) {
	tokenPath := filepath.Join(getHomeDir(), tokenFileName)
	b, err := os.ReadFile(tokenPath)
	if err != nil {
		return "", fmt.Errorf("reading token file %s: %w", tokenPath, err)
	}
	return strings.TrimSpace(string(b)), nil
}
