package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
)

// localDefaults are written alongside the exported secrets so the .env file
// runs the bot locally as-is.
var localDefaults = map[string]string{
	"APP_ENV":   "local",
	"LOG_LEVEL": "debug",
	"TIMEZONE":  "Asia/Taipei",
}

// ExportEnvConfig configures ExportEnvFile.
type ExportEnvConfig struct {
	OutputPath string
	SSM        *SSMManager
	Stderr     io.Writer
	// Inventory defaults to BuildInventory.
	Inventory []BootstrapStep
}

// ExportEnvFile reads every inventory parameter back from SSM and writes a
// .env file readable by the config loader. Missing parameters are left out.
// A stored DATABASE_URL switches STATE_BACKEND to postgres.
func ExportEnvFile(ctx context.Context, cfg ExportEnvConfig) error {
	inventory := cfg.Inventory
	if inventory == nil {
		inventory = BuildInventory(NewValidator())
	}

	env := make(map[string]string, len(localDefaults)+len(inventory)+1)
	for k, v := range localDefaults {
		env[k] = v
	}

	for _, step := range inventory {
		path := cfg.SSM.SSMPath(step.SSMKey)
		value, ok, err := cfg.SSM.GetParameterValue(ctx, path)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(cfg.Stderr, "  %s not set, leaving %s out\n", path, step.EnvVar)
			continue
		}
		env[step.EnvVar] = value
	}

	if _, ok := env["DATABASE_URL"]; ok {
		env["STATE_BACKEND"] = "postgres"
	}

	content, err := godotenv.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding .env: %w", err)
	}
	if err := os.WriteFile(cfg.OutputPath, []byte(content+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.OutputPath, err)
	}
	return nil
}
