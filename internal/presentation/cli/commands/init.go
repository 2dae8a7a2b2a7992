package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/omniscience-ai/omniscience/internal/infrastructure/config"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	Force bool
}

var initOpts initFlags

// NewInitCmd creates the init command that writes a default configuration.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Create ~/.omniscience/config.yaml with default settings.

The provider API key is read from the ` + config.EnvAPIKey + ` environment
variable, or can be set in the generated file.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().BoolVarP(&initOpts.Force, "force", "f", false, "overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	formatter := GetFormatter()

	loader, err := config.NewLoader("")
	if err != nil {
		return err
	}

	path := globalFlags.ConfigFile
	if path == "" {
		path = loader.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !initOpts.Force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	cfg := config.NewDefaultConfig()
	if err := loader.Save(cfg, path); err != nil {
		return err
	}

	formatter.Success("Wrote default configuration to %s", path)
	if os.Getenv(config.EnvAPIKey) == "" {
		formatter.Info("Set %s or edit the api_key field to enable the assistant.", config.EnvAPIKey)
	}
	return nil
}
