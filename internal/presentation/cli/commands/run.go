package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/omniscience-ai/omniscience/internal/application/session"
	"github.com/omniscience-ai/omniscience/internal/domain/file"
	"github.com/omniscience-ai/omniscience/internal/domain/terminal"
	"github.com/omniscience-ai/omniscience/internal/infrastructure/linkdir"
)

// NewRunCmd creates the run command for one-shot code runs.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <path>",
		Short: "Run a local code file through the backend interpreter",
		Long: `Run a local code file by asking the backend to act as an
interpreter and printing what the program would output. No code is
executed locally.

Examples:
  omniscience run script.py
  omniscience run main.go`,
		Args: cobra.ExactArgs(1),
		RunE: runOneShot,
	}
}

func runOneShot(cmd *cobra.Command, args []string) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}
	ctx := cmd.Context()

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}
	if linkdir.TypeForPath(path) != file.TypeCode {
		return fmt.Errorf("%s does not look like a code file", path)
	}

	sess := session.New("")
	f, err := sess.Store.CreateFile(file.TypeCode, filepath.Base(path), string(data))
	if err != nil {
		return err
	}

	_, run, err := container.BuildServices(sess)
	if err != nil {
		return fmt.Errorf("could not initialize runner: %w", err)
	}

	entry, err := run.Run(ctx, f.ID)
	if err != nil {
		return err
	}
	if entry.Kind == terminal.KindError {
		return fmt.Errorf("run failed: %s", entry.Content)
	}
	return formatter.Println("%s", entry.Content)
}
