package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/omniscience-ai/omniscience/internal/application/ports"
	"github.com/omniscience-ai/omniscience/internal/presentation/cli/output"
)

// NewSessionsCmd creates the sessions command group.
func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage persisted workspace sessions",
	}

	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsDeleteCmd())

	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List persisted sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			repo, err := sessionRepo()
			if err != nil {
				return err
			}

			summaries, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(summaries)
			}
			if len(summaries) == 0 {
				return formatter.Info("No saved sessions")
			}

			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				saved := s.SavedAt
				if ts, err := time.Parse(time.RFC3339Nano, s.SavedAt); err == nil {
					saved = ts.Local().Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{
					s.Name,
					fmt.Sprintf("%d", s.FileCount),
					saved,
					s.ID,
				})
			}
			return formatter.Table(output.TableData{
				Headers: []string{"NAME", "FILES", "SAVED", "ID"},
				Rows:    rows,
			})
		},
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a persisted session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			repo, err := sessionRepo()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			id := args[0]
			if snap, err := repo.GetByName(ctx, args[0]); err == nil {
				id = snap.ID
			}
			if err := repo.Delete(ctx, id); err != nil {
				return err
			}
			return formatter.Success("Session %q deleted", args[0])
		},
	}
}

func sessionRepo() (ports.SessionStoragePort, error) {
	container := GetContainer()
	if container == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	repo := container.Sessions()
	if repo == nil {
		return nil, fmt.Errorf("session persistence is disabled (enable storage in config)")
	}
	return repo, nil
}
