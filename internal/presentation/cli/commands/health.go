package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omniscience-ai/omniscience/internal/presentation/cli/output"
)

// NewHealthCmd creates the health command that checks backend connectivity.
func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check backend provider connectivity",
		Long: `Verify that the configured backend provider is reachable and the
API credential is accepted. Uses the model listing endpoint, which
consumes no tokens.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application not initialized")
			}

			p, err := container.Provider()
			if err != nil {
				return err
			}

			status, err := p.HealthCheck(cmd.Context())
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(map[string]any{
					"provider": p.Info().Name,
					"healthy":  status.Healthy,
					"latency":  status.Latency.String(),
					"message":  status.Message,
				})
			}

			formatter.Header("Backend Health")
			formatter.Item("Provider", p.Info().Name)
			formatter.Item("Latency", status.Latency.String())
			if status.Healthy {
				return formatter.Success("Backend is reachable")
			}
			return formatter.Error("Backend is unreachable: %s", status.Message)
		},
	}
}
