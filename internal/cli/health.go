package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult

			if err := client.Get(cmd.Context(), "/api/v1/health", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connection and player counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StatusResult

			if err := client.Get(cmd.Context(), "/api/v1/status", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newWhoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "who",
		Short: "List online players",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result WhoResult

			if err := client.Get(cmd.Context(), "/api/v1/who", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
