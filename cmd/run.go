package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/malbox/malbox/internal/pipeline"
)

// newRunCmd creates and configures the 'run' subcommand, which executes one
// fetch → render → publish pass and exits.
func newRunCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetches the list once and updates the gist",
		Long: `Performs a single update: reads the configured MyAnimeList list,
renders the progress block, and overwrites the gist. Intended to be
invoked by an external scheduler such as a CI cron workflow.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			runner, err := buildRunner(appInstance, force)
			if err != nil {
				return err
			}

			result, err := runner.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("run pipeline: %w", err)
			}

			logger := appInstance.GetLogger()
			switch result.Outcome {
			case pipeline.OutcomeSkipped:
				logger.Info("update skipped by rate limit", zap.String("run_id", result.RunID))
			case pipeline.OutcomePublished:
				logger.Info("gist updated",
					zap.String("run_id", result.RunID),
					zap.Int("bytes", result.Length),
				)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the minimum publish interval")
	return cmd
}
