package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/naka-gawa/candidate-stats/internal/analysis"
	"github.com/naka-gawa/candidate-stats/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Aggregates a GitHub profile once and prints the report",
	Long: `Aggregates the public repositories, languages and attributed commits of the
GitHub profile given with --url and prints the report as a table or JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg, false)

		profileURL, _ := cmd.Flags().GetString("url")
		resume, _ := cmd.Flags().GetString("resume")

		hook := analysis.MultiHook{
			analysis.NewLogHook(logger),
			analysis.NewReportHook(os.Stdout, cfg.Output, logger),
		}
		pipeline, err := newPipeline(cfg, hook, logger)
		if err != nil {
			return err
		}

		result := pipeline.Run(context.Background(), domain.ProfileRequest{ProfileURL: profileURL, ResumeReference: resume})
		if !result.OK() {
			return fmt.Errorf("failed to aggregate profile: %s", result.Failure.ErrorMessage)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringP("url", "u", "", "GitHub profile URL, e.g. https://github.com/alice (required)")
	profileCmd.Flags().String("resume", "", "Reference to the candidate's resume, passed through to the analysis step")
	profileCmd.Flags().StringP("output", "o", "table", "Output format: table or json")
	profileCmd.Flags().Bool("color", true, "Colorize the table output")
	_ = profileCmd.MarkFlagRequired("url")
	if err := viper.BindPFlag("output", profileCmd.Flags().Lookup("output")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("color", profileCmd.Flags().Lookup("color")); err != nil {
		panic(err)
	}
}
