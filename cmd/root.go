// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/naka-gawa/candidate-stats/internal/config"
	"github.com/naka-gawa/candidate-stats/internal/gateway"
	"github.com/naka-gawa/candidate-stats/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "candidate-stats",
	Short: "Summarize a candidate's public GitHub activity.",
	Long: `candidate-stats reads a candidate's public GitHub profile URL and summarizes
the repositories they own, the languages of those repositories and the
commits attributable to them. Run it once with "profile" or as a service with "serve".`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "Log format: text or json")
	rootCmd.PersistentFlags().String("api-base-url", config.DefaultAPIBaseURL, "GitHub REST API base URL")
	rootCmd.PersistentFlags().Int("workers", config.DefaultWorkers, "Number of repositories processed concurrently")
	rootCmd.PersistentFlags().Duration("request-timeout", 0, "Timeout per GitHub API call (0 = none)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding root flags: %v\n", err)
		os.Exit(1)
	}
}

// initConfig reads in .env, config file and ENV variables if set.
func initConfig() {
	// A missing .env file is the normal case.
	_ = godotenv.Load()

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".candidate-stats")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}
	config.BindEnvironment(viper.GetViper())
	config.SetDefaults(viper.GetViper())
}

// loadConfig merges defaults, config file, env and flags into a validated Config.
func loadConfig() (*config.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	color.NoColor = color.NoColor || !cfg.Color
	return cfg, nil
}

// newLogger builds the process logger. Output is discarded unless verbose or forced.
func newLogger(cfg *config.Config, alwaysOn bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	if cfg.Verbose || alwaysOn {
		logger.SetOutput(os.Stderr)
	}
	logger.SetLevel(logrus.InfoLevel)
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

// newPipeline wires the gateway, aggregator and hook together.
func newPipeline(cfg *config.Config, hook usecase.Hook, logger logrus.FieldLogger) (*usecase.Pipeline, error) {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	githubGateway, err := gateway.NewGitHubGateway(cfg.APIBaseURL, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	aggregator := usecase.NewAggregator(githubGateway, logger, cfg.Workers)
	return usecase.NewPipeline(aggregator, hook, logger), nil
}
