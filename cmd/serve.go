package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/naka-gawa/candidate-stats/internal/analysis"
	"github.com/naka-gawa/candidate-stats/internal/server"
	"github.com/naka-gawa/candidate-stats/internal/storage"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP service accepting profile requests",
	Long: `Starts an HTTP service. POST /user/details with a githubUrl form field and an
optional resume file starts an aggregation in the background; results go to the
analysis step and are not returned to the caller.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg, true)

		pipeline, err := newPipeline(cfg, analysis.NewLogHook(logger), logger)
		if err != nil {
			return err
		}
		resumes := storage.NewResumeStore(afero.NewOsFs(), cfg.UploadDir, logger)
		httpServer := &http.Server{
			Addr:              cfg.Addr,
			Handler:           server.New(pipeline, resumes, logger).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.WithField("addr", cfg.Addr).Info("listening")
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Warn("forced shutdown")
			}
		}

		pipeline.Wait()
		logger.Info("all pipeline runs finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().String("upload-dir", "uploads", "Directory for uploaded resumes")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		panic(err)
	}
}
