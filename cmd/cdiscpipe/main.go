package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/trialdata/cdiscpipe/internal/config"
	"github.com/trialdata/cdiscpipe/internal/domain/adam"
	"github.com/trialdata/cdiscpipe/internal/domain/cdash"
	"github.com/trialdata/cdiscpipe/internal/domain/metadata"
	"github.com/trialdata/cdiscpipe/internal/domain/sdtm"
	"github.com/trialdata/cdiscpipe/internal/pipeline"
	"github.com/trialdata/cdiscpipe/internal/platform/db"
	"github.com/trialdata/cdiscpipe/internal/platform/middleware"
	"github.com/trialdata/cdiscpipe/internal/platform/report"
	"github.com/trialdata/cdiscpipe/internal/platform/warehouse"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cdiscpipe",
		Short: "CDISC demographics pipeline: CDASH -> SDTM -> ADaM with reporting",
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(mapCmd())
	rootCmd.AddCommand(injectCmd())
	rootCmd.AddCommand(imputeCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(defineCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

// stores opens the study file and builds the three stage repositories.
func stores(cfg *config.Config) (*sql.DB, cdash.Repository, sdtm.Repository, adam.Repository, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	sdb, err := db.OpenStudyFile(cfg.StudyFilePath())
	if err != nil {
		return nil, nil, nil, nil, err
	}
	raw, err := cdash.NewSQLiteRepo(sdb)
	if err != nil {
		sdb.Close()
		return nil, nil, nil, nil, err
	}
	dm, err := sdtm.NewSQLiteRepo(sdb)
	if err != nil {
		sdb.Close()
		return nil, nil, nil, nil, err
	}
	adsl, err := adam.NewSQLiteRepo(sdb)
	if err != nil {
		sdb.Close()
		return nil, nil, nil, nil, err
	}
	return sdb, raw, dm, adsl, nil
}

// setup loads config and builds a pipeline; the returned closer owns the
// study file handle.
func setup() (*config.Config, *pipeline.Pipeline, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger()
	sdb, raw, dm, adsl, err := stores(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	p := pipeline.New(logger, raw, dm, adsl, pipeline.Options{
		Workers:         cfg.MapWorkers,
		ContinueOnError: cfg.ContinueOnError,
	})
	return cfg, p, func() { sdb.Close() }, nil
}

func genConfig(cfg *config.Config) cdash.GenConfig {
	return cdash.GenConfig{
		StudyID:       cfg.StudyID,
		SubjectCount:  cfg.SubjectCount,
		Seed:          cfg.Seed,
		ReferenceYear: cfg.ReferenceYear,
	}
}

func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate mock raw demographics records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer()
			_, err = p.Generate(cmd.Context(), genConfig(cfg))
			return err
		},
	}
}

func mapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map",
		Short: "Derive the SDTM DM dataset from raw records",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer()
			_, err = p.MapToSDTM(cmd.Context())
			return err
		},
	}
}

func injectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inject",
		Short: "Blank age/sex on a seeded fraction of DM records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer()
			_, err = p.InjectMissing(cmd.Context(), cfg.MissingRate, cfg.Seed)
			return err
		},
	}
}

func imputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impute",
		Short: "Fill missing age/sex in the DM dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer()
			_, err = p.Impute(cmd.Context())
			return err
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Derive the ADaM ADSL dataset from the DM dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer()
			_, err = p.Derive(cmd.Context())
			return err
		},
	}
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Write summary tables and figures to the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer()
			return p.Report(cmd.Context(), cfg.OutputDir)
		},
	}
}

func defineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "define",
		Short: "Print the variable-description table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return metadata.WriteTable(os.Stdout)
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: generate, map, inject, impute, analyze, report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer()
			return p.Run(cmd.Context(), genConfig(cfg), cfg.MissingRate, cfg.OutputDir)
		},
	}
}

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish the DM and ADSL datasets to the warehouse database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for publish")
			}
			logger := newLogger()

			sdb, _, dm, adsl, err := stores(cfg)
			if err != nil {
				return err
			}
			defer sdb.Close()

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			dms, err := dm.List(ctx)
			if err != nil {
				return err
			}
			records, err := adsl.List(ctx)
			if err != nil {
				return err
			}
			if err := warehouse.NewPublisher(pool).Publish(ctx, dms, records); err != nil {
				return err
			}
			logger.Info().Int("dm", len(dms)).Int("adsl", len(records)).Msg("published to warehouse")
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the derived datasets and report read-only over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	sdb, raw, dm, adsl, err := stores(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open study file")
	}
	defer sdb.Close()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))

	e.GET("/healthz", func(c echo.Context) error {
		if err := sdb.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	h := report.NewHandler(raw, dm, adsl)
	h.RegisterRoutes(e.Group("/api/v1"))
	h.RegisterHTML(e)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	logger.Info().Str("port", cfg.Port).Msg("serving study artifacts")
	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
