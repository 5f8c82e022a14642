package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/openpulse/pulse-scanner/internal/archive"
	"github.com/openpulse/pulse-scanner/internal/config"
	"github.com/openpulse/pulse-scanner/internal/history"
	"github.com/openpulse/pulse-scanner/internal/pipeline"
	"github.com/openpulse/pulse-scanner/internal/runner"
)

// version is stamped via -ldflags at release time.
var version = "dev"

var (
	flagReportsDir string
	flagProjectID  string
)

var rootCmd = &cobra.Command{
	Use:          "pulse-scanner",
	Short:        "Runs security scans over a workspace and ships the results to OpenPulse",
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var runCmd = &cobra.Command{
	Use:   "run [target-dir]",
	Short: "Generate an SBOM, run the config, vulnerability and secret scans, and upload",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) > 0 {
			target = args[0]
		}
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		hist, arch := openSinks(ctx, cfg, logger)
		if hist != nil {
			defer hist.Close()
		}
		p := pipeline.New(cfg, runner.NewExecRunner(logger), hist, arch, os.Stdout, logger)
		return p.Run(ctx, target)
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload reports from an earlier run without rescanning",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		hist, arch := openSinks(ctx, cfg, logger)
		if hist != nil {
			defer hist.Close()
		}
		p := pipeline.New(cfg, runner.NewExecRunner(logger), hist, arch, os.Stdout, logger)
		return p.Publish(ctx)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("pulse-scanner", version)
	},
}

func setup() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Logger{}, err
	}
	if flagReportsDir != "" {
		cfg.ReportsDir = flagReportsDir
	}
	if flagProjectID != "" {
		cfg.ProjectID = flagProjectID
	}
	return cfg, newLogger(cfg.DebugLogging), nil
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// openSinks connects the optional Postgres and S3 sinks. Either failing to
// come up downgrades to a warning; the scan itself must not depend on them.
func openSinks(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*history.Store, *archive.Client) {
	var hist *history.Store
	if cfg.HistoryEnabled() {
		h, err := history.Open(ctx, cfg.DatabaseURL)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("run history disabled: cannot connect")
		case h.Ping(ctx) != nil:
			logger.Warn().Msg("run history disabled: database unreachable")
			h.Close()
		default:
			if err := h.EnsureSchema(ctx); err != nil {
				logger.Warn().Err(err).Msg("run history disabled: schema setup failed")
				h.Close()
			} else {
				hist = h
			}
		}
	}

	var arch *archive.Client
	if cfg.ArchiveEnabled() {
		a, err := archive.New(cfg, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("report archive disabled: client setup failed")
		} else {
			arch = a
		}
	}
	return hist, arch
}

func main() {
	// .env files ease local runs; CI sets real environment variables.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rootCmd.PersistentFlags().StringVar(&flagReportsDir, "reports-dir", "", "reports directory (overrides REPORTS_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagProjectID, "project-id", "", "project id appended to the upload path (overrides PULSE_PROJECT_ID)")
	rootCmd.AddCommand(runCmd, uploadCmd, versionCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
