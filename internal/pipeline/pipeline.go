package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openpulse/pulse-scanner/internal/archive"
	"github.com/openpulse/pulse-scanner/internal/config"
	"github.com/openpulse/pulse-scanner/internal/console"
	"github.com/openpulse/pulse-scanner/internal/history"
	"github.com/openpulse/pulse-scanner/internal/model"
	"github.com/openpulse/pulse-scanner/internal/report"
	"github.com/openpulse/pulse-scanner/internal/runner"
	"github.com/openpulse/pulse-scanner/internal/upload"
)

// ErrNoReports means every scan came back without an artifact, so there is
// nothing to show or upload.
var ErrNoReports = errors.New("no scan reports were produced")

// FindingsError aborts the run when a scan found issues and the matching
// fail-on policy is armed.
type FindingsError struct {
	Category string
}

func (e *FindingsError) Error() string {
	return fmt.Sprintf("%s findings detected and FAIL_ON policy is enabled", e.Category)
}

// Pipeline sequences the scans, aggregation, console report, upload, and the
// optional sinks. One Run per process.
type Pipeline struct {
	cfg      config.Config
	scans    *runner.Scans
	printer  *console.Printer
	uploader *upload.Client
	history  *history.Store
	archive  *archive.Client
	logger   zerolog.Logger
}

// New wires the pipeline. hist and arch may be nil when the corresponding
// sink is not configured.
func New(cfg config.Config, cmd runner.CommandRunner, hist *history.Store, arch *archive.Client, out io.Writer, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		scans:    runner.NewScans(cfg, cmd, logger),
		printer:  console.NewPrinter(out),
		uploader: upload.New(cfg, logger),
		history:  hist,
		archive:  arch,
		logger:   logger,
	}
}

// Run executes the whole pipeline against target. Scans run in fixed order;
// each category aborts immediately when it finds issues and its fail-on flag
// is set, and an execution failure is fatal only under the same flag. The
// final aggregate-report-upload phase is fatal on any error.
func (p *Pipeline) Run(ctx context.Context, target string) error {
	runID := uuid.NewString()
	started := time.Now()
	logger := p.logger.With().Str("run_id", runID).Logger()
	logger.Info().Str("target", target).Msg("starting scan pipeline")

	if err := os.MkdirAll(p.cfg.ReportsDir, 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}
	sbomPath := filepath.Join(p.cfg.ReportsDir, report.SBOMFile)

	// SBOM generation feeds the vulnerability scan, so its failure is
	// governed by the vulnerability policy.
	if err := p.scans.GenerateSBOM(ctx, target, sbomPath); err != nil {
		if p.cfg.FailOnVuln {
			return fmt.Errorf("sbom generation: %w", err)
		}
		logger.Error().Err(err).Msg("sbom generation failed, vulnerability scan will be skipped")
	}

	found, err := p.scans.ConfigScan(ctx, target, filepath.Join(p.cfg.ReportsDir, report.ConfigReportFile))
	if err != nil {
		if p.cfg.FailOnMisconfig {
			return fmt.Errorf("config scan: %w", err)
		}
		logger.Error().Err(err).Msg("config scan failed, continuing")
	} else if found && p.cfg.FailOnMisconfig {
		return &FindingsError{Category: "misconfiguration"}
	}

	found, err = p.scans.VulnScan(ctx, sbomPath, filepath.Join(p.cfg.ReportsDir, report.VulnReportFile))
	if err != nil {
		if p.cfg.FailOnVuln {
			return fmt.Errorf("vulnerability scan: %w", err)
		}
		logger.Error().Err(err).Msg("vulnerability scan failed, continuing")
	} else if found && p.cfg.FailOnVuln {
		return &FindingsError{Category: "vulnerability"}
	}

	found, err = p.scans.SecretScan(ctx, target, filepath.Join(p.cfg.ReportsDir, report.SecretReportFile))
	if err != nil {
		if p.cfg.FailOnSecret {
			return fmt.Errorf("secret scan: %w", err)
		}
		logger.Error().Err(err).Msg("secret scan failed, continuing")
	} else if found && p.cfg.FailOnSecret {
		return &FindingsError{Category: "secret"}
	}

	return p.publish(ctx, runID, started, target, logger)
}

// Publish aggregates and ships whatever reports already sit in the reports
// directory, skipping the scans. Used to re-send results of an earlier run.
func (p *Pipeline) Publish(ctx context.Context) error {
	runID := uuid.NewString()
	logger := p.logger.With().Str("run_id", runID).Logger()
	logger.Info().Str("dir", p.cfg.ReportsDir).Msg("publishing existing reports")
	return p.publish(ctx, runID, time.Now(), p.cfg.ReportsDir, logger)
}

func (p *Pipeline) publish(ctx context.Context, runID string, started time.Time, target string, logger zerolog.Logger) error {
	reports := report.Load(p.cfg.ReportsDir, logger)
	if !reports.HasReports() {
		return ErrNoReports
	}

	configDto := report.TransformConfig(reports.Config)
	secretDtos := report.TransformSecrets(reports.Secrets)

	p.printer.PrintVulnerabilities(reports.Vuln)
	p.printer.PrintMisconfigurations(configDto)
	if reports.Secrets == nil {
		p.printer.PrintSecrets(nil)
	} else {
		p.printer.PrintSecrets(secretDtos)
	}

	combined := &model.CombinedScanRequest{
		ConfigScanResponseDto: configDto,
		ScannerSecretResponse: secretDtos,
		RepoName:              p.cfg.RepoName,
		BranchName:            p.cfg.BranchName,
	}
	res, err := p.uploader.Send(ctx, combined, filepath.Join(p.cfg.ReportsDir, report.SBOMFile), nil)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	logger.Info().Int("status", res.StatusCode).Msg("scan results uploaded")

	p.archiveReports(ctx, runID, logger)
	p.recordRun(ctx, runID, started, target, configDto, secretDtos, reports, logger)
	return nil
}

func (p *Pipeline) archiveReports(ctx context.Context, runID string, logger zerolog.Logger) {
	if p.archive == nil {
		return
	}
	if err := p.archive.StoreReports(ctx, runID, p.cfg.ReportsDir); err != nil {
		logger.Warn().Err(err).Msg("report archive failed")
	}
}

func (p *Pipeline) recordRun(ctx context.Context, runID string, started time.Time, target string,
	configDto *model.ConfigScanResponseDto, secrets []model.SecretFindingDto, reports *report.Reports, logger zerolog.Logger) {
	if p.history == nil {
		return
	}
	run := history.Run{
		ID:           runID,
		Repo:         p.cfg.RepoName,
		Branch:       p.cfg.BranchName,
		Target:       target,
		VulnCount:    reports.Vuln.CountVulnerabilities(),
		SecretCount:  len(secrets),
		UploadStatus: "uploaded",
		StartedAt:    started,
	}
	if configDto != nil {
		run.MisconfigCount = configDto.TotalCount
	}
	if err := p.history.RecordRun(ctx, run); err != nil {
		logger.Warn().Err(err).Msg("run history write failed")
	}
}
