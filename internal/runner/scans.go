package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/openpulse/pulse-scanner/internal/config"
	"github.com/openpulse/pulse-scanner/internal/model"
)

// gitleaks signals detected leaks through its exit status rather than the
// report content.
const gitleaksLeakExitCode = 1

// Scans invokes the external tools and interprets their results. Each scan
// returns whether findings are present; acting on that is the caller's call.
type Scans struct {
	cfg    config.Config
	cmd    CommandRunner
	logger zerolog.Logger
}

func NewScans(cfg config.Config, cmd CommandRunner, logger zerolog.Logger) *Scans {
	return &Scans{cfg: cfg, cmd: cmd, logger: logger}
}

// GenerateSBOM produces a CycloneDX bom for target at outPath via cdxgen.
func (s *Scans) GenerateSBOM(ctx context.Context, target, outPath string) error {
	s.logger.Info().Str("target", target).Msg("generating SBOM")
	code, err := s.cmd.Run(ctx, s.cfg.CdxgenPath, "-o", outPath, target)
	if err != nil {
		return fmt.Errorf("run cdxgen: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("cdxgen exited with code %d", code)
	}
	return nil
}

// ConfigScan runs trivy's misconfiguration scan over target.
func (s *Scans) ConfigScan(ctx context.Context, target, outPath string) (bool, error) {
	s.logger.Info().Str("target", target).Msg("running config scan")
	code, err := s.cmd.Run(ctx, s.cfg.TrivyPath, "config", "--format", "json", "--output", outPath, target)
	if err != nil {
		return false, fmt.Errorf("run trivy config: %w", err)
	}
	if code != 0 {
		return false, fmt.Errorf("trivy config exited with code %d", code)
	}
	found := s.reportHasFindings(outPath, (*model.TrivyReport).HasMisconfigurations)
	s.logger.Debug().Bool("findings", found).Msg("config scan finished")
	return found, nil
}

// VulnScan runs trivy over a previously generated SBOM. A missing SBOM is a
// clean skip, not an error.
func (s *Scans) VulnScan(ctx context.Context, sbomPath, outPath string) (bool, error) {
	if _, err := os.Stat(sbomPath); err != nil {
		s.logger.Warn().Str("sbom", sbomPath).Msg("SBOM not found, skipping vulnerability scan")
		return false, nil
	}
	s.logger.Info().Str("sbom", sbomPath).Msg("running vulnerability scan")
	code, err := s.cmd.Run(ctx, s.cfg.TrivyPath, "sbom", "--format", "json", "--output", outPath, sbomPath)
	if err != nil {
		return false, fmt.Errorf("run trivy sbom: %w", err)
	}
	if code != 0 {
		return false, fmt.Errorf("trivy sbom exited with code %d", code)
	}
	found := s.reportHasFindings(outPath, (*model.TrivyReport).HasVulnerabilities)
	s.logger.Debug().Bool("findings", found).Msg("vulnerability scan finished")
	return found, nil
}

// SecretScan runs gitleaks over target. Exit code 1 means leaks were found;
// any other non-zero code is an execution failure.
func (s *Scans) SecretScan(ctx context.Context, target, outPath string) (bool, error) {
	s.logger.Info().Str("target", target).Msg("running secret scan")
	code, err := s.cmd.Run(ctx, s.cfg.GitleaksPath,
		"detect", "--source", target, "--report-format", "json", "--report-path", outPath, "--no-banner")
	if err != nil {
		return false, fmt.Errorf("run gitleaks: %w", err)
	}
	switch code {
	case 0:
		return false, nil
	case gitleaksLeakExitCode:
		s.logger.Debug().Msg("secret scan reported leaks")
		return true, nil
	default:
		return false, fmt.Errorf("gitleaks exited with code %d", code)
	}
}

// reportHasFindings inspects a written trivy report. A missing output file
// after a clean exit counts as no findings; a malformed one is logged and
// likewise treated as empty.
func (s *Scans) reportHasFindings(path string, check func(*model.TrivyReport) bool) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", path).Msg("cannot read report")
		}
		return false
	}
	var rep model.TrivyReport
	if err := json.Unmarshal(data, &rep); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("malformed report")
		return false
	}
	return check(&rep)
}
