package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/openpulse/pulse-scanner/internal/model"
)

// Well-known artifact names inside the reports directory. The scan steps
// write them, the aggregator reads them back.
const (
	SBOMFile         = "bom.json"
	ConfigReportFile = "trivy-config-report.json"
	VulnReportFile   = "trivy-vuln-report.json"
	SecretReportFile = "gitleaks-report.json"
)

// Reports holds whatever subset of the four artifacts this run produced.
// A nil field means the file was missing or unreadable.
type Reports struct {
	SBOM    *model.CycloneDXBOM
	Config  *model.TrivyReport
	Vuln    *model.TrivyReport
	Secrets []model.GitleaksFinding
}

// Load reads the four well-known files from dir. Missing files are expected
// (a scan may have been skipped); malformed ones are logged and dropped.
// Load itself never fails.
func Load(dir string, logger zerolog.Logger) *Reports {
	r := &Reports{}

	var sbom model.CycloneDXBOM
	if readJSON(filepath.Join(dir, SBOMFile), &sbom, logger) {
		r.SBOM = &sbom
	}
	var cfg model.TrivyReport
	if readJSON(filepath.Join(dir, ConfigReportFile), &cfg, logger) {
		r.Config = &cfg
	}
	var vuln model.TrivyReport
	if readJSON(filepath.Join(dir, VulnReportFile), &vuln, logger) {
		r.Vuln = &vuln
	}
	var secrets []model.GitleaksFinding
	if readJSON(filepath.Join(dir, SecretReportFile), &secrets, logger) {
		r.Secrets = secrets
	}
	return r
}

// HasReports is false only when every artifact is absent, in which case the
// run has nothing to show or upload.
func (r *Reports) HasReports() bool {
	return r.SBOM != nil || r.Config != nil || r.Vuln != nil || r.Secrets != nil
}

func readJSON(path string, v any, logger zerolog.Logger) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", path).Msg("report not present")
		} else {
			logger.Error().Err(err).Str("path", path).Msg("cannot read report")
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("malformed report, ignoring")
		return false
	}
	return true
}
