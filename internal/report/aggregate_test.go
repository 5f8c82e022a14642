package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeReport(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadEmptyDir(t *testing.T) {
	r := Load(t.TempDir(), zerolog.Nop())
	assert.False(t, r.HasReports())
	assert.Nil(t, r.SBOM)
	assert.Nil(t, r.Config)
	assert.Nil(t, r.Vuln)
	assert.Nil(t, r.Secrets)
}

func TestLoadPartial(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, SecretReportFile, `[
  {"RuleID": "aws-access-key", "File": ".env", "Secret": "AKIA000AAA", "StartLine": 2, "EndLine": 2}
]`)

	r := Load(dir, zerolog.Nop())
	assert.True(t, r.HasReports())
	require.Len(t, r.Secrets, 1)
	assert.Equal(t, "aws-access-key", r.Secrets[0].RuleID)
	assert.Equal(t, 2, r.Secrets[0].StartLine)
	assert.Nil(t, r.Config)
}

func TestLoadMalformedFileIgnored(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, ConfigReportFile, `{"Results": [trailing`)
	writeReport(t, dir, VulnReportFile, `{
  "ArtifactName": "bom.json",
  "Results": [
    {"Target": "app", "Vulnerabilities": [{"VulnerabilityID": "CVE-2024-0001", "Severity": "LOW"}]}
  ]
}`)

	r := Load(dir, zerolog.Nop())
	assert.Nil(t, r.Config, "malformed report behaves like a missing one")
	require.NotNil(t, r.Vuln)
	assert.Equal(t, 1, r.Vuln.CountVulnerabilities())
	assert.True(t, r.HasReports())
}

func TestLoadAllFour(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, SBOMFile, `{"bomFormat": "CycloneDX", "specVersion": "1.5", "components": [{"type": "library", "name": "lodash", "version": "4.17.21"}]}`)
	writeReport(t, dir, ConfigReportFile, `{"Results": [{"Target": "app.yaml", "Misconfigurations": [{"ID": "KSV001", "Severity": "MEDIUM"}]}]}`)
	writeReport(t, dir, VulnReportFile, `{"Results": []}`)
	writeReport(t, dir, SecretReportFile, `[]`)

	r := Load(dir, zerolog.Nop())
	require.NotNil(t, r.SBOM)
	assert.Equal(t, "CycloneDX", r.SBOM.BOMFormat)
	assert.Len(t, r.SBOM.Components, 1)
	require.NotNil(t, r.Config)
	assert.True(t, r.Config.HasMisconfigurations())
	require.NotNil(t, r.Vuln)
	assert.False(t, r.Vuln.HasVulnerabilities())
	assert.NotNil(t, r.Secrets, "an empty findings array still counts as a report")
	assert.True(t, r.HasReports())
}
