package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpulse/pulse-scanner/internal/config"
)

const misconfigReport = `{
  "SchemaVersion": 2,
  "ArtifactName": "deploy",
  "Results": [
    {
      "Target": "deploy/app.yaml",
      "Class": "config",
      "Type": "kubernetes",
      "Misconfigurations": [
        {"ID": "KSV001", "Title": "Process can elevate its own privileges", "Severity": "MEDIUM"}
      ]
    }
  ]
}`

const cleanReport = `{"SchemaVersion": 2, "ArtifactName": "deploy", "Results": []}`

func testScans(cmd CommandRunner) *Scans {
	cfg := config.Config{
		TrivyPath:    "trivy",
		GitleaksPath: "gitleaks",
		CdxgenPath:   "cdxgen",
	}
	return NewScans(cfg, cmd, zerolog.Nop())
}

func writeOn(t *testing.T, path, content string) func(string, []string) (int, error) {
	t.Helper()
	return func(string, []string) (int, error) {
		return 0, os.WriteFile(path, []byte(content), 0o644)
	}
}

func TestConfigScanReportsFindings(t *testing.T) {
	out := filepath.Join(t.TempDir(), "config.json")
	fake := &FakeRunner{Script: writeOn(t, out, misconfigReport)}

	found, err := testScans(fake).ConfigScan(context.Background(), ".", out)
	require.NoError(t, err)
	assert.True(t, found)

	require.Len(t, fake.Calls, 1)
	assert.Equal(t, []string{"trivy", "config", "--format", "json", "--output", out, "."}, fake.Calls[0])
}

func TestConfigScanCleanReport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "config.json")
	fake := &FakeRunner{Script: writeOn(t, out, cleanReport)}

	found, err := testScans(fake).ConfigScan(context.Background(), ".", out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestConfigScanMissingOutputIsClean(t *testing.T) {
	out := filepath.Join(t.TempDir(), "config.json")
	fake := &FakeRunner{}

	found, err := testScans(fake).ConfigScan(context.Background(), ".", out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestConfigScanMalformedOutputIsClean(t *testing.T) {
	out := filepath.Join(t.TempDir(), "config.json")
	fake := &FakeRunner{Script: writeOn(t, out, "{not json")}

	found, err := testScans(fake).ConfigScan(context.Background(), ".", out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestConfigScanExecutionFailures(t *testing.T) {
	t.Run("non-zero exit", func(t *testing.T) {
		fake := &FakeRunner{Script: func(string, []string) (int, error) { return 2, nil }}
		_, err := testScans(fake).ConfigScan(context.Background(), ".", "out.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exited with code 2")
	})
	t.Run("start failure", func(t *testing.T) {
		fake := &FakeRunner{Script: func(string, []string) (int, error) { return -1, errors.New("executable not found") }}
		_, err := testScans(fake).ConfigScan(context.Background(), ".", "out.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run trivy config")
	})
}

func TestVulnScanSkipsWithoutSBOM(t *testing.T) {
	dir := t.TempDir()
	fake := &FakeRunner{}

	found, err := testScans(fake).VulnScan(context.Background(), filepath.Join(dir, "bom.json"), filepath.Join(dir, "vuln.json"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, fake.Calls, "no tool invocation without an SBOM")
}

func TestVulnScanReportsFindings(t *testing.T) {
	dir := t.TempDir()
	sbom := filepath.Join(dir, "bom.json")
	require.NoError(t, os.WriteFile(sbom, []byte(`{"bomFormat":"CycloneDX"}`), 0o644))
	out := filepath.Join(dir, "vuln.json")

	vulnReport := `{
  "Results": [
    {"Target": "app", "Vulnerabilities": [{"VulnerabilityID": "CVE-2024-0001", "Severity": "HIGH"}]}
  ]
}`
	fake := &FakeRunner{Script: writeOn(t, out, vulnReport)}

	found, err := testScans(fake).VulnScan(context.Background(), sbom, out)
	require.NoError(t, err)
	assert.True(t, found)

	require.Len(t, fake.Calls, 1)
	assert.Equal(t, []string{"trivy", "sbom", "--format", "json", "--output", out, sbom}, fake.Calls[0])
}

func TestSecretScanExitCodes(t *testing.T) {
	tests := []struct {
		name      string
		exitCode  int
		runErr    error
		wantFound bool
		wantErr   bool
	}{
		{name: "clean", exitCode: 0, wantFound: false},
		{name: "leaks found", exitCode: 1, wantFound: true},
		{name: "tool failure", exitCode: 2, wantErr: true},
		{name: "not installed", exitCode: -1, runErr: errors.New("executable not found"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &FakeRunner{Script: func(string, []string) (int, error) { return tt.exitCode, tt.runErr }}

			found, err := testScans(fake).SecretScan(context.Background(), ".", "gitleaks.json")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
		})
	}
}

func TestSecretScanCommandLine(t *testing.T) {
	fake := &FakeRunner{}
	_, err := testScans(fake).SecretScan(context.Background(), "/src", "out.json")
	require.NoError(t, err)

	require.Len(t, fake.Calls, 1)
	assert.Equal(t, []string{
		"gitleaks", "detect", "--source", "/src",
		"--report-format", "json", "--report-path", "out.json", "--no-banner",
	}, fake.Calls[0])
}

func TestGenerateSBOM(t *testing.T) {
	fake := &FakeRunner{}
	require.NoError(t, testScans(fake).GenerateSBOM(context.Background(), "/src", "bom.json"))
	require.Len(t, fake.Calls, 1)
	assert.Equal(t, []string{"cdxgen", "-o", "bom.json", "/src"}, fake.Calls[0])

	failing := &FakeRunner{Script: func(string, []string) (int, error) { return 1, nil }}
	err := testScans(failing).GenerateSBOM(context.Background(), "/src", "bom.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with code 1")
}
