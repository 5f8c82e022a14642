package console

import (
	"fmt"
	"io"

	"github.com/openpulse/pulse-scanner/internal/model"
)

// Printer renders finding tables for the build log. Rows are grouped into the
// four severity buckets in fixed order; rows with any other severity stay out
// of the table but still count toward the heading total.
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// PrintVulnerabilities renders the vulnerability table from a raw scan report.
func (p *Printer) PrintVulnerabilities(rep *model.TrivyReport) {
	if rep == nil {
		fmt.Fprintln(p.out, "Vulnerabilities: no report")
		return
	}
	total := rep.CountVulnerabilities()
	fmt.Fprintf(p.out, "\nVulnerabilities: %d\n", total)
	if total == 0 {
		return
	}

	t := &table{columns: []column{
		{"Severity", 10}, {"ID", 20}, {"Package", 24}, {"Installed", 14}, {"Fixed", 14}, {"Title", 40},
	}}
	buckets := make(map[string][][]string)
	for _, res := range rep.Results {
		for _, v := range res.Vulnerabilities {
			buckets[v.Severity] = append(buckets[v.Severity], []string{
				v.Severity, v.VulnerabilityID, v.PkgName, v.InstalledVersion, v.FixedVersion, v.Title,
			})
		}
	}
	for _, sev := range model.SeverityOrder {
		for _, row := range buckets[sev] {
			t.addRow(row...)
		}
	}
	t.render(p.out)
}

// PrintMisconfigurations renders the misconfiguration table from the
// transformed DTO.
func (p *Printer) PrintMisconfigurations(dto *model.ConfigScanResponseDto) {
	if dto == nil {
		fmt.Fprintln(p.out, "Misconfigurations: no report")
		return
	}
	fmt.Fprintf(p.out, "\nMisconfigurations: %d\n", dto.TotalCount)
	if dto.TotalCount == 0 {
		return
	}

	t := &table{columns: []column{
		{"Severity", 10}, {"ID", 16}, {"Target", 28}, {"Title", 44},
	}}
	buckets := make(map[string][][]string)
	for _, target := range dto.Targets {
		for _, m := range target.Misconfigurations {
			buckets[m.Severity] = append(buckets[m.Severity], []string{
				m.Severity, m.ID, target.Target, m.Title,
			})
		}
	}
	for _, sev := range model.SeverityOrder {
		for _, row := range buckets[sev] {
			t.addRow(row...)
		}
	}
	t.render(p.out)
}

// PrintSecrets renders the secret-leak table. gitleaks assigns no severity,
// so every exposed secret is listed as CRITICAL.
func (p *Printer) PrintSecrets(findings []model.SecretFindingDto) {
	if findings == nil {
		fmt.Fprintln(p.out, "Secrets: no report")
		return
	}
	fmt.Fprintf(p.out, "\nSecrets: %d\n", len(findings))
	if len(findings) == 0 {
		return
	}

	t := &table{columns: []column{
		{"Severity", 10}, {"Rule", 24}, {"File", 32}, {"Lines", 11}, {"Match", 40},
	}}
	for _, f := range findings {
		lines := f.StartLine
		if f.EndLine != "" && f.EndLine != f.StartLine {
			lines = f.StartLine + "-" + f.EndLine
		}
		t.addRow(model.SeverityCritical, f.RuleID, f.File, lines, f.Match)
	}
	t.render(p.out)
}
