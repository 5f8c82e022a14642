package model

// TrivyReport is the subset of trivy's JSON report we consume. Both the
// config scan and the SBOM vulnerability scan emit this envelope; only the
// nested finding arrays differ.
type TrivyReport struct {
	SchemaVersion int           `json:"SchemaVersion"`
	ArtifactName  string        `json:"ArtifactName"`
	ArtifactType  string        `json:"ArtifactType,omitempty"`
	Results       []TrivyResult `json:"Results"`
}

type TrivyResult struct {
	Target            string             `json:"Target"`
	Class             string             `json:"Class,omitempty"`
	Type              string             `json:"Type,omitempty"`
	Misconfigurations []Misconfiguration `json:"Misconfigurations,omitempty"`
	Vulnerabilities   []Vulnerability    `json:"Vulnerabilities,omitempty"`
}

// Misconfiguration is a single policy violation from `trivy config`.
type Misconfiguration struct {
	ID          string `json:"ID"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	Namespace   string `json:"Namespace,omitempty"`
	Query       string `json:"Query,omitempty"`
	Resolution  string `json:"Resolution,omitempty"`
	Severity    string `json:"Severity"`
	Status      string `json:"Status,omitempty"`
}

// Vulnerability is a single CVE entry from `trivy sbom`.
type Vulnerability struct {
	VulnerabilityID  string `json:"VulnerabilityID"`
	PkgName          string `json:"PkgName"`
	InstalledVersion string `json:"InstalledVersion"`
	FixedVersion     string `json:"FixedVersion,omitempty"`
	Severity         string `json:"Severity"`
	Title            string `json:"Title,omitempty"`
	Description      string `json:"Description,omitempty"`
	PrimaryURL       string `json:"PrimaryURL,omitempty"`
}

// HasMisconfigurations reports whether any target carries at least one
// misconfiguration.
func (r *TrivyReport) HasMisconfigurations() bool {
	if r == nil {
		return false
	}
	for _, res := range r.Results {
		if len(res.Misconfigurations) > 0 {
			return true
		}
	}
	return false
}

// HasVulnerabilities reports whether any target carries at least one
// vulnerability.
func (r *TrivyReport) HasVulnerabilities() bool {
	if r == nil {
		return false
	}
	for _, res := range r.Results {
		if len(res.Vulnerabilities) > 0 {
			return true
		}
	}
	return false
}

// CountVulnerabilities returns the total vulnerability count across targets.
func (r *TrivyReport) CountVulnerabilities() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, res := range r.Results {
		n += len(res.Vulnerabilities)
	}
	return n
}
