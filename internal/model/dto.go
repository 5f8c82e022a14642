package model

// ConfigScanResponseDto is the normalized config-scan payload the API ingests.
// Targets with zero misconfigurations are excluded; TotalCount is the number
// of misconfigurations across all targets.
type ConfigScanResponseDto struct {
	Targets    []ConfigScanTarget `json:"targets"`
	TotalCount int                `json:"totalCount"`
}

// ConfigScanTarget groups the misconfigurations found in one scanned file.
type ConfigScanTarget struct {
	Target            string                `json:"target"`
	Class             string                `json:"class"`
	Type              string                `json:"type"`
	Misconfigurations []MisconfigurationDto `json:"misconfigurations"`
}

// MisconfigurationDto is one normalized misconfiguration entry.
type MisconfigurationDto struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Resolution  string `json:"resolution"`
	Query       string `json:"query"`
}

// SecretFindingDto is the normalized secret finding sent to the API. Line and
// column positions are carried as strings on the wire.
type SecretFindingDto struct {
	RuleID      string `json:"ruleId"`
	File        string `json:"file"`
	Match       string `json:"match"`
	Secret      string `json:"secret"`
	StartLine   string `json:"startLine"`
	EndLine     string `json:"endLine"`
	StartColumn string `json:"startColumn"`
	EndColumn   string `json:"endColumn"`
}

// CombinedScanRequest is the JSON body of the multipart upload's
// combinedScanRequest field.
type CombinedScanRequest struct {
	ConfigScanResponseDto *ConfigScanResponseDto `json:"configScanResponseDto"`
	ScannerSecretResponse []SecretFindingDto     `json:"scannerSecretResponse"`
	RepoName              string                 `json:"repoName"`
	BranchName            string                 `json:"branchName"`
}
