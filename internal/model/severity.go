package model

// Severity levels as emitted by trivy. The upload API and the console
// reporter both expect the uppercase spelling.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
	SeverityUnknown  = "UNKNOWN"
)

// SeverityOrder is the fixed rendering order for console tables. Severities
// outside this list are counted but not grouped.
var SeverityOrder = []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
