package model

// CycloneDXBOM is the minimal slice of a CycloneDX document we look at. The
// SBOM is uploaded as raw bytes; parsing it here only validates the artifact
// and feeds the component count into logs.
type CycloneDXBOM struct {
	BOMFormat   string               `json:"bomFormat"`
	SpecVersion string               `json:"specVersion"`
	Version     int                  `json:"version,omitempty"`
	Components  []CycloneDXComponent `json:"components,omitempty"`
}

type CycloneDXComponent struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	PURL    string `json:"purl,omitempty"`
}
