package report

import (
	"strconv"

	"github.com/openpulse/pulse-scanner/internal/model"
)

// Defaults applied when the scanner left a field blank.
const (
	defaultClass = "config"
	defaultType  = "kubernetes"
)

// TransformConfig flattens a raw trivy config report into the upload DTO.
// Targets without misconfigurations are dropped; TotalCount counts every
// misconfiguration that made it through. Nil in, nil out.
func TransformConfig(raw *model.TrivyReport) *model.ConfigScanResponseDto {
	if raw == nil {
		return nil
	}
	dto := &model.ConfigScanResponseDto{Targets: []model.ConfigScanTarget{}}
	for _, res := range raw.Results {
		if len(res.Misconfigurations) == 0 {
			continue
		}
		target := model.ConfigScanTarget{
			Target: res.Target,
			Class:  res.Class,
			Type:   res.Type,
		}
		if target.Class == "" {
			target.Class = defaultClass
		}
		if target.Type == "" {
			target.Type = defaultType
		}
		for _, m := range res.Misconfigurations {
			sev := m.Severity
			if sev == "" {
				sev = model.SeverityUnknown
			}
			target.Misconfigurations = append(target.Misconfigurations, model.MisconfigurationDto{
				ID:          m.ID,
				Title:       m.Title,
				Description: m.Description,
				Severity:    sev,
				Resolution:  m.Resolution,
				Query:       m.Query,
			})
		}
		dto.TotalCount += len(target.Misconfigurations)
		dto.Targets = append(dto.Targets, target)
	}
	return dto
}

// secretKey identifies one leak occurrence. Two findings with the same key
// are the same leak reported twice.
type secretKey struct {
	file      string
	value     string
	startLine string
	endLine   string
	startCol  string
	endCol    string
}

// TransformSecrets maps raw gitleaks findings into the upload shape,
// string-coercing positions and collapsing duplicates to the first
// occurrence. Order of the survivors follows the input.
func TransformSecrets(raw []model.GitleaksFinding) []model.SecretFindingDto {
	out := make([]model.SecretFindingDto, 0, len(raw))
	seen := make(map[secretKey]struct{}, len(raw))
	for _, f := range raw {
		dto := model.SecretFindingDto{
			RuleID:      f.RuleID,
			File:        f.File,
			Match:       f.Match,
			Secret:      f.Secret,
			StartLine:   strconv.Itoa(f.StartLine),
			EndLine:     strconv.Itoa(f.EndLine),
			StartColumn: strconv.Itoa(f.StartColumn),
			EndColumn:   strconv.Itoa(f.EndColumn),
		}
		value := dto.Secret
		if value == "" {
			value = dto.Match
		}
		key := secretKey{dto.File, value, dto.StartLine, dto.EndLine, dto.StartColumn, dto.EndColumn}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, dto)
	}
	return out
}
