package services

import (
	"fmt"
	"strings"
	"time"

	giturls "github.com/whilp/git-urls"

	"github.com/cyberio/backend/internal/domain"
)

const (
	maxChecksPerScan = 16
	maxCheckKindLen  = 64
)

// normalizeChecks trims, validates and de-duplicates check kinds while
// keeping their request order. An empty request selects the defaults.
func normalizeChecks(checks []string) ([]string, error) {
	seen := make(map[string]struct{}, len(checks))
	out := make([]string, 0, len(checks))
	for _, raw := range checks {
		kind := strings.TrimSpace(raw)
		if kind == "" {
			continue
		}
		if !validCheckKind(kind) {
			return nil, fmt.Errorf("%w: %q", ErrScanInvalidCheck, kind)
		}
		if _, dup := seen[kind]; dup {
			continue
		}
		seen[kind] = struct{}{}
		out = append(out, kind)
	}

	if len(out) == 0 {
		return append([]string(nil), domain.DefaultChecks...), nil
	}
	if len(out) > maxChecksPerScan {
		return nil, fmt.Errorf("%w: at most %d checks per scan", ErrScanInvalidCheck, maxChecksPerScan)
	}
	return out, nil
}

func validCheckKind(kind string) bool {
	if len(kind) > maxCheckKindLen {
		return false
	}
	for _, r := range kind {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

// repositoryLabel turns a clone URL into host/owner/name. Targets that are
// not git URLs are returned unchanged.
func repositoryLabel(target string) string {
	u, err := giturls.Parse(target)
	if err != nil {
		return target
	}

	hostname := u.Hostname()
	if hostname == "" {
		hostname = u.Host
	}
	path := strings.TrimSuffix(strings.Trim(u.Path, "/"), ".git")
	if hostname == "" {
		return path
	}
	if path == "" {
		return hostname
	}
	return hostname + "/" + path
}

// syntheticResults builds one fixed finding per requested check kind.
func syntheticResults(target string, checks []string) map[string]domain.CheckResult {
	repo := repositoryLabel(target)
	results := make(map[string]domain.CheckResult, len(checks))
	for _, kind := range checks {
		finding := syntheticFinding(kind)
		finding.Repository = repo
		results[kind] = domain.CheckResult{
			Findings: []domain.Finding{finding},
			Summary:  countFindings([]domain.Finding{finding}),
		}
	}
	return results
}

func syntheticFinding(kind string) domain.Finding {
	switch kind {
	case "semgrep":
		return domain.Finding{
			ID:         "javascript.lang.security.audit.xss.direct-response-write",
			Category:   domain.CategorySAST,
			Severity:   "WARNING",
			Title:      "Direct response write",
			Message:    "Potential XSS vulnerability detected",
			Path:       "src/app.js",
			Line:       42,
			Confidence: "HIGH",
		}
	case "trivy":
		return domain.Finding{
			ID:               "CVE-2021-44228",
			Category:         domain.CategoryVulnerability,
			Severity:         "CRITICAL",
			Title:            "Apache Log4j2 JNDI features vulnerability",
			Package:          "log4j-core",
			InstalledVersion: "2.14.1",
			FixedVersion:     "2.15.0",
		}
	case "dependencyAudit":
		return domain.Finding{
			ID:               "CVE-2022-24999",
			Category:         domain.CategoryVulnerability,
			Severity:         "HIGH",
			Title:            "qs prototype pollution",
			Package:          "qs",
			InstalledVersion: "6.5.2",
			FixedVersion:     "6.5.3",
		}
	case "secrets":
		return domain.Finding{
			ID:       "aws-access-key-id",
			Category: domain.CategorySecret,
			Severity: "HIGH",
			Title:    "Hard-coded AWS access key",
			Message:  "AWS access key committed to the repository",
			Path:     "config/settings.js",
			Line:     7,
		}
	default:
		return domain.Finding{
			ID:       kind + ".informational",
			Category: domain.CategoryInfo,
			Severity: "INFO",
			Title:    fmt.Sprintf("%s check completed", kind),
			Message:  "No actionable issues reported",
		}
	}
}

func countFindings(findings []domain.Finding) domain.FindingCounts {
	counts := domain.FindingCounts{Total: len(findings)}
	for _, f := range findings {
		switch strings.ToUpper(f.Severity) {
		case "CRITICAL":
			counts.Critical++
		case "HIGH", "ERROR":
			counts.High++
		case "MEDIUM", "WARNING":
			counts.Medium++
		default:
			counts.Low++
		}
	}
	return counts
}

// securityScore starts at 100 and deducts per finding category.
func securityScore(results map[string]domain.CheckResult, now time.Time) *domain.SecurityScore {
	score := 100
	total := 0
	for _, res := range results {
		for _, f := range res.Findings {
			switch f.Category {
			case domain.CategorySAST:
				score -= 5
				total++
			case domain.CategoryVulnerability:
				score -= 3
				total++
			case domain.CategorySecret:
				score -= 10
				total++
			}
		}
	}
	if score < 0 {
		score = 0
	}
	return &domain.SecurityScore{
		Score:       score,
		Grade:       securityGrade(score),
		TotalIssues: total,
		Timestamp:   now,
	}
}

func securityGrade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}
