package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberio/backend/internal/domain"
)

func TestNormalizeChecks(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		wantErr bool
	}{
		{name: "empty selects defaults", in: nil, want: []string{"semgrep", "trivy"}},
		{name: "blank entries are dropped", in: []string{" ", ""}, want: []string{"semgrep", "trivy"}},
		{name: "order kept and duplicates removed", in: []string{"trivy", "secrets", "trivy", " semgrep "}, want: []string{"trivy", "secrets", "semgrep"}},
		{name: "invalid characters", in: []string{"rm -rf"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeChecks(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrScanInvalidCheck)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeChecks_TooMany(t *testing.T) {
	in := make([]string, 0, maxChecksPerScan+1)
	for i := 0; i <= maxChecksPerScan; i++ {
		in = append(in, "check"+string(rune('a'+i)))
	}
	_, err := normalizeChecks(in)
	assert.ErrorIs(t, err, ErrScanInvalidCheck)
}

func TestRepositoryLabel(t *testing.T) {
	assert.Equal(t, "github.com/acme/widgets", repositoryLabel("https://github.com/acme/widgets.git"))
	assert.Equal(t, "github.com/acme/widgets", repositoryLabel("git@github.com:acme/widgets.git"))
	assert.Equal(t, "example.com/repo", repositoryLabel("https://example.com/repo"))
}

func TestSyntheticResults_OneFindingPerCheck(t *testing.T) {
	results := syntheticResults("https://example.com/repo", []string{"dependencyAudit", "custom"})
	require.Len(t, results, 2)

	audit := results["dependencyAudit"]
	require.Len(t, audit.Findings, 1)
	assert.Equal(t, "CVE-2022-24999", audit.Findings[0].ID)
	assert.Equal(t, "example.com/repo", audit.Findings[0].Repository)
	assert.Equal(t, domain.FindingCounts{Total: 1, High: 1}, audit.Summary)

	custom := results["custom"]
	require.Len(t, custom.Findings, 1)
	assert.Equal(t, domain.CategoryInfo, custom.Findings[0].Category)
}

func TestSecurityScore(t *testing.T) {
	now := time.Now()

	score := securityScore(syntheticResults("t", []string{"semgrep", "trivy"}), now)
	assert.Equal(t, 92, score.Score)
	assert.Equal(t, "A", score.Grade)
	assert.Equal(t, 2, score.TotalIssues)

	score = securityScore(syntheticResults("t", []string{"secrets", "semgrep", "trivy", "dependencyAudit"}), now)
	assert.Equal(t, 79, score.Score)
	assert.Equal(t, "C", score.Grade)

	score = securityScore(syntheticResults("t", []string{"lint"}), now)
	assert.Equal(t, 100, score.Score)
	assert.Equal(t, 0, score.TotalIssues)
}

func TestSecurityGrade(t *testing.T) {
	assert.Equal(t, "A", securityGrade(90))
	assert.Equal(t, "B", securityGrade(89))
	assert.Equal(t, "C", securityGrade(70))
	assert.Equal(t, "D", securityGrade(60))
	assert.Equal(t, "F", securityGrade(59))
	assert.Equal(t, "F", securityGrade(0))
}
