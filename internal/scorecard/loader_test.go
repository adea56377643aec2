package scorecard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScorecardYAML = `scorecard_id: zenda-test
scorecard_version: "2026-01-15"
base_score: 500
clamp:
  min: 300
  max: 850
approval:
  min_score: 600
  max_anomalies: 2
income_stability:
  weight: 200
  strong_threshold: 0.7
balance_trend:
  improving: 30
  declining: -50
anomalies:
  per_transaction: -30
  floor: -100
  tolerated: 1
country_risk:
  risk_penalty: -40
  safe_bonus: 20
  risk_countries:
    - Argentina
savings:
  strong_ratio: 2
  strong_bonus: 40
  positive_bonus: 20
  penalty: -20
account_age:
  per_month: 2
  cap: 30
  mature_months: 12
credit_limit:
  score_offset: 500
  score_multiplier: 2
  income_rate: 0.3
  income_cap: 5000
confidence:
  base: 85
  spread: 10
`

func writeScorecard(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scorecard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadScorecard(t *testing.T) {
	loaded, err := Load(writeScorecard(t, testScorecardYAML))
	require.NoError(t, err)

	assert.Equal(t, "zenda-test", loaded.Scorecard.ScorecardID)
	assert.Equal(t, float64(500), loaded.Scorecard.BaseScore)
	assert.Equal(t, 600, loaded.Scorecard.Approval.MinScore)
	assert.Equal(t, float64(-50), loaded.Scorecard.BalanceTrend.Declining)
	assert.Equal(t, []string{"Argentina"}, loaded.Scorecard.CountryRisk.RiskCountries)
	assert.Contains(t, loaded.Hash, "sha256:")
	assert.NotEmpty(t, loaded.Bytes)
}

func TestLoadScorecardRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing id":     "scorecard_version: \"1\"\n",
		"bad clamp":      "scorecard_id: x\nclamp:\n  min: 900\n  max: 850\n",
		"not yaml":       "{{{",
		"zero min score": "scorecard_id: x\nclamp:\n  min: 300\n  max: 850\n",
	}
	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeScorecard(t, contents))
			assert.Error(t, err)
		})
	}
}

func TestLoadScorecardMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadDefault(t *testing.T) {
	loaded, err := LoadDefault()
	require.NoError(t, err)

	assert.NoError(t, loaded.Scorecard.Validate())
	assert.Contains(t, loaded.Hash, "sha256:")

	again, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, loaded.Hash, again.Hash)
}

func TestIsRiskCountry(t *testing.T) {
	s := Default()
	assert.True(t, s.IsRiskCountry("Argentina"))
	assert.False(t, s.IsRiskCountry("Colombia"))
	assert.False(t, s.IsRiskCountry(""))
}
