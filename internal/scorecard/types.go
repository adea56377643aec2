package scorecard

// Scorecard is the full set of weights, thresholds and bounds the scoring
// engine runs under. It is loaded from YAML so a scorecard revision is a
// data change, hash-addressed like any other artifact.
type Scorecard struct {
	ScorecardID      string `yaml:"scorecard_id"`
	ScorecardVersion string `yaml:"scorecard_version"`

	BaseScore float64 `yaml:"base_score"`

	Clamp           Clamp           `yaml:"clamp"`
	Approval        Approval        `yaml:"approval"`
	IncomeStability IncomeStability `yaml:"income_stability"`
	BalanceTrend    BalanceTrend    `yaml:"balance_trend"`
	Anomalies       Anomalies       `yaml:"anomalies"`
	CountryRisk     CountryRisk     `yaml:"country_risk"`
	Savings         Savings         `yaml:"savings"`
	AccountAge      AccountAge      `yaml:"account_age"`
	CreditLimit     CreditLimit     `yaml:"credit_limit"`
	Confidence      Confidence      `yaml:"confidence"`
}

type Clamp struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type Approval struct {
	MinScore     int `yaml:"min_score"`
	MaxAnomalies int `yaml:"max_anomalies"`
}

type IncomeStability struct {
	Weight          float64 `yaml:"weight"`
	StrongThreshold float64 `yaml:"strong_threshold"`
}

type BalanceTrend struct {
	Improving float64 `yaml:"improving"`
	Declining float64 `yaml:"declining"`
}

type Anomalies struct {
	PerTransaction float64 `yaml:"per_transaction"`
	Floor          float64 `yaml:"floor"`
	Tolerated      int     `yaml:"tolerated"`
}

type CountryRisk struct {
	RiskPenalty   float64  `yaml:"risk_penalty"`
	SafeBonus     float64  `yaml:"safe_bonus"`
	RiskCountries []string `yaml:"risk_countries"`
}

type Savings struct {
	StrongRatio   float64 `yaml:"strong_ratio"`
	StrongBonus   float64 `yaml:"strong_bonus"`
	PositiveBonus float64 `yaml:"positive_bonus"`
	Penalty       float64 `yaml:"penalty"`
}

type AccountAge struct {
	PerMonth     float64 `yaml:"per_month"`
	Cap          float64 `yaml:"cap"`
	MatureMonths int     `yaml:"mature_months"`
}

type CreditLimit struct {
	ScoreOffset     float64 `yaml:"score_offset"`
	ScoreMultiplier float64 `yaml:"score_multiplier"`
	IncomeRate      float64 `yaml:"income_rate"`
	IncomeCap       float64 `yaml:"income_cap"`
}

type Confidence struct {
	Base   float64 `yaml:"base"`
	Spread float64 `yaml:"spread"`
}

// IsRiskCountry reports whether country appears on the scorecard's risk
// list. Matching is by exact country name.
func (s Scorecard) IsRiskCountry(country string) bool {
	for _, c := range s.CountryRisk.RiskCountries {
		if c == country {
			return true
		}
	}
	return false
}
