package scorecard

// Default returns the built-in scorecard. The constants reproduce the
// launch scoring model exactly; a YAML scorecard with the same values
// hashes differently but decides identically.
func Default() Scorecard {
	return Scorecard{
		ScorecardID:      "zenda-default",
		ScorecardVersion: "2026-08-01",
		BaseScore:        500,
		Clamp:            Clamp{Min: 300, Max: 850},
		Approval:         Approval{MinScore: 600, MaxAnomalies: 2},
		IncomeStability:  IncomeStability{Weight: 200, StrongThreshold: 0.7},
		BalanceTrend:     BalanceTrend{Improving: 30, Declining: -50},
		Anomalies:        Anomalies{PerTransaction: -30, Floor: -100, Tolerated: 1},
		CountryRisk: CountryRisk{
			RiskPenalty: -40,
			SafeBonus:   20,
			RiskCountries: []string{
				"Argentina",
				"Venezuela",
			},
		},
		Savings:     Savings{StrongRatio: 2, StrongBonus: 40, PositiveBonus: 20, Penalty: -20},
		AccountAge:  AccountAge{PerMonth: 2, Cap: 30, MatureMonths: 12},
		CreditLimit: CreditLimit{ScoreOffset: 500, ScoreMultiplier: 2, IncomeRate: 0.3, IncomeCap: 5000},
		Confidence:  Confidence{Base: 85, Spread: 10},
	}
}
