package types

// Applicant is the structured financial profile extracted from an
// applicant's origin-country bank statements. Balances are chronological
// with the most recent balance first; amounts are in the origin currency.
type Applicant struct {
	Country               string    `json:"country" yaml:"country"`
	Currency              string    `json:"currency" yaml:"currency"`
	BankName              string    `json:"bank_name,omitempty" yaml:"bank_name,omitempty"`
	Balances              []float64 `json:"balances" yaml:"balances"`
	AvgIncome             float64   `json:"avg_income" yaml:"avg_income"`
	AnomalousTransactions int       `json:"anomalous_transactions" yaml:"anomalous_transactions"`
	RiskCountry           bool      `json:"risk_country" yaml:"risk_country"`
	IncomeStability       float64   `json:"income_stability" yaml:"income_stability"`
	AccountAgeMonths      int       `json:"account_age_months" yaml:"account_age_months"`
}
