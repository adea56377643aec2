package scoring

import (
	"math"
	"math/rand/v2"

	"github.com/zendalabs/zenda/internal/scorecard"
	"github.com/zendalabs/zenda/pkg/types"
)

// Factor names, in evaluation order. Every decision carries exactly these
// six factors regardless of input values.
const (
	FactorIncomeStability       = "income_stability"
	FactorBalanceTrend          = "balance_trend"
	FactorAnomalousTransactions = "anomalous_transactions"
	FactorCountryRisk           = "country_risk"
	FactorSavingsCapacity       = "savings_capacity"
	FactorAccountAge            = "account_age"
)

// FactorOrder is the fixed evaluation order of the scoring factors.
var FactorOrder = []string{
	FactorIncomeStability,
	FactorBalanceTrend,
	FactorAnomalousTransactions,
	FactorCountryRisk,
	FactorSavingsCapacity,
	FactorAccountAge,
}

// Engine evaluates applicants against a scorecard. The decision is fully
// deterministic for a given applicant and scorecard; the only randomness
// is the advisory confidence jitter, injected so tests can pin it.
type Engine struct {
	Scorecard scorecard.Scorecard

	// Jitter returns a value in [0,1). Defaults to the shared math/rand/v2
	// source, which is safe for concurrent use.
	Jitter func() float64
}

func NewEngine(sc scorecard.Scorecard) *Engine {
	return &Engine{Scorecard: sc, Jitter: rand.Float64}
}

// Evaluate scores one applicant. It validates the applicant first and
// performs no computation on invalid input.
//
// Note on currencies: balances and income are in the applicant's origin
// currency, while the savings thresholds and the credit-limit income cap
// are scaled as if amounts were already in a common currency. That is the
// behavior of the launch model, preserved deliberately; do not "fix" it
// here without revising the scorecard and every documented example.
func (e *Engine) Evaluate(a types.Applicant) (types.Decision, error) {
	if err := Validate(a); err != nil {
		return types.Decision{}, err
	}

	sc := e.Scorecard
	score := sc.BaseScore
	factors := make([]types.Factor, 0, len(FactorOrder))

	stability := a.IncomeStability * sc.IncomeStability.Weight
	score += stability
	factors = append(factors, types.Factor{
		Name:     FactorIncomeStability,
		Impact:   round2(stability),
		Positive: a.IncomeStability > sc.IncomeStability.StrongThreshold,
	})

	trend := sc.BalanceTrend.Declining
	if a.Balances[0] > a.Balances[len(a.Balances)-1] {
		trend = sc.BalanceTrend.Improving
	}
	score += trend
	factors = append(factors, types.Factor{
		Name:     FactorBalanceTrend,
		Impact:   trend,
		Positive: trend > 0,
	})

	anomaly := math.Max(sc.Anomalies.Floor, float64(a.AnomalousTransactions)*sc.Anomalies.PerTransaction)
	score += anomaly
	factors = append(factors, types.Factor{
		Name:     FactorAnomalousTransactions,
		Impact:   anomaly,
		Positive: a.AnomalousTransactions <= sc.Anomalies.Tolerated,
	})

	country := sc.CountryRisk.SafeBonus
	if a.RiskCountry {
		country = sc.CountryRisk.RiskPenalty
	}
	score += country
	factors = append(factors, types.Factor{
		Name:     FactorCountryRisk,
		Impact:   country,
		Positive: !a.RiskCountry,
	})

	avgBalance := mean(a.Balances)
	var savings float64
	switch {
	case avgBalance > a.AvgIncome*sc.Savings.StrongRatio:
		savings = sc.Savings.StrongBonus
	case avgBalance > a.AvgIncome:
		savings = sc.Savings.PositiveBonus
	default:
		savings = sc.Savings.Penalty
	}
	score += savings
	factors = append(factors, types.Factor{
		Name:     FactorSavingsCapacity,
		Impact:   savings,
		Positive: savings > 0,
	})

	age := math.Min(sc.AccountAge.Cap, float64(a.AccountAgeMonths)*sc.AccountAge.PerMonth)
	score += age
	factors = append(factors, types.Factor{
		Name:     FactorAccountAge,
		Impact:   age,
		Positive: a.AccountAgeMonths >= sc.AccountAge.MatureMonths,
	})

	finalScore := int(clamp(math.Round(score), sc.Clamp.Min, sc.Clamp.Max))

	// The anomaly count is a hard gate: it rejects even applicants who
	// clear the score threshold.
	approved := finalScore >= sc.Approval.MinScore && a.AnomalousTransactions <= sc.Approval.MaxAnomalies

	creditLimit := 0
	if approved {
		base := (float64(finalScore) - sc.CreditLimit.ScoreOffset) * sc.CreditLimit.ScoreMultiplier
		income := math.Min(a.AvgIncome*sc.CreditLimit.IncomeRate, sc.CreditLimit.IncomeCap)
		creditLimit = int(math.Round(base + income))
	}

	recommendation := types.RecommendationRejected
	if approved {
		recommendation = types.RecommendationApproved
	}

	jitter := e.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}
	confidence := round1(sc.Confidence.Base + jitter()*sc.Confidence.Spread)

	return types.Decision{
		Approved:       approved,
		Score:          finalScore,
		Factors:        factors,
		Recommendation: recommendation,
		Confidence:     confidence,
		CreditLimit:    creditLimit,
	}, nil
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
