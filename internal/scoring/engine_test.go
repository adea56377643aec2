package scoring

import (
	"errors"
	"testing"

	"github.com/zendalabs/zenda/internal/scorecard"
	"github.com/zendalabs/zenda/pkg/types"
)

func fixedJitter(v float64) func() float64 {
	return func() float64 { return v }
}

func testEngine() *Engine {
	e := NewEngine(scorecard.Default())
	e.Jitter = fixedJitter(0)
	return e
}

func baseApplicant() types.Applicant {
	return types.Applicant{
		Country:               "México",
		Currency:              "MXN",
		Balances:              []float64{45000, 42000, 38000},
		AvgIncome:             28000,
		AnomalousTransactions: 0,
		RiskCountry:           false,
		IncomeStability:       0.92,
		AccountAgeMonths:      18,
	}
}

func TestEvaluateApprovedApplicant(t *testing.T) {
	decision, err := testEngine().Evaluate(baseApplicant())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	// 500 + 184 + 30 + 0 + 20 + 20 + 30 = 784
	if decision.Score != 784 {
		t.Fatalf("expected score 784, got %d", decision.Score)
	}
	if !decision.Approved {
		t.Fatalf("expected approval")
	}
	if decision.Recommendation != types.RecommendationApproved {
		t.Fatalf("unexpected recommendation %q", decision.Recommendation)
	}
	// (784-500)*2 + min(28000*0.3, 5000) = 568 + 5000
	if decision.CreditLimit != 5568 {
		t.Fatalf("expected credit limit 5568, got %d", decision.CreditLimit)
	}
}

func TestEvaluateFactorOrder(t *testing.T) {
	decision, err := testEngine().Evaluate(baseApplicant())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if len(decision.Factors) != 6 {
		t.Fatalf("expected 6 factors, got %d", len(decision.Factors))
	}
	for i, factor := range decision.Factors {
		if factor.Name != FactorOrder[i] {
			t.Fatalf("factor %d: expected %s, got %s", i, FactorOrder[i], factor.Name)
		}
	}
}

func TestEvaluateFactorImpacts(t *testing.T) {
	decision, err := testEngine().Evaluate(baseApplicant())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	impacts := map[string]float64{}
	positives := map[string]bool{}
	for _, f := range decision.Factors {
		impacts[f.Name] = f.Impact
		positives[f.Name] = f.Positive
	}

	if impacts[FactorIncomeStability] != 184 {
		t.Fatalf("expected stability impact 184, got %v", impacts[FactorIncomeStability])
	}
	if impacts[FactorBalanceTrend] != 30 {
		t.Fatalf("expected trend impact 30, got %v", impacts[FactorBalanceTrend])
	}
	if impacts[FactorAnomalousTransactions] != 0 {
		t.Fatalf("expected anomaly impact 0, got %v", impacts[FactorAnomalousTransactions])
	}
	if impacts[FactorCountryRisk] != 20 {
		t.Fatalf("expected country impact 20, got %v", impacts[FactorCountryRisk])
	}
	if impacts[FactorSavingsCapacity] != 20 {
		t.Fatalf("expected savings impact 20, got %v", impacts[FactorSavingsCapacity])
	}
	if impacts[FactorAccountAge] != 30 {
		t.Fatalf("expected age impact 30, got %v", impacts[FactorAccountAge])
	}

	for name, positive := range positives {
		if !positive {
			t.Fatalf("expected factor %s to read positive", name)
		}
	}
}

func TestEvaluateAnomalyHardGate(t *testing.T) {
	a := baseApplicant()
	a.IncomeStability = 1
	a.AnomalousTransactions = 3
	a.Balances = []float64{300000, 100000}

	decision, err := testEngine().Evaluate(a)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if decision.Score < 600 {
		t.Fatalf("gate test needs a passing score, got %d", decision.Score)
	}
	if decision.Approved {
		t.Fatalf("expected rejection on anomaly gate despite score %d", decision.Score)
	}
	if decision.CreditLimit != 0 {
		t.Fatalf("expected zero credit limit on rejection, got %d", decision.CreditLimit)
	}
	if decision.Recommendation != types.RecommendationRejected {
		t.Fatalf("unexpected recommendation %q", decision.Recommendation)
	}
}

func TestEvaluateFlatBalancesPenalized(t *testing.T) {
	a := baseApplicant()
	a.Balances = []float64{100, 100}
	a.AvgIncome = 50

	decision, err := testEngine().Evaluate(a)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	trend := decision.Factors[1]
	if trend.Name != FactorBalanceTrend {
		t.Fatalf("expected balance_trend at index 1, got %s", trend.Name)
	}
	if trend.Impact != -50 {
		t.Fatalf("flat balances should take the declining delta, got %v", trend.Impact)
	}
	if trend.Positive {
		t.Fatalf("flat trend must not read positive")
	}
}

func TestEvaluateAnomalyFloor(t *testing.T) {
	a := baseApplicant()
	a.AnomalousTransactions = 10

	decision, err := testEngine().Evaluate(a)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	anomaly := decision.Factors[2]
	if anomaly.Impact != -100 {
		t.Fatalf("expected anomaly impact floored at -100, got %v", anomaly.Impact)
	}
	if anomaly.Positive {
		t.Fatalf("10 anomalies must not read positive")
	}
}

func TestEvaluateApprovalBoundary(t *testing.T) {
	// 500 + 150 - 50 - 60 + 20 + 20 + 20 = 600, with exactly 2 anomalies.
	atBoundary := types.Applicant{
		Country:               "Perú",
		Currency:              "PEN",
		Balances:              []float64{1000, 1200},
		AvgIncome:             900,
		AnomalousTransactions: 2,
		IncomeStability:       0.75,
		AccountAgeMonths:      10,
	}

	decision, err := testEngine().Evaluate(atBoundary)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Score != 600 {
		t.Fatalf("expected score 600, got %d", decision.Score)
	}
	if !decision.Approved {
		t.Fatalf("score 600 with 2 anomalies must approve")
	}

	// One stability point lower lands on 599 and must reject.
	belowBoundary := atBoundary
	belowBoundary.IncomeStability = 0.745

	decision, err = testEngine().Evaluate(belowBoundary)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Score != 599 {
		t.Fatalf("expected score 599, got %d", decision.Score)
	}
	if decision.Approved {
		t.Fatalf("score 599 must reject")
	}
	if decision.CreditLimit != 0 {
		t.Fatalf("expected zero credit limit, got %d", decision.CreditLimit)
	}
}

func TestEvaluateClampLow(t *testing.T) {
	a := types.Applicant{
		Country:               "Argentina",
		Currency:              "ARS",
		Balances:              []float64{100, 200},
		AvgIncome:             1000,
		AnomalousTransactions: 4,
		RiskCountry:           true,
		IncomeStability:       0,
		AccountAgeMonths:      0,
	}

	decision, err := testEngine().Evaluate(a)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	// Raw sum is 290; the clamp floor holds it at 300.
	if decision.Score != 300 {
		t.Fatalf("expected clamped score 300, got %d", decision.Score)
	}
	if decision.Approved {
		t.Fatalf("clamped floor score must reject")
	}
}

func TestEvaluateClampHigh(t *testing.T) {
	sc := scorecard.Default()
	sc.BaseScore = 700

	e := NewEngine(sc)
	e.Jitter = fixedJitter(0)

	decision, err := e.Evaluate(baseApplicant())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Score != 850 {
		t.Fatalf("expected score clamped to 850, got %d", decision.Score)
	}
}

func TestEvaluateRiskCountryPenalty(t *testing.T) {
	a := baseApplicant()
	a.RiskCountry = true

	decision, err := testEngine().Evaluate(a)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	country := decision.Factors[3]
	if country.Impact != -40 {
		t.Fatalf("expected country impact -40, got %v", country.Impact)
	}
	if country.Positive {
		t.Fatalf("risk country must not read positive")
	}
	// 784 - 60 = 724: the flag alone does not reject.
	if !decision.Approved {
		t.Fatalf("risk country with a strong profile should still approve, score %d", decision.Score)
	}
}

func TestEvaluateSavingsTiers(t *testing.T) {
	cases := []struct {
		name    string
		balance float64
		income  float64
		impact  float64
	}{
		{"strong", 2100, 1000, 40},
		{"positive", 1500, 1000, 20},
		{"equal is penalized", 1000, 1000, -20},
		{"weak", 500, 1000, -20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := baseApplicant()
			a.Balances = []float64{tc.balance, tc.balance}
			a.AvgIncome = tc.income

			decision, err := testEngine().Evaluate(a)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			savings := decision.Factors[4]
			if savings.Impact != tc.impact {
				t.Fatalf("expected savings impact %v, got %v", tc.impact, savings.Impact)
			}
			if savings.Positive != (tc.impact > 0) {
				t.Fatalf("savings positive flag mismatch for impact %v", savings.Impact)
			}
		})
	}
}

func TestEvaluateAccountAgeCap(t *testing.T) {
	a := baseApplicant()
	a.AccountAgeMonths = 240

	decision, err := testEngine().Evaluate(a)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	age := decision.Factors[5]
	if age.Impact != 30 {
		t.Fatalf("expected age impact capped at 30, got %v", age.Impact)
	}

	a.AccountAgeMonths = 5
	decision, err = testEngine().Evaluate(a)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	age = decision.Factors[5]
	if age.Impact != 10 {
		t.Fatalf("expected age impact 10, got %v", age.Impact)
	}
	if age.Positive {
		t.Fatalf("5-month-old account must not read positive")
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	e := testEngine()

	first, err := e.Evaluate(baseApplicant())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	second, err := e.Evaluate(baseApplicant())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if first.Approved != second.Approved || first.Score != second.Score || first.CreditLimit != second.CreditLimit {
		t.Fatalf("expected identical decisions, got %+v vs %+v", first, second)
	}
	for i := range first.Factors {
		if first.Factors[i] != second.Factors[i] {
			t.Fatalf("factor %d differs: %+v vs %+v", i, first.Factors[i], second.Factors[i])
		}
	}
}

func TestEvaluateConfidence(t *testing.T) {
	e := NewEngine(scorecard.Default())
	e.Jitter = fixedJitter(0.5)

	decision, err := e.Evaluate(baseApplicant())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Confidence != 90.0 {
		t.Fatalf("expected confidence 90.0, got %v", decision.Confidence)
	}

	e.Jitter = nil // falls back to the shared source
	for range 50 {
		decision, err = e.Evaluate(baseApplicant())
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if decision.Confidence < 85 || decision.Confidence >= 95.05 {
			t.Fatalf("confidence out of range: %v", decision.Confidence)
		}
	}
}

func TestEvaluateRejectsInvalidApplicants(t *testing.T) {
	cases := map[string]func(*types.Applicant){
		"empty balances":     func(a *types.Applicant) { a.Balances = nil },
		"zero income":        func(a *types.Applicant) { a.AvgIncome = 0 },
		"negative income":    func(a *types.Applicant) { a.AvgIncome = -100 },
		"stability above 1":  func(a *types.Applicant) { a.IncomeStability = 1.2 },
		"stability below 0":  func(a *types.Applicant) { a.IncomeStability = -0.1 },
		"negative anomalies": func(a *types.Applicant) { a.AnomalousTransactions = -1 },
		"negative age":       func(a *types.Applicant) { a.AccountAgeMonths = -3 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			a := baseApplicant()
			mutate(&a)

			_, err := testEngine().Evaluate(a)
			if !errors.Is(err, ErrInvalidApplicant) {
				t.Fatalf("expected ErrInvalidApplicant, got %v", err)
			}
		})
	}
}
