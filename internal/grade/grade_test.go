package grade

import (
	"testing"

	"github.com/zendalabs/zenda/pkg/types"
)

func TestEvaluateRejectionIsF(t *testing.T) {
	result := Evaluate(Input{
		Decision:  types.Decision{Approved: false, Score: 550},
		Applicant: types.Applicant{AnomalousTransactions: 3},
	})
	if result.Grade != "F" {
		t.Fatalf("expected F, got %s", result.Grade)
	}
	if len(result.Reasons) != 3 {
		t.Fatalf("unexpected reasons: %v", result.Reasons)
	}
}

func TestEvaluateCleanApprovalBands(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{800, "A"},
		{780, "A"},
		{750, "B"},
		{700, "C"},
		{620, "D"},
	}
	for _, tc := range cases {
		result := Evaluate(Input{Decision: types.Decision{Approved: true, Score: tc.score}})
		if result.Grade != tc.want {
			t.Fatalf("score %d: expected %s, got %s", tc.score, tc.want, result.Grade)
		}
		if len(result.Reasons) != 0 {
			t.Fatalf("score %d: unexpected reasons %v", tc.score, result.Reasons)
		}
	}
}

func TestEvaluateFlagsDowngrade(t *testing.T) {
	result := Evaluate(Input{
		Decision:  types.Decision{Approved: true, Score: 800},
		Applicant: types.Applicant{RiskCountry: true},
	})
	if result.Grade != "B" {
		t.Fatalf("expected downgrade to B, got %s", result.Grade)
	}
	if len(result.Reasons) != 1 || result.Reasons[0] != "risk_country" {
		t.Fatalf("unexpected reasons: %v", result.Reasons)
	}

	result = Evaluate(Input{
		Decision:  types.Decision{Approved: true, Score: 610},
		Applicant: types.Applicant{AnomalousTransactions: 1},
	})
	if result.Grade != "E" {
		t.Fatalf("expected downgrade to E, got %s", result.Grade)
	}
}
