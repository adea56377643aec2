package grade

import (
	"github.com/zendalabs/zenda/pkg/types"
)

type Result struct {
	Grade   string
	Reasons []string
}

type Input struct {
	Decision  types.Decision
	Applicant types.Applicant
}

// Evaluate maps a decision to a coarse risk grade. Rejections are always
// graded F; approvals band by score and are knocked down one notch when
// the profile carries residual flags.
func Evaluate(in Input) Result {
	if !in.Decision.Approved {
		reasons := []string{"rejected"}
		if in.Decision.Score < 600 {
			reasons = append(reasons, "score_below_threshold")
		}
		if in.Applicant.AnomalousTransactions > 2 {
			reasons = append(reasons, "anomaly_gate")
		}
		return Result{Grade: "F", Reasons: reasons}
	}

	grade := "E"
	switch {
	case in.Decision.Score >= 780:
		grade = "A"
	case in.Decision.Score >= 720:
		grade = "B"
	case in.Decision.Score >= 660:
		grade = "C"
	case in.Decision.Score >= 600:
		grade = "D"
	}

	reasons := []string{}
	if in.Applicant.RiskCountry {
		reasons = append(reasons, "risk_country")
	}
	if in.Applicant.AnomalousTransactions > 0 {
		reasons = append(reasons, "anomalous_activity")
	}

	if len(reasons) > 0 {
		grade = downgrade(grade)
	}

	return Result{Grade: grade, Reasons: reasons}
}

func downgrade(grade string) string {
	switch grade {
	case "A":
		return "B"
	case "B":
		return "C"
	case "C":
		return "D"
	default:
		return "E"
	}
}
