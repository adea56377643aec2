// Package report assembles the downloadable evidence pack for a decision:
// a zip holding the applicant snapshot, the decision document, the exact
// scorecard bytes it ran under, and a human-readable summary.
package report

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/zendalabs/zenda/internal/currency"
	"github.com/zendalabs/zenda/internal/grade"
	"github.com/zendalabs/zenda/pkg/types"
)

// Input is everything a pack captures about one decision.
type Input struct {
	DecisionID    string
	Applicant     types.Applicant
	Decision      types.Decision
	Scorecard     types.DecisionScorecard
	ScorecardYAML []byte
	Grade         grade.Result
	GeneratedAt   string
}

// Entry names inside the archive.
const (
	EntryApplicant = "applicant.json"
	EntryDecision  = "decision.json"
	EntryScorecard = "scorecard.yaml"
	EntryGrade     = "grade.json"
	EntrySummary   = "summary.txt"
)

// Build writes the pack as a zip to w.
func Build(w io.Writer, in Input) error {
	if in.DecisionID == "" {
		return fmt.Errorf("missing decision id")
	}

	zw := zip.NewWriter(w)

	if err := writeJSONEntry(zw, EntryApplicant, in.Applicant); err != nil {
		return err
	}

	decisionDoc := struct {
		DecisionID  string                  `json:"decision_id"`
		Decision    types.Decision          `json:"decision"`
		Scorecard   types.DecisionScorecard `json:"scorecard"`
		GeneratedAt string                  `json:"generated_at,omitempty"`
	}{
		DecisionID:  in.DecisionID,
		Decision:    in.Decision,
		Scorecard:   in.Scorecard,
		GeneratedAt: in.GeneratedAt,
	}
	if err := writeJSONEntry(zw, EntryDecision, decisionDoc); err != nil {
		return err
	}

	if len(in.ScorecardYAML) > 0 {
		if err := writeRawEntry(zw, EntryScorecard, in.ScorecardYAML); err != nil {
			return err
		}
	}

	gradeDoc := struct {
		Grade   string   `json:"grade"`
		Reasons []string `json:"reasons"`
	}{Grade: in.Grade.Grade, Reasons: in.Grade.Reasons}
	if err := writeJSONEntry(zw, EntryGrade, gradeDoc); err != nil {
		return err
	}

	if err := writeRawEntry(zw, EntrySummary, []byte(summary(in))); err != nil {
		return err
	}

	return zw.Close()
}

func writeJSONEntry(zw *zip.Writer, name string, v any) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}

func writeRawEntry(zw *zip.Writer, name string, body []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(body); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func summary(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Decision %s\n", in.DecisionID)
	if in.GeneratedAt != "" {
		fmt.Fprintf(&b, "Generated %s\n", in.GeneratedAt)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Applicant: %s (%s)\n", in.Applicant.Country, in.Applicant.Currency)
	if in.Applicant.BankName != "" {
		fmt.Fprintf(&b, "Bank: %s\n", in.Applicant.BankName)
	}
	fmt.Fprintf(&b, "Average income: %s\n", currency.Format(in.Applicant.AvgIncome, in.Applicant.Currency))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Recommendation: %s\n", in.Decision.Recommendation)
	fmt.Fprintf(&b, "Score: %d\n", in.Decision.Score)
	fmt.Fprintf(&b, "Grade: %s\n", in.Grade.Grade)
	if in.Decision.Approved {
		fmt.Fprintf(&b, "Credit limit: %s\n", currency.Format(float64(in.Decision.CreditLimit), in.Applicant.Currency))
	}
	fmt.Fprintf(&b, "Confidence: %.1f%%\n", in.Decision.Confidence)
	b.WriteString("\n")

	b.WriteString("Factors:\n")
	for _, f := range in.Decision.Factors {
		sign := "-"
		if f.Positive {
			sign = "+"
		}
		fmt.Fprintf(&b, "  [%s] %-24s %+.0f\n", sign, f.Name, f.Impact)
	}

	fmt.Fprintf(&b, "\nScorecard: %s %s (%s)\n", in.Scorecard.ScorecardID, in.Scorecard.ScorecardVersion, in.Scorecard.ScorecardHash)

	return b.String()
}
