// Package intake simulates the document-processing pipeline that turns an
// uploaded bank statement into an applicant profile. The demo has no real
// OCR or extraction backend; each step just takes time and reports
// progress, then the profile comes from the sample fixtures.
package intake

import (
	"context"
	"time"

	"github.com/zendalabs/zenda/internal/fixtures"
	"github.com/zendalabs/zenda/pkg/types"
)

const (
	StepDocumentAnalysis = "document_analysis"
	StepDataExtraction   = "data_extraction"
	StepRiskAnalysis     = "risk_analysis"
)

// Steps is the fixed pipeline order.
var Steps = []string{StepDocumentAnalysis, StepDataExtraction, StepRiskAnalysis}

// Pipeline runs the simulated intake steps. StepDelay spaces the progress
// callbacks so a UI can animate; zero makes the run instantaneous, which
// is what tests want.
type Pipeline struct {
	StepDelay time.Duration

	// Pick selects the sample applicant; nil picks at random.
	Pick func(n int) int
}

// Run walks the pipeline and returns the extracted applicant. onStep, if
// set, is called as each step starts. Cancelling ctx aborts between steps.
func (p Pipeline) Run(ctx context.Context, onStep func(step string)) (types.Applicant, error) {
	if err := p.walk(ctx, onStep); err != nil {
		return types.Applicant{}, err
	}
	return fixtures.Random(p.Pick)
}

// RunFor is Run with a preselected applicant instead of a fixture draw,
// for callers that already hold the profile.
func (p Pipeline) RunFor(ctx context.Context, applicant types.Applicant, onStep func(step string)) (types.Applicant, error) {
	if err := p.walk(ctx, onStep); err != nil {
		return types.Applicant{}, err
	}
	return applicant, nil
}

func (p Pipeline) walk(ctx context.Context, onStep func(step string)) error {
	for _, step := range Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if onStep != nil {
			onStep(step)
		}
		if p.StepDelay > 0 {
			timer := time.NewTimer(p.StepDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return nil
}
