package intake

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zendalabs/zenda/pkg/types"
)

func TestRunReportsStepsInOrder(t *testing.T) {
	var steps []string
	p := Pipeline{Pick: func(int) int { return 0 }}

	applicant, err := p.Run(context.Background(), func(step string) {
		steps = append(steps, step)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{StepDocumentAnalysis, StepDataExtraction, StepRiskAnalysis}
	if len(steps) != len(want) {
		t.Fatalf("steps = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("steps = %v, want %v", steps, want)
		}
	}

	if applicant.Country == "" {
		t.Fatal("empty applicant from fixtures")
	}
}

func TestRunForReturnsGivenApplicant(t *testing.T) {
	p := Pipeline{}
	want := types.Applicant{Country: "Brasil", Currency: "BRL", AvgIncome: 8000}

	got, err := p.RunFor(context.Background(), want, nil)
	if err != nil {
		t.Fatalf("RunFor: %v", err)
	}
	if got.Country != "Brasil" || got.AvgIncome != 8000 {
		t.Fatalf("applicant = %+v, want %+v", got, want)
	}
}

func TestRunPropagatesFixtureErrors(t *testing.T) {
	p := Pipeline{Pick: func(int) int { return -1 }}

	if _, err := p.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for out-of-range pick")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Pipeline{StepDelay: time.Hour}
	_, err := p.Run(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunCancelMidDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := Pipeline{StepDelay: time.Minute}
	done := make(chan error, 1)
	go func() {
		_, err := p.Run(ctx, nil)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
