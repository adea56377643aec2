package scoring

import (
	"errors"
	"fmt"

	"github.com/zendalabs/zenda/pkg/types"
)

// ErrInvalidApplicant marks applicant records that fail structural
// validation. Callers can match it with errors.Is.
var ErrInvalidApplicant = errors.New("invalid applicant")

// Validate checks the structural preconditions of an applicant record.
// It runs before any scoring arithmetic so an invalid applicant never
// produces a partial decision.
func Validate(a types.Applicant) error {
	if len(a.Balances) == 0 {
		return fmt.Errorf("%w: balances must contain at least one entry", ErrInvalidApplicant)
	}
	if a.AvgIncome <= 0 {
		return fmt.Errorf("%w: avg_income must be positive, got %v", ErrInvalidApplicant, a.AvgIncome)
	}
	if a.IncomeStability < 0 || a.IncomeStability > 1 {
		return fmt.Errorf("%w: income_stability must be in [0,1], got %v", ErrInvalidApplicant, a.IncomeStability)
	}
	if a.AnomalousTransactions < 0 {
		return fmt.Errorf("%w: anomalous_transactions must not be negative, got %d", ErrInvalidApplicant, a.AnomalousTransactions)
	}
	if a.AccountAgeMonths < 0 {
		return fmt.Errorf("%w: account_age_months must not be negative, got %d", ErrInvalidApplicant, a.AccountAgeMonths)
	}
	return nil
}
