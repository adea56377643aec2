package pgstore

import (
	"os"
	"testing"

	"github.com/zendalabs/zenda/internal/ledger"
)

// Integration tests run only when ZENDA_TEST_POSTGRES_DSN points at a
// disposable database.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("ZENDA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ZENDA_TEST_POSTGRES_DSN not set")
	}
	store, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestPostgresRoundTrip(t *testing.T) {
	store := openTestStore(t)

	err := store.WithTx(func(tx ledger.Tx) error {
		if err := tx.PutApplicant(ledger.ApplicantRecord{
			ApplicantID: "sha256:pg-a1",
			Country:     "Perú",
			Currency:    "PEN",
			BodyJSON:    []byte(`{"country":"Perú"}`),
			CreatedAt:   "2026-08-01T10:00:00Z",
		}); err != nil {
			return err
		}
		if err := tx.PutScorecardVersion(ledger.ScorecardVersionRecord{
			ScorecardHash: "sha256:pg-s1",
			ScorecardID:   "zenda-default",
			ScorecardYAML: "scorecard_id: zenda-default\n",
			CreatedAt:     "2026-08-01T10:00:00Z",
		}); err != nil {
			return err
		}
		return tx.PutDecision(ledger.DecisionRecord{
			DecisionID:    "sha256:pg-d1",
			ApplicantID:   "sha256:pg-a1",
			ScorecardHash: "sha256:pg-s1",
			Approved:      false,
			Score:         545,
			BodyJSON:      []byte(`{"approved":false}`),
			CreatedAt:     "2026-08-01T10:00:00Z",
		})
	})
	if err != nil {
		t.Fatalf("with tx: %v", err)
	}

	got, ok := store.GetDecisionByApplicant("sha256:pg-a1")
	if !ok {
		t.Fatalf("expected decision")
	}
	if got.Approved || got.Score != 545 || got.CreditLimit != 0 {
		t.Fatalf("unexpected decision: %+v", got)
	}
}
