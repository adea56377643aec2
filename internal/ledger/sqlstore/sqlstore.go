// Package sqlstore implements the decision ledger on SQLite.
package sqlstore

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/zendalabs/zenda/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func OpenSQLite(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Migrate() error {
	return ledger.Migrate(s.db, ledger.DBSQLite)
}

func (s *Store) WithTx(fn func(ledger.Tx) error) error {
	tx, err := s.db.BeginTx(context.Background(), &sql.TxOptions{})
	if err != nil {
		return err
	}
	if _, err := tx.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = tx.Rollback()
		return err
	}
	wrapped := &Tx{tx: tx}
	if err := fn(wrapped); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

func (s *Store) PutApplicant(rec ledger.ApplicantRecord) error {
	return putApplicant(s.db, rec)
}

func (s *Store) GetApplicant(applicantID string) (ledger.ApplicantRecord, bool) {
	return getApplicant(s.db, applicantID)
}

func (s *Store) PutDecision(rec ledger.DecisionRecord) error {
	return putDecision(s.db, rec)
}

func (s *Store) GetDecision(decisionID string) (ledger.DecisionRecord, bool) {
	return getDecision(s.db, decisionID)
}

func (s *Store) GetDecisionByApplicant(applicantID string) (ledger.DecisionRecord, bool) {
	return getDecisionByApplicant(s.db, applicantID)
}

func (s *Store) ListDecisions(limit int) ([]ledger.DecisionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`SELECT decision_id, applicant_id, scorecard_hash, approved, score, credit_limit, body_json, created_at
FROM decisions
ORDER BY created_at DESC, decision_id ASC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ledger.DecisionRecord{}
	for rows.Next() {
		rec, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) PutScorecardVersion(rec ledger.ScorecardVersionRecord) error {
	return putScorecardVersion(s.db, rec)
}

func (s *Store) GetScorecardVersion(scorecardHash string) (ledger.ScorecardVersionRecord, bool) {
	return getScorecardVersion(s.db, scorecardHash)
}

func (s *Store) PutReviewOutbox(rec ledger.ReviewOutboxRecord) error {
	return putReviewOutbox(s.db, rec)
}

func (s *Store) GetReviewOutbox(notificationID string) (ledger.ReviewOutboxRecord, bool) {
	return getReviewOutbox(s.db, notificationID)
}

func (s *Store) ListReviewOutboxDue(now string, limit int) ([]ledger.ReviewOutboxRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`SELECT notification_id, decision_id, channel, message_json, status, attempt_count, next_attempt_at, last_error, sent_at, created_at, updated_at
FROM review_outbox
WHERE status = 'pending' AND next_attempt_at <= ?
ORDER BY created_at ASC
LIMIT ?`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ledger.ReviewOutboxRecord{}
	for rows.Next() {
		var rec ledger.ReviewOutboxRecord
		var msg string
		if err := rows.Scan(&rec.NotificationID, &rec.DecisionID, &rec.Channel, &msg, &rec.Status, &rec.AttemptCount, &rec.NextAttemptAt, &rec.LastError, &rec.SentAt, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.MessageJSON = []byte(msg)
		out = append(out, rec)
	}
	return out, rows.Err()
}

type Tx struct {
	tx *sql.Tx
}

func (t *Tx) PutApplicant(rec ledger.ApplicantRecord) error {
	return putApplicant(t.tx, rec)
}

func (t *Tx) GetApplicant(applicantID string) (ledger.ApplicantRecord, bool) {
	return getApplicant(t.tx, applicantID)
}

func (t *Tx) PutDecision(rec ledger.DecisionRecord) error {
	return putDecision(t.tx, rec)
}

func (t *Tx) GetDecision(decisionID string) (ledger.DecisionRecord, bool) {
	return getDecision(t.tx, decisionID)
}

func (t *Tx) GetDecisionByApplicant(applicantID string) (ledger.DecisionRecord, bool) {
	return getDecisionByApplicant(t.tx, applicantID)
}

func (t *Tx) PutScorecardVersion(rec ledger.ScorecardVersionRecord) error {
	return putScorecardVersion(t.tx, rec)
}

func (t *Tx) GetScorecardVersion(scorecardHash string) (ledger.ScorecardVersionRecord, bool) {
	return getScorecardVersion(t.tx, scorecardHash)
}

func (t *Tx) PutReviewOutbox(rec ledger.ReviewOutboxRecord) error {
	return putReviewOutbox(t.tx, rec)
}

func (t *Tx) GetReviewOutbox(notificationID string) (ledger.ReviewOutboxRecord, bool) {
	return getReviewOutbox(t.tx, notificationID)
}

func putApplicant(q dbtx, rec ledger.ApplicantRecord) error {
	_, err := q.Exec(`INSERT INTO applicants (applicant_id, country, currency, body_json, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (applicant_id) DO UPDATE SET country = excluded.country, currency = excluded.currency, body_json = excluded.body_json`,
		rec.ApplicantID, rec.Country, rec.Currency, string(rec.BodyJSON), rec.CreatedAt)
	return err
}

func getApplicant(q dbtx, applicantID string) (ledger.ApplicantRecord, bool) {
	var rec ledger.ApplicantRecord
	var body string
	row := q.QueryRow(`SELECT applicant_id, country, currency, body_json, created_at FROM applicants WHERE applicant_id = ?`, applicantID)
	if err := row.Scan(&rec.ApplicantID, &rec.Country, &rec.Currency, &body, &rec.CreatedAt); err != nil {
		return ledger.ApplicantRecord{}, false
	}
	rec.BodyJSON = []byte(body)
	return rec, true
}

func putDecision(q dbtx, rec ledger.DecisionRecord) error {
	_, err := q.Exec(`INSERT INTO decisions (decision_id, applicant_id, scorecard_hash, approved, score, credit_limit, body_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (decision_id) DO UPDATE SET body_json = excluded.body_json`,
		rec.DecisionID, rec.ApplicantID, rec.ScorecardHash, rec.Approved, rec.Score, rec.CreditLimit, string(rec.BodyJSON), rec.CreatedAt)
	return err
}

func getDecision(q dbtx, decisionID string) (ledger.DecisionRecord, bool) {
	row := q.QueryRow(`SELECT decision_id, applicant_id, scorecard_hash, approved, score, credit_limit, body_json, created_at
FROM decisions WHERE decision_id = ?`, decisionID)
	rec, err := scanDecision(row)
	if err != nil {
		return ledger.DecisionRecord{}, false
	}
	return rec, true
}

func getDecisionByApplicant(q dbtx, applicantID string) (ledger.DecisionRecord, bool) {
	row := q.QueryRow(`SELECT decision_id, applicant_id, scorecard_hash, approved, score, credit_limit, body_json, created_at
FROM decisions WHERE applicant_id = ?
ORDER BY created_at DESC, decision_id ASC
LIMIT 1`, applicantID)
	rec, err := scanDecision(row)
	if err != nil {
		return ledger.DecisionRecord{}, false
	}
	return rec, true
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDecision(s scanner) (ledger.DecisionRecord, error) {
	var rec ledger.DecisionRecord
	var body string
	if err := s.Scan(&rec.DecisionID, &rec.ApplicantID, &rec.ScorecardHash, &rec.Approved, &rec.Score, &rec.CreditLimit, &body, &rec.CreatedAt); err != nil {
		return ledger.DecisionRecord{}, err
	}
	rec.BodyJSON = []byte(body)
	return rec, nil
}

func putScorecardVersion(q dbtx, rec ledger.ScorecardVersionRecord) error {
	_, err := q.Exec(`INSERT INTO scorecard_versions (scorecard_hash, scorecard_id, scorecard_version, scorecard_yaml, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (scorecard_hash) DO NOTHING`,
		rec.ScorecardHash, rec.ScorecardID, rec.ScorecardVersion, rec.ScorecardYAML, rec.CreatedAt)
	return err
}

func getScorecardVersion(q dbtx, scorecardHash string) (ledger.ScorecardVersionRecord, bool) {
	var rec ledger.ScorecardVersionRecord
	row := q.QueryRow(`SELECT scorecard_hash, scorecard_id, scorecard_version, scorecard_yaml, created_at
FROM scorecard_versions WHERE scorecard_hash = ?`, scorecardHash)
	if err := row.Scan(&rec.ScorecardHash, &rec.ScorecardID, &rec.ScorecardVersion, &rec.ScorecardYAML, &rec.CreatedAt); err != nil {
		return ledger.ScorecardVersionRecord{}, false
	}
	return rec, true
}

func putReviewOutbox(q dbtx, rec ledger.ReviewOutboxRecord) error {
	_, err := q.Exec(`INSERT INTO review_outbox (notification_id, decision_id, channel, message_json, status, attempt_count, next_attempt_at, last_error, sent_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (notification_id) DO UPDATE SET
    status = excluded.status,
    attempt_count = excluded.attempt_count,
    next_attempt_at = excluded.next_attempt_at,
    last_error = excluded.last_error,
    sent_at = excluded.sent_at,
    updated_at = excluded.updated_at`,
		rec.NotificationID, rec.DecisionID, rec.Channel, string(rec.MessageJSON), rec.Status, rec.AttemptCount, rec.NextAttemptAt, rec.LastError, rec.SentAt, rec.CreatedAt, rec.UpdatedAt)
	return err
}

func getReviewOutbox(q dbtx, notificationID string) (ledger.ReviewOutboxRecord, bool) {
	var rec ledger.ReviewOutboxRecord
	var msg string
	row := q.QueryRow(`SELECT notification_id, decision_id, channel, message_json, status, attempt_count, next_attempt_at, last_error, sent_at, created_at, updated_at
FROM review_outbox WHERE notification_id = ?`, notificationID)
	if err := row.Scan(&rec.NotificationID, &rec.DecisionID, &rec.Channel, &msg, &rec.Status, &rec.AttemptCount, &rec.NextAttemptAt, &rec.LastError, &rec.SentAt, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return ledger.ReviewOutboxRecord{}, false
	}
	rec.MessageJSON = []byte(msg)
	return rec, true
}
