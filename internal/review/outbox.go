// Package review queues manual-review notifications for decisions that
// trip a risk flag and drains them through a pluggable notifier with
// retry and backoff.
package review

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zendalabs/zenda/internal/ledger"
	"github.com/zendalabs/zenda/pkg/types"
)

type Notifier interface {
	Notify(channel string, msg Message) error
}

// Message is the payload a reviewer sees.
type Message struct {
	DecisionID            string   `json:"decision_id"`
	ApplicantID           string   `json:"applicant_id"`
	Country               string   `json:"country"`
	Score                 int      `json:"score"`
	Approved              bool     `json:"approved"`
	AnomalousTransactions int      `json:"anomalous_transactions"`
	RiskCountry           bool     `json:"risk_country"`
	Reasons               []string `json:"reasons"`
}

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
)

// Flag reports whether an application needs a manual look and why.
// Mirrors the product rule: an anomaly count past the approval gate or a
// risk-listed origin country always gets human eyes, approved or not, so
// the decision itself plays no part here.
func Flag(a types.Applicant) []string {
	var reasons []string
	if a.AnomalousTransactions > 2 {
		reasons = append(reasons, "anomalous_transactions")
	}
	if a.RiskCountry {
		reasons = append(reasons, "risk_country")
	}
	return reasons
}

// Enqueue records a pending notification due immediately.
func Enqueue(store ledger.Store, channel string, msg Message, now time.Time) (string, error) {
	if store == nil {
		return "", fmt.Errorf("missing store")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}

	ts := now.UTC().Format(time.RFC3339)
	rec := ledger.ReviewOutboxRecord{
		NotificationID: newNotificationID(),
		DecisionID:     msg.DecisionID,
		Channel:        channel,
		MessageJSON:    payload,
		Status:         OutboxStatusPending,
		AttemptCount:   0,
		NextAttemptAt:  ts,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	if err := store.PutReviewOutbox(rec); err != nil {
		return "", err
	}
	return rec.NotificationID, nil
}

// ProcessDue delivers due pending notifications, applying exponential
// backoff on notifier failure.
func ProcessDue(ctx context.Context, store ledger.Store, notifier Notifier, now time.Time, limit int) (int, error) {
	if store == nil {
		return 0, fmt.Errorf("missing store")
	}
	if notifier == nil {
		return 0, nil
	}
	if limit <= 0 {
		limit = 50
	}

	due, err := store.ListReviewOutboxDue(now.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, rec := range due {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		if rec.Status != OutboxStatusPending {
			continue
		}

		var msg Message
		if err := json.Unmarshal(rec.MessageJSON, &msg); err != nil {
			// Bad payload; mark as sent to prevent infinite retries.
			detail := "invalid message_json: " + err.Error()
			rec.LastError = &detail
			markSent(&rec, now)
			if err := store.PutReviewOutbox(rec); err != nil {
				return processed, err
			}
			processed++
			continue
		}

		if err := notifier.Notify(rec.Channel, msg); err != nil {
			next := nextAttempt(rec.AttemptCount)
			rec.AttemptCount++
			rec.NextAttemptAt = now.UTC().Add(next).Format(time.RFC3339)
			detail := err.Error()
			rec.LastError = &detail
			rec.UpdatedAt = now.UTC().Format(time.RFC3339)
			if err := store.PutReviewOutbox(rec); err != nil {
				return processed, err
			}
			processed++
			continue
		}

		markSent(&rec, now)
		if err := store.PutReviewOutbox(rec); err != nil {
			return processed, err
		}
		processed++
	}

	return processed, nil
}

// RunWorker polls and delivers due notifications until ctx is cancelled.
func RunWorker(ctx context.Context, store ledger.Store, notifier Notifier, pollInterval time.Duration) {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			_, _ = ProcessDue(ctx, store, notifier, now, 25)
		}
	}
}

func markSent(rec *ledger.ReviewOutboxRecord, now time.Time) {
	ts := now.UTC().Format(time.RFC3339)
	rec.Status = OutboxStatusSent
	rec.SentAt = &ts
	rec.UpdatedAt = ts
}

func nextAttempt(attemptCount int) time.Duration {
	// 5s, 10s, 20s, 40s, ... capped at 5m.
	base := 5 * time.Second
	if attemptCount <= 0 {
		return base
	}
	d := base << attemptCount
	max := 5 * time.Minute
	if d > max {
		return max
	}
	return d
}

func newNotificationID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("review-%d", time.Now().UnixNano())
	}
	return "review-" + hex.EncodeToString(buf)
}
