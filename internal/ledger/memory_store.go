package ledger

import (
	"sort"
	"sync"
)

type InMemoryStore struct {
	mu sync.Mutex

	applicants map[string]ApplicantRecord
	decisions  map[string]DecisionRecord
	scorecards map[string]ScorecardVersionRecord
	outbox     map[string]ReviewOutboxRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		applicants: make(map[string]ApplicantRecord),
		decisions:  make(map[string]DecisionRecord),
		scorecards: make(map[string]ScorecardVersionRecord),
		outbox:     make(map[string]ReviewOutboxRecord),
	}
}

func (s *InMemoryStore) WithTx(fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn((*memTx)(s))
}

// memTx runs with the store lock already held.
type memTx InMemoryStore

func (s *InMemoryStore) PutApplicant(rec ApplicantRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applicants[rec.ApplicantID] = rec
	return nil
}

func (s *InMemoryStore) GetApplicant(applicantID string) (ApplicantRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.applicants[applicantID]
	return rec, ok
}

func (s *InMemoryStore) PutDecision(rec DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[rec.DecisionID] = rec
	return nil
}

func (s *InMemoryStore) GetDecision(decisionID string) (DecisionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.decisions[decisionID]
	return rec, ok
}

func (s *InMemoryStore) GetDecisionByApplicant(applicantID string) (DecisionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memTx)(s).GetDecisionByApplicant(applicantID)
}

func (s *InMemoryStore) ListDecisions(limit int) ([]DecisionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]DecisionRecord, 0, len(s.decisions))
	for _, rec := range s.decisions {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].DecisionID < out[j].DecisionID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) PutScorecardVersion(rec ScorecardVersionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scorecards[rec.ScorecardHash] = rec
	return nil
}

func (s *InMemoryStore) GetScorecardVersion(scorecardHash string) (ScorecardVersionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.scorecards[scorecardHash]
	return rec, ok
}

func (s *InMemoryStore) PutReviewOutbox(rec ReviewOutboxRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox[rec.NotificationID] = rec
	return nil
}

func (s *InMemoryStore) GetReviewOutbox(notificationID string) (ReviewOutboxRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.outbox[notificationID]
	return rec, ok
}

func (s *InMemoryStore) ListReviewOutboxDue(now string, limit int) ([]ReviewOutboxRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []ReviewOutboxRecord{}
	for _, rec := range s.outbox {
		if rec.Status != "pending" {
			continue
		}
		if rec.NextAttemptAt > now {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *memTx) PutApplicant(rec ApplicantRecord) error {
	t.applicants[rec.ApplicantID] = rec
	return nil
}

func (t *memTx) GetApplicant(applicantID string) (ApplicantRecord, bool) {
	rec, ok := t.applicants[applicantID]
	return rec, ok
}

func (t *memTx) PutDecision(rec DecisionRecord) error {
	t.decisions[rec.DecisionID] = rec
	return nil
}

func (t *memTx) GetDecision(decisionID string) (DecisionRecord, bool) {
	rec, ok := t.decisions[decisionID]
	return rec, ok
}

func (t *memTx) GetDecisionByApplicant(applicantID string) (DecisionRecord, bool) {
	var newest DecisionRecord
	found := false
	for _, rec := range t.decisions {
		if rec.ApplicantID != applicantID {
			continue
		}
		if !found || rec.CreatedAt > newest.CreatedAt {
			newest = rec
			found = true
		}
	}
	return newest, found
}

func (t *memTx) PutScorecardVersion(rec ScorecardVersionRecord) error {
	t.scorecards[rec.ScorecardHash] = rec
	return nil
}

func (t *memTx) GetScorecardVersion(scorecardHash string) (ScorecardVersionRecord, bool) {
	rec, ok := t.scorecards[scorecardHash]
	return rec, ok
}

func (t *memTx) PutReviewOutbox(rec ReviewOutboxRecord) error {
	t.outbox[rec.NotificationID] = rec
	return nil
}

func (t *memTx) GetReviewOutbox(notificationID string) (ReviewOutboxRecord, bool) {
	rec, ok := t.outbox[notificationID]
	return rec, ok
}
