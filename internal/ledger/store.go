package ledger

// Store is the persistence boundary for scoring artifacts. Timestamps are
// RFC3339 UTC strings so records compare and sort the same way in every
// backend.
type Store interface {
	WithTx(fn func(Tx) error) error

	PutApplicant(rec ApplicantRecord) error
	GetApplicant(applicantID string) (ApplicantRecord, bool)

	PutDecision(rec DecisionRecord) error
	GetDecision(decisionID string) (DecisionRecord, bool)
	GetDecisionByApplicant(applicantID string) (DecisionRecord, bool)
	ListDecisions(limit int) ([]DecisionRecord, error)

	PutScorecardVersion(rec ScorecardVersionRecord) error
	GetScorecardVersion(scorecardHash string) (ScorecardVersionRecord, bool)

	PutReviewOutbox(rec ReviewOutboxRecord) error
	GetReviewOutbox(notificationID string) (ReviewOutboxRecord, bool)
	ListReviewOutboxDue(now string, limit int) ([]ReviewOutboxRecord, error)
}

type Tx interface {
	PutApplicant(rec ApplicantRecord) error
	GetApplicant(applicantID string) (ApplicantRecord, bool)

	PutDecision(rec DecisionRecord) error
	GetDecision(decisionID string) (DecisionRecord, bool)
	GetDecisionByApplicant(applicantID string) (DecisionRecord, bool)

	PutScorecardVersion(rec ScorecardVersionRecord) error
	GetScorecardVersion(scorecardHash string) (ScorecardVersionRecord, bool)

	PutReviewOutbox(rec ReviewOutboxRecord) error
	GetReviewOutbox(notificationID string) (ReviewOutboxRecord, bool)
}

// ApplicantRecord is the hash-addressed applicant snapshot a decision was
// made from. ApplicantID is the canonical digest of the applicant body.
type ApplicantRecord struct {
	ApplicantID string
	Country     string
	Currency    string
	BodyJSON    []byte
	CreatedAt   string
}

// DecisionRecord stores one decision. BodyJSON is the full decision
// document; the flat columns exist for querying.
type DecisionRecord struct {
	DecisionID    string
	ApplicantID   string
	ScorecardHash string
	Approved      bool
	Score         int
	CreditLimit   int
	BodyJSON      []byte
	CreatedAt     string
}

// ScorecardVersionRecord pins the exact scorecard bytes a decision ran
// under.
type ScorecardVersionRecord struct {
	ScorecardHash    string
	ScorecardID      string
	ScorecardVersion string
	ScorecardYAML    string
	CreatedAt        string
}

// ReviewOutboxRecord is a queued manual-review notification.
type ReviewOutboxRecord struct {
	NotificationID string
	DecisionID     string
	Channel        string
	MessageJSON    []byte
	Status         string // pending | sent
	AttemptCount   int
	NextAttemptAt  string
	LastError      *string
	SentAt         *string
	CreatedAt      string
	UpdatedAt      string
}
