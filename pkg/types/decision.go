package types

const (
	RecommendationApproved = "APPROVED"
	RecommendationRejected = "REJECTED"
)

// Factor is one named contribution to the aggregate score. Impact is the
// signed delta applied on top of the base score; Positive is the factor's
// qualitative reading, which is not always the same as Impact > 0.
type Factor struct {
	Name     string  `json:"name"`
	Impact   float64 `json:"impact"`
	Positive bool    `json:"positive"`
}

// Decision is the outcome of one scoring call. Factors always carries
// exactly six entries in evaluation order. Confidence is an advisory
// display value and never influences Approved or CreditLimit.
type Decision struct {
	Approved       bool     `json:"approved"`
	Score          int      `json:"score"`
	Factors        []Factor `json:"factors"`
	Recommendation string   `json:"recommendation"`
	Confidence     float64  `json:"confidence"`
	CreditLimit    int      `json:"credit_limit"`
}

// DecisionScorecard identifies the scorecard version a decision was made
// under.
type DecisionScorecard struct {
	ScorecardID      string `json:"scorecard_id"`
	ScorecardVersion string `json:"scorecard_version"`
	ScorecardHash    string `json:"scorecard_hash"`
}
