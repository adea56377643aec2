package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zendalabs/zenda/internal/cache"
	"github.com/zendalabs/zenda/internal/canon"
	"github.com/zendalabs/zenda/internal/ledger"
	"github.com/zendalabs/zenda/internal/review"
	"github.com/zendalabs/zenda/internal/scorecard"
	"github.com/zendalabs/zenda/internal/scoring"
	"github.com/zendalabs/zenda/pkg/types"
)

// ScoreService runs the scoring flow: normalize, score, persist, flag for
// review, cache. Scoring the same applicant twice returns the recorded
// decision rather than re-rolling confidence.
type ScoreService struct {
	Engine    *scoring.Engine
	Scorecard scorecard.Loaded
	Store     ledger.Store
	Cache     cache.Cache
	CacheTTL  time.Duration

	ReviewChannel string
	Logger        zerolog.Logger

	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

// ScoreResponse is the decision document returned to callers and stored
// verbatim in the ledger.
type ScoreResponse struct {
	DecisionID  string                  `json:"decision_id"`
	ApplicantID string                  `json:"applicant_id"`
	Decision    types.Decision          `json:"decision"`
	Scorecard   types.DecisionScorecard `json:"scorecard"`
	CreatedAt   string                  `json:"created_at"`
	Cached      bool                    `json:"cached,omitempty"`
}

// Score evaluates one applicant. The applicant body is content-addressed,
// so a byte-identical resubmission hits the cache or the ledger and comes
// back with the original decision id and confidence.
func (s *ScoreService) Score(ctx context.Context, applicant types.Applicant) (ScoreResponse, error) {
	if s.Engine == nil || s.Store == nil {
		return ScoreResponse{}, fmt.Errorf("score service not configured")
	}

	// Callers rarely know the risk list; fill the flag from the scorecard
	// when it is not already set.
	if !applicant.RiskCountry && s.Engine.Scorecard.IsRiskCountry(applicant.Country) {
		applicant.RiskCountry = true
	}

	if err := scoring.Validate(applicant); err != nil {
		return ScoreResponse{}, err
	}

	applicantID, err := canon.DigestValue(applicant)
	if err != nil {
		return ScoreResponse{}, err
	}
	cacheKey := "decision:" + applicantID

	if s.Cache != nil {
		if body, ok := s.Cache.Get(ctx, cacheKey); ok {
			var resp ScoreResponse
			if err := json.Unmarshal([]byte(body), &resp); err == nil {
				resp.Cached = true
				return resp, nil
			}
		}
	}

	if rec, ok := s.Store.GetDecisionByApplicant(applicantID); ok {
		var resp ScoreResponse
		if err := json.Unmarshal(rec.BodyJSON, &resp); err != nil {
			return ScoreResponse{}, fmt.Errorf("decode stored decision %s: %w", rec.DecisionID, err)
		}
		s.cacheSet(ctx, cacheKey, rec.BodyJSON)
		resp.Cached = true
		return resp, nil
	}

	decision, err := s.Engine.Evaluate(applicant)
	if err != nil {
		return ScoreResponse{}, err
	}

	decisionID, err := decisionDigest(applicantID, s.Scorecard.Hash, decision)
	if err != nil {
		return ScoreResponse{}, err
	}

	now := s.now()
	createdAt := now.UTC().Format(time.RFC3339)

	resp := ScoreResponse{
		DecisionID:  decisionID,
		ApplicantID: applicantID,
		Decision:    decision,
		Scorecard: types.DecisionScorecard{
			ScorecardID:      s.Scorecard.Scorecard.ScorecardID,
			ScorecardVersion: s.Scorecard.Scorecard.ScorecardVersion,
			ScorecardHash:    s.Scorecard.Hash,
		},
		CreatedAt: createdAt,
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return ScoreResponse{}, err
	}
	applicantBody, err := json.Marshal(applicant)
	if err != nil {
		return ScoreResponse{}, err
	}

	err = s.Store.WithTx(func(tx ledger.Tx) error {
		if err := tx.PutApplicant(ledger.ApplicantRecord{
			ApplicantID: applicantID,
			Country:     applicant.Country,
			Currency:    applicant.Currency,
			BodyJSON:    applicantBody,
			CreatedAt:   createdAt,
		}); err != nil {
			return err
		}
		if err := tx.PutScorecardVersion(ledger.ScorecardVersionRecord{
			ScorecardHash:    s.Scorecard.Hash,
			ScorecardID:      s.Scorecard.Scorecard.ScorecardID,
			ScorecardVersion: s.Scorecard.Scorecard.ScorecardVersion,
			ScorecardYAML:    string(s.Scorecard.Bytes),
			CreatedAt:        createdAt,
		}); err != nil {
			return err
		}
		return tx.PutDecision(ledger.DecisionRecord{
			DecisionID:    decisionID,
			ApplicantID:   applicantID,
			ScorecardHash: s.Scorecard.Hash,
			Approved:      decision.Approved,
			Score:         decision.Score,
			CreditLimit:   decision.CreditLimit,
			BodyJSON:      body,
			CreatedAt:     createdAt,
		})
	})
	if err != nil {
		return ScoreResponse{}, err
	}

	if reasons := review.Flag(applicant); len(reasons) > 0 {
		msg := review.Message{
			DecisionID:            decisionID,
			ApplicantID:           applicantID,
			Country:               applicant.Country,
			Score:                 decision.Score,
			Approved:              decision.Approved,
			AnomalousTransactions: applicant.AnomalousTransactions,
			RiskCountry:           applicant.RiskCountry,
			Reasons:               reasons,
		}
		if _, err := review.Enqueue(s.Store, s.ReviewChannel, msg, now); err != nil {
			s.Logger.Error().Err(err).Str("decision_id", decisionID).Msg("enqueue review notification")
		}
	}

	s.cacheSet(ctx, cacheKey, body)

	s.Logger.Info().
		Str("decision_id", decisionID).
		Str("applicant_id", applicantID).
		Str("country", applicant.Country).
		Bool("approved", decision.Approved).
		Int("score", decision.Score).
		Msg("applicant scored")

	return resp, nil
}

func (s *ScoreService) cacheSet(ctx context.Context, key string, body []byte) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, key, string(body), s.CacheTTL); err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (s *ScoreService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// decisionDigest derives the decision id from everything deterministic
// about the decision. Confidence is advisory jitter and stays out of the
// digest so replays address the same record.
func decisionDigest(applicantID, scorecardHash string, d types.Decision) (string, error) {
	view := struct {
		ApplicantID    string         `json:"applicant_id"`
		ScorecardHash  string         `json:"scorecard_hash"`
		Approved       bool           `json:"approved"`
		Score          int            `json:"score"`
		Factors        []types.Factor `json:"factors"`
		Recommendation string         `json:"recommendation"`
		CreditLimit    int            `json:"credit_limit"`
	}{
		ApplicantID:    applicantID,
		ScorecardHash:  scorecardHash,
		Approved:       d.Approved,
		Score:          d.Score,
		Factors:        d.Factors,
		Recommendation: d.Recommendation,
		CreditLimit:    d.CreditLimit,
	}
	return canon.DigestValue(view)
}
