package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/zendalabs/zenda/internal/auth"
	"github.com/zendalabs/zenda/internal/fixtures"
	"github.com/zendalabs/zenda/internal/grade"
	"github.com/zendalabs/zenda/internal/intake"
	"github.com/zendalabs/zenda/internal/report"
	"github.com/zendalabs/zenda/internal/scoring"
	"github.com/zendalabs/zenda/internal/session"
	"github.com/zendalabs/zenda/pkg/types"
)

type Handler struct {
	Auth     auth.Authenticator
	Score    *ScoreService
	Sessions *session.Store
	Intake   intake.Pipeline
	Logger   zerolog.Logger
}

func (h *Handler) ScoreApplicant(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}
	if h.Score == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "score service not configured"})
		return
	}

	var applicant types.Applicant
	if err := json.NewDecoder(r.Body).Decode(&applicant); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	resp, err := h.Score.Score(r.Context(), applicant)
	if err != nil {
		if errors.Is(err, scoring.ErrInvalidApplicant) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetDecision(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}

	resp, ok := h.loadDecision(w, r.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	records, err := h.Score.Store.ListDecisions(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	decisions := make([]ScoreResponse, 0, len(records))
	for _, rec := range records {
		var resp ScoreResponse
		if err := json.Unmarshal(rec.BodyJSON, &resp); err != nil {
			h.Logger.Error().Err(err).Str("decision_id", rec.DecisionID).Msg("corrupt decision body")
			continue
		}
		decisions = append(decisions, resp)
	}

	writeJSON(w, http.StatusOK, map[string]any{"decisions": decisions})
}

func (h *Handler) DecisionGrade(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}

	resp, ok := h.loadDecision(w, r.PathValue("id"))
	if !ok {
		return
	}
	applicant, ok := h.loadApplicant(w, resp.ApplicantID)
	if !ok {
		return
	}

	result := grade.Evaluate(grade.Input{Decision: resp.Decision, Applicant: applicant})
	writeJSON(w, http.StatusOK, map[string]any{
		"decision_id": resp.DecisionID,
		"grade":       result.Grade,
		"reasons":     result.Reasons,
	})
}

func (h *Handler) DecisionPack(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}

	resp, ok := h.loadDecision(w, r.PathValue("id"))
	if !ok {
		return
	}
	applicant, ok := h.loadApplicant(w, resp.ApplicantID)
	if !ok {
		return
	}

	var scorecardYAML []byte
	if rec, ok := h.Score.Store.GetScorecardVersion(resp.Scorecard.ScorecardHash); ok {
		scorecardYAML = []byte(rec.ScorecardYAML)
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=zenda-pack.zip")
	w.WriteHeader(http.StatusOK)
	err := report.Build(w, report.Input{
		DecisionID:    resp.DecisionID,
		Applicant:     applicant,
		Decision:      resp.Decision,
		Scorecard:     resp.Scorecard,
		ScorecardYAML: scorecardYAML,
		Grade:         grade.Evaluate(grade.Input{Decision: resp.Decision, Applicant: applicant}),
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.Logger.Error().Err(err).Str("decision_id", resp.DecisionID).Msg("build pack")
	}
}

func (h *Handler) Samples(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}

	samples, err := fixtures.All()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applicants": samples})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}
	if h.Sessions == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "sessions not configured"})
		return
	}
	writeJSON(w, http.StatusCreated, h.Sessions.Create())
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}
	if h.Sessions == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "sessions not configured"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": h.Sessions.List()})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}
	sess, ok := h.Sessions.Get(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// RunSession kicks off the simulated intake for a session and returns
// immediately; callers poll GetSession for progress. An optional body
// {"country": "..."} pins the sample applicant instead of drawing one.
func (h *Handler) RunSession(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}

	sessionID := r.PathValue("id")

	var req struct {
		Country string `json:"country"`
	}
	if r.Body != nil {
		// Body is optional; ignore decode errors from an empty body.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var pinned *types.Applicant
	if req.Country != "" {
		applicant, ok := fixtures.ByCountry(req.Country)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no sample for country"})
			return
		}
		pinned = &applicant
	}

	// The stage check and the move to processing happen in one locked
	// transition so two concurrent runs cannot both start an intake.
	sess, err := h.Sessions.Transition(sessionID, func(s *session.Session) error {
		if s.Stage == session.StageProcessing {
			return session.ErrProcessing
		}
		s.Stage = session.StageProcessing
		s.Step = ""
		s.DecisionID = ""
		s.Decision = nil
		s.Error = ""
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		case errors.Is(err, session.ErrProcessing):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "session already processing"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}

	go h.runIntake(sessionID, pinned)

	writeJSON(w, http.StatusAccepted, sess)
}

func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}
	sess, err := h.Sessions.Reset(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}
	if err := h.Sessions.Delete(r.PathValue("id")); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// runIntake drives the document pipeline for a session in the background.
// It runs detached from the request context; the session record is how
// progress and failures reach the caller.
func (h *Handler) runIntake(sessionID string, pinned *types.Applicant) {
	ctx := context.Background()

	onStep := func(step string) {
		_, _ = h.Sessions.Update(sessionID, func(s *session.Session) {
			s.Step = step
		})
	}

	var applicant types.Applicant
	var err error
	if pinned != nil {
		applicant, err = h.Intake.RunFor(ctx, *pinned, onStep)
	} else {
		applicant, err = h.Intake.Run(ctx, onStep)
	}
	if err != nil {
		h.failSession(sessionID, err)
		return
	}

	_, _ = h.Sessions.Update(sessionID, func(s *session.Session) {
		s.Applicant = &applicant
	})

	resp, err := h.Score.Score(ctx, applicant)
	if err != nil {
		h.failSession(sessionID, err)
		return
	}

	_, _ = h.Sessions.Update(sessionID, func(s *session.Session) {
		s.Stage = session.StageDecided
		s.Step = ""
		s.DecisionID = resp.DecisionID
		decision := resp.Decision
		s.Decision = &decision
	})
}

func (h *Handler) failSession(sessionID string, err error) {
	h.Logger.Error().Err(err).Str("session_id", sessionID).Msg("session intake failed")
	_, _ = h.Sessions.Update(sessionID, func(s *session.Session) {
		s.Stage = session.StageIdle
		s.Step = ""
		s.Error = err.Error()
	})
}

func (h *Handler) loadDecision(w http.ResponseWriter, decisionID string) (ScoreResponse, bool) {
	if decisionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing decision_id"})
		return ScoreResponse{}, false
	}

	rec, ok := h.Score.Store.GetDecision(decisionID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "decision not found"})
		return ScoreResponse{}, false
	}

	var resp ScoreResponse
	if err := json.Unmarshal(rec.BodyJSON, &resp); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "corrupt decision body"})
		return ScoreResponse{}, false
	}
	return resp, true
}

func (h *Handler) loadApplicant(w http.ResponseWriter, applicantID string) (types.Applicant, bool) {
	rec, ok := h.Score.Store.GetApplicant(applicantID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "applicant not found"})
		return types.Applicant{}, false
	}

	var applicant types.Applicant
	if err := json.Unmarshal(rec.BodyJSON, &applicant); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "corrupt applicant body"})
		return types.Applicant{}, false
	}
	return applicant, true
}

func (h *Handler) ensureAuth(w http.ResponseWriter, r *http.Request) bool {
	if h.Auth == nil {
		return true
	}
	if _, err := h.Auth.Authenticate(r); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
