package api

import "net/http"

// NewRouter wires the HTTP surface. Health stays outside auth so probes
// never need a token.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/score", h.ScoreApplicant)

	mux.HandleFunc("GET /v1/decisions", h.ListDecisions)
	mux.HandleFunc("GET /v1/decisions/{id}", h.GetDecision)
	mux.HandleFunc("GET /v1/decisions/{id}/grade", h.DecisionGrade)
	mux.HandleFunc("GET /v1/decisions/{id}/pack", h.DecisionPack)

	mux.HandleFunc("GET /v1/applicants/samples", h.Samples)

	mux.HandleFunc("POST /v1/sessions", h.CreateSession)
	mux.HandleFunc("GET /v1/sessions", h.ListSessions)
	mux.HandleFunc("GET /v1/sessions/{id}", h.GetSession)
	mux.HandleFunc("POST /v1/sessions/{id}/run", h.RunSession)
	mux.HandleFunc("POST /v1/sessions/{id}/reset", h.ResetSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", h.DeleteSession)

	mux.HandleFunc("GET /healthz", h.Healthz)

	return mux
}
