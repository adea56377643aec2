package review

import (
	"github.com/rs/zerolog"
)

// LogNotifier writes review notifications to the service log. It stands
// in for a real alerting integration and is the default in the demo
// deployment.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) Notify(channel string, msg Message) error {
	n.Logger.Warn().
		Str("channel", channel).
		Str("decision_id", msg.DecisionID).
		Str("applicant_id", msg.ApplicantID).
		Str("country", msg.Country).
		Int("score", msg.Score).
		Bool("approved", msg.Approved).
		Int("anomalous_transactions", msg.AnomalousTransactions).
		Bool("risk_country", msg.RiskCountry).
		Strs("reasons", msg.Reasons).
		Msg("manual review required")
	return nil
}
