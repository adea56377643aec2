package scorecard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zendalabs/zenda/internal/canon"
)

type Loaded struct {
	Scorecard Scorecard
	Hash      string
	Bytes     []byte
}

// Load reads a YAML scorecard and computes its hash from the raw bytes.
func Load(path string) (Loaded, error) {
	// #nosec G304 -- path comes from operator-configured scorecard path.
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}

	var s Scorecard
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Loaded{}, err
	}
	if err := s.Validate(); err != nil {
		return Loaded{}, err
	}

	return Loaded{
		Scorecard: s,
		Hash:      canon.DigestWithPrefix(data),
		Bytes:     data,
	}, nil
}

// LoadDefault materializes the built-in scorecard as a Loaded value so
// callers always have bytes and a hash to record against decisions.
func LoadDefault() (Loaded, error) {
	s := Default()
	data, err := yaml.Marshal(s)
	if err != nil {
		return Loaded{}, err
	}
	return Loaded{
		Scorecard: s,
		Hash:      canon.DigestWithPrefix(data),
		Bytes:     data,
	}, nil
}

func (s Scorecard) Validate() error {
	if s.ScorecardID == "" {
		return fmt.Errorf("scorecard_id is required")
	}
	if s.Clamp.Min >= s.Clamp.Max {
		return fmt.Errorf("clamp.min must be below clamp.max")
	}
	if s.Approval.MinScore <= 0 {
		return fmt.Errorf("approval.min_score must be positive")
	}
	if s.IncomeStability.Weight <= 0 {
		return fmt.Errorf("income_stability.weight must be positive")
	}
	if s.Anomalies.PerTransaction >= 0 {
		return fmt.Errorf("anomalies.per_transaction must be negative")
	}
	if s.Anomalies.Floor >= 0 {
		return fmt.Errorf("anomalies.floor must be negative")
	}
	if s.Savings.StrongRatio <= 1 {
		return fmt.Errorf("savings.strong_ratio must exceed 1")
	}
	if s.Confidence.Spread < 0 {
		return fmt.Errorf("confidence.spread must not be negative")
	}
	return nil
}
