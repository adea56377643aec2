// Package fixtures ships the demo applicant profiles used by the
// simulated onboarding flow. They are illustrative data, not a contract
// the engine depends on.
package fixtures

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/zendalabs/zenda/pkg/types"
)

//go:embed samples.yaml
var samplesYAML []byte

type samplesFile struct {
	Applicants []types.Applicant `yaml:"applicants"`
}

var (
	loadOnce sync.Once
	loaded   []types.Applicant
	loadErr  error
)

// All returns the embedded sample applicants in file order.
func All() ([]types.Applicant, error) {
	loadOnce.Do(func() {
		var f samplesFile
		if err := yaml.Unmarshal(samplesYAML, &f); err != nil {
			loadErr = fmt.Errorf("fixtures: %w", err)
			return
		}
		loaded = f.Applicants
	})
	if loadErr != nil {
		return nil, loadErr
	}
	out := make([]types.Applicant, len(loaded))
	copy(out, loaded)
	return out, nil
}

// ByCountry returns the sample applicant for a country.
func ByCountry(country string) (types.Applicant, bool) {
	all, err := All()
	if err != nil {
		return types.Applicant{}, false
	}
	for _, a := range all {
		if a.Country == country {
			return a, true
		}
	}
	return types.Applicant{}, false
}

// Random returns one sample applicant chosen by pick, which receives the
// number of samples and returns an index. A nil pick uses the shared
// random source.
func Random(pick func(n int) int) (types.Applicant, error) {
	all, err := All()
	if err != nil {
		return types.Applicant{}, err
	}
	if len(all) == 0 {
		return types.Applicant{}, fmt.Errorf("fixtures: no samples")
	}
	if pick == nil {
		pick = rand.IntN
	}
	idx := pick(len(all))
	if idx < 0 || idx >= len(all) {
		return types.Applicant{}, fmt.Errorf("fixtures: pick returned %d out of range", idx)
	}
	return all[idx], nil
}
