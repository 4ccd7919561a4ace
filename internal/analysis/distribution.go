package analysis

import (
	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/candidate-stats/internal/domain"
)

// Distribution describes how attributed commits spread over the repositories of a profile.
type Distribution struct {
	Repositories int     `json:"repositories"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	P90          float64 `json:"p90"`
	Max          int     `json:"max"`
}

// NewDistribution computes the distribution of attributed commits per repository.
// A profile without repositories yields the zero value.
func NewDistribution(profile *domain.ProfileSuccess) Distribution {
	if profile == nil || len(profile.Repositories) == 0 {
		return Distribution{}
	}
	data := make(stats.Float64Data, 0, len(profile.Repositories))
	for _, r := range profile.Repositories {
		data = append(data, float64(r.AttributedCommitCount))
	}

	// Errors below only happen for empty input, which is excluded above.
	mean, _ := data.Mean()
	median, _ := data.Median()
	maxCommits, _ := data.Max()
	p90, err := data.Percentile(90)
	if err != nil {
		// Too few samples for a 90th percentile.
		p90 = maxCommits
	}

	return Distribution{
		Repositories: len(data),
		Mean:         mean,
		Median:       median,
		P90:          p90,
		Max:          int(maxCommits),
	}
}
