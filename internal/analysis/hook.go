// Package analysis holds the consumers of finished profiles.
package analysis

import (
	"context"

	"github.com/naka-gawa/candidate-stats/internal/domain"
	"github.com/naka-gawa/candidate-stats/internal/usecase"
	"github.com/sirupsen/logrus"
)

// LogHook is the placeholder analysis step: it records what it was given and nothing more.
// Scoring against the resume belongs here once it exists.
type LogHook struct {
	logger logrus.FieldLogger
}

// NewLogHook creates a LogHook.
func NewLogHook(logger logrus.FieldLogger) *LogHook {
	return &LogHook{logger: logger}
}

func (h *LogHook) Analyze(_ context.Context, profileURL string, result domain.ProfileResult, resumeReference string) {
	fields := logrus.Fields{
		"stage":       "hook",
		"profile_url": profileURL,
		"resume":      resumeReference,
		"ok":          result.OK(),
	}
	if result.OK() {
		fields["username"] = result.Success.Username
		fields["repositories"] = len(result.Success.Repositories)
		fields["languages"] = result.Success.AllLanguages.Sorted()
		fields["total_commits"] = result.Success.TotalAttributedCommits
	} else {
		fields["error"] = result.Failure.ErrorMessage
	}
	h.logger.WithFields(fields).Info("profile received for analysis")
}

// MultiHook hands a result to each hook in order.
type MultiHook []usecase.Hook

func (m MultiHook) Analyze(ctx context.Context, profileURL string, result domain.ProfileResult, resumeReference string) {
	for _, h := range m {
		h.Analyze(ctx, profileURL, result, resumeReference)
	}
}
