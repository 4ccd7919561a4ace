// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"

	"github.com/naka-gawa/candidate-stats/internal/domain"
	"github.com/naka-gawa/candidate-stats/internal/gateway"
	"github.com/naka-gawa/candidate-stats/internal/identity"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Aggregator is the use case for building a candidate profile.
// It orchestrates the enumeration of repositories and the per-repository detail fetches.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  logrus.FieldLogger
	workers int
}

// NewAggregator creates a new Aggregator instance.
// With workers <= 1 repositories are processed strictly one after another.
func NewAggregator(fetcher gateway.Fetcher, logger logrus.FieldLogger, workers int) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
		workers: workers,
	}
}

// Aggregate performs the main business logic.
// Only an unusable URL or a failed repository listing produce a Failure; every per-repository
// failure degrades that repository alone. Aggregate never panics.
func (a *Aggregator) Aggregate(ctx context.Context, req domain.ProfileRequest) (result domain.ProfileResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.WithField("stage", "aggregate").Errorf("recovered from panic: %v", r)
			result = domain.Failed(fmt.Sprintf("unexpected error: %v", r))
		}
	}()

	if err := req.Validate(); err != nil {
		a.logger.WithField("stage", "extract").WithError(err).Warn("rejected request")
		return domain.Failed(err.Error())
	}

	username, err := identity.ExtractUsername(req.ProfileURL)
	if err != nil {
		a.logger.WithField("stage", "extract").WithError(err).Warn("could not extract username")
		return domain.Failed(err.Error())
	}
	log := a.logger.WithField("username", username)
	log.WithField("stage", "extract").Debug("username extracted")

	handles, err := a.fetcher.ListRepositories(ctx, username)
	if err != nil {
		log.WithField("stage", "enumerate").WithError(err).Error("repository enumeration failed")
		return domain.Failed(err.Error())
	}
	log.WithFields(logrus.Fields{"stage": "enumerate", "count": len(handles)}).Info("repositories enumerated")

	// Each worker writes only its own index, so the listing order survives the fan-out.
	summaries := make([]domain.RepositorySummary, len(handles))
	var eg errgroup.Group
	eg.SetLimit(a.workers)
	for i, h := range handles {
		eg.Go(func() error {
			summaries[i] = a.summarize(ctx, username, h)
			return nil
		})
	}
	_ = eg.Wait()

	result = domain.Succeeded(username, summaries)
	log.WithFields(logrus.Fields{
		"stage":         "aggregate",
		"repositories":  len(summaries),
		"languages":     len(result.Success.AllLanguages),
		"total_commits": result.Success.TotalAttributedCommits,
	}).Info("profile aggregated")
	return result
}

// summarize builds the summary of one repository. Each sub-step fails on its own: a failed
// language fetch contributes an empty set, a failed commit fetch or attribution a zero count,
// and either marks the summary as degraded.
func (a *Aggregator) summarize(ctx context.Context, username string, h domain.RepositoryHandle) domain.RepositorySummary {
	log := a.logger.WithFields(logrus.Fields{"stage": "repository", "username": username, "repository": h.Name})
	summary := domain.RepositorySummary{
		Name:      h.Name,
		Languages: domain.NewLanguageSet(),
		Status:    domain.StatusOK,
	}

	err := recovered(func() error {
		languages, err := a.fetcher.FetchLanguages(ctx, h)
		if err == nil && languages != nil {
			summary.Languages = languages
		}
		return err
	})
	if err != nil {
		log.WithError(err).Warn("languages unavailable, contributing none")
		summary.Status = domain.StatusDegraded
	}

	err = recovered(func() error {
		commits, err := a.fetcher.FetchCommits(ctx, h)
		if err != nil {
			return err
		}
		summary.AttributedCommitCount = AttributeCommits(commits, username)
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("commits unavailable, contributing none")
		summary.Status = domain.StatusDegraded
		summary.AttributedCommitCount = 0
	}

	log.WithFields(logrus.Fields{
		"languages": len(summary.Languages),
		"commits":   summary.AttributedCommitCount,
		"status":    summary.Status,
	}).Debug("repository processed")
	return summary
}

// recovered runs fn and turns a panic into an error.
func recovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic: %v", r)
		}
	}()
	return fn()
}
