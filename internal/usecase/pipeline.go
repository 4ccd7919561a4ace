package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/naka-gawa/candidate-stats/internal/domain"
	"github.com/sirupsen/logrus"
)

// Hook receives every finished profile. Implementations must not fail the pipeline.
type Hook interface {
	Analyze(ctx context.Context, profileURL string, result domain.ProfileResult, resumeReference string)
}

// Pipeline runs the aggregation and hands its result to the hook.
type Pipeline struct {
	aggregator *Aggregator
	hook       Hook
	logger     logrus.FieldLogger
	wg         sync.WaitGroup
}

// NewPipeline creates a Pipeline.
func NewPipeline(aggregator *Aggregator, hook Hook, logger logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		aggregator: aggregator,
		hook:       hook,
		logger:     logger,
	}
}

// Run aggregates the profile of req and delivers it to the hook.
func (p *Pipeline) Run(ctx context.Context, req domain.ProfileRequest) domain.ProfileResult {
	result := p.aggregator.Aggregate(ctx, req)
	p.analyze(ctx, req, result)
	return result
}

// analyze hands result to the hook. A panicking hook is logged and never reaches the caller.
func (p *Pipeline) analyze(ctx context.Context, req domain.ProfileRequest, result domain.ProfileResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithFields(logrus.Fields{
				"stage":       "hook",
				"profile_url": req.ProfileURL,
			}).Errorf("recovered from panic: %v", r)
		}
	}()
	p.hook.Analyze(ctx, req.ProfileURL, result, req.ResumeReference)
}

// Submit starts a run in the background and returns its id.
// The run is detached from ctx cancellation so it outlives the request that triggered it.
func (p *Pipeline) Submit(ctx context.Context, req domain.ProfileRequest) string {
	runID := uuid.NewString()
	log := p.logger.WithField("run_id", runID)
	runCtx := context.WithoutCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		log.WithField("profile_url", req.ProfileURL).Info("pipeline run started")
		result := p.Run(runCtx, req)
		log.WithField("ok", result.OK()).Info("pipeline run finished")
	}()
	return runID
}

// Wait blocks until every submitted run has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}
