// Package worker runs AI candidate assessment as a bounded-concurrency-1
// task pipeline: batch requests fan out into one task per application, and a
// single consumer processes them strictly in order, persisting each result
// before taking the next.
package worker

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"talentscout/domain"
)

// Analyzer scores one application against its job. Implementations must not
// fail: an unusable AI response degrades to the sentinel analysis.
type Analyzer interface {
	AnalyzeCandidate(ctx context.Context, job *domain.Job, app *domain.Application) domain.CandidateAnalysis
}

// Queue accepts assessment tasks for sequential processing.
type Queue interface {
	PublishTask(task domain.AssessmentTask) error
}

// Assessor handles individual assessment tasks.
type Assessor struct {
	store    domain.Store
	analyzer Analyzer
}

func NewAssessor(store domain.Store, analyzer Analyzer) *Assessor {
	return &Assessor{store: store, analyzer: analyzer}
}

// EnqueueBatch publishes one task per application of the job that has no
// stored analysis yet, in submission order, and returns how many were
// queued. A fully-analyzed set queues nothing.
func (a *Assessor) EnqueueBatch(ctx context.Context, queue Queue, jobID string) (int, error) {
	apps, err := a.store.GetApplications(ctx, jobID)
	if err != nil {
		return 0, fmt.Errorf("failed to load applications: %w", err)
	}

	queued := 0
	for i := range apps {
		if apps[i].Analyzed() {
			continue
		}
		task := domain.AssessmentTask{ApplicationID: apps[i].ID, JobID: jobID}
		if err := queue.PublishTask(task); err != nil {
			return queued, fmt.Errorf("failed to queue task for %s: %w", apps[i].ID, err)
		}
		queued++
	}
	return queued, nil
}

// Handle analyzes one application and persists the result. Already-analyzed
// applications are skipped, so replayed or duplicate tasks are harmless.
// Assessment itself cannot fail (sentinel fallback); only a persistence
// failure surfaces as an error.
func (a *Assessor) Handle(ctx context.Context, task domain.AssessmentTask) error {
	app, err := a.store.GetApplication(ctx, task.ApplicationID)
	if err != nil {
		return fmt.Errorf("failed to load application %s: %w", task.ApplicationID, err)
	}
	if app.Analyzed() {
		log.Debugf("application %s already analyzed, skipping", app.ID)
		return nil
	}

	job, err := a.store.GetJob(ctx, task.JobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", task.JobID, err)
	}

	analysis := a.analyzer.AnalyzeCandidate(ctx, job, app)
	app.AiAnalysis = &analysis

	if err := a.store.UpdateApplication(ctx, app); err != nil {
		return fmt.Errorf("failed to persist analysis for %s: %w", app.ID, err)
	}

	log.Infof("scored application %s for job %s: %d", app.ID, job.ID, analysis.Score)
	return nil
}
