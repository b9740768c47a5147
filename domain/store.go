package domain

import "context"

// Store is the persistence capability shared by handlers and the assessment
// worker. It is injected everywhere rather than accessed as a global so
// tests can substitute an in-memory implementation.
type Store interface {
	GetJobs(ctx context.Context) ([]Job, error)
	GetJob(ctx context.Context, id string) (*Job, error)
	SaveJob(ctx context.Context, job *Job) error

	GetApplications(ctx context.Context, jobID string) ([]Application, error)
	GetApplication(ctx context.Context, id string) (*Application, error)
	SaveApplication(ctx context.Context, app *Application) error
	// UpdateApplication replaces the stored application with the same id.
	UpdateApplication(ctx context.Context, app *Application) error
}

// AssessmentTask asks the worker to score one application against its job.
type AssessmentTask struct {
	ApplicationID string `json:"application_id"`
	JobID         string `json:"job_id"`
}
