package worker

import (
	"context"

	log "github.com/sirupsen/logrus"

	"talentscout/domain"
)

// TaskQueue is the in-process fallback used when no RabbitMQ broker is
// configured. A buffered channel drained by one goroutine gives the same
// one-at-a-time guarantee as the broker consumer.
type TaskQueue struct {
	tasks chan domain.AssessmentTask
}

func NewTaskQueue(buffer int) *TaskQueue {
	if buffer <= 0 {
		buffer = 256
	}
	return &TaskQueue{tasks: make(chan domain.AssessmentTask, buffer)}
}

// PublishTask enqueues a task without blocking the caller, unless the
// buffer is full.
func (q *TaskQueue) PublishTask(task domain.AssessmentTask) error {
	q.tasks <- task
	return nil
}

// Run drains the queue sequentially until ctx is cancelled. Each task
// completes (or fails) before the next is taken.
func (q *TaskQueue) Run(ctx context.Context, assessor *Assessor) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-q.tasks:
			if err := assessor.Handle(ctx, task); err != nil {
				log.Errorf("assessment task failed: %v", err)
			}
		}
	}
}
