package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is one periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs jobs on fixed tickers until its context is cancelled.
// Jobs run concurrently with request traffic and with each other; each job
// is responsible for its own idempotence.
type Scheduler struct {
	jobs   []Job
	logger *logrus.Logger
	wg     sync.WaitGroup
}

func New(logger *logrus.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

// Start launches one goroutine per job. It returns immediately; use Wait
// after cancelling ctx to drain in-flight runs.
func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.run(ctx, job)
	}
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.logger.WithFields(logrus.Fields{"job": job.Name, "interval": job.Interval.String()}).Info("scheduled job started")
	for {
		select {
		case <-ctx.Done():
			s.logger.WithField("job", job.Name).Info("scheduled job stopped")
			return
		case <-ticker.C:
			if err := job.Run(ctx); err != nil {
				s.logger.WithError(err).WithField("job", job.Name).Error("scheduled job run failed")
			}
		}
	}
}

func (s *Scheduler) Wait() {
	s.wg.Wait()
}
