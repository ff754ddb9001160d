package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Break stops the scheduler loop when returned from a job.
var Break = errors.New("internal: break scheduler loop")

type Job struct {
	Name     string
	Run      func(ctx context.Context) error
	Interval time.Duration
}

func NewJob(name string, run func(ctx context.Context) error, interval time.Duration) *Job {
	return &Job{
		Name:     name,
		Run:      run,
		Interval: interval,
	}
}

type Scheduler struct {
	logger *logrus.Entry

	stop     chan struct{}
	stopOnce sync.Once
}

func NewScheduler(logger *logrus.Entry) *Scheduler {
	return &Scheduler{
		logger: logger.WithField("prefix", "scheduler"),
		stop:   make(chan struct{}),
	}
}

// Start runs job immediately and then every job.Interval until ctx is
// done, Close is called or the job returns Break. Job errors are logged.
func (s *Scheduler) Start(ctx context.Context, job *Job) {
	tick := time.NewTicker(job.Interval)
	defer tick.Stop()

	logger := s.logger.WithField("name", job.Name)

	for {
		started := time.Now()
		err := job.Run(ctx)

		switch {
		case errors.Is(err, Break):
			logger.Info("job scheduler stopping")
			return
		case err != nil:
			logger.WithError(err).Error("job run error")
		default:
			logger.WithField("took", time.Since(started)).Debug("job run successful")
		}

		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			s.Close()
			return
		case <-tick.C:
		}
	}
}

func (s *Scheduler) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	return nil
}
