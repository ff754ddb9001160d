package scheduler_test

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TykTechnologies/certexpiry/internal/scheduler"
)

func TestNewJob(t *testing.T) {
	run := func(context.Context) error { return nil }
	job := scheduler.NewJob("check", run, time.Minute)

	assert.Equal(t, "check", job.Name)
	assert.Equal(t, time.Minute, job.Interval)
	assert.NotNil(t, job.Run)
}

func TestScheduler_Break(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := scheduler.NewScheduler(logrus.NewEntry(logger))

	var counter atomic.Int64
	job := scheduler.NewJob("test", func(context.Context) error {
		if counter.Add(1) == 3 {
			return scheduler.Break
		}
		return nil
	}, time.Millisecond)

	s.Start(context.Background(), job)

	assert.Equal(t, int64(3), counter.Load())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "job scheduler stopping", hook.LastEntry().Message)
}

func TestScheduler_Errors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := scheduler.NewScheduler(logrus.NewEntry(logger))

	var counter atomic.Int64
	job := scheduler.NewJob("test", func(context.Context) error {
		if counter.Add(1) == 2 {
			return scheduler.Break
		}
		return io.EOF
	}, time.Millisecond)

	s.Start(context.Background(), job)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.ErrorLevel, entries[0].Level)
	assert.Equal(t, io.EOF, entries[0].Data[logrus.ErrorKey])
}

func TestScheduler_ContextCancel(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := scheduler.NewScheduler(logrus.NewEntry(logger))

	ctx, cancel := context.WithCancel(context.Background())

	var counter atomic.Int64
	job := scheduler.NewJob("test", func(context.Context) error {
		counter.Add(1)
		cancel()
		return nil
	}, time.Hour)

	done := make(chan struct{})
	go func() {
		s.Start(ctx, job)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
	assert.Equal(t, int64(1), counter.Load())
}

func TestScheduler_Close(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := scheduler.NewScheduler(logrus.NewEntry(logger))

	started := make(chan struct{}, 1)
	job := scheduler.NewJob("test", func(context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		return nil
	}, time.Hour)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background(), job)
		close(done)
	}()

	<-started
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop on Close")
	}
}
