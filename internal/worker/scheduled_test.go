package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/praio-service/internal/worker"
)

func TestNewScheduledWorker_InvalidSpec(t *testing.T) {
	_, err := worker.NewScheduledWorker("bad", "every hour", func(context.Context) error { return nil }, false, time.UTC, zap.NewNop())
	assert.Error(t, err)
}

func TestScheduledWorker_RunOnStartAndStop(t *testing.T) {
	var runs int32
	job := func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return errors.New("upstream down")
	}

	w, err := worker.NewScheduledWorker("ingestion", "0 * * * *", job, true, time.UTC, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "ingestion", w.Name())

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.True(t, w.IsStopped())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestScheduledWorker_RunOnce(t *testing.T) {
	called := false
	w, err := worker.NewScheduledWorker("aggregation", "@hourly", func(ctx context.Context) error {
		called = true
		return nil
	}, false, nil, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, w.RunOnce(context.Background()))
	assert.True(t, called)
}

func TestScheduledWorker_PanicAtStartIsRecovered(t *testing.T) {
	var runs int32
	job := func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		panic("nil snapshot")
	}

	w, err := worker.NewScheduledWorker("aggregation", "0 * * * *", job, true, time.UTC, zap.NewNop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, w.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after a panicking first run")
	}
}

func TestScheduledWorker_RunOnceReturnsPanic(t *testing.T) {
	w, err := worker.NewScheduledWorker("ingestion", "@hourly", func(ctx context.Context) error {
		panic("index out of range")
	}, false, time.UTC, zap.NewNop())
	require.NoError(t, err)

	err = w.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingestion panicked")
}

func TestWorkerManager(t *testing.T) {
	logger := zap.NewNop()

	t.Run("no workers", func(t *testing.T) {
		assert.Error(t, worker.NewWorkerManager(logger).Start(context.Background()))
	})

	t.Run("start and stop", func(t *testing.T) {
		var runs int32
		w, err := worker.NewScheduledWorker("ingestion", "0 * * * *", func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return nil
		}, true, time.UTC, logger)
		require.NoError(t, err)

		m := worker.NewWorkerManager(logger)
		m.Register(w)
		require.NoError(t, m.Start(context.Background()))

		assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 1 }, time.Second, 10*time.Millisecond)
		assert.NoError(t, m.StopWithin(2*time.Second))
	})
}
