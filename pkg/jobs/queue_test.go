package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savePayload struct {
	StudentID string
}

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 1)
	q := NewQueue("autosave", func(_ context.Context, job Job[savePayload]) error {
		done <- job.Payload.StudentID
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[savePayload]{ID: "1", Payload: savePayload{StudentID: "stu-1"}}))

	select {
	case got := <-done:
		assert.Equal(t, "stu-1", got)
	case <-time.After(2 * time.Second):
		t.Fatal("job not processed")
	}
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	q := NewQueue("autosave", func(_ context.Context, job Job[int]) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("database unavailable")
		}
		close(done)
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[int]{ID: "retry"}))

	select {
	case <-done:
		assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
}

func TestEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("autosave", func(context.Context, Job[int]) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job[int]{ID: "x"}))
}
