package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRequiresStart(t *testing.T) {
	q := NewQueue("warmup", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue("page", "a.example.com"))
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var mu sync.Mutex
	attempts := map[string]int{}
	q := NewQueue("warmup", func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts[job.Key]++
		if attempts[job.Key] < 2 {
			return errors.New("template not ready")
		}
		return nil
	}, QueueConfig{MaxRetries: 2, RetryDelay: 10 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("page", "a.example.com"))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts["a.example.com"] == 2
	}, time.Second, 10*time.Millisecond)
}

func TestQueueReportsFullBuffer(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("warmup", func(ctx context.Context, _ Job) error {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()
	defer close(block)

	var err error
	for i := 0; i < 5 && err == nil; i++ {
		err = q.Enqueue("page", "a.example.com")
	}
	assert.ErrorIs(t, err, ErrQueueFull)
}
