package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsAndSurvivesPanics(t *testing.T) {
	s := NewScheduler(nil)
	var calls int32
	require.NoError(t, s.Every("sweep", time.Second, func(context.Context) {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("boom")
		}
	}))
	s.Start()
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, 5*time.Second, 50*time.Millisecond)
}

func TestSchedulerRejectsNonPositiveInterval(t *testing.T) {
	s := NewScheduler(nil)
	assert.Error(t, s.Every("sweep", 0, func(context.Context) {}))
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := NewScheduler(nil)
	s.Stop(context.Background())
}
