package job

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-empire/internal/http-server/handlers/event"
	"game-empire/internal/lib/logger/handler/slogdiscard"
)

func TestWorkerPoolRunsJobs(t *testing.T) {
	queue := NewJobQueue(10)
	pool := NewWorkerPool(3, queue)
	pool.Start()

	var count int32
	done := make(chan struct{}, 5)

	for i := 0; i < 5; i++ {
		queue.Dispatch(Func(func() {
			atomic.AddInt32(&count, 1)
			done <- struct{}{}
		}), 0)
	}

	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not run")
		}
	}

	pool.Stop()
	assert.Equal(t, int32(5), atomic.LoadInt32(&count))
}

func TestDispatchDelay(t *testing.T) {
	queue := NewJobQueue(1)
	pool := NewWorkerPool(1, queue)
	pool.Start()
	defer pool.Stop()

	start := time.Now()
	ran := make(chan time.Time, 1)

	queue.Dispatch(Func(func() { ran <- time.Now() }), 50*time.Millisecond)

	select {
	case at := <-ran:
		assert.GreaterOrEqual(t, at.Sub(start), 50*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("delayed job did not run")
	}
}

func TestDispatchAfterStopIsDropped(t *testing.T) {
	queue := NewJobQueue(1)
	pool := NewWorkerPool(1, queue)
	pool.Start()
	pool.Stop()

	var ran int32
	queue.Dispatch(Func(func() { atomic.StoreInt32(&ran, 1) }), 0)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
}

func TestSendEventJob(t *testing.T) {
	rec := &event.Recorder{}

	job := &SendEventJob{
		EventMessage: event.Message{Channel: event.ChannelBalance, Event: event.EventIncome},
		Event:        rec,
		Log:          slogdiscard.NewDiscardLogger(),
	}
	job.Execute()

	messages := rec.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, event.EventIncome, messages[0].Event)
}
