package job

import (
	"sync"
	"time"
)

type Job interface {
	Execute()
}

// Func adapts a plain function to Job.
type Func func()

func (f Func) Execute() { f() }

type JobQueue struct {
	jobs chan Job
	done chan struct{}
	once sync.Once
}

func NewJobQueue(size int) *JobQueue {
	return &JobQueue{
		jobs: make(chan Job, size),
		done: make(chan struct{}),
	}
}

// Dispatch enqueues job after delay. Jobs dispatched after Stop are dropped.
func (q *JobQueue) Dispatch(job Job, delay time.Duration) {
	if delay <= 0 {
		go q.push(job)

		return
	}

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			q.push(job)
		case <-q.done:
		}
	}()
}

func (q *JobQueue) push(job Job) {
	select {
	case <-q.done:
		return
	default:
	}

	select {
	case q.jobs <- job:
	case <-q.done:
	}
}

func (q *JobQueue) Stop() {
	q.once.Do(func() {
		close(q.done)
	})
}

type WorkerPool struct {
	queue   *JobQueue
	workers []Worker
	wg      sync.WaitGroup
}

func NewWorkerPool(size int, queue *JobQueue) *WorkerPool {
	if size < 1 {
		size = 1
	}

	workers := make([]Worker, size)
	for i := 0; i < size; i++ {
		workers[i] = NewWorker(queue)
	}

	return &WorkerPool{queue: queue, workers: workers}
}

func (p *WorkerPool) Start() {
	for i := range p.workers {
		p.wg.Add(1)

		go func(w Worker) {
			defer p.wg.Done()
			w.Run()
		}(p.workers[i])
	}
}

// Stop closes the queue and waits for workers to finish the jobs already queued.
func (p *WorkerPool) Stop() {
	p.queue.Stop()
	p.wg.Wait()
}

type Worker struct {
	queue *JobQueue
}

func NewWorker(queue *JobQueue) Worker {
	return Worker{queue: queue}
}

func (w Worker) Run() {
	for {
		select {
		case job := <-w.queue.jobs:
			job.Execute()
		case <-w.queue.done:
			w.drain()

			return
		}
	}
}

func (w Worker) drain() {
	for {
		select {
		case job := <-w.queue.jobs:
			job.Execute()
		default:
			return
		}
	}
}
