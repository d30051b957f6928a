// Package dispatch runs named background tasks off the request path and
// records how each one finished.
package dispatch

import (
	"context"
	"log"
	"sync"
	"time"
)

// Defaults for the dispatcher queue and per-task deadline.
const (
	DefaultQueueSize   = 64
	DefaultTaskTimeout = 30 * time.Second
)

// Task is one unit of background work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Result records the outcome of a finished task.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Dispatcher feeds submitted tasks to a single worker goroutine. Submitting
// never blocks a request; a full queue drops the task with a log line.
type Dispatcher struct {
	tasks    chan Task
	onResult func(Result)
	timeout  time.Duration
	wg       sync.WaitGroup
	closed   sync.Once
}

// New starts a dispatcher. onResult may be nil; outcomes are always logged.
func New(queueSize int, taskTimeout time.Duration, onResult func(Result)) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if taskTimeout <= 0 {
		taskTimeout = DefaultTaskTimeout
	}

	d := &Dispatcher{
		tasks:    make(chan Task, queueSize),
		onResult: onResult,
		timeout:  taskTimeout,
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Submit queues a task for background execution. It reports false when the
// queue is full and the task was dropped.
func (d *Dispatcher) Submit(name string, run func(ctx context.Context) error) bool {
	select {
	case d.tasks <- Task{Name: name, Run: run}:
		return true
	default:
		log.Printf("Background task dropped, queue full: %s", name)
		return false
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.closed.Do(func() {
		close(d.tasks)
	})
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for task := range d.tasks {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := task.Run(ctx)
		cancel()

		result := Result{Name: task.Name, Err: err, Duration: time.Since(start)}
		if err != nil {
			log.Printf("Background task %s failed after %s: %v", result.Name, result.Duration.Round(time.Millisecond), err)
		} else {
			log.Printf("Background task %s finished in %s", result.Name, result.Duration.Round(time.Millisecond))
		}
		if d.onResult != nil {
			d.onResult(result)
		}
	}
}
