// Package updater is the per-frame task scheduler. Every live task runs once
// per Tick in insertion order; tasks that report Finished are dropped and
// their resources disposed. Work scheduled during a tick joins the queue when
// the tick ends.
package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/plus3/earthshot/clock"
	"github.com/plus3/earthshot/log"
)

// QueueStats provides statistics about queue execution.
type QueueStats struct {
	TaskCount       int
	Ticks           uint64
	TotalExecutions int64
	Failures        int64
	Tasks           []TaskStats
}

// TaskStats aggregates every task sharing a name.
type TaskStats struct {
	Name           string
	Live           int
	ExecutionCount int64
	Failures       int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type taskStatsInternal struct {
	name           string
	executionCount int64
	failures       int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (s *taskStatsInternal) record(d time.Duration) {
	s.executionCount++
	s.lastDuration = d
	s.totalDuration += d

	if d < s.minDuration {
		s.minDuration = d
	}
	if d > s.maxDuration {
		s.maxDuration = d
	}
}

type entry struct {
	updater Updater
	stats   *taskStatsInternal
}

// Queue owns the set of live tasks.
type Queue struct {
	logger  *log.Logger
	tasks   []*entry
	frame   *Frame
	tick    uint64
	elapsed float64

	stats     map[string]*taskStatsInternal
	statOrder []*taskStatsInternal
	failures  int64
}

// NewQueue creates an empty queue. A nil logger discards output.
func NewQueue(logger *log.Logger) *Queue {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Queue{
		logger: logger.Named("updater"),
		stats:  make(map[string]*taskStatsInternal),
	}
}

// Schedule adds a task. Inside a tick the task is buffered and first runs on
// the next tick.
func (q *Queue) Schedule(u Updater) {
	if q.frame != nil {
		q.frame.Commands.Schedule(u)
		return
	}
	q.append(u)
}

func (q *Queue) append(u Updater) {
	name := u.Name()
	stats, ok := q.stats[name]
	if !ok {
		stats = &taskStatsInternal{
			name:        name,
			minDuration: time.Duration(1<<63 - 1),
		}
		q.stats[name] = stats
		q.statOrder = append(q.statOrder, stats)
	}
	q.tasks = append(q.tasks, &entry{updater: u, stats: stats})
}

// Tick advances every live task by dt seconds. Tasks that fail or panic are
// dropped without disposal and the failures are returned joined together.
func (q *Queue) Tick(dt float64) error {
	q.tick++
	q.elapsed += dt
	frame := newFrame(dt, q.elapsed, q.tick)
	q.frame = frame

	survivors := make([]*entry, 0, len(q.tasks))
	var errs []error

	for _, e := range q.tasks {
		start := time.Now()
		lc, err := q.step(e.updater, frame)
		e.stats.record(time.Since(start))

		if err != nil {
			e.stats.failures++
			q.failures++
			se := &StepError{Task: e.updater.Name(), Tick: q.tick, Err: err}
			q.logger.Error("task failed",
				log.String("task", se.Task),
				log.Uint64("tick", se.Tick),
				log.Err(err),
			)
			errs = append(errs, se)
			continue
		}

		if lc.Finished {
			dispose(lc.ToDelete)
			continue
		}
		survivors = append(survivors, e)
	}

	q.tasks = survivors
	q.frame = nil
	frame.Commands.Flush(q)

	return errors.Join(errs...)
}

func (q *Queue) step(u Updater, frame *Frame) (lc Lifecycle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return u.Update(frame)
}

func dispose(resources []Disposable) {
	for _, r := range resources {
		if r != nil {
			r.Dispose()
		}
	}
}

// Run ticks the queue at the given interval until the context is cancelled,
// advancing clk by the measured wall time.
func (q *Queue) Run(ctx context.Context, clk *clock.Clock, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			// failures are logged inside Tick
			_ = q.Tick(clk.Advance(dt))
		}
	}
}

// Clear disposes the resources of every live task that exposes them, owned
// ones included, and empties the queue.
func (q *Queue) Clear() {
	for _, e := range q.tasks {
		if s, ok := e.updater.(Stateful); ok {
			dispose(s.Status().ToDelete)
		}
		if o, ok := e.updater.(Owner); ok {
			dispose(o.Owned())
		}
	}
	q.tasks = nil
}

// Len is the number of live tasks.
func (q *Queue) Len() int { return len(q.tasks) }

// Elapsed is the sum of every dt ticked so far.
func (q *Queue) Elapsed() float64 { return q.elapsed }

func (q *Queue) Ticks() uint64 { return q.tick }

// Names lists the live tasks in execution order.
func (q *Queue) Names() []string {
	names := make([]string, len(q.tasks))
	for i, e := range q.tasks {
		names[i] = e.updater.Name()
	}
	return names
}

// Stats returns execution statistics grouped by task name, in the order the
// names were first scheduled.
func (q *Queue) Stats() *QueueStats {
	live := make(map[string]int, len(q.statOrder))
	for _, e := range q.tasks {
		live[e.stats.name]++
	}

	stats := &QueueStats{
		TaskCount: len(q.tasks),
		Ticks:     q.tick,
		Failures:  q.failures,
		Tasks:     make([]TaskStats, len(q.statOrder)),
	}

	var totalExecs int64
	for i, internal := range q.statOrder {
		avgDuration := time.Duration(0)
		minDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
			minDuration = internal.minDuration
		}

		stats.Tasks[i] = TaskStats{
			Name:           internal.name,
			Live:           live[internal.name],
			ExecutionCount: internal.executionCount,
			Failures:       internal.failures,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
