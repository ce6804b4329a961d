// Package scheduler implements the single-threaded cooperative task queue
// described in spec §5: exactly one task's code runs at a time, and only
// an explicit await point ever hands control to another task. Both the
// evaluator and the VM drive the same Scheduler so async ordering is
// identical across execution paths.
//
// A Task's body runs on its own goroutine, but the goroutine is only ever
// unblocked by the Scheduler granting it a single "turn" — this gives a
// tree-walking evaluator (whose call stack cannot otherwise be suspended
// mid-expression) a way to pause at an arbitrary Await node without a
// continuation-passing rewrite.
package scheduler

import "zexus/object"

// Task is a paused or running asynchronous frame — the concrete shape
// behind object's Coroutine value.
type Task struct {
	resume   chan struct{}
	yielded  chan struct{}
	Result   object.Value
	Err      error
	finished bool
	queued   bool
}

func (*Task) Kind() object.Kind { return object.CoroutineKind }
func (t *Task) String() string {
	if t.finished {
		return "<coroutine done>"
	}
	return "<coroutine>"
}

func (t *Task) IsFinished() bool { return t.finished }

// Yield hands control back to the scheduler and blocks until the next
// turn is granted. Only ever called from the task's own goroutine.
func (t *Task) Yield() {
	t.yielded <- struct{}{}
	<-t.resume
}

// Scheduler owns the FIFO queue of runnable tasks.
type Scheduler struct {
	queue []*Task
}

func New() *Scheduler { return &Scheduler{} }

// NewTask builds a Task for run without enqueueing it: calling an async
// action produces a Coroutine value in exactly this "unexecuted" state
// (spec §4.4) — nothing runs until something Enqueues or Awaits it.
func (s *Scheduler) NewTask(run func(t *Task) (object.Value, error)) *Task {
	t := &Task{resume: make(chan struct{}), yielded: make(chan struct{})}
	go func() {
		<-t.resume
		result, err := run(t)
		t.Result, t.Err = result, err
		t.finished = true
		t.yielded <- struct{}{}
	}()
	return t
}

// Enqueue adds t to the FIFO run queue if it is not already queued or
// finished, preserving spawn order (spec §5's ordering guarantee).
func (s *Scheduler) Enqueue(t *Task) {
	if t.queued || t.finished {
		return
	}
	t.queued = true
	s.queue = append(s.queue, t)
}

// Spawn creates and immediately enqueues run for cooperative execution,
// returning a handle to its eventual result.
func (s *Scheduler) Spawn(run func(t *Task) (object.Value, error)) *Task {
	t := s.NewTask(run)
	s.Enqueue(t)
	return t
}

// step grants target one turn and waits for it to yield or finish.
func (s *Scheduler) step(target *Task) {
	target.resume <- struct{}{}
	<-target.yielded
}

// RunUntilIdle drives every currently spawned task to completion,
// round-robin FIFO across tasks at each await boundary — a task that
// never awaits runs to completion before any other task progresses.
func (s *Scheduler) RunUntilIdle() {
	for len(s.queue) > 0 {
		t := s.queue[0]
		s.queue = s.queue[1:]
		s.step(t)
		if !t.finished {
			s.queue = append(s.queue, t)
		}
	}
}

// Await blocks until target finishes. If current is non-nil (we are
// inside another task's goroutine), it yields back to the scheduler
// between polls so sibling tasks keep making progress; if current is
// nil (a top-level, non-coroutine await), it drives the scheduler
// directly instead of yielding, since there is no goroutine to resume.
func (s *Scheduler) Await(current *Task, target *Task) (object.Value, error) {
	s.Enqueue(target)
	for !target.finished {
		if current != nil {
			current.Yield()
			continue
		}
		if len(s.queue) == 0 {
			break
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.step(next)
		if !next.finished {
			s.queue = append(s.queue, next)
		}
	}
	return target.Result, target.Err
}
