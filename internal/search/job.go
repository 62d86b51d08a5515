package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/combat"
)

// Job states.
const (
	StatePending   = "pending"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateCancelled = "cancelled"
)

// Job is one identified search run with a tracked lifecycle:
// pending -> running -> completed | cancelled.
type Job struct {
	ID uuid.UUID

	cc      *combat.Context
	opts    Options
	workers int
	fsm     *fsm.FSM

	mu        sync.Mutex
	stop      context.CancelFunc
	cancelled bool
}

// NewJob prepares a pending search over cc.
func NewJob(cc *combat.Context, opts Options, workers int) *Job {
	j := &Job{
		ID:      uuid.New(),
		cc:      cc,
		opts:    opts,
		workers: workers,
	}
	j.fsm = fsm.NewFSM(
		StatePending,
		fsm.Events{
			{Name: "start", Src: []string{StatePending}, Dst: StateRunning},
			{Name: "finish", Src: []string{StateRunning}, Dst: StateCompleted},
			{Name: "abort", Src: []string{StatePending, StateRunning}, Dst: StateCancelled},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				if j.opts.Logger != nil {
					j.opts.Logger.Printf("[job] %s: %s -> %s", j.ID, e.Src, e.Dst)
				}
			},
		},
	)
	return j
}

// State is the current lifecycle state.
func (j *Job) State() string { return j.fsm.Current() }

// Run executes the search. A job runs at most once; running a cancelled or
// finished job is an error. A search stopped by Cancel or by ctx returns its
// partial result with Stats.Cancelled set and a nil error.
func (j *Job) Run(ctx context.Context) (Result, error) {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	j.mu.Lock()
	if j.cancelled {
		j.mu.Unlock()
		return Result{}, fmt.Errorf("job %s: cancelled before start", j.ID)
	}
	if err := j.fsm.Event(context.Background(), "start"); err != nil {
		j.mu.Unlock()
		return Result{}, fmt.Errorf("job %s: %w", j.ID, err)
	}
	j.stop = stop
	j.mu.Unlock()

	res := RunSharded(ctx, j.cc, j.opts, j.workers)

	next := "finish"
	if res.Stats.Cancelled {
		next = "abort"
	}
	if err := j.fsm.Event(context.Background(), next); err != nil {
		return res, fmt.Errorf("job %s: %w", j.ID, err)
	}
	return res, nil
}

// Cancel stops a running job, or marks a pending one cancelled. It is safe
// to call from any goroutine and more than once.
func (j *Job) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancelled {
		return
	}
	j.cancelled = true
	if j.stop != nil {
		j.stop()
		return
	}
	_ = j.fsm.Event(context.Background(), "abort")
}
