// Package search enumerates six-slot disc loadouts with branch-and-bound
// pruning and keeps the best K by damage.
package search

import (
	"context"
	"log"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/combat"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/evaluator"
)

// Options tune one search.
type Options struct {
	// TopK is the number of results kept.
	TopK int
	// Tolerance loosens the pruning bound, in effective-score units.
	// +Inf disables pruning.
	Tolerance float64
	// ProgressEvery is the number of evaluations between progress reports.
	ProgressEvery int64
	// Shard and Shards select a contiguous slice of the outermost slot.
	Shard, Shards int
	// Progress, if set, receives reports on the searching goroutine.
	Progress func(Progress)
	// Logger, if set, receives phase logs.
	Logger    *log.Logger
	Evaluator evaluator.Options
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		TopK:          10,
		Tolerance:     10,
		ProgressEvery: 1000,
		Shards:        1,
		Evaluator:     evaluator.DefaultOptions(),
	}
}

// Progress is a periodic report of a running search.
type Progress struct {
	Shard     int           `json:"shard"`
	Processed int64         `json:"processed"`
	Pruned    int64         `json:"pruned"`
	Total     int64         `json:"total"`
	Rate      float64       `json:"rate"`
	ETA       time.Duration `json:"eta"`
	// Threshold is the current admission threshold; -Inf until the
	// result set first fills.
	Threshold float64 `json:"-"`
}

// Stats summarise a finished search.
type Stats struct {
	Total     int64         `json:"total"`
	Processed int64         `json:"processed"`
	Pruned    int64         `json:"pruned"`
	Elapsed   time.Duration `json:"elapsed"`
	Rate      float64       `json:"rate"`
	Cancelled bool          `json:"cancelled"`
}

// Result is the ranked output of a search.
type Result struct {
	Builds []evaluator.Build `json:"builds"`
	Stats  Stats             `json:"stats"`
}

// Driver runs one shard of the enumeration. It owns its Evaluator and is
// not safe for concurrent use, except for Cancel.
type Driver struct {
	ctx  *combat.Context
	opts Options
	ev   *evaluator.Evaluator

	// order[level] is the original slot searched at that level.
	order [combat.NumSlots]int
	lists [combat.NumSlots][]combat.DiscCandidate
	// maxRest[l], subtree[l] and targetRest[l] cover levels l..5.
	maxRest    [combat.NumSlots + 1]float64
	subtree    [combat.NumSlots + 1]int64
	targetRest [combat.NumSlots + 1]int

	chosen    [combat.NumSlots]*combat.DiscCandidate
	top       *topK
	threshold float64
	total     int64
	processed int64
	pruned    int64
	seq       int64
	start     time.Time

	cancel  atomic.Bool
	stopped bool
}

// NewDriver prepares a driver for one shard of ctx.
func NewDriver(ctx *combat.Context, opts Options) *Driver {
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.Shards <= 0 {
		opts.Shards = 1
	}
	d := &Driver{
		ctx:       ctx,
		opts:      opts,
		ev:        evaluator.New(ctx, opts.Evaluator),
		top:       newTopK(opts.TopK),
		threshold: negInf,
	}

	// fewest candidates outermost
	for i := range d.order {
		d.order[i] = i
	}
	sort.SliceStable(d.order[:], func(a, b int) bool {
		return len(ctx.Slots[d.order[a]]) < len(ctx.Slots[d.order[b]])
	})
	for level, slot := range d.order {
		d.lists[level] = ctx.Slots[slot]
	}
	n := len(d.lists[0])
	lo, hi := ShardRange(n, opts.Shard, opts.Shards)
	d.lists[0] = d.lists[0][lo:hi]

	d.subtree[combat.NumSlots] = 1
	for level := combat.NumSlots - 1; level >= 0; level-- {
		list := d.lists[level]
		best := 0.0
		hasTarget := false
		for i := range list {
			if i == 0 || list[i].Score > best {
				best = list[i].Score
			}
			if list[i].SetIdx == ctx.TargetSet {
				hasTarget = true
			}
		}
		d.maxRest[level] = d.maxRest[level+1] + best
		d.subtree[level] = mulSat(d.subtree[level+1], int64(len(list)))
		d.targetRest[level] = d.targetRest[level+1]
		if hasTarget {
			d.targetRest[level]++
		}
	}
	d.total = d.subtree[0]
	return d
}

var negInf = math.Inf(-1)

// ShardRange is the half-open slice [lo, hi) of n outer candidates owned
// by shard i of k. A shard outside [0, k) owns nothing.
func ShardRange(n, i, k int) (lo, hi int) {
	if k < 1 {
		k = 1
	}
	if i < 0 || i >= k {
		return n, n
	}
	return n * i / k, n * (i + 1) / k
}

// mulSat multiplies non-negative counts, saturating at math.MaxInt64.
func mulSat(a, b int64) int64 {
	if a != 0 && b > math.MaxInt64/a {
		return math.MaxInt64
	}
	return a * b
}

// Total is the number of combinations in this driver's shard.
func (d *Driver) Total() int64 { return d.total }

// Cancel asks a running search to stop. It is safe to call from any
// goroutine, before or during Run.
func (d *Driver) Cancel() { d.cancel.Store(true) }

// Run enumerates the shard and returns the best results found. Cancelling
// ctx has the same effect as Cancel. Each Run starts from empty results
// and counters; a Cancel stays in effect for later runs.
func (d *Driver) Run(ctx context.Context) Result {
	d.reset()
	if ctx.Err() != nil {
		d.Cancel()
	}
	stop := context.AfterFunc(ctx, d.Cancel)
	defer stop()

	d.start = time.Now()
	d.logf("[search] shard %d/%d: %d combinations, top %d, tolerance %g",
		d.opts.Shard+1, d.opts.Shards, d.total, d.opts.TopK, d.opts.Tolerance)
	if d.total == 0 {
		d.logf("[search] nothing to search")
		return Result{Stats: d.stats()}
	}

	d.ev.Begin()
	d.descend(0, 0, 0)
	d.report()

	res := Result{Stats: d.stats()}
	for _, e := range d.top.Drain() {
		b, ok := d.ev.Expand(e.discs)
		if !ok {
			continue
		}
		res.Builds = append(res.Builds, b)
	}
	if d.stopped {
		d.logf("[cancel] stopped after %d processed, %d pruned", d.processed, d.pruned)
	}
	d.logf("[done] kept=%d processed=%d pruned=%d elapsed=%v",
		len(res.Builds), d.processed, d.pruned, res.Stats.Elapsed)
	return res
}

func (d *Driver) reset() {
	d.top = newTopK(d.opts.TopK)
	d.threshold = negInf
	d.processed, d.pruned, d.seq = 0, 0, 0
	d.stopped = false
	d.chosen = [combat.NumSlots]*combat.DiscCandidate{}
}

func (d *Driver) descend(level int, prefix float64, targets int) {
	list := d.lists[level]
	target := d.ctx.TargetSet
	next := level + 1
	for i := range list {
		if d.cancel.Load() {
			d.stopped = true
			return
		}
		c := &list[i]
		score := prefix + c.Score
		tc := targets
		if c.SetIdx == target {
			tc++
		}
		if target != combat.NoTargetSet && tc+d.targetRest[next] < 4 {
			d.pruned += d.subtree[next]
			continue
		}
		if score+d.maxRest[next] < d.threshold-d.opts.Tolerance {
			d.pruned += d.subtree[next]
			continue
		}

		d.ev.Push(c)
		d.chosen[level] = c
		if next == combat.NumSlots {
			d.visit(score)
		} else {
			d.descend(next, score, tc)
		}
		d.ev.Pop(c)
		if d.stopped {
			return
		}
	}
}

func (d *Driver) visit(score float64) {
	d.processed++
	if r, ok := d.ev.Current(); ok {
		e := &entry{damage: r.Damage, score: score, seq: d.seq}
		d.seq++
		for level, slot := range d.order {
			e.discs[slot] = d.chosen[level]
		}
		if d.top.Offer(e) && d.top.Full() {
			d.threshold = max(d.threshold, score-d.opts.Tolerance)
		}
	}
	if d.opts.ProgressEvery > 0 && d.processed%d.opts.ProgressEvery == 0 {
		d.report()
	}
}

// Threshold is the current admission threshold.
func (d *Driver) Threshold() float64 { return d.threshold }

func (d *Driver) report() {
	if d.opts.Progress == nil {
		return
	}
	elapsed := time.Since(d.start)
	p := Progress{
		Shard:     d.opts.Shard,
		Processed: d.processed,
		Pruned:    d.pruned,
		Total:     d.total,
		Threshold: d.threshold,
	}
	if secs := elapsed.Seconds(); secs > 0 {
		p.Rate = float64(d.processed) / secs
	}
	if p.Rate > 0 {
		remaining := d.total - d.processed - d.pruned
		p.ETA = time.Duration(float64(remaining) / p.Rate * float64(time.Second))
	}
	d.opts.Progress(p)
}

func (d *Driver) stats() Stats {
	s := Stats{
		Total:     d.total,
		Processed: d.processed,
		Pruned:    d.pruned,
		Cancelled: d.stopped,
	}
	if !d.start.IsZero() {
		s.Elapsed = time.Since(d.start)
	}
	if secs := s.Elapsed.Seconds(); secs > 0 {
		s.Rate = float64(s.Processed+s.Pruned) / secs
	}
	return s
}

func (d *Driver) logf(format string, args ...any) {
	if d.opts.Logger != nil {
		d.opts.Logger.Printf(format, args...)
	}
}
