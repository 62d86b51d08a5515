package search

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/combat"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/evaluator"
)

// RunSharded splits the search into opts.Shards independent drivers, runs
// them on up to workers goroutines and merges their results. workers <= 0
// means GOMAXPROCS; Shards <= 0 means one shard per worker.
//
// Progress reports are serialised and aggregated across shards; Shard is
// -1 in aggregated reports.
func RunSharded(ctx context.Context, cc *combat.Context, opts Options, workers int) Result {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	shards := opts.Shards
	if shards <= 0 {
		shards = workers
	}
	if workers > shards {
		workers = shards
	}
	start := time.Now()

	agg := newAggregator(shards, opts.Progress)
	drivers := make([]*Driver, shards)
	for i := range drivers {
		o := opts
		o.Shard, o.Shards = i, shards
		if opts.Progress != nil {
			o.Progress = agg.update
		}
		drivers[i] = NewDriver(cc, o)
		agg.last[i].Total = drivers[i].Total()
	}
	if opts.Logger != nil {
		opts.Logger.Printf("[shard] %d shards on %d workers, %d combinations",
			shards, workers, cc.TotalCombinations())
	}

	type shardResult struct {
		idx int
		res Result
	}
	resultCh := make(chan shardResult, shards)
	shardCh := make(chan int, shards)
	for i := range drivers {
		shardCh <- i
	}
	close(shardCh)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range shardCh {
				resultCh <- shardResult{idx, drivers[idx].Run(ctx)}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	parts := make([]Result, shards)
	for r := range resultCh {
		parts[r.idx] = r.res
	}
	merged := Merge(parts, opts.TopK)
	merged.Stats.Elapsed = time.Since(start)
	if secs := merged.Stats.Elapsed.Seconds(); secs > 0 {
		merged.Stats.Rate = float64(merged.Stats.Processed+merged.Stats.Pruned) / secs
	}
	return merged
}

// Merge combines shard results: builds are concatenated in shard order,
// sorted by damage descending and cut to topK; counters are summed.
func Merge(parts []Result, topK int) Result {
	var out Result
	for _, p := range parts {
		out.Builds = append(out.Builds, p.Builds...)
		out.Stats.Total += p.Stats.Total
		out.Stats.Processed += p.Stats.Processed
		out.Stats.Pruned += p.Stats.Pruned
		out.Stats.Cancelled = out.Stats.Cancelled || p.Stats.Cancelled
		if p.Stats.Elapsed > out.Stats.Elapsed {
			out.Stats.Elapsed = p.Stats.Elapsed
		}
	}
	sort.SliceStable(out.Builds, func(i, j int) bool {
		return out.Builds[i].Damage > out.Builds[j].Damage
	})
	if topK > 0 && len(out.Builds) > topK {
		out.Builds = out.Builds[:topK:topK]
	}
	if out.Builds == nil {
		out.Builds = []evaluator.Build{}
	}
	return out
}

// aggregator folds per-shard progress into one stream.
type aggregator struct {
	mu        sync.Mutex
	last      []Progress
	sink      func(Progress)
	start     time.Time
	threshold float64
}

func newAggregator(shards int, sink func(Progress)) *aggregator {
	a := &aggregator{last: make([]Progress, shards), sink: sink, start: time.Now()}
	for i := range a.last {
		a.last[i].Threshold = negInf
	}
	a.threshold = negInf
	return a
}

func (a *aggregator) update(p Progress) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last[p.Shard] = p
	sum := Progress{Shard: -1, Threshold: a.threshold}
	for _, l := range a.last {
		sum.Processed += l.Processed
		sum.Pruned += l.Pruned
		sum.Total += l.Total
		sum.Threshold = max(sum.Threshold, l.Threshold)
	}
	a.threshold = sum.Threshold
	if secs := time.Since(a.start).Seconds(); secs > 0 {
		sum.Rate = float64(sum.Processed) / secs
	}
	if sum.Rate > 0 {
		remaining := sum.Total - sum.Processed - sum.Pruned
		sum.ETA = time.Duration(float64(remaining) / sum.Rate * float64(time.Second))
	}
	a.sink(sum)
}
