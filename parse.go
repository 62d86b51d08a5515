package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/combat"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/config"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/search"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/store"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/transport/ws"
)

// OptimizeResult is one finished run, as printed or returned over HTTP.
type OptimizeResult struct {
	ID string `json:"id"`
	search.Result
	TimeMs int64 `json:"timeMs"`
}

// loadInput parses a context document with the configured anomaly window.
func loadInput(doc []byte, cfg config.Config) (*combat.Context, error) {
	return combat.ParseWindow(doc, cfg.AnomalyWindow)
}

// runOptimize searches cc and, depending on cfg, streams progress over
// WebSocket and saves the run. doc is the raw document cc was parsed from.
func runOptimize(ctx context.Context, doc []byte, cc *combat.Context, cfg config.Config) (OptimizeResult, error) {
	start := time.Now()
	opts := cfg.SearchOptions()
	opts.Logger = logger()
	if Verbose {
		opts.Progress = logProgress
	}

	var hub *ws.Hub
	if cfg.Listen != "" {
		hub = ws.NewHub(opts.Logger)
		hubCtx, stopHub := context.WithCancel(ctx)
		defer stopHub()
		go hub.Run(hubCtx)

		sink := hub.ProgressSink()
		if Verbose {
			opts.Progress = func(p search.Progress) {
				logProgress(p)
				sink(p)
			}
		} else {
			opts.Progress = sink
		}
	}

	job := search.NewJob(cc, opts, cfg.Workers)
	if hub != nil {
		hub.Cancel = job.Cancel
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		srv := &http.Server{Addr: cfg.Listen, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(logw(), "[ws] listen: %v\n", err)
			}
		}()
		defer srv.Close()
		fmt.Fprintf(logw(), "[ws] progress on ws://%s/ws\n", cfg.Listen)
	}

	res, err := job.Run(ctx)
	if err != nil {
		return OptimizeResult{}, err
	}
	out := OptimizeResult{
		ID:     job.ID.String(),
		Result: res,
		TimeMs: time.Since(start).Milliseconds(),
	}

	if cfg.DBPath != "" {
		st, err := store.NewStore(cfg.DBPath)
		if err != nil {
			return out, err
		}
		defer st.Close()
		if _, err := st.Save(out.ID, doc, res); err != nil {
			return out, fmt.Errorf("save run: %w", err)
		}
	}
	if hub != nil {
		if err := hub.PublishResult(out.ID, res); err != nil {
			fmt.Fprintf(logw(), "[ws] result: %v\n", err)
		}
	}
	return out, nil
}

func logProgress(p search.Progress) {
	fmt.Fprintf(logw(), "[progress] %d/%d processed, %d pruned, %.0f/s, eta %v\n",
		p.Processed, p.Total, p.Pruned, p.Rate, p.ETA.Round(time.Second))
}
