//go:build !lambda

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/config"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/evaluator"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/prop"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/store"
)

func printTable(builds []evaluator.Build, stats string) {
	fmt.Printf("%-4s %12s  %-s\n", "Rank", "Damage", "Discs")
	fmt.Printf("%-4s %12s  %-s\n", "----", "------------", "------------------------------")
	for i, b := range builds {
		fmt.Printf("%-4d %12.1f  %s\n", i+1, b.Damage, strings.Join(b.DiscIDs[:], " "))
	}
	fmt.Printf("%-4s %12s  %-s\n", "----", "------------", "------------------------------")
	fmt.Println(stats)
}

func printHistory(runs []store.Summary) {
	fmt.Printf("%-36s %-20s %12s %10s\n", "Run", "Created", "Best", "Evaluated")
	for _, r := range runs {
		fmt.Printf("%-36s %-20s %12.1f %10d\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.BestDamage, r.Stats.Processed)
	}
}

const usage = `Usage: disc-optimizer [flags] <context.json>

Positional arguments:
  context.json   Agent, enemy, skills, sets and disc candidates

Flags:
`

func main() {
	configPath := flag.String("config", "", "YAML tuning file")
	jsonOut := flag.Bool("json", false, "Output results as JSON")
	verbose := flag.Bool("verbose", false, "Print detailed search progress to stderr")
	top := flag.Int("top", 0, "Number of builds to keep (overrides config)")
	workers := flag.Int("workers", 0, "Search goroutines, 0 = config or GOMAXPROCS")
	shards := flag.Int("shards", 0, "Independent sub-searches, 0 = config or one per worker")
	dbPath := flag.String("db", "", "Save the run to this sqlite file")
	listen := flag.String("listen", "", "Serve progress over WebSocket on this address")
	history := flag.Bool("history", false, "List saved runs of this context from -db and exit")
	listStats := flag.Bool("stats", false, "List the stat names a context may use and exit")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *listStats {
		fmt.Println(strings.Join(prop.Names(), "\n"))
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}
	Verbose = *verbose

	cfg, err := loadConfig(*configPath, overrides{
		TopK: *top, Workers: *workers, Shards: *shards, DBPath: *dbPath, Listen: *listen,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	doc, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *history {
		runHistory(doc, cfg)
		return
	}

	cc, err := loadInput(doc, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s: %v\n", args[0], err)
		os.Exit(1)
	}
	fmt.Fprintf(logw(), "Loaded %d skills, %d sets, %d combinations\n",
		len(cc.Skills), len(cc.Sets), cc.TotalCombinations())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := runOptimize(ctx, doc, cc, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(out)
		return
	}
	s := out.Stats
	summary := fmt.Sprintf("%d evaluated, %d pruned of %d in %.1fs",
		s.Processed, s.Pruned, s.Total, float64(out.TimeMs)/1000)
	if s.Cancelled {
		summary += " (cancelled)"
	}
	printTable(out.Builds, summary)
	if len(out.Builds) > 0 {
		fmt.Println()
		fmt.Print(FormatResult(out.Builds))
	}
}

func runHistory(doc []byte, cfg config.Config) {
	if cfg.DBPath == "" {
		fmt.Fprintln(os.Stderr, "error: -history needs -db or db_path")
		os.Exit(1)
	}
	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()
	runs, err := st.List(store.HashContext(doc), 20)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	printHistory(runs)
}

