package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/combat"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/config"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/store"
)

const testContext = "testdata/context.json"

func loadTestData(t *testing.T, cfg config.Config) ([]byte, *combat.Context) {
	t.Helper()
	doc, err := os.ReadFile(testContext)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	cc, err := loadInput(doc, cfg)
	if err != nil {
		t.Fatalf("loadInput: %v", err)
	}
	return doc, cc
}

// verifyResult checks every kept build against the context it came from.
func verifyResult(t *testing.T, cc *combat.Context, out OptimizeResult) {
	t.Helper()
	s := out.Stats
	if s.Total != cc.TotalCombinations() {
		t.Errorf("got total %d, want %d", s.Total, cc.TotalCombinations())
	}
	if s.Processed+s.Pruned != s.Total {
		t.Errorf("processed %d + pruned %d != total %d", s.Processed, s.Pruned, s.Total)
	}
	if len(out.Builds) == 0 {
		t.Fatal("no builds")
	}

	slotOf := map[string]int{}
	setOf := map[string]int{}
	for slot, list := range cc.Slots {
		for _, d := range list {
			slotOf[d.ID] = slot
			setOf[d.ID] = d.SetIdx
		}
	}
	for i, b := range out.Builds {
		if b.Damage <= 0 {
			t.Errorf("build %d: damage %v, want > 0", i, b.Damage)
		}
		if i > 0 && b.Damage > out.Builds[i-1].Damage {
			t.Errorf("build %d outranks build %d", i, i-1)
		}
		target := 0
		for slot, id := range b.DiscIDs {
			got, ok := slotOf[id]
			if !ok {
				t.Errorf("build %d: unknown disc %q", i, id)
				continue
			}
			if got != slot {
				t.Errorf("build %d: disc %s in slot %d, belongs in %d", i, id, slot+1, got+1)
			}
			if setOf[id] == cc.TargetSet {
				target++
			}
		}
		if target < 4 {
			t.Errorf("build %d: %d target-set discs, want at least 4", i, target)
		}
		if b.Sets.FourPiece != cc.SetID(cc.TargetSet) {
			t.Errorf("build %d: four-piece %q, want %q", i, b.Sets.FourPiece, cc.SetID(cc.TargetSet))
		}
	}
}

func TestOptimizeContext(t *testing.T) {
	cfg := config.Default()
	cfg.TopK = 5
	cfg.Workers = 2
	cfg.DBPath = filepath.Join(t.TempDir(), "runs.db")
	doc, cc := loadTestData(t, cfg)

	out, err := runOptimize(context.Background(), doc, cc, cfg)
	if err != nil {
		t.Fatal(err)
	}
	verifyResult(t, cc, out)
	if out.ID == "" {
		t.Error("no run id")
	}

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	run, err := st.Get(out.ID)
	if err != nil {
		t.Fatalf("saved run: %v", err)
	}
	if len(run.Builds) != len(out.Builds) || run.BestDamage != out.Builds[0].Damage {
		t.Errorf("saved %d builds best %v, want %d best %v",
			len(run.Builds), run.BestDamage, len(out.Builds), out.Builds[0].Damage)
	}

	text := FormatResult(out.Builds)
	for _, id := range out.Builds[0].DiscIDs {
		if !strings.Contains(text, id) {
			t.Errorf("formatted result is missing disc %s", id)
		}
	}
}

func TestOptimizeWithoutPruning(t *testing.T) {
	cfg := config.Default()
	cfg.TopK = 5
	cfg.Tolerance = -1
	cfg.Shards = 3
	doc, cc := loadTestData(t, cfg)

	exact, err := runOptimize(context.Background(), doc, cc, cfg)
	if err != nil {
		t.Fatal(err)
	}
	verifyResult(t, cc, exact)
	// combinations with at least four woodpecker discs
	if exact.Stats.Processed != 113 {
		t.Errorf("got %d processed, want 113", exact.Stats.Processed)
	}

	cfg.Tolerance = 0
	cfg.Shards = 1
	pruned, err := runOptimize(context.Background(), doc, cc, cfg)
	if err != nil {
		t.Fatal(err)
	}
	verifyResult(t, cc, pruned)
	if pruned.Builds[0].Damage > exact.Builds[0].Damage {
		t.Errorf("pruned search beat exhaustive search: %v > %v",
			pruned.Builds[0].Damage, exact.Builds[0].Damage)
	}
}

func TestOptimizeCancelled(t *testing.T) {
	cfg := config.Default()
	doc, cc := loadTestData(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := runOptimize(ctx, doc, cc, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Stats.Cancelled {
		t.Error("not reported cancelled")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optimizer.yaml")
	if err := os.WriteFile(path, []byte("top_k: 3\nworkers: 4\nlisten: \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path, overrides{TopK: 8, DBPath: "x.db"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TopK != 8 || cfg.Workers != 4 || cfg.DBPath != "x.db" || cfg.Listen != ":9000" {
		t.Errorf("got %+v", cfg)
	}
}
