package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "optimizer.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	c, err := Load(writeFile(t, "top_k: 3\nworkers: 2\ndb_path: runs.db\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.TopK != 3 || c.Workers != 2 || c.DBPath != "runs.db" {
		t.Errorf("got %+v", c)
	}
	d := Default()
	if c.Tolerance != d.Tolerance || c.ProgressEvery != d.ProgressEvery {
		t.Errorf("got tolerance %v every %d, want defaults %v %d",
			c.Tolerance, c.ProgressEvery, d.Tolerance, d.ProgressEvery)
	}
	if c.AnomalyWindow != 3 || c.DisorderProcCap != 5 {
		t.Errorf("got window %v cap %v, want 3 and 5", c.AnomalyWindow, c.DisorderProcCap)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"syntax":   "top_k: [",
		"top_k":    "top_k: 0",
		"workers":  "workers: -1",
		"window":   "anomaly_window_s: 0",
		"proc cap": "disorder_proc_cap: -2",
	}
	for name, body := range cases {
		path := writeFile(t, body)
		_, err := Load(path)
		if err == nil {
			t.Errorf("%s: got no error", name)
			continue
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("%s: error %q does not name the file", name, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Errorf("got %v, want a not-exist error", err)
	}
}

func TestSearchOptions(t *testing.T) {
	c := Default()
	c.TopK = 7
	c.Shards = 4
	c.DisorderProcCap = 2
	o := c.SearchOptions()
	if o.TopK != 7 || o.Shards != 4 || o.Evaluator.DisorderProcCap != 2 {
		t.Errorf("got %+v", o)
	}

	c.Tolerance = -1
	if o := c.SearchOptions(); !math.IsInf(o.Tolerance, 1) {
		t.Errorf("got tolerance %v, want +Inf", o.Tolerance)
	}
}
