// Package config holds search tuning. Adjust these to trade speed for
// result quality.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/combat"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/evaluator"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/search"
)

type Config struct {
	// TopK is the number of builds kept.
	TopK int `yaml:"top_k"`
	// Tolerance loosens pruning, in effective-score units. Negative
	// disables pruning.
	Tolerance float64 `yaml:"tolerance"`
	// ProgressEvery is the number of evaluations between progress reports.
	ProgressEvery int64 `yaml:"progress_every"`
	// Workers caps search goroutines; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
	// Shards is the number of independent sub-searches; 0 means one per
	// worker.
	Shards int `yaml:"shards"`
	// DisorderProcCap bounds the anomaly procs counted toward disorder.
	DisorderProcCap float64 `yaml:"disorder_proc_cap"`
	// AnomalyWindow is the anomaly duration in seconds used to derive the
	// total anomaly ratio when a context does not give one.
	AnomalyWindow float64 `yaml:"anomaly_window_s"`
	// DBPath, if set, is the sqlite file finished runs are saved to.
	DBPath string `yaml:"db_path"`
	// Listen, if set, is the address of the progress websocket.
	Listen string `yaml:"listen"`
}

func Default() Config {
	d := search.DefaultOptions()
	return Config{
		TopK:            d.TopK,
		Tolerance:       d.Tolerance,
		ProgressEvery:   d.ProgressEvery,
		DisorderProcCap: evaluator.DefaultOptions().DisorderProcCap,
		AnomalyWindow:   combat.DefaultAnomalyWindow,
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	switch {
	case c.TopK <= 0:
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	case c.ProgressEvery < 0:
		return fmt.Errorf("progress_every must not be negative, got %d", c.ProgressEvery)
	case c.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	case c.Shards < 0:
		return fmt.Errorf("shards must not be negative, got %d", c.Shards)
	case c.DisorderProcCap <= 0:
		return fmt.Errorf("disorder_proc_cap must be positive, got %g", c.DisorderProcCap)
	case c.AnomalyWindow <= 0:
		return fmt.Errorf("anomaly_window_s must be positive, got %g", c.AnomalyWindow)
	}
	return nil
}

// SearchOptions maps the tuning onto search options.
func (c Config) SearchOptions() search.Options {
	o := search.DefaultOptions()
	o.TopK = c.TopK
	o.Tolerance = c.Tolerance
	if c.Tolerance < 0 {
		o.Tolerance = math.Inf(1)
	}
	o.ProgressEvery = c.ProgressEvery
	o.Shards = c.Shards
	o.Evaluator.DisorderProcCap = c.DisorderProcCap
	return o
}
