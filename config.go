package main

import (
	"log"
	"os"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/config"
)

// Verbose controls whether detailed search progress is printed to stderr.
var Verbose bool

func logw() *os.File { return os.Stderr }

// logger is the phase logger handed to library packages; nil keeps them
// quiet.
func logger() *log.Logger {
	if !Verbose {
		return nil
	}
	return log.New(logw(), "", log.Ltime)
}

// overrides are command-line values that take precedence over the tuning
// file. Zero values leave the file's setting alone.
type overrides struct {
	TopK    int
	Workers int
	Shards  int
	DBPath  string
	Listen  string
}

func loadConfig(path string, o overrides) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if o.TopK > 0 {
		cfg.TopK = o.TopK
	}
	if o.Workers > 0 {
		cfg.Workers = o.Workers
	}
	if o.Shards > 0 {
		cfg.Shards = o.Shards
	}
	if o.DBPath != "" {
		cfg.DBPath = o.DBPath
	}
	if o.Listen != "" {
		cfg.Listen = o.Listen
	}
	return cfg, nil
}
