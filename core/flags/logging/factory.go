package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kilianp07/ldarsim/core/factory"
	"github.com/kilianp07/ldarsim/core/flags"
)

// Config selects and configures a flag log store.
type Config struct {
	// Path is the file location of the log store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

func init() {
	_ = flags.RegisterSink("jsonl", storeFactory(func(c Config) (flags.LogStore, error) {
		if c.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
		}
		return NewJSONLStore(c.Path)
	}))
	_ = flags.RegisterSink("sqlite", storeFactory(func(c Config) (flags.LogStore, error) {
		return NewSQLiteStore(c.Path)
	}))
}

func storeFactory(open func(Config) (flags.LogStore, error)) factory.Factory[flags.Sink] {
	return func(conf map[string]any) (flags.Sink, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("flag log: path is required")
		}
		store, err := open(c)
		if err != nil {
			return nil, err
		}
		return flags.NewStoreSink(store), nil
	}
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
