package metrics

import "github.com/kilianp07/ldarsim/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// Address serves /metrics when set, e.g. ":9100".
	Address string `json:"address"`
}
