// Package plugins links the built-in sink adapters into the binary and
// lists what is available to configuration.
package plugins

import (
	"github.com/kilianp07/ldarsim/core/flags"
	coremetrics "github.com/kilianp07/ldarsim/core/metrics"

	// Adapters register their sink factories from init.
	_ "github.com/kilianp07/ldarsim/core/flags/logging"
	_ "github.com/kilianp07/ldarsim/infra/metrics"
	_ "github.com/kilianp07/ldarsim/infra/mqtt"
)

// Catalog lists the registered sink types per configuration section.
func Catalog() map[string][]string {
	return map[string][]string{
		"flags.sinks":   flags.SinkTypes(),
		"metrics.sinks": coremetrics.MetricsSinkTypes(),
	}
}
