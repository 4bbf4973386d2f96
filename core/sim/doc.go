// Package sim holds the state owned by one simulation replicate: the site and
// leak registry, the calendar, the per-method deployment grids, the daylight
// provider, the time series accumulators and the random sampler. A
// SimulationContext is never shared between replicates.
package sim
