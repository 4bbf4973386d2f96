// Package program runs one replicate: one LDAR program simulated over the
// whole calendar with one seed. The Runner is the day orchestrator. Each
// day it rolls the per-site survey counters, lets every crew work in
// configuration order, records the day in the time series and forwards the
// day's candidate flags to the configured sink.
package program
