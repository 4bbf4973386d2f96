// Package input loads the CSV tables describing sites, leaks, weather and
// empirical samples.
package input
