// Package report writes the batch outputs of a Monte-Carlo run: summary and
// comparison tables, the replicate status table, metadata, per-program
// sensitivity tables and HTML time series charts.
package report
