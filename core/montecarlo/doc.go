// Package montecarlo runs replicates in parallel. Each Task is one program
// at one Monte-Carlo index; the Driver derives its seed, bounds the number
// of concurrent replicates, applies a per-replicate timeout and turns
// errors and panics into failed Outcomes without stopping the batch.
package montecarlo
