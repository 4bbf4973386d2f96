// Package results stores the outcome of every replicate of a batch.
package results
