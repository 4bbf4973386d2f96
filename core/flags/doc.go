// Package flags carries candidate flags out of a replicate. The Day
// Orchestrator hands each day's flags to a Sink as a Batch; sinks persist
// them (see flags/logging), publish them (infra/mqtt) or keep them in
// memory for tests. Sinks are shared across replicates and must be safe
// for concurrent use.
package flags
