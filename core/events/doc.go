// Package events defines the Monte-Carlo lifecycle events emitted on the
// event bus.
//
// Available event types:
//   - ReplicateEvent: a replicate started, finished or failed
package events
