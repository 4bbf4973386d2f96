// Package infra contains technical adapters: CSV input loaders, weather
// grids, metrics exporters, the MQTT flag publisher, Sentry and the result
// store. These packages depend only on the interfaces defined in core.
package infra
