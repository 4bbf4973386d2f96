// Package weather turns a gridded weather table into the per-method
// deployment eligibility grids used by crews, and provides an astronomical
// daylight provider.
package weather
