// Package crew implements the field inspection agent: the daily work loop,
// the neglect-ranked site selection and the detection and quantification of
// emissions during a site visit.
//
// A Crew mutates the site registry and the time series of the
// SimulationContext it was built with. Crews of one replicate must run
// sequentially.
package crew
