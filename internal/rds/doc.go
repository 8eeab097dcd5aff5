// Package rds is the driver for the single managed RDS instance: describe
// its state, and issue start/stop requests.
//
// The driver normalizes the many raw RDS status strings onto a fixed,
// five-value state enum so the orchestration core never branches on
// provider-specific strings. States are driver-reported and observe-only;
// the transitions themselves are owned by the RDS service.
package rds
