// Package simulation drives the delivery engine over discrete ticks. It
// generates mail, builds the robot roster, tracks deliveries and reports the
// outcome of a run.
package simulation
