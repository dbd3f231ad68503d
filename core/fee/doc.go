// Package fee computes the charge attached to a delivery when fee charging is
// enabled.
//
// A charge is the service fee of the destination floor, looked up from the
// building management system, plus a maintenance cost proportional to the
// average operating time of the delivering robot's variant:
//
//	maintenance = baseRate * averageOperatingTime
//	total       = serviceFee + maintenance
//
// Lookups that fail fall back to the last fee seen for the floor, or zero.
package fee
