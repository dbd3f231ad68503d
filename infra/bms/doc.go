// Package bms talks to the building management system that prices
// deliveries. It provides an HTTP client for a remote fee service, a mock
// server implementing that service, and an in-process simulated modem. All
// three report the fee for a floor; failures are signaled either by an error
// or by a negative fee, which fee.FallbackLookup turns into a fallback.
package bms
