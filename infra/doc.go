// Package infra holds the adapters around the delivery engine: the building
// management fee client and mock, the Redis fee cache, metrics exporters,
// the MQTT publisher and the run KPI store. Engine packages under core never
// import them.
package infra
