// Package robot implements the delivery robots of the mailroom fleet.
//
// A robot cycles through three states, evaluated once per tick by Operate:
//
//	RETURNING  -> WAITING     at the mailroom floor, after registering with the pool
//	WAITING    -> DELIVERING  once loaded and dispatched by the pool
//	DELIVERING -> RETURNING   after the last held item is delivered
//
// Robots come in three variants which differ only by capacity, speed and fee
// base rate. Robots of one variant share a Group that accumulates their
// operating time.
package robot
