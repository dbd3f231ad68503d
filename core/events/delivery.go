package events

import "github.com/kilianp07/automail/core/delivery"

// DeliveryEvent is published for every completed delivery.
type DeliveryEvent struct {
	Record delivery.Record `json:"record"`
}
