package model

import "fmt"

// MaxItemWeight is the heaviest item, in grams, a single robot may carry.
const MaxItemWeight = 2000

// MailItem represents one piece of mail waiting in or travelling through the
// building. It is created when the mail arrives and never modified afterwards.
type MailItem struct {
	ID               string `json:"id"`
	DestinationFloor int    `json:"destination_floor"`
	ArrivalTime      int    `json:"arrival_time"` // tick the item entered the mailroom
	Weight           int    `json:"weight"`       // grams
}

// NewMailItem returns a MailItem with the given attributes.
func NewMailItem(id string, destination, arrival, weight int) MailItem {
	return MailItem{ID: id, DestinationFloor: destination, ArrivalTime: arrival, Weight: weight}
}

// Overweight reports whether the item exceeds MaxItemWeight.
func (m MailItem) Overweight() bool { return m.Weight > MaxItemWeight }

func (m MailItem) String() string {
	return fmt.Sprintf("Mail Item:: ID: %6s | Arrival: %4d | Destination: %2d | Weight: %4d",
		m.ID, m.ArrivalTime, m.DestinationFloor, m.Weight)
}
