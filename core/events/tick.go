package events

// TickEvent is published by the runner once a tick has been fully processed.
type TickEvent struct {
	Tick      int `json:"tick"`
	Pending   int `json:"pending"`
	Waiting   int `json:"waiting"`
	Delivered int `json:"delivered"`
}
