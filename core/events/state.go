package events

// StateEvent is published when a robot transitions between states.
type StateEvent struct {
	Tick    int    `json:"tick"`
	RobotID string `json:"robot_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Floor   int    `json:"floor"`
}
