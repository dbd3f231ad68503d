package events

// AllocationEvent is published when the mail pool dispatches a loaded robot.
type AllocationEvent struct {
	Tick    int      `json:"tick"`
	RobotID string   `json:"robot_id"`
	ItemIDs []string `json:"item_ids"`
}
