package robot

// State is the state of a robot's delivery cycle.
type State int

const (
	Returning State = iota
	Waiting
	Delivering
)

func (s State) String() string {
	switch s {
	case Returning:
		return "RETURNING"
	case Waiting:
		return "WAITING"
	case Delivering:
		return "DELIVERING"
	default:
		return "UNKNOWN"
	}
}

// operating reports whether time spent in s counts as operating time.
func (s State) operating() bool { return s == Returning || s == Delivering }
