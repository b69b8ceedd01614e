package scheduler

// State is the scheduler's position in its check cycle.
//
//	idle ──► checking ──► syncing ──► idle
//	            │
//	            ├──────► skipping ──► idle
//	            └──────► idle           (gate could not be read)
type State string

const (
	StateIdle     State = "idle"
	StateChecking State = "checking"
	StateSkipping State = "skipping"
	StateSyncing  State = "syncing"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[State][]State{
	StateIdle:     {StateChecking},
	StateChecking: {StateSkipping, StateSyncing, StateIdle},
	StateSkipping: {StateIdle},
	StateSyncing:  {StateIdle},
}

// IsTransitionAllowed reports whether moving from → to is permitted.
func IsTransitionAllowed(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
