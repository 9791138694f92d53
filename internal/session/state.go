package session

import "fmt"

// State is the lifecycle state of a session handle.
type State int

const (
	Idle State = iota
	Starting
	Ready
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Ready:
		return "ready"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// canTransition reports whether from -> to is an edge of the lifecycle:
//
//	Idle -> Starting -> Ready -> Closed
//	Starting -> Idle    (retryable launch failure)
//	Starting -> Closed  (retry bound exhausted)
//	Idle -> Closed      (acquisition cancelled while waiting to retry)
func canTransition(from, to State) bool {
	switch from {
	case Idle:
		return to == Starting || to == Closed
	case Starting:
		return to == Ready || to == Idle || to == Closed
	case Ready:
		return to == Closed
	case Closed:
		return false
	}
	return false
}
