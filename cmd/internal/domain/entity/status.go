package entity

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAssigned  Status = "ASSIGNED"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"
	StatusCanceled  Status = "CANCELED"
)

// transitions is the complete lifecycle table. A status missing from the
// map, or mapped to an empty set, is terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusAssigned, StatusConfirmed, StatusRejected, StatusCanceled},
	StatusAssigned:  {StatusConfirmed, StatusRejected, StatusCanceled},
	StatusConfirmed: {StatusCompleted, StatusCanceled},
	StatusRejected:  {},
	StatusCompleted: {},
	StatusCanceled:  {},
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether the table allows moving from s to next.
// Staying on the same non-terminal status is allowed and means an attribute
// update only.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
