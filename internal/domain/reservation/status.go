package reservation

import "fmt"

// Kind distinguishes the two reservation flavours. They share the aggregate
// shape but run structurally identical, separately-tabled status machines.
type Kind string

const (
	KindEvent   Kind = "event"
	KindBooking Kind = "booking"
)

func NewKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindEvent, KindBooking:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown reservation kind %q", s)
}

type Status string

const (
	// Event statuses
	StatusDraft      Status = "draft"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"

	// Booking statuses
	StatusPending    Status = "pending"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"

	// Shared
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type Action string

const (
	ActionSchedule Action = "schedule"
	ActionConfirm  Action = "confirm"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
	ActionCancel   Action = "cancel"
)

// TransitionError reports the (state, action) pair that is absent from the
// transition table.
type TransitionError struct {
	Kind   Kind
	From   Status
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal %s transition: %s from status %s", e.Kind, e.Action, e.From)
}

// Transition tables. Any (state, action) pair not listed here is rejected;
// terminal states have no outgoing edges at all.
var eventTransitions = map[Status]map[Action]Status{
	StatusDraft: {
		ActionSchedule: StatusScheduled,
		ActionCancel:   StatusCancelled,
	},
	StatusScheduled: {
		ActionConfirm: StatusConfirmed,
		ActionStart:   StatusInProgress,
		ActionCancel:  StatusCancelled,
	},
	StatusConfirmed: {
		ActionStart:  StatusInProgress,
		ActionCancel: StatusCancelled,
	},
	StatusInProgress: {
		ActionComplete: StatusCompleted,
		ActionCancel:   StatusCancelled,
	},
}

var bookingTransitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionConfirm: StatusConfirmed,
		ActionCancel:  StatusCancelled,
	},
	StatusConfirmed: {
		ActionCheckIn: StatusCheckedIn,
		ActionCancel:  StatusCancelled,
	},
	StatusCheckedIn: {
		ActionCheckOut: StatusCheckedOut,
	},
}

func transitionTable(k Kind) map[Status]map[Action]Status {
	if k == KindBooking {
		return bookingTransitions
	}
	return eventTransitions
}

// InitialStatus is the status a freshly created reservation persists with.
func InitialStatus(k Kind) Status {
	if k == KindBooking {
		return StatusPending
	}
	return StatusDraft
}

// NextStatus resolves one edge of the status machine. It returns a
// *TransitionError when the pair is not in the table.
func NextStatus(k Kind, from Status, action Action) (Status, error) {
	if edges, ok := transitionTable(k)[from]; ok {
		if to, ok := edges[action]; ok {
			return to, nil
		}
	}
	return "", &TransitionError{Kind: k, From: from, Action: action}
}

// IsTerminal reports whether the status accepts no further transitions.
// Terminal reservations are immutable and excluded from availability checks.
func IsTerminal(k Kind, s Status) bool {
	switch s {
	case StatusCancelled:
		return true
	case StatusCompleted:
		return k == KindEvent
	case StatusCheckedOut:
		return k == KindBooking
	}
	return false
}

func ValidStatus(k Kind, s Status) bool {
	if IsTerminal(k, s) {
		return true
	}
	_, ok := transitionTable(k)[s]
	return ok
}
