package core

import "time"

const (
	EventCreate     GoalEventType = "create"
	EventAdd        GoalEventType = "add"
	EventEdit       GoalEventType = "edit"
	EventComplete   GoalEventType = "complete"
	EventReopen     GoalEventType = "reopen"
	EventSetCurrent GoalEventType = "set_current"
)

type GoalEventType string

// GoalEvent is one entry in a goal's append-only audit trail. The detail
// carries only the fields that exist for that event kind; complete and
// reopen events have no detail at all.
type GoalEvent struct {
	ID        string
	GoalID    string
	UserID    string
	Type      GoalEventType
	Note      string
	CreatedAt time.Time
	Detail    EventDetail
}

// EventDetail is the kind-specific payload of a goal event. Modelling the
// payloads as distinct types keeps impossible combinations, such as an add
// event carrying a target-date change, unrepresentable.
type EventDetail interface {
	eventDetail()
}

// CreateDetail snapshots the initial state of a new goal.
type CreateDetail struct {
	NewCurrent    Money
	NewTarget     Money
	NewTargetDate Date
}

// AddDetail records a deposit into a goal.
type AddDetail struct {
	Delta      Money
	OldCurrent Money
	NewCurrent Money
}

// SetCurrentDetail records a direct overwrite of the saved amount.
type SetCurrentDetail struct {
	OldCurrent Money
	NewCurrent Money
}

// EditDetail is the full before/after snapshot of an in-place goal edit.
type EditDetail struct {
	OldCurrent    Money
	NewCurrent    Money
	OldTarget     Money
	NewTarget     Money
	OldTargetDate Date
	NewTargetDate Date
}

func (CreateDetail) eventDetail()     {}
func (AddDetail) eventDetail()        {}
func (SetCurrentDetail) eventDetail() {}
func (EditDetail) eventDetail()       {}

// CompletionOf is the single place the derived completion flag is computed.
// Every mutating path re-derives isCompleted through this function.
func CompletionOf(current, target Money) bool {
	return current.Cents >= target.Cents
}
