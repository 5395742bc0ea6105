package journal

import "time"

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Entry is one requested status transition and how the server answered.
type Entry struct {
	ID          string
	Entity      string
	ItemID      string
	Status      string
	Outcome     string
	Error       string
	RequestedAt time.Time
}

type QueryOpts struct {
	Entity  string
	Since   time.Time
	Outcome string
	Limit   int
}
