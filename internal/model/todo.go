package model

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 0
}

type TodoStatus string

const (
	TodoOpen       TodoStatus = "open"
	TodoInProgress TodoStatus = "in_progress"
	TodoDone       TodoStatus = "done"
)

type Todo struct {
	ID          string     `json:"todo_id"`
	Domain      Domain     `json:"domain"`
	Category    string     `json:"category,omitempty"`
	Priority    Priority   `json:"priority"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Rationale   string     `json:"rationale,omitempty"`
	ActionType  string     `json:"action_type,omitempty"`
	Status      TodoStatus `json:"status"`
	DueAt       *Timestamp `json:"due_at,omitempty"`
	CreatedAt   Timestamp  `json:"created_at"`
	Symbol      string     `json:"symbol,omitempty"`
	JobID       string     `json:"job_id,omitempty"`
}

// Actions returns the transitions offered for the todo's current status.
func (t Todo) Actions() []Action {
	var out []Action
	if t.Status == TodoOpen {
		out = append(out, Action{Key: "s", Label: "Start", Target: string(TodoInProgress)})
	}
	if t.Status != TodoDone {
		out = append(out, Action{Key: "d", Label: "Done", Target: string(TodoDone)})
	}
	return out
}

// InProgress drives the non-interactive progress indicator on a todo card.
func (t Todo) InProgress() bool {
	return t.Status == TodoInProgress
}
