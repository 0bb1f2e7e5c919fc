package domain

// Task represents a work item tracked by the registry. Tasks are stored
// keyed by the title they were created under; renaming a task changes the
// Title field only, never the storage key.
type Task struct {
	Title       string
	Description string
	DueDate     *Date
	Assignee    string // username of the assigned user, empty means unassigned
	Completed   bool
}

// TaskUpdate carries one optional overwrite per Task field. A nil field
// leaves the stored value untouched. Completed is a pointer so that an
// explicit false (mark incomplete) is distinguishable from "not supplied".
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *Date
	Assignee    *string
	Completed   *bool
}
