package kernel

// TaskFunc is a task body. Tasks always run to completion: a task that
// cannot make progress pends (or suspends) and returns, and runs again
// once it is ready.
type TaskFunc func(param any)

// Task is a unit of execution. The zero value is inert; CreateTask
// initializes it and makes it ready.
type Task struct {
	fn       TaskFunc
	param    any
	priority int8

	// schedNode parks the task on a ready, suspended or delayed list.
	// eventNode parks it on at most one event wait list.
	schedNode node
	eventNode node

	wakeTick Tick
}

// Priority returns the task priority assigned at creation.
func (t *Task) Priority() int8 { return t.priority }
