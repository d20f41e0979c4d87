package kernel

// Tick is one unit of the periodic time base. The counter wraps.
type Tick uint32

// MaxDelay disables the timeout of a pended operation.
const MaxDelay = ^Tick(0)

const (
	// NumPriorities is the number of priority levels. Higher number means
	// higher priority.
	NumPriorities = 8

	LowPriority  int8 = 0
	HighPriority int8 = NumPriorities - 1
)

// noPriority is the priority of the idle context (no task running).
const noPriority int8 = -1

// Mode selects how Sched dispatches tasks.
type Mode uint8

const (
	// Cooperative never dispatches while a task is running; new work runs
	// only after the current task returns.
	Cooperative Mode = iota
	// Preemptive may nest Sched, running a higher-priority task on top of
	// a lower-priority one on the same stack.
	Preemptive
)

// InterruptState is the saved interrupt mask returned by a port, so that
// critical sections can nest without re-enabling interrupts prematurely.
type InterruptState uintptr

// Port supplies the platform primitives the kernel builds on.
//
// DisableInterrupts masks the interrupt sources that may call into the
// kernel (at least the tick) and returns the previous mask state;
// RestoreInterrupts restores it. On hardware this is the usual PRIMASK
// save/restore pair; the host port maps it onto a mutex.
type Port interface {
	DisableInterrupts() InterruptState
	RestoreInterrupts(InterruptState)
}

// Kernel is the single-stack scheduler state. It multiplexes a fixed set
// of run-to-completion tasks over per-priority ready lists and provides
// the tick timebase used by pended operations.
type Kernel struct {
	port Port
	mode Mode

	tick        Tick
	currentTask *Task

	// schedDepth is the scheduler lock nesting count. While it is held
	// Sched does not switch tasks, but interrupts stay enabled.
	schedDepth int8

	tasksReady     [NumPriorities]list
	tasksSuspended list

	// Tasks pended with a timeout sit on delayed, sorted by wake tick.
	// Deadlines that wrap past zero go to overflow; the two swap when the
	// tick wraps.
	delayedA list
	delayedB list
	delayed  *list
	overflow *list
}

// New returns an initialized kernel.
//
// Must be called before the tick interrupt is enabled.
func New(port Port, mode Mode) *Kernel {
	libAssert(port != nil, 0, "New: nil port")

	k := &Kernel{port: port, mode: mode}
	s := k.critEnter()
	for i := range k.tasksReady {
		k.tasksReady[i].init()
	}
	k.tasksSuspended.init()
	k.delayedA.init()
	k.delayedB.init()
	k.delayed = &k.delayedA
	k.overflow = &k.delayedB
	k.critExit(s)
	return k
}

func (k *Kernel) critEnter() InterruptState {
	return k.port.DisableInterrupts()
}

func (k *Kernel) critExit(s InterruptState) {
	k.port.RestoreInterrupts(s)
}

// CreateTask initializes t and appends it to the ready list of its
// priority. Safe from any context. An out-of-range priority trips the
// assertion hook.
func (k *Kernel) CreateTask(priority int8, t *Task, fn TaskFunc, param any) {
	libAssert(
		priority >= LowPriority && priority <= HighPriority,
		int(priority),
		"CreateTask: invalid priority")

	s := k.critEnter()
	t.fn = fn
	t.param = param
	t.priority = priority
	t.wakeTick = 0
	t.schedNode.init(t)
	t.eventNode.init(t)
	k.tasksReady[priority].insertLast(&t.schedNode)
	k.critExit(s)
}

// Sched runs one scheduled task.
//
// It picks the highest-priority ready task whose priority is strictly
// greater than that of the interrupted task (any task when idle), rotates
// it to the back of its ready list and runs it to completion with
// interrupts enabled. It returns after the task, because a yet higher
// priority task may have become ready meanwhile; run Sched in a loop to
// drain all ready work.
func (k *Kernel) Sched() {
	s := k.critEnter()

	if k.schedDepth > 0 {
		k.critExit(s)
		return
	}

	prev := k.currentTask
	prevPriority := noPriority
	if prev != nil {
		prevPriority = prev.priority
	}

	if k.mode == Cooperative && prevPriority >= 0 {
		// A task is already running; on cooperative mode we do not
		// schedule another one.
		k.critExit(s)
		return
	}

	for i := HighPriority; i > prevPriority; i-- {
		ready := &k.tasksReady[i]
		if ready.empty() {
			continue
		}

		n := ready.first()
		task := n.owner

		// Round-robin within the priority level.
		n.remove()
		ready.insertLast(n)

		k.currentTask = task

		// Interrupts are enabled while the task runs.
		k.critExit(s)
		task.fn(task.param)
		s = k.critEnter()

		k.currentTask = prev
		break
	}

	k.critExit(s)
}

// SchedLock suspends task switching without disabling interrupts. Calls
// nest.
func (k *Kernel) SchedLock() {
	s := k.critEnter()
	k.schedDepth++
	k.critExit(s)
}

// schedLockUnsafe is SchedLock for callers already inside a critical
// section.
func (k *Kernel) schedLockUnsafe() {
	k.schedDepth++
}

// SchedUnlock releases one level of the scheduler lock and, on the
// outermost release, runs the scheduler to dispatch any task made ready
// while the lock was held.
func (k *Kernel) SchedUnlock() {
	s := k.critEnter()
	k.schedDepth--
	unlocked := k.schedDepth == 0
	k.critExit(s)

	if unlocked {
		k.Sched()
	}
}

// TickInterrupt advances the tick and readies every pended task whose
// timeout expired. Call it from the periodic timer interrupt.
//
// The port decides the preemption point: on hardware the interrupt
// epilogue (or the interrupted task's next scheduling point) runs Sched.
func (k *Kernel) TickInterrupt() {
	s := k.critEnter()

	k.tick++
	if k.tick == 0 {
		// The tick wrapped: every deadline in the old epoch has fired.
		k.delayed, k.overflow = k.overflow, k.delayed
	}

	for !k.delayed.empty() {
		task := k.delayed.first().owner
		if task.wakeTick > k.tick {
			break
		}
		// Timed out: leave the wait list and become ready again. If the
		// event fired on this same tick the task is already off the
		// delayed list and this loop never sees it.
		task.schedNode.remove()
		if task.eventNode.list != nil {
			task.eventNode.remove()
		}
		k.readyUnsafe(task)
	}

	k.critExit(s)
}

// Ticks returns the tick count since initialization. The count wraps.
func (k *Kernel) Ticks() Tick {
	s := k.critEnter()
	tick := k.tick
	k.critExit(s)
	return tick
}

// CurrentTask returns the running task, nil when idle.
func (k *Kernel) CurrentTask() *Task {
	s := k.critEnter()
	task := k.currentTask
	k.critExit(s)
	return task
}

// Suspend moves a task to the suspended list. Passing nil suspends the
// current task; it keeps running until its function returns.
func (k *Kernel) Suspend(t *Task) {
	s := k.critEnter()
	if t == nil {
		t = k.currentTask
		libAssert(t != nil, 0, "Suspend: no current task")
	}
	if t.schedNode.list != nil {
		t.schedNode.remove()
	}
	k.tasksSuspended.insertFirst(&t.schedNode)
	k.critExit(s)
}

// Resume makes a task ready if it is not already on its ready list.
func (k *Kernel) Resume(t *Task) {
	s := k.critEnter()
	k.readyUnsafe(t)
	k.critExit(s)
}

// readyUnsafe moves t to the back of its priority's ready list, wherever
// its scheduler node currently is. No-op if already there.
func (k *Kernel) readyUnsafe(t *Task) {
	ready := &k.tasksReady[t.priority]
	if t.schedNode.list == ready {
		return
	}
	if t.schedNode.list != nil {
		t.schedNode.remove()
	}
	ready.insertLast(&t.schedNode)
}
