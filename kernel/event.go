package kernel

// eventRW is the wait-list pair used by the blocking primitives:
// listRead holds tasks waiting for data, listWrite tasks waiting for
// space. A task is on at most one wait list at a time.
type eventRW struct {
	listRead  list
	listWrite list
}

func (e *eventRW) init() {
	e.listRead.init()
	e.listWrite.init()
}

// eventPrePend claims a slot on the wait list for the current task.
//
// Unsafe: interrupts disabled and scheduler locked. The split from
// eventPend lets the caller re-check the wait condition with interrupts
// briefly re-enabled without losing the wake: once the event node is on
// the list, a waker detaches it and the later eventPend backs off.
func (k *Kernel) eventPrePend(l *list, t *Task) {
	if t.eventNode.list != nil {
		t.eventNode.remove()
	}
	l.insertLast(&t.eventNode)
}

// eventPend finalizes a pend claimed by eventPrePend: it parks the task's
// scheduler node and arms the wake deadline. Called with interrupts
// enabled, scheduler locked.
//
// If the event fired since the claim (the event node is no longer on l)
// the task stays ready and nothing happens.
func (k *Kernel) eventPend(l *list, t *Task, ticksToWait Tick) {
	s := k.critEnter()

	if t.eventNode.list != l {
		k.critExit(s)
		return
	}

	if t.schedNode.list != nil {
		t.schedNode.remove()
	}

	if ticksToWait != MaxDelay {
		t.wakeTick = k.tick + ticksToWait
		if t.wakeTick > k.tick {
			k.delayedInsert(k.delayed, t)
		} else {
			// Deadline past the tick wrap.
			k.delayedInsert(k.overflow, t)
		}
	}

	k.critExit(s)
}

// delayedInsert places t on a delayed list, keeping it sorted by wake
// tick so that TickInterrupt pops expired tasks from the front.
func (k *Kernel) delayedInsert(l *list, t *Task) {
	pos := l.first()
	for pos != &l.sentinel && pos.owner.wakeTick <= t.wakeTick {
		pos = pos.next
	}
	l.insertBefore(pos, &t.schedNode)
}

// eventUnblock wakes the head task of a wait list and makes it ready.
// Only one task per call; the caller decides how many wakes its work is
// worth.
//
// Unsafe: interrupts disabled and scheduler locked.
func (k *Kernel) eventUnblock(l *list) {
	if l.empty() {
		return
	}
	n := l.first()
	n.remove()
	k.readyUnsafe(n.owner)
}
