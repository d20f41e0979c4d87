package kernel

// Queue is a bounded queue of fixed-size items over a caller-supplied
// buffer. Readers and writers copy item bytes outside the critical
// section under a two-phase reservation protocol, so critical sections
// stay short while readers never observe a partially written slot.
//
// Concurrent access follows the single-stack model: an operation that
// interrupts another (a nested task or an ISR) runs to completion before
// the interrupted one resumes. Reservation counters (wLock, rLock) track
// copies in flight; the first reservation of a batch is the last to
// finish and publishes the whole batch.
type Queue struct {
	k *Kernel

	buf      []byte
	itemSize int
	head     int // next read offset
	tail     int // next write offset

	free  int // slots available to writers
	used  int // items available to readers
	wLock int // writes in flight
	rLock int // reads in flight

	event eventRW
}

// queueCopyHook, when set, runs after each item copy while no critical
// section is held. Tests use it to interleave a nested operation at the
// exact point a real interrupt would.
var queueCopyHook func()

// Init prepares the queue over buf, which must hold at least
// length*itemSize bytes.
func (q *Queue) Init(k *Kernel, buf []byte, length, itemSize int) {
	libAssert(k != nil, 0, "queue: Init: nil kernel")
	libAssert(length > 0, length, "queue: Init: invalid length")
	libAssert(itemSize > 0, itemSize, "queue: Init: invalid item size")
	libAssert(len(buf) >= length*itemSize, len(buf), "queue: Init: buffer too small")

	q.k = k
	q.buf = buf[:length*itemSize]
	q.itemSize = itemSize
	q.head = 0
	q.tail = 0
	q.free = length
	q.used = 0
	q.wLock = 0
	q.rLock = 0
	q.event.init()
}

// Write pushes one item copied from b. Returns false when the queue is
// full. b must hold at least ItemSize bytes.
func (q *Queue) Write(b []byte) bool {
	k := q.k
	s := k.critEnter()

	ok := q.free != 0
	if ok {
		// Reserve the tail slot and go copy with interrupts enabled.
		pos := q.tail
		q.tail += q.itemSize
		if q.tail >= len(q.buf) {
			q.tail = 0
		}
		myLock := q.wLock
		q.wLock++
		q.free--

		k.schedLockUnsafe()

		k.critExit(s)
		copy(q.buf[pos:pos+q.itemSize], b[:q.itemSize])
		if queueCopyHook != nil {
			queueCopyHook()
		}
		s = k.critEnter()

		if myLock == 0 {
			// First reservation of the batch: every later reservation has
			// already finished its copy, publish them all.
			q.used += q.wLock
			q.wLock = 0
		}

		if !q.event.listRead.empty() {
			k.eventUnblock(&q.event.listRead)
		}
	}

	k.critExit(s)

	if ok {
		k.SchedUnlock()
	}
	return ok
}

// Read pops one item into b. Returns false when the queue is empty.
// b must hold at least ItemSize bytes.
func (q *Queue) Read(b []byte) bool {
	k := q.k
	s := k.critEnter()

	ok := q.used != 0
	if ok {
		pos := q.head
		q.head += q.itemSize
		if q.head >= len(q.buf) {
			q.head = 0
		}
		myLock := q.rLock
		q.rLock++
		q.used--

		k.schedLockUnsafe()

		k.critExit(s)
		copy(b[:q.itemSize], q.buf[pos:pos+q.itemSize])
		if queueCopyHook != nil {
			queueCopyHook()
		}
		s = k.critEnter()

		if myLock == 0 {
			q.free += q.rLock
			q.rLock = 0
		}

		if !q.event.listWrite.empty() {
			k.eventUnblock(&q.event.listWrite)
		}
	}

	k.critExit(s)

	if ok {
		k.SchedUnlock()
	}
	return ok
}

// ReadPend reads and, on an empty queue, pends the current task until
// the queue is written or ticksToWait expires. Returns the read result;
// callers typically retry on their next run.
//
// Task context only.
func (q *Queue) ReadPend(b []byte, ticksToWait Tick) bool {
	ok := q.Read(b)
	if !ok {
		q.PendRead(ticksToWait)
	}
	return ok
}

// WritePend writes and, on a full queue, pends the current task until
// the queue is read or ticksToWait expires. Returns the write result.
//
// Task context only.
func (q *Queue) WritePend(b []byte, ticksToWait Tick) bool {
	ok := q.Write(b)
	if !ok {
		q.PendWrite(ticksToWait)
	}
	return ok
}

// PendRead parks the current task until the queue is written or the
// timeout expires. The wait condition is re-checked with interrupts
// disabled so a write slipping in between cannot be missed.
//
// Task context only.
func (q *Queue) PendRead(ticksToWait Tick) {
	if ticksToWait == 0 {
		return
	}
	k := q.k

	k.SchedLock()
	s := k.critEnter()
	if q.used == 0 {
		task := k.currentTask
		k.eventPrePend(&q.event.listRead, task)
		k.critExit(s)
		k.eventPend(&q.event.listRead, task, ticksToWait)
	} else {
		k.critExit(s)
	}
	k.SchedUnlock()
}

// PendWrite parks the current task until the queue is read or the
// timeout expires.
//
// Task context only.
func (q *Queue) PendWrite(ticksToWait Tick) {
	if ticksToWait == 0 {
		return
	}
	k := q.k

	k.SchedLock()
	s := k.critEnter()
	if q.free == 0 {
		task := k.currentTask
		k.eventPrePend(&q.event.listWrite, task)
		k.critExit(s)
		k.eventPend(&q.event.listWrite, task, ticksToWait)
	} else {
		k.critExit(s)
	}
	k.SchedUnlock()
}

// Used returns the number of items available to readers.
func (q *Queue) Used() int {
	s := q.k.critEnter()
	used := q.used
	q.k.critExit(s)
	return used
}

// Free returns the number of slots available to writers.
func (q *Queue) Free() int {
	s := q.k.critEnter()
	free := q.free
	q.k.critExit(s)
	return free
}

// Length returns the queue capacity in items.
func (q *Queue) Length() int {
	s := q.k.critEnter()
	length := q.free + q.used + q.wLock + q.rLock
	q.k.critExit(s)
	return length
}

// ItemSize returns the size of one item in bytes.
func (q *Queue) ItemSize() int {
	// Constant after Init.
	return q.itemSize
}

// Empty reports whether the queue has no readable items.
func (q *Queue) Empty() bool {
	return q.Used() == 0
}

// Full reports whether the queue has no writable slots.
func (q *Queue) Full() bool {
	return q.Free() == 0
}
