package kernel

// Intrusive doubly linked list with an inline sentinel node.
//
// All list operations are "unsafe": they do not disable interrupts by
// themselves. Callers must hold the critical section.

// node is embedded in a Task. A node is on at most one list at a time;
// node.list is nil while detached.
type node struct {
	next  *node
	prev  *node
	list  *list
	owner *Task
}

type list struct {
	sentinel node
	length   int
}

func (l *list) init() {
	l.sentinel.next = &l.sentinel
	l.sentinel.prev = &l.sentinel
	l.sentinel.list = nil
	l.length = 0
}

func (n *node) init(owner *Task) {
	n.next = nil
	n.prev = nil
	n.list = nil
	n.owner = owner
}

func (l *list) insertAfter(pos, n *node) {
	n.next = pos.next
	n.prev = pos
	pos.next.prev = n
	pos.next = n
	n.list = l
	l.length++
}

func (l *list) insertBefore(pos, n *node) {
	l.insertAfter(pos.prev, n)
}

func (l *list) insertFirst(n *node) {
	l.insertAfter(&l.sentinel, n)
}

func (l *list) insertLast(n *node) {
	l.insertAfter(l.sentinel.prev, n)
}

// remove detaches n from its list. The node must be attached; next, prev
// and list are cleared so a double remove trips the nil checks.
func (n *node) remove() {
	l := n.list
	libAssert(l != nil, 0, "list: remove of a detached node")
	n.next.prev = n.prev
	n.prev.next = n.next
	n.next = nil
	n.prev = nil
	n.list = nil
	l.length--
}

// first returns the head node, or the sentinel when the list is empty.
func (l *list) first() *node {
	return l.sentinel.next
}

// last returns the tail node, or the sentinel when the list is empty.
func (l *list) last() *node {
	return l.sentinel.prev
}

func (l *list) empty() bool {
	return l.length == 0
}
