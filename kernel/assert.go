package kernel

import "sync/atomic"

// AssertInfo describes a kernel contract violation.
type AssertInfo struct {
	Val int
	Msg string
}

var assertHandler atomic.Value // func(AssertInfo)

// SetAssertHandler installs a process-wide handler called on contract
// violations before the kernel panics.
//
// The kernel never continues past a failed assertion: if the handler
// returns, the failing call panics. Tests may install a handler and
// recover the panic.
func SetAssertHandler(fn func(AssertInfo)) {
	assertHandler.Store(fn) // a nil fn clears the handler
}

func libAssert(cond bool, val int, msg string) {
	if cond {
		return
	}
	info := AssertInfo{Val: val, Msg: msg}
	if v := assertHandler.Load(); v != nil {
		if fn, ok := v.(func(AssertInfo)); ok && fn != nil {
			fn(info)
		}
	}
	panic("kernel: " + msg)
}
