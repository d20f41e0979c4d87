package kernel

import "sync"

// testPort maps the interrupt mask onto a mutex: while a critical section
// is open, a simulated interrupt (another goroutine calling into the
// kernel) blocks until it closes, like a masked IRQ staying pending.
type testPort struct {
	mu sync.Mutex
}

func (p *testPort) DisableInterrupts() InterruptState {
	p.mu.Lock()
	return 0
}

func (p *testPort) RestoreInterrupts(InterruptState) {
	p.mu.Unlock()
}

func newTestKernel(mode Mode) *Kernel {
	return New(&testPort{}, mode)
}
