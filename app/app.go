package app

import (
	"strconv"
	"time"

	"github.com/gmsotavio/librertos/hal"
	"github.com/gmsotavio/librertos/kernel"
)

const (
	queueLength      = 8
	blinkPeriod      = 50  // ticks between blinker resumes
	producePeriod    = 8   // ticks between producer resumes
	produceBurst     = 4   // samples per producer wake
	reportPeriod     = 256 // ticks between monitor reports
	consumerPatience = 25  // read timeout in ticks
)

type Config struct {
	Preemptive bool
}

// New wires the demo with the default config and returns the per-tick
// step function.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

// NewWithConfig wires the demo tasks and returns the per-tick step
// function: one timer interrupt plus one scheduler pass.
func NewWithConfig(h hal.HAL, cfg Config) func() error {
	s := newSystem(h, cfg)
	return func() error {
		s.k.TickInterrupt()
		s.k.Sched()
		return nil
	}
}

// Run starts the demo and blocks forever (TinyGo/native entrypoint).
// The tick is derived from a 1ms sleep loop.
func Run(h hal.HAL) {
	step := New(h)
	for {
		time.Sleep(time.Millisecond)
		step()
	}
}

// system is the demo application: a producer feeding samples through a
// bounded queue to a consumer, a self-suspending blinker that the
// monitor resumes periodically, and mutex-guarded shared stats.
type system struct {
	k *kernel.Kernel

	log  hal.Logger
	leds []hal.LED

	queue kernel.Queue
	qbuf  [queueLength]byte

	statsMu  kernel.Mutex
	consumed int
	dropped  int

	producer kernel.Task
	consumer kernel.Task
	blinker  kernel.Task
	monitor  kernel.Task

	sample      byte
	burst       int
	ledState    [3]bool
	lastProduce kernel.Tick
	lastBlink   kernel.Tick
	lastReport  kernel.Tick
}

func newSystem(h hal.HAL, cfg Config) *system {
	mode := kernel.Cooperative
	if cfg.Preemptive {
		mode = kernel.Preemptive
	}

	s := &system{
		k:    kernel.New(h.Port(), mode),
		log:  h.Logger(),
		leds: h.LEDs(),
	}
	s.queue.Init(s.k, s.qbuf[:], queueLength, 1)
	s.statsMu.Init(s.k)

	s.k.CreateTask(1, &s.producer, s.produceStep, nil)
	s.k.CreateTask(2, &s.consumer, s.consumeStep, nil)
	s.k.CreateTask(3, &s.blinker, s.blinkStep, nil)
	s.k.CreateTask(0, &s.monitor, s.monitorStep, nil)

	s.log.WriteLineString("librertos demo up")
	return s
}

// produceStep pushes one sample per run. A full queue parks it until the
// consumer reads; after a full burst it suspends itself and waits for
// the monitor to pace the next one.
func (s *system) produceStep(any) {
	if !s.queue.WritePend([]byte{s.sample}, kernel.MaxDelay) {
		return
	}
	s.sample++
	s.toggleLED(1)

	s.burst++
	if s.burst >= produceBurst {
		s.burst = 0
		s.k.Suspend(nil)
	}
}

// consumeStep drains one sample or parks with a timeout so it still
// blinks the activity LED while the producer is stalled.
func (s *system) consumeStep(any) {
	var b [1]byte
	if !s.queue.ReadPend(b[:], consumerPatience) {
		s.toggleLED(0)
		return
	}
	s.toggleLED(0)

	if !s.statsMu.Lock() {
		// Stats busy; drop the count rather than wait.
		s.dropped++
		return
	}
	s.consumed++
	s.statsMu.Unlock()
}

// blinkStep toggles the heartbeat LED and suspends itself; the monitor
// resumes it every blinkPeriod ticks.
func (s *system) blinkStep(any) {
	s.toggleLED(2)
	s.k.Suspend(nil)
}

// monitorStep is the lowest-priority task: it runs when everything else
// pends, resumes the blinker and reports the shared stats.
func (s *system) monitorStep(any) {
	now := s.k.Ticks()

	if now-s.lastProduce >= producePeriod {
		s.lastProduce = now
		s.k.Resume(&s.producer)
	}

	if now-s.lastBlink >= blinkPeriod {
		s.lastBlink = now
		s.k.Resume(&s.blinker)
	}

	if now-s.lastReport >= reportPeriod {
		s.lastReport = now
		if s.statsMu.Lock() {
			consumed := s.consumed
			s.statsMu.Unlock()
			s.log.WriteLineString(
				"tick " + strconv.FormatUint(uint64(now), 10) +
					": consumed " + strconv.Itoa(consumed) +
					", dropped " + strconv.Itoa(s.dropped) +
					", queued " + strconv.Itoa(s.queue.Used()))
		}
	}
}

func (s *system) toggleLED(i int) {
	if i >= len(s.leds) {
		return
	}
	s.ledState[i] = !s.ledState[i]
	if s.ledState[i] {
		s.leds[i].High()
	} else {
		s.leds[i].Low()
	}
}
