package nrf24sim

import "periph.io/x/conn/v3/gpio"

// IRQObserver is notified whenever a radio's IRQ pin level changes. The
// host MCU simulator implements this to route the level into its own
// interrupt controller; it is the only hook this package needs into the
// "IRQ/pin routing" collaborator spec.md treats as external.
type IRQObserver interface {
	SetIRQ(level gpio.Level)
}

// PinObserver is the general shape of a pin-level callback; Connect takes
// one for CE-driven side effects (e.g. an antenna LED in a host UI) and
// one for IRQ changes, but both collaborators look identical to this
// package -- it only ever calls SetIRQ with the new level.
type PinObserver = IRQObserver

// TimerKind identifies which of the radio's one-shot timers is being
// scheduled. The real simavr timer API dedupes pending callbacks by
// (callback function, context) identity -- scheduling the same kind again
// implicitly cancels any still-pending instance of it. Clock
// implementations must provide that same per-(Radio,TimerKind) semantics.
type TimerKind uint8

const (
	// TimerSettle fires when a settling delay (START_UP->STANDBY1,
	// *_SETTLING->*_MODE) elapses.
	TimerSettle TimerKind = iota
	// TimerTXFinished fires when the current packet's simulated airtime
	// elapses.
	TimerTXFinished
	// TimerARDElapsed fires auto_retransmit_delay microseconds after a
	// regular TX completes.
	TimerARDElapsed
	// TimerRxAckTimeout fires 250us after entering RX_MODE_FOR_ACK.
	TimerRxAckTimeout
)

// Clock is the Timer Bridge's view of the host MCU simulator's cycle
// timer. Implementations convert wall-clock durations to host cycles at
// this MCU's frequency and invoke fn once the delay elapses, serialized
// on the host's single simulation thread (see spec.md §5). All timers in
// this package are one-shot: fn is never asked to rearm itself.
type Clock interface {
	// ScheduleMicros arranges for fn to run after the given number of
	// microseconds have elapsed, at this clock's frequency. Scheduling a
	// new callback for the same kind before a prior one has fired
	// cancels the prior one.
	ScheduleMicros(kind TimerKind, delayUs float64, fn func())
	// ScheduleMillis is a millisecond-granularity convenience wrapper.
	ScheduleMillis(kind TimerKind, delayMs float64, fn func())
	// Cancel cancels any pending callback of the given kind. It is a
	// no-op if none is pending. Used on teardown.
	Cancel(kind TimerKind)
	// NowMicros returns the elapsed simulated time in microseconds since
	// this clock started, used only for trace-file timestamps.
	NowMicros() float64
}
