package nrf24sim

import "fmt"

// Simulation is the process-wide context spec.md §9 asks for in place of
// file-scope statics: the module registry, loss configuration, delivery
// stats, and the logging/error-escalation policy every radio defers to.
type Simulation struct {
	registry []*Radio

	logLevel    LogLevel
	stopOnError bool

	dataLoss *lossRule
	ackLoss  *lossRule

	stats stats
}

// SimulationOption configures a Simulation at construction time.
type SimulationOption func(*Simulation)

// WithLogLevel sets the initial verbosity (default LevelWarning).
func WithLogLevel(level LogLevel) SimulationOption {
	return func(s *Simulation) { s.logLevel = level }
}

// WithStopOnError escalates error-severity events to a panic instead of
// just logging them, matching the original's errx(1, ...) abort.
func WithStopOnError(stop bool) SimulationOption {
	return func(s *Simulation) { s.stopOnError = stop }
}

// WithLostPackets seeds the data/ACK loss dividers at construction time.
// A divider of 0 disables loss for that rule.
func WithLostPackets(dataDivider, ackDivider uint32) SimulationOption {
	return func(s *Simulation) {
		s.dataLoss.enabled = dataDivider > 0
		s.dataLoss.divider = dataDivider
		s.ackLoss.enabled = ackDivider > 0
		s.ackLoss.divider = ackDivider
	}
}

// NewSimulation creates an empty module registry (global_init).
func NewSimulation(opts ...SimulationOption) *Simulation {
	s := &Simulation{
		logLevel: LevelWarning,
		dataLoss: newLossRule(),
		ackLoss:  newLossRule(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close tears down every radio (cancels pending timers, closes trace
// files) and empties the registry (cleanup).
func (s *Simulation) Close() {
	for _, r := range s.registry {
		r.clock.Cancel(TimerSettle)
		r.clock.Cancel(TimerTXFinished)
		r.clock.Cancel(TimerARDElapsed)
		r.clock.Cancel(TimerRxAckTimeout)
		if r.trace != nil {
			r.trace.Close()
		}
	}
	s.registry = nil
}

// NewRadio allocates and registers a radio (make_radio + init_radio
// combined). clock is the per-MCU Timer Bridge this radio schedules its
// settling/airtime/retry callbacks against.
func (s *Simulation) NewRadio(clock Clock, name string) *Radio {
	r := newRadio(s, clock, name)
	s.registry = append(s.registry, r)
	return r
}

// SetLogLevel changes the verbosity of subsequent log output.
func (s *Simulation) SetLogLevel(level LogLevel) { s.logLevel = level }

// StopOnError toggles whether error-severity events panic.
func (s *Simulation) StopOnError(stop bool) { s.stopOnError = stop }

// SetLostPackets reconfigures the loss dividers at runtime; 0 disables.
func (s *Simulation) SetLostPackets(dataDivider, ackDivider uint32) {
	s.dataLoss.enabled = dataDivider > 0
	s.dataLoss.divider = dataDivider
	s.ackLoss.enabled = ackDivider > 0
	s.ackLoss.divider = ackDivider
}

// Stats returns a copy of the current delivery counters.
func (s *Simulation) Stats() (packetsSent, acksSent, noReceiver, rxDropped uint64) {
	return s.stats.packetsSent, s.stats.acksSent, s.stats.noReceiverFound, s.stats.rxFifoFullDrops
}

func (s *Simulation) lossRollData() bool { return s.dataLoss.roll() }
func (s *Simulation) lossRollAck() bool  { return s.ackLoss.roll() }

// reportError logs e at the appropriate severity and, for
// InternalInvariant kinds or when StopOnError is active on an
// error-severity event, panics -- the idiomatic equivalent of the
// original's fatal errx(1, ...) abort.
func (s *Simulation) reportError(e *SimError) {
	if e.Kind == InternalInvariant {
		s.log(LevelError, e.Radio, "%s", e.Error())
		panic(e)
	}
	level := LevelWarning
	if e.Severity == SeverityError {
		level = LevelError
	}
	s.log(level, e.Radio, "%s", e.Error())
	if e.Severity == SeverityError && s.stopOnError {
		panic(e)
	}
}

// log dispatches to the package's global Logger, gated by the
// Simulation's configured verbosity. ERROR is always emitted.
func (s *Simulation) log(level LogLevel, radio, format string, args ...interface{}) {
	if level != LevelError && level > s.logLevel {
		return
	}
	msg := radio + ": " + fmt.Sprintf(format, args...)
	switch level {
	case LevelError:
		globalLogger.Error(msg)
	case LevelWarning:
		globalLogger.Warn(msg)
	case LevelVerbose:
		globalLogger.Info(msg)
	default:
		globalLogger.Debug(msg)
	}
}
