package nrf24sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	errors []string
	warns  []string
}

func (l *recordingLogger) Debug(string)    {}
func (l *recordingLogger) Info(string)     {}
func (l *recordingLogger) Warn(msg string) { l.warns = append(l.warns, msg) }
func (l *recordingLogger) Error(msg string) { l.errors = append(l.errors, msg) }

func TestStopOnErrorPanics(t *testing.T) {
	old := globalLogger
	defer SetLogger(old)
	rec := &recordingLogger{}
	SetLogger(rec)

	sim := NewSimulation(WithStopOnError(true))
	clock := NewStepClock(testClockFreq)
	r := sim.NewRadio(clock, "r")

	require.Panics(t, func() {
		r.CSN(false)
		r.SPIExchange(0xF0) // unknown opcode -> BadCommand, SeverityError
		r.CSN(true)
	})
	require.NotEmpty(t, rec.errors)
}

func TestErrorsAreLoggedNotFatalByDefault(t *testing.T) {
	old := globalLogger
	defer SetLogger(old)
	rec := &recordingLogger{}
	SetLogger(rec)

	sim := NewSimulation()
	clock := NewStepClock(testClockFreq)
	r := sim.NewRadio(clock, "r")

	require.NotPanics(t, func() {
		r.CSN(false)
		r.SPIExchange(0xF0)
		r.CSN(true)
	})
	require.NotEmpty(t, rec.errors)
}

func TestSimErrorMessageFormat(t *testing.T) {
	e := newSimError(FifoFull, SeverityError, "radioA", "TX FIFO full")
	require.Equal(t, "nrf24sim: radioA: fifo-full: TX FIFO full", e.Error())
}
