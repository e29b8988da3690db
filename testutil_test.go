package nrf24sim

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// testClockFreq models a 16MHz AVR-class MCU, matching the frequency the
// original firmware examples this package is meant to stand in for
// typically run at.
const testClockFreq = 16 * physic.MegaHertz

// mockPinObserver is a hand-written recording fake for PinObserver, in
// the shape of michcald-nrf24/nrf24_test.go's mockPin: it just remembers
// every level it was told about so a test can assert on the sequence.
type mockPinObserver struct {
	levels []gpio.Level
}

func (m *mockPinObserver) SetIRQ(level gpio.Level) {
	m.levels = append(m.levels, level)
}

func (m *mockPinObserver) last() gpio.Level {
	if len(m.levels) == 0 {
		return gpio.Low
	}
	return m.levels[len(m.levels)-1]
}

// runUntilIdle drains every pending StepClock callback, following
// whatever new callbacks each one schedules, up to a generous bound so a
// bug that keeps rescheduling forever fails the test instead of hanging
// it.
func runUntilIdle(c *StepClock, maxSteps int) {
	for i := 0; i < maxSteps; i++ {
		if !c.AdvanceToNext() {
			return
		}
	}
}

// runAllUntilIdle drains several independent radios' StepClocks (each
// radio on its own simulated MCU) round-robin until none has pending
// work, for scenarios involving more than one radio.
func runAllUntilIdle(clocks []*StepClock, maxSteps int) {
	for i := 0; i < maxSteps; i++ {
		progressed := false
		for _, c := range clocks {
			if c.AdvanceToNext() {
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}

// spiWriteRegister performs a W_REGISTER transaction for reg with the
// given little-endian value.
func spiWriteRegister(r *Radio, reg byte, value uint64, length int) {
	r.CSN(false)
	r.SPIExchange(0x20 | reg)
	for i := 0; i < length; i++ {
		r.SPIExchange(byte(value >> (8 * i)))
	}
	r.CSN(true)
}

// spiReadRegister performs an R_REGISTER transaction and returns the
// bytes streamed back (excluding the status byte).
func spiReadRegister(r *Radio, reg byte, length int) []byte {
	r.CSN(false)
	r.SPIExchange(reg & 0x1F)
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		out[i] = r.SPIExchange(0x00)
	}
	r.CSN(true)
	return out
}

// spiWriteTXPayload performs a W_TX_PAYLOAD transaction.
func spiWriteTXPayload(r *Radio, payload []byte) byte {
	r.CSN(false)
	status := r.SPIExchange(0xA0)
	for _, b := range payload {
		r.SPIExchange(b)
	}
	r.CSN(true)
	return status
}

// spiWriteAckPayload performs a W_ACK_PAYLOAD(pipe) transaction.
func spiWriteAckPayload(r *Radio, pipe byte, payload []byte) {
	r.CSN(false)
	r.SPIExchange(0xA8 | pipe)
	for _, b := range payload {
		r.SPIExchange(b)
	}
	r.CSN(true)
}

// spiReadRXPayload performs an R_RX_PAYLOAD transaction and returns up
// to n streamed bytes.
func spiReadRXPayload(r *Radio, n int) []byte {
	r.CSN(false)
	r.SPIExchange(0x61)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = r.SPIExchange(0x00)
	}
	r.CSN(true)
	return out
}

func spiReadRxPLWid(r *Radio) byte {
	r.CSN(false)
	r.SPIExchange(0x60)
	w := r.SPIExchange(0x00)
	r.CSN(true)
	return w
}

func spiFlushRX(r *Radio) {
	r.CSN(false)
	r.SPIExchange(0xE2)
	r.CSN(true)
}

func spiFlushTX(r *Radio) {
	r.CSN(false)
	r.SPIExchange(0xE1)
	r.CSN(true)
}

// powerUpAndEnable sets CONFIG (PWR_UP plus whatever other bits the
// caller wants, e.g. PRIM_RX) and runs the clock until the settling
// delay(s) it triggers have elapsed.
func powerUpAndEnable(r *Radio, clock *StepClock, configValue byte) {
	spiWriteRegister(r, regCONFIG, uint64(configValue), 1)
	runUntilIdle(clock, 100)
}
