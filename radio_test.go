package nrf24sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"periph.io/x/conn/v3/gpio"
)

func TestColdBootReachesStandby1(t *testing.T) {
	sim := NewSimulation()
	clock := NewStepClock(testClockFreq)
	r := sim.NewRadio(clock, "sender")

	require.EqualValues(t, rxPNoEmpty<<shiftRX_P_NO, r.regs[regSTATUS])

	before := clock.Now()
	powerUpAndEnable(r, clock, byte(regMask1(bitPWR_UP)))
	after := clock.Now()

	require.Equal(t, stateStandby1, r.state)
	// 1.5ms settling at 16MHz is 24000 cycles; allow the step clock's
	// rounding but require it actually elapsed a nontrivial delay.
	require.Greater(t, after-before, uint64(1000))
}

func TestRegisterDefaults(t *testing.T) {
	sim := NewSimulation()
	clock := NewStepClock(testClockFreq)
	r := sim.NewRadio(clock, "r")

	require.EqualValues(t, regMask1(bitEN_CRC), r.regs[regCONFIG])
	require.EqualValues(t, 0x3F, r.regs[regEN_AA])
	require.EqualValues(t, 0x03, r.regs[regEN_RXADDR])
	require.EqualValues(t, 0xE7E7E7E7E7, r.regs[regRX_ADDR_P0])
	require.EqualValues(t, 0xE7E7E7E7E7, r.regs[regTX_ADDR])
	require.EqualValues(t, 2, r.regs[regRF_CH])
}

func TestPIDAdvancesModulo4(t *testing.T) {
	sim := NewSimulation()
	clock := NewStepClock(testClockFreq)
	r := sim.NewRadio(clock, "r")

	for i := 0; i < 6; i++ {
		want := uint8(i % 4)
		require.Equal(t, want, r.pid)
		spiWriteTXPayload(r, []byte{1, 2, 3})
		spiFlushTX(r) // keep the FIFO from filling up across iterations
	}
}

func TestFifoStatusInvariants(t *testing.T) {
	sim := NewSimulation()
	clock := NewStepClock(testClockFreq)
	r := sim.NewRadio(clock, "r")

	spiWriteTXPayload(r, []byte{1})
	spiWriteTXPayload(r, []byte{2})
	spiWriteTXPayload(r, []byte{3})
	require.EqualValues(t, 3, r.fifoTXEntries)
	require.NotZero(t, r.regs[regSTATUS]&regMask1(bitTX_FULL))
	require.NotZero(t, r.regs[regFIFO_STATUS]&regMask1(bitFIFO_TX_FULL))

	status := spiWriteTXPayload(r, []byte{4}) // fourth write must fail: FIFO full
	_ = status
	require.EqualValues(t, 3, r.fifoTXEntries, "a fourth payload must not be accepted into a full FIFO")
}

func TestIdempotentStatusClear(t *testing.T) {
	sim := NewSimulation()
	clock := NewStepClock(testClockFreq)
	r := sim.NewRadio(clock, "r")
	r.regs[regSTATUS] |= regMask1(bitRX_DR)

	spiWriteRegister(r, regSTATUS, uint64(regMask1(bitRX_DR)), 1)
	require.Zero(t, r.regs[regSTATUS]&regMask1(bitRX_DR))

	spiWriteRegister(r, regSTATUS, uint64(regMask1(bitRX_DR)), 1)
	require.Zero(t, r.regs[regSTATUS]&regMask1(bitRX_DR))
}

func TestCEObserverNotifiedOnEdgesOnly(t *testing.T) {
	sim := NewSimulation()
	clock := NewStepClock(testClockFreq)
	r := sim.NewRadio(clock, "r")

	ceObs := &mockPinObserver{}
	r.Connect(ceObs, nil)

	r.SetCE(true)
	require.Equal(t, []gpio.Level{gpio.High}, ceObs.levels)

	r.SetCE(false)
	require.Equal(t, []gpio.Level{gpio.High, gpio.Low}, ceObs.levels)

	r.SetCE(false) // no edge, no notification
	require.Len(t, ceObs.levels, 2)
}

func TestIRQObserverNotifiedOnUnmaskedStatusBit(t *testing.T) {
	sim := NewSimulation()
	clock := NewStepClock(testClockFreq)
	r := sim.NewRadio(clock, "r")

	irqObs := &mockPinObserver{}
	r.Connect(nil, irqObs)
	require.Empty(t, irqObs.levels, "no notification before a status bit changes")

	ok := r.pushRXEntry(rxPacket{length: 1, payload: [32]byte{1}})
	require.True(t, ok)

	require.NotEmpty(t, irqObs.levels)
	require.Equal(t, gpio.Low, irqObs.last(), "RX_DR is unmasked by default, IRQ is active-low")

	spiWriteRegister(r, regSTATUS, uint64(regMask1(bitRX_DR)), 1)
	require.Equal(t, gpio.High, irqObs.last(), "clearing RX_DR deasserts IRQ")
}

func TestFlushRXResetsPipeNumber(t *testing.T) {
	sim := NewSimulation()
	clock := NewStepClock(testClockFreq)
	r := sim.NewRadio(clock, "r")

	ok := r.pushRXEntry(rxPacket{pid: 0, pipe: 2, length: 1, payload: [32]byte{9}})
	require.True(t, ok)
	require.EqualValues(t, 2, (r.regs[regSTATUS]>>shiftRX_P_NO)&0b111)

	spiFlushRX(r)
	require.EqualValues(t, rxPNoEmpty, (r.regs[regSTATUS]>>shiftRX_P_NO)&0b111)
	require.Zero(t, r.fifoRXEntries)
}
