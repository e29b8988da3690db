package nrf24sim

import (
	"time"

	"github.com/google/uuid"
	"periph.io/x/conn/v3/gpio"
)

// radioState is one of the twelve power/RX/TX/Standby lifecycle states.
type radioState uint8

const (
	statePowerDown radioState = iota
	stateStartUp
	stateStandby1
	stateRxSettling
	stateRxMode
	stateTxSettling
	stateTxMode
	stateStandby2
	stateRxSettlingForAck
	stateRxModeForAck
	stateTxSettlingForAck
	stateTxModeForAck
)

func (s radioState) String() string {
	switch s {
	case statePowerDown:
		return "POWER_DOWN"
	case stateStartUp:
		return "START_UP"
	case stateStandby1:
		return "STANDBY1"
	case stateRxSettling:
		return "RX_SETTLING"
	case stateRxMode:
		return "RX_MODE"
	case stateTxSettling:
		return "TX_SETTLING"
	case stateTxMode:
		return "TX_MODE"
	case stateStandby2:
		return "STANDBY2"
	case stateRxSettlingForAck:
		return "RX_SETTLING_FOR_ACK"
	case stateRxModeForAck:
		return "RX_MODE_FOR_ACK"
	case stateTxSettlingForAck:
		return "TX_SETTLING_FOR_ACK"
	case stateTxModeForAck:
		return "TX_MODE_FOR_ACK"
	default:
		return "UNKNOWN"
	}
}

// Radio is one simulated nRF24L01+ transceiver: a register file, two
// bounded FIFOs, the SPI transaction state machine, and the power/RX/TX
// lifecycle state machine. It has no goroutines of its own -- every
// method runs synchronously to completion on the caller's (the host
// MCU simulator's) thread, per the single-threaded cooperative model.
type Radio struct {
	sim   *Simulation
	id    uuid.UUID
	name  string
	clock Clock

	ceSink  PinObserver
	irqSink PinObserver

	regs [numRegisters]uint64

	fifoTX        [3]txPacket
	fifoTXEntries uint8
	fifoRX        [3]rxPacket
	fifoRXEntries uint8
	fifoRXReadPos uint8

	pid uint8

	pinCE  bool
	pinCSN bool
	pinIRQ bool // true = high = deasserted

	state radioState
	spi   spiTxn

	txInProgress   bool
	txFinished     bool
	txWaitForAck   bool
	txAckReceived  bool
	ardHasElapsed  bool
	rxAckTimeout   bool
	rxSendAck      bool
	nbRetries      uint8

	rxSendAckTo      *Radio // peer this radio owes an ACK to (PRX role)
	txReceiveAckFrom *Radio // peer this radio expects an ACK from (PTX role)

	packetBeingSent      txPacket
	packetBeingSentValid bool

	lastRX      rxPacket
	lastRXValid bool

	trace         *traceWriter
	lastTraceTime time.Duration
	haveLastTrace bool

	inReactor bool // re-entrancy guard: reactor chains itself explicitly, never recurses
}

// newRadio builds a radio with datasheet power-on register defaults. It
// is unexported: radios are only created through Simulation.NewRadio so
// every radio is registered for air dispatch from the moment it exists.
func newRadio(sim *Simulation, clock Clock, name string) *Radio {
	r := &Radio{
		sim:    sim,
		id:     uuid.New(),
		name:   name,
		clock:  clock,
		pinCSN: true,
		pinIRQ: true,
		state:  statePowerDown,
	}
	setDefaultRegisters(&r.regs)
	return r
}

// ID returns the radio's process-unique identity. The registry is not
// keyed by it.
func (r *Radio) ID() uuid.UUID { return r.id }

// Name returns the operator-facing label.
func (r *Radio) Name() string { return r.name }

// Connect registers observers for CE-driven side effects and IRQ level
// changes. Either may be nil. Connect does not itself recompute or emit
// the current IRQ level; irqSink is told only about later changes of it.
func (r *Radio) Connect(ceSink, irqSink PinObserver) {
	r.ceSink = ceSink
	r.irqSink = irqSink
}

// SetCE drives the CE pin. A level change is an edge that re-runs the
// state machine reactor.
func (r *Radio) SetCE(level bool) {
	if level == r.pinCE {
		return
	}
	r.pinCE = level
	if r.ceSink != nil {
		r.ceSink.SetIRQ(boolToLevel(level))
	}
	r.runReactor()
}

func boolToLevel(high bool) gpio.Level {
	if high {
		return gpio.High
	}
	return gpio.Low
}

// CSN drives the chip-select pin. A rising edge (asserted->deasserted)
// commits the in-flight SPI transaction's deferred side effects.
func (r *Radio) CSN(level bool) {
	if level == r.pinCSN {
		return
	}
	wasAsserted := !r.pinCSN // pinCSN false means previously asserted (active-low)
	r.pinCSN = level
	if level && wasAsserted {
		r.commitSPI()
	}
	if !level {
		r.spi = spiTxn{}
	}
}

func (r *Radio) recomputeIRQ() {
	status := r.regs[regSTATUS]
	config := r.regs[regCONFIG]
	rxDR := status&regMask1(bitRX_DR) != 0 && config&regMask1(bitMASK_RX_DR) == 0
	txDS := status&regMask1(bitTX_DS) != 0 && config&regMask1(bitMASK_TX_DS) == 0
	maxRT := status&regMask1(bitMAX_RT) != 0 && config&regMask1(bitMASK_MAX_RT) == 0
	level := !(rxDR || txDS || maxRT) // active-low: low iff any unmasked flag set
	if level == r.pinIRQ {
		return
	}
	r.pinIRQ = level
	if r.irqSink != nil {
		r.irqSink.SetIRQ(boolToLevel(level))
	}
}

func (r *Radio) updateFifoStatus() {
	var fs uint64
	if r.fifoTXEntries == 0 {
		fs |= regMask1(bitFIFO_TX_EMPTY)
	}
	if r.fifoTXEntries == 3 {
		fs |= regMask1(bitFIFO_TX_FULL)
	}
	if r.fifoRXEntries == 0 {
		fs |= regMask1(bitFIFO_RX_EMPTY)
	}
	if r.fifoRXEntries == 3 {
		fs |= regMask1(bitFIFO_RX_FULL)
	}
	r.regs[regFIFO_STATUS] = fs

	if r.fifoTXEntries == 3 {
		r.regs[regSTATUS] |= regMask1(bitTX_FULL)
	} else {
		r.regs[regSTATUS] &^= regMask1(bitTX_FULL)
	}

	if r.fifoRXEntries == 0 {
		r.regs[regSTATUS] = (r.regs[regSTATUS] &^ (0b111 << shiftRX_P_NO)) | (rxPNoEmpty << shiftRX_P_NO)
	} else {
		pipe := uint64(r.fifoRX[r.fifoRXReadPos].pipe)
		r.regs[regSTATUS] = (r.regs[regSTATUS] &^ (0b111 << shiftRX_P_NO)) | (pipe << shiftRX_P_NO)
	}
	r.recomputeIRQ()
}

func (r *Radio) raiseError(kind Kind, sev Severity, msg string) *SimError {
	e := newSimError(kind, sev, r.name, msg)
	r.sim.reportError(e)
	return e
}

// pushTXEntry appends to the TX FIFO without checking for room. Callers
// must have already checked fifoTXEntries < 3 via a FifoFull error path.
func (r *Radio) pushTXEntry(p txPacket) {
	r.fifoTX[r.fifoTXEntries] = p
	r.fifoTXEntries++
	r.updateFifoStatus()
}

func (r *Radio) popTXEntry() txPacket {
	p := r.fifoTX[0]
	for i := uint8(1); i < r.fifoTXEntries; i++ {
		r.fifoTX[i-1] = r.fifoTX[i]
	}
	r.fifoTXEntries--
	r.updateFifoStatus()
	return p
}

func (r *Radio) pushRXEntry(p rxPacket) bool {
	if r.fifoRXEntries == 3 {
		return false
	}
	idx := (r.fifoRXReadPos + r.fifoRXEntries) % 3
	r.fifoRX[idx] = p
	r.fifoRXEntries++
	r.regs[regSTATUS] |= regMask1(bitRX_DR)
	r.updateFifoStatus()
	return true
}

func (r *Radio) popRXEntry() rxPacket {
	p := r.fifoRX[r.fifoRXReadPos]
	r.fifoRXReadPos = (r.fifoRXReadPos + 1) % 3
	r.fifoRXEntries--
	r.updateFifoStatus()
	return p
}

func (r *Radio) addressWidthBytes() uint8 {
	return uint8(r.regs[regSETUP_AW]&0b11) + 2
}

func (r *Radio) dataRateBits() uint64 {
	return r.regs[regRF_SETUP] & (regMask1(bitRF_DR_LOW) | regMask1(bitRF_DR_HIGH))
}

func (r *Radio) dataRateHz() float64 {
	low := r.regs[regRF_SETUP]&regMask1(bitRF_DR_LOW) != 0
	high := r.regs[regRF_SETUP]&regMask1(bitRF_DR_HIGH) != 0
	switch {
	case low:
		return 250e3
	case high:
		return 2e6
	default:
		return 1e6
	}
}

func (r *Radio) crcBytes() uint8 {
	if r.regs[regCONFIG]&regMask1(bitCRCO) != 0 {
		return 2
	}
	return 1
}
