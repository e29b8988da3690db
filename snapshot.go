package nrf24sim

import (
	"github.com/fxamacker/cbor/v2"
)

// RadioSnapshot is a point-in-time diagnostic dump of a radio's visible
// and internal state, for test fixtures and host-side debugging ("dump
// radio state at cycle N"). It is not part of the SPI-visible protocol.
type RadioSnapshot struct {
	Name          string    `cbor:"name"`
	ID            string    `cbor:"id"`
	State         string    `cbor:"state"`
	Registers     [30]uint64 `cbor:"registers"`
	FifoTXEntries uint8     `cbor:"fifo_tx_entries"`
	FifoRXEntries uint8     `cbor:"fifo_rx_entries"`
	PID           uint8     `cbor:"pid"`
	CE            bool      `cbor:"ce"`
	CSN           bool      `cbor:"csn"`
	IRQ           bool      `cbor:"irq"`
	NbRetries     uint8     `cbor:"nb_retries"`
	TxInProgress  bool      `cbor:"tx_in_progress"`
}

// Snapshot captures the radio's current state.
func (r *Radio) Snapshot() RadioSnapshot {
	return RadioSnapshot{
		Name:          r.name,
		ID:            r.id.String(),
		State:         r.state.String(),
		Registers:     r.regs,
		FifoTXEntries: r.fifoTXEntries,
		FifoRXEntries: r.fifoRXEntries,
		PID:           r.pid,
		CE:            r.pinCE,
		CSN:           r.pinCSN,
		IRQ:           r.pinIRQ,
		NbRetries:     r.nbRetries,
		TxInProgress:  r.txInProgress,
	}
}

// MarshalSnapshot encodes a RadioSnapshot to CBOR.
func MarshalSnapshot(s RadioSnapshot) ([]byte, error) {
	return cbor.Marshal(s)
}

// UnmarshalSnapshot decodes a CBOR-encoded RadioSnapshot.
func UnmarshalSnapshot(data []byte) (RadioSnapshot, error) {
	var s RadioSnapshot
	err := cbor.Unmarshal(data, &s)
	return s, err
}
