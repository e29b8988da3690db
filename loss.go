package nrf24sim

import "math/rand"

// lossRule is one (enabled, 1-in-N divider, lost-count) triple, used
// independently for data packets and for ACKs.
type lossRule struct {
	enabled bool
	divider uint32
	lost    uint64
	rng     *rand.Rand
}

func newLossRule() *lossRule {
	return &lossRule{rng: rand.New(rand.NewSource(1))}
}

// roll returns true if this packet should be dropped, advancing the lost
// counter as a side effect. divider == 0 disables loss for this rule
// regardless of the enabled flag, matching set_lost_packets(0, ...).
func (l *lossRule) roll() bool {
	if !l.enabled || l.divider == 0 {
		return false
	}
	if l.rng.Uint32()%l.divider == 0 {
		l.lost++
		return true
	}
	return false
}

// stats are the process-wide delivery counters spec.md §3 calls for.
type stats struct {
	packetsSent      uint64
	acksSent         uint64
	noReceiverFound  uint64
	rxFifoFullDrops  uint64
}
