package nrf24sim

// runReactor drives reactorStep to a fixpoint. The longest known
// edge-chain takes three transitions (after an ACK timeout with retries
// exhausted: RX_MODE_FOR_ACK -> STANDBY2 -> MAX_RT -> STANDBY1, then on
// to TX_SETTLING while CE is high and the packet is still queued); the
// bound guards against a mistake turning this into an infinite loop
// rather than modeling any real need for more passes.
func (r *Radio) runReactor() {
	if r.inReactor {
		return
	}
	r.inReactor = true
	defer func() { r.inReactor = false }()

	const maxIterations = 8
	for i := 0; i < maxIterations; i++ {
		if !r.reactorStep() {
			break
		}
	}
	r.recomputeIRQ()
}

func (r *Radio) setState(s radioState) { r.state = s }

func (r *Radio) reactorStep() bool {
	pwrUp := r.regs[regCONFIG]&regMask1(bitPWR_UP) != 0
	primRX := r.regs[regCONFIG]&regMask1(bitPRIM_RX) != 0
	ce := r.pinCE
	txNonEmpty := r.fifoTXEntries > 0

	if !pwrUp {
		if r.state == statePowerDown {
			return false
		}
		r.clock.Cancel(TimerSettle)
		r.clock.Cancel(TimerTXFinished)
		r.clock.Cancel(TimerARDElapsed)
		r.clock.Cancel(TimerRxAckTimeout)
		r.txInProgress = false
		r.packetBeingSentValid = false
		r.setState(statePowerDown)
		return true
	}

	switch r.state {
	case statePowerDown:
		r.setState(stateStartUp)
		r.clock.ScheduleMicros(TimerSettle, 1500, func() {
			r.setState(stateStandby1)
			r.runReactor()
		})
		return true

	case stateStandby1:
		switch {
		case !primRX && ce && txNonEmpty:
			r.beginTXSettle()
			return true
		case primRX && ce:
			r.beginRXSettle()
			return true
		case !primRX && ce && !txNonEmpty:
			r.setState(stateStandby2)
			return true
		}

	case stateRxMode:
		if !ce || !primRX {
			r.setState(stateStandby1)
			return true
		}

	case stateTxMode:
		if r.txFinished {
			r.txFinished = false
			if r.txWaitForAck {
				r.beginRXSettleForAck()
			} else {
				r.setState(stateStandby1)
			}
			return true
		}

	case stateStandby2:
		if r.ardHasElapsed {
			r.ardHasElapsed = false
			arc := uint8((r.regs[regSETUP_RETR] >> shiftARC) & 0b1111)
			if r.nbRetries < arc {
				r.nbRetries++
				r.regs[regOBSERVE_TX] = (r.regs[regOBSERVE_TX] &^ (uint64(0b1111) << shiftARC_CNT)) |
					(uint64(r.nbRetries)&0b1111)<<shiftARC_CNT
				r.beginTXSettle()
			} else {
				r.regs[regSTATUS] |= regMask1(bitMAX_RT)
				r.recomputeIRQ()
				r.txWaitForAck = false
				r.nbRetries = 0
				r.setState(stateStandby1)
			}
			return true
		}
		if !primRX && ce && txNonEmpty && !r.txWaitForAck {
			r.beginTXSettle()
			return true
		}

	case stateRxModeForAck:
		if r.txAckReceived {
			r.txAckReceived = false
			r.txWaitForAck = false
			r.nbRetries = 0
			r.setState(stateStandby1)
			return true
		}
		if r.rxAckTimeout {
			r.rxAckTimeout = false
			r.setState(stateStandby2)
			return true
		}

	case stateTxModeForAck:
		if r.txFinished {
			r.txFinished = false
			if ce {
				r.beginRXSettle()
			} else {
				r.setState(stateStandby1)
			}
			return true
		}

	case stateRxSettling, stateTxSettling, stateRxSettlingForAck, stateTxSettlingForAck, stateStartUp:
		// waiting on a pending settle timer
	}
	return false
}

func (r *Radio) beginTXSettle() {
	r.setState(stateTxSettling)
	r.clock.ScheduleMicros(TimerSettle, 130, func() {
		r.setState(stateTxMode)
		r.doTX()
		r.runReactor()
	})
}

func (r *Radio) beginRXSettle() {
	r.setState(stateRxSettling)
	r.clock.ScheduleMicros(TimerSettle, 130, func() {
		r.setState(stateRxMode)
		r.runReactor()
	})
}

func (r *Radio) beginRXSettleForAck() {
	r.setState(stateRxSettlingForAck)
	r.clock.ScheduleMicros(TimerSettle, 130, func() {
		r.setState(stateRxModeForAck)
		r.clock.ScheduleMicros(TimerRxAckTimeout, 250, func() {
			r.onRxAckTimeout()
		})
		r.runReactor()
	})
}

// doTX snapshots the head TX FIFO entry into packet_being_sent and
// schedules the TX-finished callback after its simulated airtime.
func (r *Radio) doTX() {
	pkt := r.fifoTX[0]
	r.packetBeingSent = pkt
	r.packetBeingSentValid = true
	r.txInProgress = true

	crc := uint64(r.crcBytes())
	bits := 8*(1+uint64(pkt.addrBytes)+uint64(pkt.length)+crc) + 9
	airtimeUs := float64(bits) / r.dataRateHz() * 1e6
	r.clock.ScheduleMicros(TimerTXFinished, airtimeUs, func() {
		r.completeRegularTX()
	})
}

// doTXAck sends an ACK on behalf of the PRX role after a 130us settle,
// carrying a queued ack-payload tagged for incomingPipe if FEATURE.EN_ACK_PAY
// is set and one was queued, else an empty ACK.
func (r *Radio) doTXAck(incomingPipe uint8) {
	var payload [32]byte
	var length uint8
	if r.regs[regFEATURE]&regMask1(bitEN_ACK_PAY) != 0 {
		for i := uint8(0); i < r.fifoTXEntries; i++ {
			e := &r.fifoTX[i]
			if e.kind == packetAckPayload && e.pipe == incomingPipe {
				payload = e.payload
				length = e.length
				r.removeTXAt(i)
				break
			}
		}
	}
	r.packetBeingSent = txPacket{kind: packetAckPayload, pipe: incomingPipe, length: length, payload: payload}
	r.packetBeingSentValid = true
	r.txInProgress = true

	crc := uint64(r.crcBytes())
	bits := 8*(1+uint64(length)+crc) + 9
	airtimeUs := float64(bits) / r.dataRateHz() * 1e6
	r.clock.ScheduleMicros(TimerTXFinished, airtimeUs, func() {
		r.completeAckTX()
	})
}

func (r *Radio) removeTXAt(idx uint8) {
	for i := idx; i+1 < r.fifoTXEntries; i++ {
		r.fifoTX[i] = r.fifoTX[i+1]
	}
	r.fifoTXEntries--
	r.updateFifoStatus()
}

// completeRegularTX implements spec's "On TX completion (regular packet)":
// loss roll, air dispatch, then either the ARD-wait path or the
// immediate-success path depending on SETUP_RETR.ARC.
func (r *Radio) completeRegularTX() {
	if !r.sim.lossRollData() {
		r.sim.dispatch(r)
	}
	r.txInProgress = false
	r.txFinished = true

	arc := uint8((r.regs[regSETUP_RETR] >> shiftARC) & 0b1111)
	if arc > 0 {
		r.txWaitForAck = true
		ard := uint8((r.regs[regSETUP_RETR] >> shiftARD) & 0b1111)
		delay := float64(ard+1) * 250.0
		r.clock.ScheduleMicros(TimerARDElapsed, delay, func() {
			r.onARDElapsed()
		})
	} else {
		r.popTXEntry()
		r.regs[regSTATUS] |= regMask1(bitTX_DS)
		r.recomputeIRQ()
		r.sim.stats.packetsSent++
	}
	r.writeTrace("TX", r.packetBeingSent.length)
	r.packetBeingSentValid = false
	r.runReactor()
}

// completeAckTX implements spec's "On ACK-TX completion (from PRX)".
func (r *Radio) completeAckTX() {
	r.txInProgress = false
	r.txFinished = true

	peer := r.rxSendAckTo
	if peer != nil {
		peer.clock.Cancel(TimerARDElapsed)
		peer.clock.Cancel(TimerRxAckTimeout)
		peer.txAckReceived = true
		peer.regs[regSTATUS] |= regMask1(bitTX_DS)
		peer.popTXEntry()
		peer.recomputeIRQ()
		r.sim.stats.acksSent++

		if r.packetBeingSentValid && r.packetBeingSent.length > 0 {
			rx := rxPacket{pipe: r.packetBeingSent.pipe, length: r.packetBeingSent.length, payload: r.packetBeingSent.payload}
			if !peer.pushRXEntry(rx) {
				r.sim.stats.rxFifoFullDrops++
			}
		}
		peer.txReceiveAckFrom = nil
		peer.runReactor()
	}
	r.rxSendAckTo = nil

	r.writeTrace("ACK", r.packetBeingSent.length)
	r.packetBeingSentValid = false
	r.runReactor()
}

// onARDElapsed is the PTX-side auto-retransmit-delay watchdog.
func (r *Radio) onARDElapsed() {
	r.ardHasElapsed = true
	peer := r.txReceiveAckFrom
	if peer != nil && (peer.state == stateTxSettlingForAck || peer.state == stateTxModeForAck) {
		peer.clock.Cancel(TimerSettle)
		peer.clock.Cancel(TimerTXFinished)
		peer.setState(stateStandby1)
		peer.packetBeingSentValid = false
		peer.rxSendAckTo = nil
		r.rxAckTimeout = true
	}
	r.runReactor()
}

// onRxAckTimeout is the 250us watchdog started on entering RX_MODE_FOR_ACK.
func (r *Radio) onRxAckTimeout() {
	peer := r.txReceiveAckFrom
	peerTransmitting := peer != nil && (peer.state == stateTxSettlingForAck || peer.state == stateTxModeForAck)
	if r.ardHasElapsed || !peerTransmitting {
		r.rxAckTimeout = true
	}
	r.runReactor()
	r.runReactor()
}
