package nrf24sim

// dispatch routes a just-completed regular TX to at most one eligible
// receiver in the registry and, if auto-ACK applies, arranges the return
// ACK. Only the first matching peer is used even if several would match
// (spec: "the design does not forbid multiple but only the first match
// of each pipe is used").
func (s *Simulation) dispatch(sender *Radio) {
	if !sender.packetBeingSentValid || sender.packetBeingSent.kind != packetRegular {
		return
	}
	pkt := sender.packetBeingSent
	senderRate := sender.dataRateBits()
	senderCRCO := sender.regs[regCONFIG] & regMask1(bitCRCO)

	for _, peer := range s.registry {
		if peer == sender {
			continue
		}
		if peer.state != stateRxMode {
			continue
		}
		if peer.regs[regRF_CH] != sender.regs[regRF_CH] {
			continue
		}
		if peer.dataRateBits() != senderRate {
			continue
		}
		if peer.regs[regCONFIG]&regMask1(bitCRCO) != senderCRCO {
			continue
		}
		pipe, ok := matchPipe(peer, pkt.addr, pkt.addrBytes)
		if !ok {
			continue
		}

		s.deliverToPeer(sender, peer, pipe, pkt)
		return
	}

	s.stats.noReceiverFound++
	plos := (sender.regs[regOBSERVE_TX] >> shiftPLOS_CNT) & 0b1111
	if plos < 0b1111 {
		plos++
	}
	sender.regs[regOBSERVE_TX] = (sender.regs[regOBSERVE_TX] &^ (uint64(0b1111) << shiftPLOS_CNT)) | (plos << shiftPLOS_CNT)
}

func (s *Simulation) deliverToPeer(sender, peer *Radio, pipe uint8, pkt txPacket) {
	rx := rxPacket{pid: pkt.pid, pipe: pipe, length: pkt.length, payload: pkt.payload}

	duplicate := peer.lastRXValid && peer.lastRX.equalPayload(&rx)
	if !duplicate {
		if peer.pushRXEntry(rx) {
			peer.lastRX = rx
			peer.lastRXValid = true
		} else {
			s.stats.rxFifoFullDrops++
			s.log(LevelWarning, peer.name, "RX FIFO full, dropping inbound packet on pipe %d", pipe)
		}
	}

	if sender.regs[regEN_AA]&regMask1(uint(pipe)) == 0 {
		return
	}
	if s.lossRollAck() {
		return
	}
	peer.rxSendAckTo = sender
	sender.txReceiveAckFrom = peer
	s.handleTxAck(peer, pipe)
}

// handleTxAck puts peer into TX_SETTLING_FOR_ACK -> TX_MODE_FOR_ACK after
// the usual 130us settle, from which it transmits the return ACK.
func (s *Simulation) handleTxAck(peer *Radio, incomingPipe uint8) {
	peer.setState(stateTxSettlingForAck)
	peer.clock.ScheduleMicros(TimerSettle, 130, func() {
		peer.setState(stateTxModeForAck)
		peer.doTXAck(incomingPipe)
		peer.runReactor()
	})
}

// matchPipe derives peer's six pipe addresses (pipes 2-5 inherit the top
// w-1 bytes of pipe 1 and substitute their own low byte) and returns the
// first enabled pipe whose masked address equals addr.
func matchPipe(peer *Radio, addr uint64, w uint8) (uint8, bool) {
	mask := addressMask(w)

	if peer.regs[regRX_ADDR_P0]&mask == addr && peer.regs[regEN_RXADDR]&regMask1(0) != 0 {
		return 0, true
	}
	p1full := peer.regs[regRX_ADDR_P1]
	if p1full&mask == addr && peer.regs[regEN_RXADDR]&regMask1(1) != 0 {
		return 1, true
	}

	top := p1full >> 8
	lowByteRegs := [4]int{regRX_ADDR_P2, regRX_ADDR_P3, regRX_ADDR_P4, regRX_ADDR_P5}
	for i, reg := range lowByteRegs {
		pipe := uint8(2 + i)
		candidate := ((top << 8) | (peer.regs[reg] & 0xFF)) & mask
		if candidate == addr && peer.regs[regEN_RXADDR]&regMask1(uint(pipe)) != 0 {
			return pipe, true
		}
	}
	return 0, false
}

func addressMask(w uint8) uint64 {
	if w >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << (8 * w)) - 1
}
