package nrf24sim

// Register addresses, as clocked after an R_REGISTER/W_REGISTER opcode's
// low 5 bits. 0x18-0x1B are reserved on the real chip and carry a
// declared length of 0 so the SPI decoder can reject access to them.
const (
	regCONFIG      = 0x00
	regEN_AA       = 0x01
	regEN_RXADDR   = 0x02
	regSETUP_AW    = 0x03
	regSETUP_RETR  = 0x04
	regRF_CH       = 0x05
	regRF_SETUP    = 0x06
	regSTATUS      = 0x07
	regOBSERVE_TX  = 0x08
	regRPD         = 0x09
	regRX_ADDR_P0  = 0x0A
	regRX_ADDR_P1  = 0x0B
	regRX_ADDR_P2  = 0x0C
	regRX_ADDR_P3  = 0x0D
	regRX_ADDR_P4  = 0x0E
	regRX_ADDR_P5  = 0x0F
	regTX_ADDR     = 0x10
	regRX_PW_P0    = 0x11
	regRX_PW_P1    = 0x12
	regRX_PW_P2    = 0x13
	regRX_PW_P3    = 0x14
	regRX_PW_P4    = 0x15
	regRX_PW_P5    = 0x16
	regFIFO_STATUS = 0x17
	// 0x18-0x1B reserved
	regDYNPD   = 0x1C
	regFEATURE = 0x1D

	numRegisters = 30
)

// regLenBytes gives the declared byte width of each register, little-endian
// on the wire. Reserved addresses carry length 0.
var regLenBytes = [numRegisters]uint8{
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x00-0x09
	5, 5, 1, 1, 1, 1, // 0x0A-0x0F
	5, 1, 1, 1, 1, 1, 1, 1, // 0x10-0x17
	0, 0, 0, 0, // 0x18-0x1B reserved
	1, 1, // 0x1C-0x1D
}

// Bit positions within CONFIG.
const (
	bitMASK_RX_DR = 6
	bitMASK_TX_DS = 5
	bitMASK_MAX_RT = 4
	bitEN_CRC     = 3
	bitCRCO       = 2
	bitPWR_UP     = 1
	bitPRIM_RX    = 0
)

// Bit positions within EN_AA / EN_RXADDR (pipe 0-5, same layout for both).
const (
	bitENAA_P0 = 0
	bitERX_P0  = 0
)

// Bit field offsets within SETUP_AW / SETUP_RETR.
const (
	shiftAW  = 0 // 1:0
	shiftARD = 4 // 7:4
	shiftARC = 0 // 3:0
)

// Bit positions within RF_SETUP.
const (
	bitRF_DR_LOW  = 5
	bitRF_DR_HIGH = 3
	shiftRF_PWR   = 1 // 2:1
)

// Bit positions/fields within STATUS.
const (
	bitRX_DR    = 6
	bitTX_DS    = 5
	bitMAX_RT   = 4
	shiftRX_P_NO = 1 // 3:1
	bitTX_FULL  = 0

	rxPNoEmpty = 0b111 // RX_P_NO value when RX FIFO is empty
)

// Bit fields within OBSERVE_TX.
const (
	shiftPLOS_CNT = 4 // 7:4
	shiftARC_CNT  = 0 // 3:0
)

// Bit positions within FIFO_STATUS.
const (
	bitFIFO_TX_REUSE = 6
	bitFIFO_TX_FULL  = 5
	bitFIFO_TX_EMPTY = 4
	bitFIFO_RX_FULL  = 1
	bitFIFO_RX_EMPTY = 0
)

// Bit positions within FEATURE.
const (
	bitEN_DPL     = 2
	bitEN_ACK_PAY = 1
	bitEN_DYN_ACK = 0
)

func regMask1(bit uint) uint64 { return 1 << bit }

// setDefaultRegisters installs the datasheet power-on values (spec.md §6).
func setDefaultRegisters(regs *[numRegisters]uint64) {
	regs[regCONFIG] = regMask1(bitEN_CRC)
	regs[regEN_AA] = 0x3F
	regs[regEN_RXADDR] = 0x03
	regs[regSETUP_AW] = 0b11 << shiftAW
	regs[regSETUP_RETR] = 0b0011 << shiftARC // ARC=3, ARD=0
	regs[regRF_CH] = 2
	regs[regRF_SETUP] = regMask1(bitRF_DR_HIGH) | (0b11 << shiftRF_PWR)
	regs[regSTATUS] = rxPNoEmpty << shiftRX_P_NO
	regs[regOBSERVE_TX] = 0
	regs[regRPD] = 0
	regs[regRX_ADDR_P0] = 0xE7E7E7E7E7
	regs[regRX_ADDR_P1] = 0xC2C2C2C2C2
	regs[regRX_ADDR_P2] = 0xC3
	regs[regRX_ADDR_P3] = 0xC4
	regs[regRX_ADDR_P4] = 0xC5
	regs[regRX_ADDR_P5] = 0xC6
	regs[regTX_ADDR] = 0xE7E7E7E7E7
	regs[regRX_PW_P0] = 0
	regs[regRX_PW_P1] = 0
	regs[regRX_PW_P2] = 0
	regs[regRX_PW_P3] = 0
	regs[regRX_PW_P4] = 0
	regs[regRX_PW_P5] = 0
	regs[regFIFO_STATUS] = regMask1(bitFIFO_TX_EMPTY) | regMask1(bitFIFO_RX_EMPTY)
	regs[regDYNPD] = 0
	regs[regFEATURE] = 0
}
