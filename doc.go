// Package nrf24sim models the SPI/register/FIFO interface, power/RX/TX
// state machine, and Enhanced ShockBurst packet protocol of the Nordic
// nRF24L01+ radio, for embedding inside an MCU simulator so firmware
// written against the real chip can be exercised without hardware.
//
// A Simulation owns the process-wide module registry: every Radio
// created against it is visible to every other radio's air dispatch. A
// Radio is driven entirely by its host: pin edges (SetCE, CSN), SPI
// bytes (SPIExchange), and the Clock it was created with, which the host
// must pump forward for settling delays, airtime, and auto-retransmit
// timing to elapse.
package nrf24sim
