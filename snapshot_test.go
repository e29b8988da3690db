package nrf24sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	sim := NewSimulation()
	clock := NewStepClock(testClockFreq)
	r := sim.NewRadio(clock, "r")
	r.regs[regRF_CH] = 17

	snap := r.Snapshot()
	require.Equal(t, "r", snap.Name)
	require.Equal(t, "POWER_DOWN", snap.State)

	data, err := MarshalSnapshot(snap)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	back, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, snap.Name, back.Name)
	require.Equal(t, snap.ID, back.ID)
	require.EqualValues(t, 17, back.Registers[regRF_CH])
}
