package swver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_SeedLocalCRC_WritesASCIIHexAndRawBytes(t *testing.T) {
	var tbl Table
	tbl.SeedLocalCRC(0x04C11DB7)
	snap := tbl.Snapshot()

	assert.Equal(t, byte('0'), snap[subsystemAFC004][0])
	assert.Equal(t, byte(0xB7), snap[subsystemAFC004][8])
	assert.Equal(t, byte(0x1D), snap[subsystemAFC004][9])
}

func TestTable_NextWord_WalksAndWraps(t *testing.T) {
	var tbl Table
	for i := 0; i < numSubsystems*numMessages; i++ {
		tbl.NextWord(0)
	}
	// after one full walk it should be back at sysIdx=0, msgIdx=0.
	word := tbl.NextWord(2)
	assert.Equal(t, uint32(0x7F), word&0x7F)
	assert.Equal(t, uint32(2), (word>>8)&0x3)
}

func TestTable_SetSubsystemByte_OutOfRange(t *testing.T) {
	var tbl Table
	assert.Error(t, tbl.SetSubsystemByte(3, 0, 0))
	assert.Error(t, tbl.SetSubsystemByte(0, 16, 0))
}

func TestGatherer_PendingToAwaitingToDone(t *testing.T) {
	sent := 0
	send := func() error { sent++; return nil }
	reply := []byte("x")
	replied := false
	pollReply := func() ([]byte, bool) {
		if replied {
			return reply, true
		}
		return nil, false
	}
	g := NewGatherer(send, pollReply)

	state, r := g.Poll(0)
	assert.Equal(t, GatherAwaitingReply, state)
	assert.Nil(t, r)
	assert.Equal(t, 1, sent)

	replied = true
	state, r = g.Poll(1)
	require.Equal(t, GatherDone, state)
	assert.Equal(t, reply, r)
}

func TestGatherer_RetriesThenFails(t *testing.T) {
	send := func() error { return nil }
	pollReply := func() ([]byte, bool) { return nil, false }
	g := NewGatherer(send, pollReply)

	now := uint32(0)
	for i := 0; i < maxRetries; i++ {
		state, _ := g.Poll(now)
		require.Equal(t, GatherAwaitingReply, state)
		now += retrySpacingMs
		state, _ = g.Poll(now)
		require.Equal(t, GatherPending, state)
	}
	state, _ := g.Poll(now)
	assert.Equal(t, GatherFailed, state)
}

func TestGatherer_State_DoesNotAdvance(t *testing.T) {
	g := NewGatherer(func() error { return nil }, func() ([]byte, bool) { return nil, false })
	assert.Equal(t, GatherPending, g.State())
	assert.Equal(t, GatherPending, g.State())
}
