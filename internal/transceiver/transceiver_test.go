package transceiver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFake_Rx1Rx2QueueDrain(t *testing.T) {
	f := &Fake{Rx1Queue: []uint32{1, 2}, Rx2Queue: []uint32{9}}

	assert.True(t, f.DataReadyRx1())
	assert.Equal(t, uint32(1), f.ReadRx1())
	assert.Equal(t, uint32(2), f.ReadRx1())
	assert.False(t, f.DataReadyRx1())
	assert.Equal(t, uint32(0), f.ReadRx1())

	assert.True(t, f.DataReadyRx2())
	assert.Equal(t, uint32(9), f.ReadRx2())
	assert.False(t, f.DataReadyRx2())
}

func TestFake_TransmitAppends(t *testing.T) {
	f := &Fake{}
	require := assert.New(t)

	require.NoError(f.Transmit(0xABCD))
	require.NoError(f.Transmit(0x1234))
	require.Equal([]uint32{0xABCD, 0x1234}, f.Transmitted)
}

func TestFake_BootContractFlagsPassThrough(t *testing.T) {
	f := &Fake{CtrlRegOK: true, LoopbackOK: true, LabelFilterOK: false}

	assert.True(t, f.LoadCtrlRegister(7))
	assert.True(t, f.LoopbackTest())
	assert.False(t, f.SetupLabelFilter([]uint8{1, 2}))
}

func TestRx1Rx2Reader_AdaptToGroupReader(t *testing.T) {
	f := &Fake{Rx1Queue: []uint32{42}, Rx2Queue: []uint32{7}}
	r1 := Rx1Reader{Ch: f}
	r2 := Rx2Reader{Ch: f}

	assert.True(t, r1.DataReady())
	assert.Equal(t, uint32(42), r1.ReadWord())
	assert.True(t, r2.DataReady())
	assert.Equal(t, uint32(7), r2.ReadWord())
}

func TestFakeADCPort_ReadWriteDataReady(t *testing.T) {
	p := &FakeADCPort{ReadBuf: []byte{1, 2, 3, 4}}
	assert.True(t, p.DataReady())

	buf := make([]byte, 4)
	n, err := p.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)
	assert.False(t, p.DataReady())

	n, err = p.Write([]byte{0xAA, 0xBB})
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, [][]byte{{0xAA, 0xBB}}, p.Written)
}
