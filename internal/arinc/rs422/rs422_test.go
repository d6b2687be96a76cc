package rs422

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePort struct {
	readBuf []byte
	written [][]byte
}

func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.readBuf) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.readBuf)
	p.readBuf = p.readBuf[n:]
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	cp := append([]byte(nil), b...)
	p.written = append(p.written, cp)
	return len(b), nil
}

func (p *fakePort) DataReady() bool { return len(p.readBuf) > 0 }

func TestExtractPackARINCWords_RoundTrip(t *testing.T) {
	words := []uint32{0x01020304, 0xAABBCCDD}
	packed := PackARINCWords(words)

	got, err := ExtractARINCWords(packed)
	require.NoError(t, err)
	assert.Equal(t, words, got)
}

func TestExtractARINCWords_RejectsShortPayload(t *testing.T) {
	_, err := ExtractARINCWords([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrShortFrame)
}

func TestFramer_ReadFrame_ExactLength(t *testing.T) {
	port := &fakePort{readBuf: []byte{1, 2, 3, 4, 5, 6, 7}}
	f := New(port)

	frame, err := f.ReadFrame(VersionRequestLen)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7}, frame)
}

func TestFramer_ReadFrame_ShortReadErrors(t *testing.T) {
	port := &fakePort{readBuf: []byte{1, 2, 3}}
	f := New(port)

	_, err := f.ReadFrame(VersionRequestLen)
	assert.Error(t, err)
}

func TestFramer_WriteFrame(t *testing.T) {
	port := &fakePort{}
	f := New(port)

	require.NoError(t, f.WriteFrame([]byte{0xAA, 0x16}))
	assert.Equal(t, [][]byte{{0xAA, 0x16}}, port.written)
}
