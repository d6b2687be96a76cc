// Package rs422 frames and deframes the byte stream to and from the air
// data computer (§4.8). It is grounded on the shape of the reference
// pack's ingest wire client (internal/writer/ingest/client.go): a small
// fixed-length header plus payload, read and written as one unit per call,
// transport-agnostic behind an io.ReadWriter.
package rs422

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Known frame lengths from the reference firmware's RS-422 message
// configuration table.
const (
	VersionRequestLen = 7
	SWVersionReplyLen = 0x19
	HWVersionReplyLen = 9
)

var ErrShortFrame = errors.New("rs422: short frame")

// Port is the transport the framer needs: a byte stream plus a way to know
// data is waiting, matching the Transceiver Port's data-ready style.
type Port interface {
	io.Reader
	io.Writer
	DataReady() bool
}

// Framer reads and writes fixed-length RS-422 frames over a Port.
type Framer struct {
	port Port
}

// New wraps a Port with frame-level read/write.
func New(port Port) *Framer {
	return &Framer{port: port}
}

// ReadFrame blocks until exactly expectedLen bytes have been read, or returns
// an error. It does not consult DataReady itself.
func (f *Framer) ReadFrame(expectedLen int) ([]byte, error) {
	buf := make([]byte, expectedLen)
	n, err := io.ReadFull(f.port, buf)
	if err != nil {
		return nil, fmt.Errorf("rs422: read frame: %w", err)
	}
	if n != expectedLen {
		return nil, ErrShortFrame
	}
	return buf, nil
}

// WriteFrame writes b as one frame.
func (f *Framer) WriteFrame(b []byte) error {
	n, err := f.port.Write(b)
	if err != nil {
		return fmt.Errorf("rs422: write frame: %w", err)
	}
	if n != len(b) {
		return fmt.Errorf("rs422: short write: wrote %d of %d bytes", n, len(b))
	}
	return nil
}

// DataReady reports whether the underlying port has buffered bytes.
func (f *Framer) DataReady() bool {
	return f.port.DataReady()
}

// ExtractARINCWords unpacks little-endian-packed 32-bit ARINC words from an
// ADC computed-data/status frame payload, per §4.8's wire-format
// decomposition.
func ExtractARINCWords(payload []byte) ([]uint32, error) {
	if len(payload)%4 != 0 {
		return nil, fmt.Errorf("%w: payload length %d not a multiple of 4", ErrShortFrame, len(payload))
	}
	words := make([]uint32, 0, len(payload)/4)
	for i := 0; i < len(payload); i += 4 {
		words = append(words, binary.LittleEndian.Uint32(payload[i:i+4]))
	}
	return words, nil
}

// PackARINCWords is the inverse of ExtractARINCWords, used to build the
// reply frame the scheduler sends to the ADC.
func PackARINCWords(words []uint32) []byte {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

// NCD constants used by the 20Hz ADC reply task, hardcoded in the reference
// firmware because the AFC004 has no GNSS/VDOP/VFOM source of its own.
const (
	GNSSAltNCD uint32 = 0x2000007C
	VDOPNCD    uint32 = 0x0000007A
	VFOMNCD    uint32 = 0x2000007A

	Status271Failure uint32 = 0x6000009D
)
