// Package transceiver implements the Transceiver Port (§6): FIFO-drain
// read and queued transmit of 32-bit ARINC-429 words on channels A/B, plus
// the loopback test and label-filter setup boot-contract methods. Grounded
// on the reference pack's poller.Client interface shape (a narrow hardware-facing
// contract with a real and a fake implementation) and, for the real
// adapter, on goburrow/serial's Port for the byte-level transport to the
// transceiver bridge.
package transceiver

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/goburrow/serial"
)

// Channel is the per-transceiver contract the receive pipeline and
// scheduler use. It matches §6's Port: Transceiver.
type Channel interface {
	DataReadyRx1() bool
	DataReadyRx2() bool
	ReadRx1() uint32
	ReadRx2() uint32
	Transmit(word uint32) error
	LoadCtrlRegister(val uint16) bool
	LoopbackTest() bool
	SetupLabelFilter(labels []uint8) bool
}

// Rx1Reader/Rx2Reader adapt one FIFO side of a Channel to the group.Reader
// interface the receive pipeline drains from.
type Rx1Reader struct{ Ch Channel }

func (r Rx1Reader) DataReady() bool { return r.Ch.DataReadyRx1() }
func (r Rx1Reader) ReadWord() uint32 { return r.Ch.ReadRx1() }

type Rx2Reader struct{ Ch Channel }

func (r Rx2Reader) DataReady() bool { return r.Ch.DataReadyRx2() }
func (r Rx2Reader) ReadWord() uint32 { return r.Ch.ReadRx2() }

// loopback test/readback constants, from §6.
const (
	loopbackRx1Pattern uint32 = 0xA5A5A500
	loopbackRx2Pattern uint32 = 0xDA5A5AFF
	loopbackMaxTries          = 50
	labelFilterMaxTries       = 3
	labelFilterCount          = 16
)

// commands sent over the serial bridge to the HI3584-equivalent register
// interface. The exact opcode values are a bridge-protocol detail owned by
// this adapter, not part of the ARINC-429 wire format itself.
const (
	cmdDataReadyRx1 byte = 0x01
	cmdDataReadyRx2 byte = 0x02
	cmdReadRx1      byte = 0x03
	cmdReadRx2      byte = 0x04
	cmdTransmit     byte = 0x05
	cmdLoadCtrlReg  byte = 0x06
	cmdLoopback     byte = 0x07
	cmdLabelFilter  byte = 0x08
)

// SerialChannel is the real Channel adapter: it speaks a small
// request/response protocol over a serial link to a bridge that exposes the
// ARINC-429 transceiver's FIFOs and control registers.
type SerialChannel struct {
	mu   sync.Mutex
	port serial.Port
	name string
}

// SerialConfig mirrors goburrow/serial.Config, named locally so callers
// don't need to import goburrow/serial directly.
type SerialConfig struct {
	Address  string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
}

// OpenSerialChannel opens a real transceiver bridge over a serial port.
func OpenSerialChannel(name string, cfg SerialConfig) (*SerialChannel, error) {
	port, err := serial.Open(&serial.Config{
		Address:  cfg.Address,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
	})
	if err != nil {
		return nil, fmt.Errorf("transceiver %s: open serial %s: %w", name, cfg.Address, err)
	}
	return &SerialChannel{port: port, name: name}, nil
}

// Close releases the underlying serial port.
func (c *SerialChannel) Close() error {
	return c.port.Close()
}

func (c *SerialChannel) request(cmd byte, payload []byte, replyLen int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	frame := append([]byte{cmd}, payload...)
	if _, err := c.port.Write(frame); err != nil {
		return nil, fmt.Errorf("transceiver %s: write cmd %#x: %w", c.name, cmd, err)
	}
	if replyLen == 0 {
		return nil, nil
	}
	reply := make([]byte, replyLen)
	n, err := c.port.Read(reply)
	if err != nil {
		return nil, fmt.Errorf("transceiver %s: read reply for cmd %#x: %w", c.name, cmd, err)
	}
	if n != replyLen {
		return nil, fmt.Errorf("transceiver %s: short reply for cmd %#x: got %d want %d", c.name, cmd, n, replyLen)
	}
	return reply, nil
}

func (c *SerialChannel) DataReadyRx1() bool {
	reply, err := c.request(cmdDataReadyRx1, nil, 1)
	return err == nil && reply[0] != 0
}

func (c *SerialChannel) DataReadyRx2() bool {
	reply, err := c.request(cmdDataReadyRx2, nil, 1)
	return err == nil && reply[0] != 0
}

func (c *SerialChannel) ReadRx1() uint32 {
	reply, err := c.request(cmdReadRx1, nil, 4)
	if err != nil {
		return 0
	}
	return binary.BigEndian.Uint32(reply)
}

func (c *SerialChannel) ReadRx2() uint32 {
	reply, err := c.request(cmdReadRx2, nil, 4)
	if err != nil {
		return 0
	}
	return binary.BigEndian.Uint32(reply)
}

func (c *SerialChannel) Transmit(word uint32) error {
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, word)
	_, err := c.request(cmdTransmit, payload, 0)
	return err
}

func (c *SerialChannel) LoadCtrlRegister(val uint16) bool {
	payload := make([]byte, 2)
	binary.BigEndian.PutUint16(payload, val)
	reply, err := c.request(cmdLoadCtrlReg, payload, 2)
	return err == nil && binary.BigEndian.Uint16(reply) == val
}

// LoopbackTest enables self-test mode, sends a known pattern up to 50
// times, and verifies the rx1/rx2 readback patterns, per §6.
func (c *SerialChannel) LoopbackTest() bool {
	for i := 0; i < loopbackMaxTries; i++ {
		reply, err := c.request(cmdLoopback, nil, 8)
		if err != nil {
			continue
		}
		rx1 := binary.BigEndian.Uint32(reply[0:4])
		rx2 := binary.BigEndian.Uint32(reply[4:8])
		if rx1 == loopbackRx1Pattern && rx2 == loopbackRx2Pattern {
			return true
		}
	}
	return false
}

// SetupLabelFilter writes up to 16 labels and reads them back, retrying up
// to 3 times, per §6.
func (c *SerialChannel) SetupLabelFilter(labels []uint8) bool {
	payload := make([]byte, labelFilterCount)
	copy(payload, labels)

	for attempt := 0; attempt < labelFilterMaxTries; attempt++ {
		reply, err := c.request(cmdLabelFilter, payload, labelFilterCount)
		if err != nil {
			continue
		}
		if string(reply) == string(payload) {
			return true
		}
	}
	return false
}
