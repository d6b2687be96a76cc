package transceiver

import (
	"fmt"

	"github.com/goburrow/serial"
)

// SerialADCPort adapts a goburrow/serial.Port to rs422.Port: the RS-422
// link to the air data computer is a plain byte stream, unlike the
// request/response bridge protocol the ARINC-429 SerialChannel speaks.
type SerialADCPort struct {
	port serial.Port
}

// OpenSerialADCPort opens the RS-422 serial device.
func OpenSerialADCPort(cfg SerialConfig) (*SerialADCPort, error) {
	port, err := serial.Open(&serial.Config{
		Address:  cfg.Address,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
	})
	if err != nil {
		return nil, fmt.Errorf("adc link: open serial %s: %w", cfg.Address, err)
	}
	return &SerialADCPort{port: port}, nil
}

func (p *SerialADCPort) Read(b []byte) (int, error)  { return p.port.Read(b) }
func (p *SerialADCPort) Write(b []byte) (int, error) { return p.port.Write(b) }

// DataReady always reports true; goburrow/serial.Port.Read already blocks
// until data (or the port's configured timeout) arrives, so the framer's
// io.ReadFull can rely on Read itself rather than a separate poll.
func (p *SerialADCPort) DataReady() bool { return true }

func (p *SerialADCPort) Close() error { return p.port.Close() }

// FakeADCPort is an in-memory rs422.Port for tests and the maintenance
// shell's self-check command, following the same fake-client style as Fake.
type FakeADCPort struct {
	ReadBuf  []byte
	Written  [][]byte
}

func (p *FakeADCPort) Read(b []byte) (int, error) {
	n := copy(b, p.ReadBuf)
	p.ReadBuf = p.ReadBuf[n:]
	return n, nil
}

func (p *FakeADCPort) Write(b []byte) (int, error) {
	cp := make([]byte, len(b))
	copy(cp, b)
	p.Written = append(p.Written, cp)
	return len(b), nil
}

func (p *FakeADCPort) DataReady() bool { return len(p.ReadBuf) > 0 }
