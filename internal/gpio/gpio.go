// Package gpio implements the ambient fault-output pin and strap-input
// pins (§4.10, §6 boot contract): the fault pin is pulsed high during each
// scheduler tick and low at tick end, and the strap pins are read once at
// boot to select maintenance mode. Grounded on the pack's periph.io usage
// (transport/spi and transport/i2c in the reference PN532 driver) for
// host.Init()-then-open-a-line style hardware access, adapted here from an
// SPI/I2C bus to a handful of individual GPIO lines.
package gpio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// FaultPin is the boot-fault-latch output the scheduler pulses each tick
// while it is running.
type FaultPin interface {
	High() error
	Low() error
}

// StrapReader reads the maintenance-mode strap word once at boot.
type StrapReader interface {
	ReadStrapOctal() (uint8, error)
}

// RealFaultPin drives a real GPIO output line.
type RealFaultPin struct {
	line gpio.PinIO
}

// OpenFaultPin initializes the periph.io host registry and opens the named
// GPIO line as the fault-output pin.
func OpenFaultPin(name string) (*RealFaultPin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: init periph host: %w", err)
	}
	line := gpioreg.ByName(name)
	if line == nil {
		return nil, fmt.Errorf("gpio: no such pin %q", name)
	}
	return &RealFaultPin{line: line}, nil
}

func (p *RealFaultPin) High() error {
	if err := p.line.Out(gpio.High); err != nil {
		return fmt.Errorf("gpio: drive %s high: %w", p.line.Name(), err)
	}
	return nil
}

func (p *RealFaultPin) Low() error {
	if err := p.line.Out(gpio.Low); err != nil {
		return fmt.Errorf("gpio: drive %s low: %w", p.line.Name(), err)
	}
	return nil
}

// RealStrapReader reads a set of GPIO input lines as an octal strap word,
// one bit per line, matching the original firmware's strap-pin word (§4.10:
// "read the strap-pin word").
type RealStrapReader struct {
	lines []gpio.PinIO
}

// OpenStrapReader opens the named GPIO lines, most-significant line first.
func OpenStrapReader(names []string) (*RealStrapReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: init periph host: %w", err)
	}
	lines := make([]gpio.PinIO, 0, len(names))
	for _, n := range names {
		line := gpioreg.ByName(n)
		if line == nil {
			return nil, fmt.Errorf("gpio: no such pin %q", n)
		}
		if err := line.In(gpio.PullDown, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("gpio: configure %s as input: %w", n, err)
		}
		lines = append(lines, line)
	}
	return &RealStrapReader{lines: lines}, nil
}

func (r *RealStrapReader) ReadStrapOctal() (uint8, error) {
	var word uint8
	for i, line := range r.lines {
		if i >= 8 {
			break
		}
		if line.Read() == gpio.High {
			word |= 1 << uint(len(r.lines)-1-i)
		}
	}
	return word, nil
}

// FakeFaultPin is an in-memory FaultPin for tests and the maintenance
// shell's self-check command.
type FakeFaultPin struct {
	IsHigh bool
}

func (p *FakeFaultPin) High() error { p.IsHigh = true; return nil }
func (p *FakeFaultPin) Low() error  { p.IsHigh = false; return nil }

// FakeStrapReader is a fixed-value StrapReader for tests.
type FakeStrapReader struct {
	Octal uint8
}

func (r FakeStrapReader) ReadStrapOctal() (uint8, error) { return r.Octal, nil }
