// Package label defines the immutable ARINC-429 label configuration table:
// wire-order label conversion, message-type tags, and the per-label
// timing/format attributes shared by the receive pipeline and the
// derived-word engine.
package label

import "fmt"

// MessageType tags how a label's data field is interpreted.
type MessageType int

const (
	BNR MessageType = iota
	BCD
	Discrete
)

func (t MessageType) String() string {
	switch t {
	case BNR:
		return "BNR"
	case BCD:
		return "BCD"
	case Discrete:
		return "Discrete"
	default:
		return "unknown"
	}
}

// Config is one label's immutable configuration. Zero value is never valid;
// use Build to construct and validate one.
type Config struct {
	Label    uint8 // wire order (bit-reversed relative to the printed octal form)
	MsgType  MessageType

	NumSigBits uint8   // BNR: 1..20
	NumSigDigits uint8 // BCD: 1..5
	Resolution   float64
	MinValidValue float64
	MaxValidValue float64
	HasValidRange bool

	NumDiscreteBits uint8 // 0 if unused; BNR/BCD up to 19-(4*digits-1); Discrete 1..19

	MinTransmitIntervalMs uint32
	MaxTransmitIntervalMs uint32
}

// Params is the caller-supplied, octal-labeled form of a Config, converted
// to wire order by Build.
type Params struct {
	OctalLabel int
	MsgType    MessageType

	NumSigBits    uint8
	NumSigDigits  uint8
	Resolution    float64
	MinValidValue float64
	MaxValidValue float64
	HasValidRange bool

	NumDiscreteBits uint8

	MinTransmitIntervalMs uint32
	MaxTransmitIntervalMs uint32
}

// Build validates p and converts its octal label to wire order (invariant 1,
// 2, 3 of the data model).
func Build(p Params) (Config, error) {
	if p.OctalLabel < 0 || p.OctalLabel > 377 {
		return Config{}, fmt.Errorf("label: octal label %03d out of range", p.OctalLabel)
	}
	if p.MinTransmitIntervalMs > p.MaxTransmitIntervalMs {
		return Config{}, fmt.Errorf("label: octal %03d min_transmit_interval_ms %d > max_transmit_interval_ms %d",
			p.OctalLabel, p.MinTransmitIntervalMs, p.MaxTransmitIntervalMs)
	}

	cfg := Config{
		Label:                 FormatLabelNumber(p.OctalLabel),
		MsgType:               p.MsgType,
		NumSigBits:            p.NumSigBits,
		NumSigDigits:          p.NumSigDigits,
		Resolution:            p.Resolution,
		MinValidValue:         p.MinValidValue,
		MaxValidValue:         p.MaxValidValue,
		HasValidRange:         p.HasValidRange,
		NumDiscreteBits:       p.NumDiscreteBits,
		MinTransmitIntervalMs: p.MinTransmitIntervalMs,
		MaxTransmitIntervalMs: p.MaxTransmitIntervalMs,
	}

	switch p.MsgType {
	case BNR:
		if cfg.NumSigBits < 1 || cfg.NumSigBits > 20 {
			return Config{}, fmt.Errorf("label: octal %03d BNR num_sig_bits %d out of [1,20]", p.OctalLabel, cfg.NumSigBits)
		}
	case BCD:
		if cfg.NumSigDigits < 1 || cfg.NumSigDigits > 5 {
			return Config{}, fmt.Errorf("label: octal %03d BCD num_sig_digits %d out of [1,5]", p.OctalLabel, cfg.NumSigDigits)
		}
		if int(cfg.NumSigDigits)*4-1+int(cfg.NumDiscreteBits) > 19 {
			return Config{}, fmt.Errorf("label: octal %03d BCD digits/discrete bits exceed 19-bit data field", p.OctalLabel)
		}
	case Discrete:
		if cfg.NumDiscreteBits < 1 || cfg.NumDiscreteBits > 19 {
			return Config{}, fmt.Errorf("label: octal %03d Discrete num_discrete_bits %d out of [1,19]", p.OctalLabel, cfg.NumDiscreteBits)
		}
	default:
		return Config{}, fmt.Errorf("label: octal %03d unknown message type %v", p.OctalLabel, p.MsgType)
	}

	return cfg, nil
}

// revBitsInByte reverses the bit order within a single byte.
func revBitsInByte(b uint8) uint8 {
	b = (b&0xF0)>>4 | (b&0x0F)<<4
	b = (b&0xCC)>>2 | (b&0x33)<<2
	b = (b&0xAA)>>1 | (b&0x55)<<1
	return b
}

// FormatLabelNumber converts a printed octal label (e.g. 235 meaning the
// digits 2, 3, 5) into its bit-reversed wire-order form, matching the
// hardware's LSB-first label delivery.
func FormatLabelNumber(labelInOctal int) uint8 {
	hundreds := labelInOctal / 100
	tens := (labelInOctal / 10) - hundreds*10
	ones := labelInOctal - (labelInOctal/10)*10
	packed := uint8(hundreds<<6) | uint8(tens<<3) | uint8(ones)
	return revBitsInByte(packed)
}
