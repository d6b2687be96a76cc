// Package codec converts between raw 32-bit ARINC-429 words and typed
// message fields (BNR, BCD, Discrete), and back. It is grounded bit-for-bit
// on the reference AFC004 firmware's ARINC.c/ARINC_common.c: masks, shifts,
// rounding, and clipping behavior are copied exactly, only the language
// changed. There is no third-party library able to serve raw bitfield
// packing/unpacking of a fixed avionics wire format better than a direct
// shift-and-mask implementation on the standard library — this whole
// package is the DESIGN.md-required stdlib exception for that reason.
package codec

import (
	"errors"
	"fmt"
	"math"

	"github.com/archangelsys/afc004-iop/internal/arinc/label"
)

const (
	lblMask uint32 = 0xFF

	parityBitShift = 31

	ssmFieldShift = 29
	ssmLimitMask  = 0x3

	sdiFieldShift = 8
	sdiLimitMask  = 0x3

	bnrMaxDataFieldShift = 28
	bnrSigBits18         = 18
	bnrSigBits19         = 19

	discreteBitsShift = 10 // shift to move disc/BNR/BCD data field into place

	bcdDataFieldMask       uint32 = 0x1FFFFC00
	bcdMaxDigitVal                = 9
	bcdBitsPerDigit               = 4
	bcdMaxDataFieldSize           = 19

	discreteMaxDataFieldShift = 28
)

var (
	// ErrInvalidArgument mirrors ARINC429_ReadMsgReturnStatus/WriteMsgReturnStatus
	// INVALID_ARGUMENT: a nil/out-of-range config was supplied.
	ErrInvalidArgument = errors.New("codec: invalid argument")
	// ErrInvalidMessage mirrors INVALID_MESSAGE: a malformed digit or field
	// was found while decoding.
	ErrInvalidMessage = errors.New("codec: invalid message")
	// ErrInvalidMsgData mirrors INVALID_MSG_DATA: the caller asked to encode
	// data that cannot be represented (e.g. negative BCD).
	ErrInvalidMsgData = errors.New("codec: invalid message data")
)

// bnrDataFieldMask returns the mask appropriate to a BNR field width,
// matching the three width-specific masks in the reference firmware.
func bnrDataFieldMask(numSigBits uint8) uint32 {
	switch {
	case numSigBits <= bnrSigBits18:
		return 0x1FFFFC00
	case numSigBits == bnrSigBits19:
		return 0x1FFFFE00
	default:
		return 0x1FFFFF00
	}
}

func clampInt64(v int64, lo, hi int64) int64 {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// roundHalfAwayFromZero matches the firmware's "+/- 0.5 then truncate"
// rounding, done here with a wide float64 intermediate as the design notes
// require (avoids the float32 rounding-bias bug of the original) while
// preserving the direction of rounding exactly.
func roundHalfAwayFromZero(v float64) float64 {
	if v < 0 {
		return v - 0.5
	}
	return v + 0.5
}

// Fields is the decoded content of one ARINC-429 word, common to all three
// message types (unused fields are zero).
type Fields struct {
	RawWord      uint32
	SM           SSM
	SDI          uint8
	EngFloat     float64
	EngInt       int32
	DiscreteBits uint32
}

func extractSDI(word uint32) uint8 {
	return uint8((word >> sdiFieldShift) & sdiLimitMask)
}

func extractSSM(word uint32) SSM {
	return SSM((word >> ssmFieldShift) & ssmLimitMask)
}

// HasParityError reports whether the hardware-managed parity-error bit
// (bit 31, the MSB of the word as stored) is set.
func HasParityError(word uint32) bool {
	return word&(1<<parityBitShift) != 0
}

// DecodeBNR implements §4.1 decode_bnr.
func DecodeBNR(cfg label.Config, word uint32) (Fields, error) {
	if cfg.NumSigBits < 1 || cfg.NumSigBits > 20 {
		return Fields{}, fmt.Errorf("%w: num_sig_bits %d", ErrInvalidArgument, cfg.NumSigBits)
	}

	shift := bnrMaxDataFieldShift - int(cfg.NumSigBits)
	fieldMask := uint32((1<<(cfg.NumSigBits+1))-1)
	raw := (word >> uint(shift)) & fieldMask

	// Sign-extend into a wide signed accumulator before scaling.
	signExtended := int64(raw)
	if raw&(1<<cfg.NumSigBits) != 0 {
		signExtended |= ^int64((1<<(cfg.NumSigBits+1))-1)
	}
	engFloat := float64(signExtended) * cfg.Resolution

	engIntF := clampInt64(int64(roundHalfAwayFromZero(engFloat)), math.MinInt32, math.MaxInt32)

	var discreteBits uint32
	if cfg.NumDiscreteBits > 0 {
		discreteBits = (word >> discreteBitsShift) & ((1 << cfg.NumDiscreteBits) - 1)
	}

	sdi := extractSDI(word)
	if cfg.NumSigBits > bnrSigBits18 {
		sdi = 0
	}

	return Fields{
		RawWord:      word,
		SM:           extractSSM(word),
		SDI:          sdi,
		EngFloat:     engFloat,
		EngInt:       int32(engIntF),
		DiscreteBits: discreteBits,
	}, nil
}

// DecodeBCD implements §4.1 decode_bcd.
func DecodeBCD(cfg label.Config, word uint32) (Fields, error) {
	if cfg.NumSigDigits < 1 || cfg.NumSigDigits > 5 {
		return Fields{}, fmt.Errorf("%w: num_sig_digits %d", ErrInvalidArgument, cfg.NumSigDigits)
	}
	if int(cfg.NumSigDigits)*4-1+int(cfg.NumDiscreteBits) > bcdMaxDataFieldSize {
		return Fields{}, fmt.Errorf("%w: digits/discrete bits exceed data field", ErrInvalidArgument)
	}

	raw := (word & bcdDataFieldMask) >> discreteBitsShift

	var calc uint64
	mult := uint64(1)
	for i := 0; i < int(cfg.NumSigDigits); i++ {
		digit := raw & 0xF
		if digit > bcdMaxDigitVal {
			return Fields{}, fmt.Errorf("%w: bcd digit %d out of range", ErrInvalidMessage, digit)
		}
		calc += mult * uint64(digit)
		raw >>= bcdBitsPerDigit
		mult *= 10
	}

	engFloat := float64(calc) * cfg.Resolution
	engIntF := clampInt64(int64(roundHalfAwayFromZero(engFloat)), math.MinInt32, math.MaxInt32)

	var discreteBits uint32
	if cfg.NumDiscreteBits > 0 {
		discreteBits = (word >> discreteBitsShift) & ((1 << cfg.NumDiscreteBits) - 1)
	}

	return Fields{
		RawWord:      word,
		SM:           extractSSM(word),
		SDI:          extractSDI(word),
		EngFloat:     engFloat,
		EngInt:       int32(engIntF),
		DiscreteBits: discreteBits,
	}, nil
}

// DecodeDiscrete implements §4.1 decode_discrete.
func DecodeDiscrete(cfg label.Config, word uint32) (Fields, error) {
	if cfg.NumDiscreteBits < 1 || cfg.NumDiscreteBits > 19 {
		return Fields{}, fmt.Errorf("%w: num_discrete_bits %d", ErrInvalidArgument, cfg.NumDiscreteBits)
	}
	discreteBits := (word >> discreteBitsShift) & ((1 << cfg.NumDiscreteBits) - 1)
	return Fields{
		RawWord:      word,
		SM:           extractSSM(word),
		SDI:          extractSDI(word),
		DiscreteBits: discreteBits,
	}, nil
}

// Decode dispatches on cfg.MsgType.
func Decode(cfg label.Config, word uint32) (Fields, error) {
	switch cfg.MsgType {
	case label.BNR:
		return DecodeBNR(cfg, word)
	case label.BCD:
		return DecodeBCD(cfg, word)
	case label.Discrete:
		return DecodeDiscrete(cfg, word)
	default:
		return Fields{}, fmt.Errorf("%w: unknown message type", ErrInvalidArgument)
	}
}

// TxMsg is the ephemeral value the derived-word engine hands to the codec
// for encoding, matching the data model's TxMsg.
type TxMsg struct {
	Config       label.Config
	SM           SSM
	SDI          uint8
	EngValue     float64
	DiscreteBits uint32

	// RawPreEncoded and PreEncodedWord let a caller that has already
	// composed a full 32-bit word (label/SDI/SSM already embedded, as the
	// AHRS status-word calculators do) skip the codec's own Encode step.
	RawPreEncoded  bool
	PreEncodedWord uint32
}

// EncodeResult distinguishes a clean encode from one that clipped.
type EncodeResult struct {
	Word    uint32
	Clipped bool
}

// convertEngToRawBNR mirrors ARINC429_BNR_ConvertEngValToRawBNRmsgData:
// round-half-away-from-zero, clamp to int32 range, then clip to the
// representable field width with sign-aware overflow detection.
func convertEngToRawBNR(numSigBits uint8, resolution, eng float64) (raw uint32, clipped bool) {
	calc := 0.0
	if resolution != 0 {
		calc = eng / resolution
	}
	calc = roundHalfAwayFromZero(calc)
	calc = math.Max(math.MinInt32, math.Min(math.MaxInt32, calc))
	asInt := int32(calc)
	asUint := uint32(asInt)

	ovfMask := ^uint32(0) << numSigBits
	const signBitMask = 0x80000000
	if asUint&signBitMask != 0 {
		if asUint&ovfMask != ovfMask {
			asUint = 0x1 << numSigBits
			clipped = true
		}
	} else {
		if asUint&ovfMask != 0 {
			asUint = ^uint32(0) >> (32 - numSigBits)
			clipped = true
		}
	}
	return asUint, clipped
}

// EncodeBNR implements §4.1 encode_bnr.
func EncodeBNR(tx TxMsg) (EncodeResult, error) {
	cfg := tx.Config
	if cfg.NumSigBits < 1 || cfg.NumSigBits > 20 {
		return EncodeResult{}, fmt.Errorf("%w: num_sig_bits %d", ErrInvalidArgument, cfg.NumSigBits)
	}

	raw, clipped := convertEngToRawBNR(cfg.NumSigBits, cfg.Resolution, tx.EngValue)

	shift := bnrMaxDataFieldShift - int(cfg.NumSigBits)
	word := (raw << uint(shift)) & bnrDataFieldMask(cfg.NumSigBits)
	word |= uint32(cfg.Label)
	if cfg.NumDiscreteBits > 0 {
		word |= (tx.DiscreteBits & ((1 << cfg.NumDiscreteBits) - 1)) << discreteBitsShift
	}
	if cfg.NumSigBits <= bnrSigBits18 {
		word |= uint32(tx.SDI&sdiLimitMask) << sdiFieldShift
	}
	word |= uint32(tx.SM&ssmLimitMask) << ssmFieldShift

	res := EncodeResult{Word: word, Clipped: clipped}
	if clipped {
		return res, ErrSentDataClipped
	}
	return res, nil
}

// ErrSentDataClipped is returned (alongside a valid EncodeResult) when an
// encode succeeded but the value had to be clamped to the field's range.
var ErrSentDataClipped = errors.New("codec: sent data clipped")

// convertEngToBCD mirrors ARINC429_BCD_ConvertEngValToBCD.
func convertEngToBCD(numSigDigits, numBitsMSC uint8, resolution, eng float64) (raw uint32, clipped bool) {
	calc := 0.0
	if resolution != 0 {
		calc = eng / resolution
	}
	tempValue := uint64(math.Min(calc+0.5, math.MaxUint32))

	var asBCD uint64
	count := uint8(0)
	msc := uint32(math.MaxUint32) >> (32 - numBitsMSC)
	for tempValue > 0 && count < numSigDigits {
		digit := tempValue % 10
		if numSigDigits == count+1 && uint32(digit) > msc {
			break
		}
		asBCD += digit << (bcdBitsPerDigit * count)
		tempValue /= 10
		count++
	}

	if tempValue == 0 {
		return uint32(asBCD), false
	}

	asBCD = 0
	for count = 0; count < numSigDigits; count++ {
		var digit uint32
		if count != numSigDigits-1 {
			digit = bcdMaxDigitVal
		} else {
			digit = msc
		}
		asBCD += uint64(digit) << (bcdBitsPerDigit * count)
	}
	return uint32(asBCD), true
}

// EncodeBCD implements §4.1 encode_bcd. Standard BCD messages use a 3-bit
// most-significant character, matching ARINC429_BCD_STD_MSG_MAX_NUM_BITS_MSC.
func EncodeBCD(tx TxMsg) (EncodeResult, error) {
	cfg := tx.Config
	if cfg.NumSigDigits < 1 || cfg.NumSigDigits > 5 {
		return EncodeResult{}, fmt.Errorf("%w: num_sig_digits %d", ErrInvalidArgument, cfg.NumSigDigits)
	}
	if tx.EngValue < 0 {
		return EncodeResult{}, fmt.Errorf("%w: negative BCD value %f", ErrInvalidMsgData, tx.EngValue)
	}

	const stdMsgMaxBitsMSC = 3
	raw, clipped := convertEngToBCD(cfg.NumSigDigits, stdMsgMaxBitsMSC, cfg.Resolution, tx.EngValue)

	word := (raw << discreteBitsShift) & bcdDataFieldMask
	word |= uint32(cfg.Label)
	if cfg.NumDiscreteBits > 0 {
		word |= (tx.DiscreteBits & ((1 << cfg.NumDiscreteBits) - 1)) << discreteBitsShift
	}
	word |= uint32(tx.SDI&sdiLimitMask) << sdiFieldShift
	word |= uint32(tx.SM&ssmLimitMask) << ssmFieldShift

	res := EncodeResult{Word: word, Clipped: clipped}
	if clipped {
		return res, ErrSentDataClipped
	}
	return res, nil
}

// EncodeDiscrete implements §4.1 encode_discrete.
func EncodeDiscrete(tx TxMsg) (EncodeResult, error) {
	cfg := tx.Config
	if cfg.NumDiscreteBits < 1 || cfg.NumDiscreteBits > 19 {
		return EncodeResult{}, fmt.Errorf("%w: num_discrete_bits %d", ErrInvalidArgument, cfg.NumDiscreteBits)
	}
	shift := discreteMaxDataFieldShift - int(cfg.NumDiscreteBits) + 1
	word := (tx.DiscreteBits << uint(shift)) & 0x1FFFFC00
	word |= uint32(cfg.Label)
	word |= uint32(tx.SDI&sdiLimitMask) << sdiFieldShift
	word |= uint32(tx.SM&ssmLimitMask) << ssmFieldShift
	return EncodeResult{Word: word}, nil
}

// Encode dispatches on tx.Config.MsgType, or returns the pre-encoded word
// verbatim if tx.RawPreEncoded is set.
func Encode(tx TxMsg) (EncodeResult, error) {
	if tx.RawPreEncoded {
		return EncodeResult{Word: tx.PreEncodedWord}, nil
	}
	switch tx.Config.MsgType {
	case label.BNR:
		return EncodeBNR(tx)
	case label.BCD:
		return EncodeBCD(tx)
	case label.Discrete:
		return EncodeDiscrete(tx)
	default:
		return EncodeResult{}, fmt.Errorf("%w: unknown message type", ErrInvalidArgument)
	}
}

// CheckBNRValidity implements §4.1 check_bnr_validity.
func CheckBNRValidity(eng float64, cfg label.Config) SSM {
	if !cfg.HasValidRange {
		return BnrNormalOperation
	}
	if eng < cfg.MinValidValue || eng > cfg.MaxValidValue {
		return BnrFailureWarning
	}
	return BnrNormalOperation
}
