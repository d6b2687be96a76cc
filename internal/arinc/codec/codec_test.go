package codec

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archangelsys/afc004-iop/internal/arinc/label"
)

func bnrConfig(numSigBits uint8, resolution float64) label.Config {
	cfg, err := label.Build(label.Params{
		OctalLabel: 320,
		MsgType:    label.BNR,
		NumSigBits: numSigBits,
		Resolution: resolution,
	})
	if err != nil {
		panic(err)
	}
	return cfg
}

func TestEncodeDecodeBNR_RoundTrip(t *testing.T) {
	cfg := bnrConfig(12, 0.0879)
	for _, eng := range []float64{0, 10, -10, 179, -179} {
		res, err := EncodeBNR(TxMsg{Config: cfg, EngValue: eng, SM: BnrNormalOperation})
		require.NoError(t, err)

		fields, err := DecodeBNR(cfg, res.Word)
		require.NoError(t, err)
		assert.InDelta(t, eng, fields.EngFloat, cfg.Resolution/2+1e-9)
	}
}

func TestEncodeBNR_ClipsAndReportsErrSentDataClipped(t *testing.T) {
	cfg := bnrConfig(8, 1.0)
	res, err := EncodeBNR(TxMsg{Config: cfg, EngValue: 1000})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSentDataClipped))
	assert.True(t, res.Clipped)
}

func TestDecodeBNR_InvalidNumSigBits(t *testing.T) {
	cfg := bnrConfig(12, 0.0879)
	cfg.NumSigBits = 0
	_, err := DecodeBNR(cfg, 0)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func bcdConfig(digits uint8, resolution float64) label.Config {
	cfg, err := label.Build(label.Params{
		OctalLabel:   235,
		MsgType:      label.BCD,
		NumSigDigits: digits,
		Resolution:   resolution,
	})
	if err != nil {
		panic(err)
	}
	return cfg
}

func TestEncodeDecodeBCD_RoundTrip(t *testing.T) {
	cfg := bcdConfig(4, 0.1)
	res, err := EncodeBCD(TxMsg{Config: cfg, EngValue: 123.4, SM: BcdPlus})
	require.NoError(t, err)

	fields, err := DecodeBCD(cfg, res.Word)
	require.NoError(t, err)
	assert.Equal(t, 123.4, fields.EngFloat)
}

func TestEncodeBCD_NegativeValueRejected(t *testing.T) {
	cfg := bcdConfig(4, 0.1)
	_, err := EncodeBCD(TxMsg{Config: cfg, EngValue: -1})
	assert.True(t, errors.Is(err, ErrInvalidMsgData))
}

func TestEncodeBCD_ClipsAtMaxRepresentableDigits(t *testing.T) {
	cfg := bcdConfig(2, 1.0)
	res, err := EncodeBCD(TxMsg{Config: cfg, EngValue: 999})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSentDataClipped))
	assert.True(t, res.Clipped)
}

func discreteConfig(bits uint8) label.Config {
	cfg, err := label.Build(label.Params{
		OctalLabel:      270,
		MsgType:         label.Discrete,
		NumDiscreteBits: bits,
	})
	if err != nil {
		panic(err)
	}
	return cfg
}

func TestEncodeDecodeDiscrete_RoundTrip(t *testing.T) {
	cfg := discreteConfig(19)
	res, err := EncodeDiscrete(TxMsg{Config: cfg, DiscreteBits: 0x3FF, SM: DiscVerifiedNormal})
	require.NoError(t, err)

	fields, err := DecodeDiscrete(cfg, res.Word)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x3FF), fields.DiscreteBits)
}

func TestHasParityError(t *testing.T) {
	assert.True(t, HasParityError(1<<31))
	assert.False(t, HasParityError(0))
}

func TestCheckBNRValidity_NoValidRangeAlwaysNormal(t *testing.T) {
	cfg := bnrConfig(12, 0.0879)
	assert.Equal(t, BnrNormalOperation, CheckBNRValidity(math.MaxFloat64, cfg))
}

func TestCheckBNRValidity_OutOfRangeFails(t *testing.T) {
	cfg, err := label.Build(label.Params{
		OctalLabel: 333, MsgType: label.BNR, NumSigBits: 12, Resolution: 0.0879,
		HasValidRange: true, MinValidValue: -3, MaxValidValue: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, BnrFailureWarning, CheckBNRValidity(10, cfg))
	assert.Equal(t, BnrNormalOperation, CheckBNRValidity(0, cfg))
}

func TestEncode_RawPreEncodedBypassesConfig(t *testing.T) {
	res, err := Encode(TxMsg{RawPreEncoded: true, PreEncodedWord: 0xDEADBEEF})
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), res.Word)
}
