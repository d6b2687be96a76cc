package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archangelsys/afc004-iop/internal/arinc/codec"
	"github.com/archangelsys/afc004-iop/internal/arinc/filter"
	"github.com/archangelsys/afc004-iop/internal/arinc/group"
	"github.com/archangelsys/afc004-iop/internal/arinc/label"
)

type fakeClock struct{ ms uint32 }

func (c *fakeClock) NowMs() uint32 { return c.ms }

func bnr(octal int, bits uint8, res float64, minMs, maxMs uint32) label.Config {
	cfg, err := label.Build(label.Params{
		OctalLabel: octal, MsgType: label.BNR, NumSigBits: bits, Resolution: res,
		MinTransmitIntervalMs: minMs, MaxTransmitIntervalMs: maxMs,
	})
	if err != nil {
		panic(err)
	}
	return cfg
}

func bnrRanged(octal int, bits uint8, res float64, minMs, maxMs uint32, lo, hi float64) label.Config {
	cfg, err := label.Build(label.Params{
		OctalLabel: octal, MsgType: label.BNR, NumSigBits: bits, Resolution: res,
		MinTransmitIntervalMs: minMs, MaxTransmitIntervalMs: maxMs,
		HasValidRange: true, MinValidValue: lo, MaxValidValue: hi,
	})
	if err != nil {
		panic(err)
	}
	return cfg
}

func discrete(octal int, bits uint8, minMs, maxMs uint32) label.Config {
	cfg, err := label.Build(label.Params{
		OctalLabel: octal, MsgType: label.Discrete, NumDiscreteBits: bits,
		MinTransmitIntervalMs: minMs, MaxTransmitIntervalMs: maxMs,
	})
	if err != nil {
		panic(err)
	}
	return cfg
}

func encodeBNR(t *testing.T, cfg label.Config, eng float64, sm codec.SSM) uint32 {
	t.Helper()
	res, err := codec.EncodeBNR(codec.TxMsg{Config: cfg, EngValue: eng, SM: sm})
	require.NoError(t, err)
	return res.Word
}

func newTestEngine(t *testing.T) (*Engine, *group.Group, *group.Group, *fakeClock) {
	t.Helper()
	clk := &fakeClock{}

	hdgCfg := bnr(320, 15, 0.0055, 15, 25)
	pitchCfg := bnr(324, 14, 0.010986, 15, 25)
	rollCfg := bnr(325, 14, 0.010986, 15, 25)
	ayCfg := bnr(332, 12, 0.000976563, 15, 25)
	azCfg := bnr(333, 12, 0.000976563, 15, 25)
	st271Cfg := discrete(271, 1, 450, 550)
	st270Cfg := discrete(270, 4, 450, 550)
	st323Cfg := bnr(323, 12, 0.0879, 15, 25)
	baroCfg, err := label.Build(label.Params{OctalLabel: 235, MsgType: label.BCD, NumSigDigits: 5, Resolution: 0.001, MinTransmitIntervalMs: 900, MaxTransmitIntervalMs: 1100})
	require.NoError(t, err)

	ahr, err := group.New("ahr75", clk, 200, []label.Config{hdgCfg, pitchCfg, rollCfg, ayCfg, azCfg, st271Cfg, st270Cfg, st323Cfg})
	require.NoError(t, err)
	pfd, err := group.New("pfd", clk, 200, []label.Config{baroCfg})
	require.NoError(t, err)

	tx := TxLabels{
		TurnRate:     bnr(340, 13, 0.015625, 0, 1000),
		SlipAngle:    bnr(250, 12, 0.04395, 0, 1000),
		MagHeading:   bnr(320, 12, 0.0879, 0, 1000),
		Pitch:        bnr(324, 13, 0.021973, 0, 1000),
		Roll:         bnr(325, 12, 0.043945, 0, 1000),
		BodyLatAccel: bnr(332, 12, 0.000976563, 0, 1000),
		NormalAccel:  bnrRanged(333, 12, 0.000976563, 0, 1000, -3, 5),
		BaroCorr:     baroCfg,
		Status272:    discrete(272, 19, 0, 1000),
		Status274:    discrete(274, 19, 0, 1000),
		Status275:    discrete(275, 19, 0, 1000),
	}

	diff := filter.NewDifferentiator(0.99, 50, 180, -180, 360, -360)
	lp := filter.NewLowPass(0.7777678, 0.2222322)
	return New(ahr, pfd, tx, diff, lp), ahr, pfd, clk
}

func TestNewPitch_PassesThroughWhenFresh(t *testing.T) {
	e, ahr, _, clk := newTestEngine(t)
	clk.ms = 20
	require.NoError(t, ahr.ProcessReceived(encodeBNR(t, bnr(324, 14, 0.010986, 15, 25), 5.5, codec.BnrNormalOperation)))

	msg := e.NewPitch()
	assert.InDelta(t, 5.5, msg.EngValue, 1e-6)
	assert.Equal(t, codec.BnrNormalOperation, msg.SM)
}

func TestNewPitch_FailureWarningWhenStale(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	msg := e.NewPitch()
	assert.Equal(t, codec.BnrFailureWarning, msg.SM)
}

func TestBodyLatAccel_NegatesSign(t *testing.T) {
	e, ahr, _, clk := newTestEngine(t)
	clk.ms = 20
	require.NoError(t, ahr.ProcessReceived(encodeBNR(t, bnr(332, 12, 0.000976563, 15, 25), 2.0, codec.BnrNormalOperation)))

	msg := e.BodyLatAccel()
	assert.InDelta(t, -2.0, msg.EngValue, 1e-3)
}

func TestNormalAccel_OffsetAndRangeCheck(t *testing.T) {
	e, ahr, _, clk := newTestEngine(t)
	clk.ms = 20
	require.NoError(t, ahr.ProcessReceived(encodeBNR(t, bnr(333, 12, 0.000976563, 15, 25), -4.0, codec.BnrNormalOperation)))

	msg := e.NormalAccel()
	assert.InDelta(t, -3.0, msg.EngValue, 1e-2)
	assert.Equal(t, codec.BnrFailureWarning, msg.SM) // out of Eclipse's -3..5 range
}

func TestBaroCorrection_PassesThroughOnPlusSign(t *testing.T) {
	e, _, pfd, clk := newTestEngine(t)
	baroCfg, err := label.Build(label.Params{OctalLabel: 235, MsgType: label.BCD, NumSigDigits: 5, Resolution: 0.001, MinTransmitIntervalMs: 900, MaxTransmitIntervalMs: 1100})
	require.NoError(t, err)
	res, err := codec.EncodeBCD(codec.TxMsg{Config: baroCfg, EngValue: 29.92, SM: codec.BcdPlus})
	require.NoError(t, err)

	clk.ms = 20
	require.NoError(t, pfd.ProcessReceived(res.Word))

	msg := e.BaroCorrection()
	assert.Equal(t, codec.BcdPlus, msg.SM)
	assert.True(t, e.IsBaroCorrectionValid())
}

func TestBaroCorrection_NoComputedDataWhenStale(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	msg := e.BaroCorrection()
	assert.Equal(t, codec.BcdNoComputedData, msg.SM)
	assert.False(t, e.IsBaroCorrectionValid())
}

func TestAhrsStatus272_FailsWhenSourceStale(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	msg := e.AhrsStatus272(false)
	assert.True(t, msg.RawPreEncoded)
	assert.NotEqual(t, uint32(0), msg.PreEncodedWord&0x60000000)
}

func TestSlipAngle_SpoolsUpBeforeReportingGood(t *testing.T) {
	e, ahr, _, clk := newTestEngine(t)
	azCfg := bnr(333, 12, 0.000976563, 15, 25)
	ayCfg := bnr(332, 12, 0.000976563, 15, 25)

	for i := 0; i < filter.SpoolThreshold+1; i++ {
		clk.ms += 20
		require.NoError(t, ahr.ProcessReceived(encodeBNR(t, azCfg, 0.0, codec.BnrNormalOperation)))
		require.NoError(t, ahr.ProcessReceived(encodeBNR(t, ayCfg, 0.0, codec.BnrNormalOperation)))
		e.SlipAngle()
	}
	clk.ms += 20
	require.NoError(t, ahr.ProcessReceived(encodeBNR(t, azCfg, 0.0, codec.BnrNormalOperation)))
	require.NoError(t, ahr.ProcessReceived(encodeBNR(t, ayCfg, 0.0, codec.BnrNormalOperation)))
	msg := e.SlipAngle()
	assert.Equal(t, codec.BnrNormalOperation, msg.SM)
}
