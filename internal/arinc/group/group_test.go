package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archangelsys/afc004-iop/internal/arinc/codec"
	"github.com/archangelsys/afc004-iop/internal/arinc/label"
)

type fakeClock struct{ ms uint32 }

func (c *fakeClock) NowMs() uint32 { return c.ms }

func discreteLabel(t *testing.T, octal int, minMs, maxMs uint32) label.Config {
	t.Helper()
	cfg, err := label.Build(label.Params{
		OctalLabel:            octal,
		MsgType:               label.Discrete,
		NumDiscreteBits:       10,
		MinTransmitIntervalMs: minMs,
		MaxTransmitIntervalMs: maxMs,
	})
	require.NoError(t, err)
	return cfg
}

func wordFor(cfg label.Config, discreteBits uint32) uint32 {
	res, err := codec.EncodeDiscrete(codec.TxMsg{Config: cfg, DiscreteBits: discreteBits, SM: codec.DiscVerifiedNormal})
	if err != nil {
		panic(err)
	}
	return res.Word
}

func TestGroup_New_RejectsDuplicateLabels(t *testing.T) {
	clk := &fakeClock{}
	cfg := discreteLabel(t, 270, 0, 100)
	_, err := New("g", clk, 10, []label.Config{cfg, cfg})
	assert.Error(t, err)
}

func TestGroup_ProcessReceived_UnknownLabel(t *testing.T) {
	clk := &fakeClock{}
	cfg := discreteLabel(t, 270, 0, 100)
	g, err := New("g", clk, 10, []label.Config{cfg})
	require.NoError(t, err)

	other := discreteLabel(t, 271, 0, 100)
	err = g.ProcessReceived(wordFor(other, 1))
	assert.ErrorIs(t, err, ErrNoMatchingLabel)
}

func TestGroup_GetLatest_FreshnessWindow(t *testing.T) {
	clk := &fakeClock{}
	cfg := discreteLabel(t, 270, 0, 100)
	g, err := New("g", clk, 10, []label.Config{cfg})
	require.NoError(t, err)

	require.NoError(t, g.ProcessReceived(wordFor(cfg, 5)))

	clk.ms = 50
	slot, err := g.GetLatestByOctal(270)
	require.NoError(t, err)
	assert.True(t, slot.IsFresh)

	clk.ms = 150
	slot, err = g.GetLatestByOctal(270)
	require.NoError(t, err)
	assert.False(t, slot.IsFresh)
}

func TestGroup_ProcessReceived_BabblingDetection(t *testing.T) {
	clk := &fakeClock{}
	cfg := discreteLabel(t, 270, 50, 1000)
	g, err := New("g", clk, 10, []label.Config{cfg})
	require.NoError(t, err)

	require.NoError(t, g.ProcessReceived(wordFor(cfg, 1)))
	clk.ms = 10 // within min_transmit_interval_ms: babbling
	require.NoError(t, g.ProcessReceived(wordFor(cfg, 1)))

	slot, err := g.GetLatestByOctal(270)
	require.NoError(t, err)
	assert.False(t, slot.IsNotBabbling)
}

func TestGroup_TickBusFailure_LatchesAtThreshold(t *testing.T) {
	clk := &fakeClock{}
	cfg := discreteLabel(t, 270, 0, 100)
	g, err := New("g", clk, 3, []label.Config{cfg})
	require.NoError(t, err)

	assert.False(t, g.TickBusFailure())
	assert.False(t, g.TickBusFailure())
	assert.True(t, g.TickBusFailure())
}

func TestGroup_TickBusFailure_ResetByGoodDecode(t *testing.T) {
	clk := &fakeClock{}
	cfg := discreteLabel(t, 270, 0, 100)
	g, err := New("g", clk, 3, []label.Config{cfg})
	require.NoError(t, err)

	g.TickBusFailure()
	g.TickBusFailure()

	g.Drain(&sliceReader{words: []uint32{wordFor(cfg, 1)}})

	assert.False(t, g.TickBusFailure())
}

// sliceReader adapts a slice-backed FIFO to the group.Reader interface.
type sliceReader struct {
	words []uint32
	i     int
}

func (r *sliceReader) DataReady() bool { return r.i < len(r.words) }
func (r *sliceReader) ReadWord() uint32 {
	w := r.words[r.i]
	r.i++
	return w
}

func TestGroup_GetLatestWord_FalseWhenUnknown(t *testing.T) {
	clk := &fakeClock{}
	cfg := discreteLabel(t, 270, 0, 100)
	g, err := New("g", clk, 10, []label.Config{cfg})
	require.NoError(t, err)

	_, ok := g.GetLatestWord(271)
	assert.False(t, ok)
}

func TestGroup_Snapshot_StaleLabels(t *testing.T) {
	clk := &fakeClock{}
	cfg := discreteLabel(t, 270, 0, 100)
	g, err := New("g", clk, 10, []label.Config{cfg})
	require.NoError(t, err)

	h := g.Snapshot()
	assert.Contains(t, h.StaleLabels, cfg.Label)

	require.NoError(t, g.ProcessReceived(wordFor(cfg, 1)))
	h = g.Snapshot()
	assert.NotContains(t, h.StaleLabels, cfg.Label)
}
