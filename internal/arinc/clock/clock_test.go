package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElapsed_NormalCase(t *testing.T) {
	assert.Equal(t, uint32(50), Elapsed(150, 100))
}

func TestElapsed_WrapAround(t *testing.T) {
	// since is close to the uint32 max and now has wrapped past zero.
	since := uint32(4294967290) // 2^32 - 6
	now := uint32(4)
	assert.Equal(t, uint32(10), Elapsed(now, since))
}

func TestSystem_NowMsIsMonotonicNonNegative(t *testing.T) {
	clk := NewSystem()
	first := clk.NowMs()
	second := clk.NowMs()
	assert.GreaterOrEqual(t, second, first)
}
