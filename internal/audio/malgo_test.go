package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterleaveRoundTrip(t *testing.T) {
	planes := [][]float32{{0.1, 0.2, 0.3}, {-0.1, -0.2, -0.3}}
	raw := make([]byte, 3*2*4)
	interleave(raw, planes, 3)

	// Frame-major layout: L R L R L R
	assert.InDelta(t, float32(-0.1), math.Float32frombits(binary.LittleEndian.Uint32(raw[4:])), 1e-7)
	assert.InDelta(t, float32(0.2), math.Float32frombits(binary.LittleEndian.Uint32(raw[8:])), 1e-7)

	back := newPlanar(2, 3)
	deinterleave(back, raw, 3)
	assert.Equal(t, planes, back)
}

func TestDeinterleaveShortInputZeroFills(t *testing.T) {
	raw := make([]byte, 4)
	binary.LittleEndian.PutUint32(raw, math.Float32bits(0.5))

	planes := [][]float32{{9, 9}}
	deinterleave(planes, raw, 2)
	assert.Equal(t, []float32{0.5, 0}, planes[0])
}

func TestEnsureGrowsPlanes(t *testing.T) {
	planes := newPlanar(2, 4)
	ensure(planes, 8)
	assert.Len(t, planes[0], 8)
	assert.Len(t, planes[1], 8)

	ensure(planes, 2)
	assert.Len(t, planes[0], 8, "never shrinks")
}

func TestPlatformBackendName(t *testing.T) {
	_, name := platformBackend()
	assert.NotEmpty(t, name)
}
