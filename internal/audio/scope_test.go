package audio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(start, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(start + i)
	}
	return out
}

func TestScopeRoutesInputToOutputs(t *testing.T) {
	s := NewScope(8)
	in := [][]float32{{0.1, 0.2, 0.3}}
	out := planar(2, 3)
	s.OnAudio(in, out, 3)

	assert.Equal(t, in[0], out[0])
	assert.Equal(t, in[0], out[1])
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, s.Snapshot())
}

func TestScopeWrapsKeepingNewest(t *testing.T) {
	s := NewScope(8)
	s.OnAudio([][]float32{ramp(0, 5)}, nil, 5)
	s.OnAudio([][]float32{ramp(5, 5)}, nil, 5)

	assert.Equal(t, ramp(2, 8), s.Snapshot())
	assert.Equal(t, ramp(2, 8), s.Snapshot(), "snapshot does not consume")
}

func TestScopeLongPeriodKeepsTail(t *testing.T) {
	s := NewScope(4)
	s.OnAudio([][]float32{ramp(0, 10)}, nil, 10)
	assert.Equal(t, ramp(6, 4), s.Snapshot())
}

func TestScopeDefaultSize(t *testing.T) {
	s := NewScope(0)
	require.Equal(t, DefaultScopeSize, s.Size())
	assert.Empty(t, s.Snapshot())

	s.OnAudio(nil, planar(1, 4), 4)
	assert.Empty(t, s.Snapshot(), "no input, nothing captured")
}

func TestScopeConcurrentSnapshots(t *testing.T) {
	s := NewScope(16)
	const periods = 500

	var wg sync.WaitGroup
	wg.Go(func() {
		for p := range periods {
			s.OnAudio([][]float32{ramp(p*4, 4)}, nil, 4)
		}
	})
	for range 4 {
		wg.Go(func() {
			for range periods {
				snap := s.Snapshot()
				for i := 1; i < len(snap); i++ {
					if snap[i] != snap[i-1]+1 {
						t.Errorf("snapshot not contiguous at %d: %v", i, snap)
						return
					}
				}
			}
		})
	}
	wg.Wait()

	assert.Equal(t, ramp(periods*4-16, 16), s.Snapshot())
}
