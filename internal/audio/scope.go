package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/smallnest/ringbuffer"
)

// DefaultScopeSize is the number of samples a Scope keeps.
const DefaultScopeSize = 2048

// Scope routes the first input channel to every output channel and keeps
// the most recent samples it played for display.
type Scope struct {
	size int

	mu      sync.Mutex
	ring    *ringbuffer.RingBuffer
	encoded []byte
	discard []byte
	snap    []byte
}

var _ Consumer = (*Scope)(nil)

// NewScope returns a scope holding size samples. A size <= 0 selects DefaultScopeSize.
func NewScope(size int) *Scope {
	if size <= 0 {
		size = DefaultScopeSize
	}
	bytes := size * 4
	return &Scope{
		size:    size,
		ring:    ringbuffer.New(bytes),
		encoded: make([]byte, bytes),
		discard: make([]byte, bytes),
		snap:    make([]byte, bytes),
	}
}

// Size returns the number of samples kept.
func (s *Scope) Size() int { return s.size }

// OnAudio implements Consumer.
func (s *Scope) OnAudio(in, out [][]float32, frames int) {
	if len(in) == 0 {
		return
	}
	src := in[0][:frames]
	for _, ch := range out {
		copy(ch[:frames], src)
	}
	if len(out) > 0 {
		src = out[0][:frames]
	}
	if len(src) > s.size {
		src = src[len(src)-s.size:]
	}

	p := s.encoded[:len(src)*4]
	for i, v := range src {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if free := s.ring.Free(); free < len(p) {
		_, _ = s.ring.Read(s.discard[:len(p)-free])
	}
	_, _ = s.ring.Write(p)
}

// Snapshot returns the retained samples, oldest first. It holds fewer than
// Size samples until the scope has seen that many.
func (s *Scope) Snapshot() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, _ := s.ring.Read(s.snap)
	_, _ = s.ring.Write(s.snap[:n])

	out := make([]float32, n/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(s.snap[i*4:]))
	}
	return out
}
