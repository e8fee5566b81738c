package audio

import (
	"sync"
	"sync/atomic"

	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/logger"
	"github.com/vk2gpu/music-app/internal/sound"
)

// Playback loops one sound into every output channel it is given.
type Playback struct {
	cache *sound.Cache

	mu       sync.Mutex
	samples  []float32
	position int

	playing atomic.Bool
}

var _ Consumer = (*Playback)(nil)

// NewPlayback returns an idle playback engine loading files through cache.
func NewPlayback(cache *sound.Cache) *Playback {
	return &Playback{cache: cache}
}

// Play loads path and starts looping it from the beginning. On failure the
// current sound keeps playing.
func (p *Playback) Play(path string) error {
	buf, err := p.cache.Load(path)
	if err != nil {
		return err
	}
	if err := p.PlayBuffer(buf); err != nil {
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryAudio).
			Operation("play").
			Context("path", path).
			Build()
	}
	GetLogger().Info("playback started",
		logger.String("path", path),
		logger.Int("frames", buf.SampleCount),
		logger.Int("sample_rate", buf.SampleRate))
	return nil
}

// PlayBuffer starts looping the first channel of buf.
func (p *Playback) PlayBuffer(buf sound.Buffer) error {
	if !buf.IsValid() || buf.SampleCount == 0 {
		return ErrEmptySound
	}
	samples := buf.Channel(0)

	p.mu.Lock()
	p.samples = samples
	p.position = 0
	p.mu.Unlock()
	p.playing.Store(true)
	return nil
}

// Stop silences playback.
func (p *Playback) Stop() {
	p.mu.Lock()
	p.samples = nil
	p.position = 0
	p.mu.Unlock()
	p.playing.Store(false)
}

// IsPlaying reports whether a sound is loaded.
func (p *Playback) IsPlaying() bool {
	return p.playing.Load()
}

// OnAudio implements Consumer. The period is skipped when Play or Stop
// holds the lock.
func (p *Playback) OnAudio(_, out [][]float32, frames int) {
	if len(out) == 0 || !p.mu.TryLock() {
		return
	}
	defer p.mu.Unlock()

	n := len(p.samples)
	if n == 0 {
		return
	}
	pos := p.position
	for i := range frames {
		s := p.samples[pos]
		for _, ch := range out {
			ch[i] += s
		}
		pos++
		if pos == n {
			pos = 0
		}
	}
	p.position = pos
}
