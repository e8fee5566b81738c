package audio

import (
	"math"
	"sync/atomic"
)

// smoothingDecay is applied to the smoothed values once per period before
// taking the max with the current value, so peaks fall off exponentially.
const smoothingDecay = 0.99

// atomicFloat is a float64 stored as bits.
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// StatsProbe measures the level of the first input channel every period.
type StatsProbe struct {
	rms         atomicFloat
	max         atomicFloat
	rmsSmoothed atomicFloat
	maxSmoothed atomicFloat
}

var _ Consumer = (*StatsProbe)(nil)

// NewStatsProbe returns a probe with all values at zero.
func NewStatsProbe() *StatsProbe {
	return &StatsProbe{}
}

// OnAudio implements Consumer.
func (p *StatsProbe) OnAudio(in, _ [][]float32, frames int) {
	if len(in) == 0 || frames == 0 {
		return
	}

	var sum, peak float64
	for _, s := range in[0][:frames] {
		v := float64(s)
		sum += v * v
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	rms := math.Sqrt(sum / float64(frames))

	p.rms.Store(rms)
	p.max.Store(peak)
	p.rmsSmoothed.Store(math.Max(p.rmsSmoothed.Load()*smoothingDecay, rms))
	p.maxSmoothed.Store(math.Max(p.maxSmoothed.Load()*smoothingDecay, peak))
}

// RMS returns the root mean square of the last period.
func (p *StatsProbe) RMS() float64 { return p.rms.Load() }

// Max returns the peak absolute sample of the last period.
func (p *StatsProbe) Max() float64 { return p.max.Load() }

// RMSSmoothed returns the decaying peak-hold of RMS.
func (p *StatsProbe) RMSSmoothed() float64 { return p.rmsSmoothed.Load() }

// MaxSmoothed returns the decaying peak-hold of Max.
func (p *StatsProbe) MaxSmoothed() float64 { return p.maxSmoothed.Load() }
