package audio

import "sync"

// maxChannels is the width of a channel mask.
const maxChannels = 32

// Consumer receives every audio period. in and out hold only the channels
// selected by the consumer's masks, each sliced to frames samples. out is
// shared by all consumers, so consumers add to it rather than overwrite it
// unless they own the routing (see Scope).
type Consumer interface {
	OnAudio(in, out [][]float32, frames int)
}

type registration struct {
	consumer Consumer
	inMask   uint32
	outMask  uint32

	// Reused every period
	inView  [][]float32
	outView [][]float32
}

// Registry multiplexes one hardware period to many consumers in registration order.
type Registry struct {
	mu   sync.Mutex
	regs []*registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds c with the given channel masks, replacing any existing
// registration of c. Bit i of a mask selects hardware channel i.
func (r *Registry) Register(c Consumer, inMask, outMask uint32) {
	reg := &registration{
		consumer: c,
		inMask:   inMask,
		outMask:  outMask,
		inView:   make([][]float32, 0, maxChannels),
		outView:  make([][]float32, 0, maxChannels),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(c)
	r.regs = append(r.regs, reg)
}

// Unregister removes c. It is a no-op if c is not registered.
func (r *Registry) Unregister(c Consumer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(c)
}

func (r *Registry) remove(c Consumer) {
	for i, reg := range r.regs {
		if reg.consumer == c {
			r.regs = append(r.regs[:i], r.regs[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered consumers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.regs)
}

// Dispatch hands one period to every consumer. The lock is held for the
// whole period, so Register and Unregister wait until it completes.
func (r *Registry) Dispatch(in, out [][]float32, frames int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reg := range r.regs {
		reg.inView = compact(reg.inView, in, reg.inMask, frames)
		reg.outView = compact(reg.outView, out, reg.outMask, frames)
		reg.consumer.OnAudio(reg.inView, reg.outView, frames)
	}
}

// compact fills view with the channels of hw selected by mask.
func compact(view, hw [][]float32, mask uint32, frames int) [][]float32 {
	view = view[:0]
	for i := 0; i < len(hw) && i < maxChannels; i++ {
		if mask&(1<<uint(i)) != 0 {
			view = append(view, hw[i][:frames])
		}
	}
	return view
}
