package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/vk2gpu/music-app/internal/logger"
)

// defaultDeviceChannels is the channel count assumed for every malgo device.
const defaultDeviceChannels = 2

// malgoIDs keeps the native identities of a device by direction.
type malgoIDs struct {
	capture  *malgo.DeviceID
	playback *malgo.DeviceID
}

// MalgoDriver enumerates and opens devices through miniaudio. It implements
// both Driver and Backend.
type MalgoDriver struct {
	ctx     *malgo.AllocatedContext
	backend string

	mu  sync.Mutex
	ids map[string]malgoIDs
}

var (
	_ Driver  = (*MalgoDriver)(nil)
	_ Backend = (*MalgoDriver)(nil)
)

// platformBackend selects the native audio API for the current OS.
func platformBackend() (malgo.Backend, string) {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa, "alsa"
	case "windows":
		return malgo.BackendWasapi, "wasapi"
	case "darwin":
		return malgo.BackendCoreaudio, "coreaudio"
	default:
		return malgo.BackendNull, "null"
	}
}

// NewMalgoDriver initializes a miniaudio context. With debug set, backend
// log messages are forwarded to the audio logger.
func NewMalgoDriver(debug bool) (*MalgoDriver, error) {
	backend, name := platformBackend()
	log := GetLogger().With(logger.String("backend", name))

	ctx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, func(message string) {
		if debug {
			log.Debug(message)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}

	return &MalgoDriver{
		ctx:     ctx,
		backend: name,
		ids:     make(map[string]malgoIDs),
	}, nil
}

// Devices merges capture and playback devices by name.
func (d *MalgoDriver) Devices() ([]DriverDevice, error) {
	captures, err := d.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("listing capture devices: %w", err)
	}
	playbacks, err := d.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("listing playback devices: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.ids)

	var (
		devices []DriverDevice
		byName  = make(map[string]int)
	)
	entry := func(name string, native int) *DriverDevice {
		if i, ok := byName[name]; ok {
			return &devices[i]
		}
		byName[name] = len(devices)
		devices = append(devices, DriverDevice{Name: name, NativeIndex: native, Backend: d.backend})
		return &devices[len(devices)-1]
	}

	for i := range captures {
		name := captures[i].Name()
		dev := entry(name, i)
		dev.MaxInputs = defaultDeviceChannels
		id := captures[i].ID
		ids := d.ids[name]
		ids.capture = &id
		d.ids[name] = ids
	}
	for i := range playbacks {
		name := playbacks[i].Name()
		dev := entry(name, i)
		dev.MaxOutputs = defaultDeviceChannels
		id := playbacks[i].ID
		ids := d.ids[name]
		ids.playback = &id
		d.ids[name] = ids
	}
	return devices, nil
}

// OpenStream opens a duplex float32 device for cfg.
func (d *MalgoDriver) OpenStream(cfg StreamConfig, cb PeriodFunc) (Stream, error) {
	d.mu.Lock()
	capture := d.ids[cfg.Input.Name].capture
	playback := d.ids[cfg.Output.Name].playback
	d.mu.Unlock()
	if capture == nil || playback == nil {
		return nil, fmt.Errorf("%w: %q/%q not enumerated", ErrDeviceNotFound, cfg.Input.Name, cfg.Output.Name)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Duplex)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(cfg.InputChannels)
	deviceConfig.Capture.DeviceID = capture.Pointer()
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(cfg.OutputChannels)
	deviceConfig.Playback.DeviceID = playback.Pointer()
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.BufferSize)
	deviceConfig.Alsa.NoMMap = 1
	if cfg.LowLatency {
		deviceConfig.PerformanceProfile = malgo.LowLatency
	}

	s := &malgoStream{
		cb:      cb,
		inputs:  newPlanar(cfg.InputChannels, cfg.BufferSize),
		outputs: newPlanar(cfg.OutputChannels, cfg.BufferSize),
		// Keep the native IDs reachable while the device holds pointers to them
		capture:  capture,
		playback: playback,
	}

	device, err := malgo.InitDevice(d.ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: s.onData,
	})
	if err != nil {
		return nil, err
	}
	s.device = device
	return s, nil
}

// Close releases the miniaudio context.
func (d *MalgoDriver) Close() error {
	if d.ctx == nil {
		return nil
	}
	err := d.ctx.Uninit()
	d.ctx.Free()
	d.ctx = nil
	return err
}

// malgoStream adapts a duplex malgo device to Stream and converts between
// interleaved device buffers and planar period buffers.
type malgoStream struct {
	device   *malgo.Device
	cb       PeriodFunc
	inputs   [][]float32
	outputs  [][]float32
	capture  *malgo.DeviceID
	playback *malgo.DeviceID
}

func newPlanar(channels, frames int) [][]float32 {
	planes := make([][]float32, channels)
	for i := range planes {
		planes[i] = make([]float32, frames)
	}
	return planes
}

// ensure grows the planar buffers when the device delivers a longer period.
func ensure(planes [][]float32, frames int) {
	for i := range planes {
		if len(planes[i]) < frames {
			planes[i] = make([]float32, frames)
		}
	}
}

func (s *malgoStream) onData(pOutput, pInput []byte, frameCount uint32) {
	frames := int(frameCount)
	ensure(s.inputs, frames)
	ensure(s.outputs, frames)

	deinterleave(s.inputs, pInput, frames)
	s.cb(s.inputs, s.outputs, frames)
	interleave(pOutput, s.outputs, frames)
}

// deinterleave splits little-endian float32 frames into per-channel planes.
func deinterleave(planes [][]float32, src []byte, frames int) {
	channels := len(planes)
	for f := range frames {
		for ch := range channels {
			off := (f*channels + ch) * 4
			if off+4 > len(src) {
				planes[ch][f] = 0
				continue
			}
			planes[ch][f] = math.Float32frombits(binary.LittleEndian.Uint32(src[off:]))
		}
	}
}

// interleave packs per-channel planes into little-endian float32 frames.
func interleave(dst []byte, planes [][]float32, frames int) {
	channels := len(planes)
	for f := range frames {
		for ch := range channels {
			off := (f*channels + ch) * 4
			if off+4 > len(dst) {
				return
			}
			binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(planes[ch][f]))
		}
	}
}

func (s *malgoStream) Start() error {
	return s.device.Start()
}

func (s *malgoStream) Stop() error {
	return s.device.Stop()
}

func (s *malgoStream) Close() error {
	s.device.Uninit()
	return nil
}
