// Package audio implements the capture core: device enumeration, a duplex
// stream whose period callback fans the hardware buffers out to registered
// consumers, and the consumers themselves (level statistics, the
// loudness-triggered recorder, playback and a monitoring scope).
//
// Consumers run on the audio thread. They must not block on anything other
// than the short, bounded waits documented on each type.
package audio

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// deviceNamespace seeds name-derived device identities.
var deviceNamespace = uuid.MustParse("3b6f0c9e-5a1d-4f6e-9c2b-7d8e1f0a4b5c")

// DeviceID is a stable device identity derived from the device name, so it
// survives re-enumeration and restarts.
type DeviceID uuid.UUID

// NewDeviceID returns the identity for a device name.
func NewDeviceID(name string) DeviceID {
	return DeviceID(uuid.NewSHA1(deviceNamespace, []byte(name)))
}

// ParseDeviceID interprets a configuration value. An empty string is the
// zero ID (use the first device); a UUID is used as is; anything else is
// treated as a device name.
func ParseDeviceID(s string) DeviceID {
	s = strings.TrimSpace(s)
	if s == "" {
		return DeviceID{}
	}
	if u, err := uuid.Parse(s); err == nil {
		return DeviceID(u)
	}
	return NewDeviceID(s)
}

func (id DeviceID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is unset.
func (id DeviceID) IsZero() bool {
	return id == DeviceID{}
}

// DeviceInfo describes one enumerated device.
type DeviceInfo struct {
	Name        string
	ID          DeviceID
	Index       int // dense ordinal within its list
	MaxInputs   int
	MaxOutputs  int
	Backend     string
	NativeIndex int
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%d: %s [%s] in=%d out=%d", d.Index, d.Name, d.ID, d.MaxInputs, d.MaxOutputs)
}

// DriverDevice is a device as reported by a Driver.
type DriverDevice struct {
	Name        string
	MaxInputs   int
	MaxOutputs  int
	NativeIndex int
	Backend     string
}

// Driver enumerates the devices of a platform audio API.
type Driver interface {
	Devices() ([]DriverDevice, error)
}

// Catalog holds the sorted input and output device lists.
//
// Enumerate must not run concurrently with lookups.
type Catalog struct {
	driver  Driver
	inputs  []DeviceInfo
	outputs []DeviceInfo
}

// NewCatalog returns an empty catalog backed by driver.
func NewCatalog(driver Driver) *Catalog {
	return &Catalog{driver: driver}
}

// Enumerate rebuilds both lists from the driver. A device with both input
// and output channels appears in both lists. Each list is sorted by name
// and numbered densely from 0.
func (c *Catalog) Enumerate() error {
	devices, err := c.driver.Devices()
	if err != nil {
		return fmt.Errorf("enumerating audio devices: %w", err)
	}

	var inputs, outputs []DeviceInfo
	for _, d := range devices {
		info := DeviceInfo{
			Name:        d.Name,
			ID:          NewDeviceID(d.Name),
			MaxInputs:   d.MaxInputs,
			MaxOutputs:  d.MaxOutputs,
			Backend:     d.Backend,
			NativeIndex: d.NativeIndex,
		}
		if d.MaxInputs > 0 {
			inputs = append(inputs, info)
		}
		if d.MaxOutputs > 0 {
			outputs = append(outputs, info)
		}
	}

	c.inputs = sortAndNumber(inputs)
	c.outputs = sortAndNumber(outputs)
	return nil
}

func sortAndNumber(list []DeviceInfo) []DeviceInfo {
	slices.SortStableFunc(list, func(a, b DeviceInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	for i := range list {
		list[i].Index = i
	}
	return list
}

// Inputs returns a copy of the input device list.
func (c *Catalog) Inputs() []DeviceInfo {
	return slices.Clone(c.inputs)
}

// Outputs returns a copy of the output device list.
func (c *Catalog) Outputs() []DeviceInfo {
	return slices.Clone(c.outputs)
}

// InputByID looks up an input device by identity.
func (c *Catalog) InputByID(id DeviceID) (DeviceInfo, bool) {
	return byID(c.inputs, id)
}

// OutputByID looks up an output device by identity.
func (c *Catalog) OutputByID(id DeviceID) (DeviceInfo, bool) {
	return byID(c.outputs, id)
}

// InputByIndex looks up an input device by ordinal.
func (c *Catalog) InputByIndex(i int) (DeviceInfo, bool) {
	return byIndex(c.inputs, i)
}

// OutputByIndex looks up an output device by ordinal.
func (c *Catalog) OutputByIndex(i int) (DeviceInfo, bool) {
	return byIndex(c.outputs, i)
}

// resolveInput maps the zero ID to the first input device.
func (c *Catalog) resolveInput(id DeviceID) (DeviceInfo, bool) {
	if id.IsZero() {
		return c.InputByIndex(0)
	}
	return c.InputByID(id)
}

// resolveOutput maps the zero ID to the first output device.
func (c *Catalog) resolveOutput(id DeviceID) (DeviceInfo, bool) {
	if id.IsZero() {
		return c.OutputByIndex(0)
	}
	return c.OutputByID(id)
}

func byID(list []DeviceInfo, id DeviceID) (DeviceInfo, bool) {
	for _, d := range list {
		if d.ID == id {
			return d, true
		}
	}
	return DeviceInfo{}, false
}

func byIndex(list []DeviceInfo, i int) (DeviceInfo, bool) {
	if i < 0 || i >= len(list) {
		return DeviceInfo{}, false
	}
	return list[i], true
}
