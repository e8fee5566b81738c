package audio

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk2gpu/music-app/internal/errors"
)

func TestEnumerateSortsAndNumbers(t *testing.T) {
	c := NewCatalog(&fakeDriver{devices: defaultDevices()})
	require.NoError(t, c.Enumerate())

	inputs := c.Inputs()
	require.Len(t, inputs, 2)
	assert.Equal(t, "Built-in Microphone", inputs[0].Name)
	assert.Equal(t, "USB Interface", inputs[1].Name)
	for i, d := range inputs {
		assert.Equal(t, i, d.Index)
	}

	outputs := c.Outputs()
	require.Len(t, outputs, 2)
	assert.Equal(t, "Built-in Output", outputs[0].Name)
	assert.Equal(t, "USB Interface", outputs[1].Name)
	assert.Equal(t, 1, outputs[1].Index)
	assert.Equal(t, 4, outputs[1].MaxOutputs)
}

func TestDuplexDeviceAppearsInBothLists(t *testing.T) {
	c := NewCatalog(&fakeDriver{devices: defaultDevices()})
	require.NoError(t, c.Enumerate())

	id := NewDeviceID("USB Interface")
	in, ok := c.InputByID(id)
	require.True(t, ok)
	out, ok := c.OutputByID(id)
	require.True(t, ok)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, "fake", in.Backend)
}

func TestDeviceIdentityIsStable(t *testing.T) {
	driver := &fakeDriver{devices: defaultDevices()}
	c := NewCatalog(driver)
	require.NoError(t, c.Enumerate())
	first := c.Inputs()

	// Reordered and extended enumeration
	driver.devices = append([]DriverDevice{{Name: "Aardvark", MaxInputs: 1}}, defaultDevices()...)
	require.NoError(t, c.Enumerate())

	mic, ok := c.InputByID(first[0].ID)
	require.True(t, ok)
	assert.Equal(t, "Built-in Microphone", mic.Name)
	assert.Equal(t, 1, mic.Index, "ordinal follows sort order, identity does not")
	assert.Equal(t, NewDeviceID("Built-in Microphone"), mic.ID)
}

func TestLookupMisses(t *testing.T) {
	c := NewCatalog(&fakeDriver{devices: defaultDevices()})
	require.NoError(t, c.Enumerate())

	_, ok := c.InputByID(NewDeviceID("Nope"))
	assert.False(t, ok)
	_, ok = c.InputByIndex(-1)
	assert.False(t, ok)
	_, ok = c.OutputByIndex(2)
	assert.False(t, ok)
}

func TestResolveZeroIDSelectsFirst(t *testing.T) {
	c := NewCatalog(&fakeDriver{devices: defaultDevices()})
	require.NoError(t, c.Enumerate())

	in, ok := c.resolveInput(DeviceID{})
	require.True(t, ok)
	assert.Equal(t, "Built-in Microphone", in.Name)

	empty := NewCatalog(&fakeDriver{})
	require.NoError(t, empty.Enumerate())
	_, ok = empty.resolveOutput(DeviceID{})
	assert.False(t, ok)
}

func TestEnumerateError(t *testing.T) {
	want := errors.NewStd("backend gone")
	c := NewCatalog(&fakeDriver{err: want})
	err := c.Enumerate()
	require.ErrorIs(t, err, want)
}

func TestCopiesAreIndependent(t *testing.T) {
	c := NewCatalog(&fakeDriver{devices: defaultDevices()})
	require.NoError(t, c.Enumerate())

	inputs := c.Inputs()
	inputs[0].Name = "changed"
	assert.Equal(t, "Built-in Microphone", c.Inputs()[0].Name)
}

func TestParseDeviceID(t *testing.T) {
	named := NewDeviceID("USB Interface")
	raw := uuid.New()

	tests := []struct {
		name  string
		input string
		want  DeviceID
	}{
		{"empty", "", DeviceID{}},
		{"whitespace", "   ", DeviceID{}},
		{"uuid", raw.String(), DeviceID(raw)},
		{"round trip", named.String(), named},
		{"device name", "USB Interface", named},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDeviceID(tt.input))
		})
	}
	assert.True(t, ParseDeviceID("").IsZero())
	assert.False(t, named.IsZero())
}
