package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoAccessors(t *testing.T) {
	tests := []struct {
		name    string
		info    *Info
		version string
		date    string
		commit  string
	}{
		{
			name:    "nil info",
			info:    nil,
			version: UnknownValue,
			date:    UnknownValue,
			commit:  UnknownValue,
		},
		{
			name:    "empty values",
			info:    New("", "", ""),
			version: UnknownValue,
			date:    UnknownValue,
			commit:  UnknownValue,
		},
		{
			name:    "populated",
			info:    New("1.2.0-beta.1", "2026-10-01", "abc123"),
			version: "1.2.0-beta.1",
			date:    "2026-10-01",
			commit:  "abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.version, tt.info.GetVersion())
			assert.Equal(t, tt.date, tt.info.GetBuildDate())
			assert.Equal(t, tt.commit, tt.info.GetCommit())
		})
	}
}

func TestRelease(t *testing.T) {
	assert.Equal(t, "music-app@1.0.0", New("1.0.0", "", "").Release())
	assert.Equal(t, "music-app@unknown", (*Info)(nil).Release())
	assert.Equal(t, "music-app 1.0.0 (built unknown, commit unknown)", New("1.0.0", "", "").String())
}
