// Package buildinfo holds the version metadata injected at link time.
package buildinfo

import "fmt"

// UnknownValue is reported for metadata that was not set at build time.
const UnknownValue = "unknown"

// Info describes the running binary.
type Info struct {
	Version   string
	BuildDate string
	Commit    string
}

// New returns build metadata. Empty values report as UnknownValue.
func New(version, buildDate, commit string) *Info {
	return &Info{Version: version, BuildDate: buildDate, Commit: commit}
}

// GetVersion returns the version, or UnknownValue.
func (i *Info) GetVersion() string {
	if i == nil {
		return UnknownValue
	}
	return orUnknown(i.Version)
}

// GetBuildDate returns the build date, or UnknownValue.
func (i *Info) GetBuildDate() string {
	if i == nil {
		return UnknownValue
	}
	return orUnknown(i.BuildDate)
}

// GetCommit returns the source revision, or UnknownValue.
func (i *Info) GetCommit() string {
	if i == nil {
		return UnknownValue
	}
	return orUnknown(i.Commit)
}

// Release is the release name reported with telemetry events.
func (i *Info) Release() string {
	return "music-app@" + i.GetVersion()
}

func (i *Info) String() string {
	return fmt.Sprintf("music-app %s (built %s, commit %s)", i.GetVersion(), i.GetBuildDate(), i.GetCommit())
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownValue
	}
	return s
}
