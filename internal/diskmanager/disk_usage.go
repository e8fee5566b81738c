// Package diskmanager checks the free space of the volume that holds recordings.
package diskmanager

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/vk2gpu/music-app/internal/errors"
	"github.com/vk2gpu/music-app/internal/logger"
	"github.com/vk2gpu/music-app/internal/observability/metrics"
)

// ErrLowDiskSpace is returned by CheckFreeSpace when free space is below the minimum.
var ErrLowDiskSpace = errors.New(errors.NewStd("insufficient free disk space")).
	Component("diskmanager").
	Category(errors.CategoryDiskUsage).
	Build()

// DiskSpaceInfo holds detailed disk space information.
type DiskSpaceInfo struct {
	TotalBytes uint64
	UsedBytes  uint64
	FreeBytes  uint64
}

var (
	diskMetrics     *metrics.StorageMetrics
	diskMetricsOnce sync.Once
)

// SetMetrics installs the storage collector. Only the first call takes effect.
func SetMetrics(m *metrics.StorageMetrics) {
	diskMetricsOnce.Do(func() {
		diskMetrics = m
	})
}

// GetDetailedDiskUsage returns usage for the filesystem containing path.
// A path that does not exist yet is resolved to its nearest existing parent.
func GetDetailedDiskUsage(path string) (DiskSpaceInfo, error) {
	start := time.Now()
	usage, err := disk.Usage(existingParent(path))
	if err != nil {
		if diskMetrics != nil {
			diskMetrics.ObserveProbeFailure(time.Since(start).Seconds())
		}
		return DiskSpaceInfo{}, errors.New(err).
			Component("diskmanager").
			Category(errors.CategoryDiskUsage).
			Context("path", path).
			Build()
	}

	info := DiskSpaceInfo{
		TotalBytes: usage.Total,
		UsedBytes:  usage.Used,
		FreeBytes:  usage.Free,
	}
	if diskMetrics != nil {
		diskMetrics.ObserveVolume(path, info.FreeBytes, info.TotalBytes, time.Since(start).Seconds())
	}
	return info, nil
}

// CheckFreeSpace returns the free bytes on the volume holding path, and
// ErrLowDiskSpace when that is less than minBytes.
func CheckFreeSpace(path string, minBytes uint64) (uint64, error) {
	info, err := GetDetailedDiskUsage(path)
	if err != nil {
		return 0, err
	}
	if info.FreeBytes < minBytes {
		if diskMetrics != nil {
			diskMetrics.IncLowSpace(path)
		}
		GetLogger().Warn("low disk space",
			logger.String("path", path),
			logger.Uint64("free_bytes", info.FreeBytes),
			logger.Uint64("min_bytes", minBytes))
		return info.FreeBytes, errors.New(ErrLowDiskSpace).
			Component("diskmanager").
			Category(errors.CategoryDiskUsage).
			Context("free_bytes", info.FreeBytes).
			Context("min_bytes", minBytes).
			Build()
	}
	return info.FreeBytes, nil
}

// existingParent walks up from path until it finds something that exists.
func existingParent(path string) string {
	p := filepath.Clean(path)
	for {
		if exists(p) {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}
