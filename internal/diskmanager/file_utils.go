package diskmanager

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Recording file name patterns written by the recorder.
const (
	recordingPrefix = "audio_out_"
	recordingExt    = ".wav"
	tempPrefix      = "temp_audio_out_"
	tempExt         = ".raw"
)

// FileInfo holds information about a file
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListRecordings returns finished recordings in dir, oldest first.
// A missing directory yields an empty list.
func ListRecordings(dir string) ([]FileInfo, error) {
	return listMatching(dir, recordingPrefix, recordingExt)
}

// FindOrphanedTempFiles returns temporary stream files left behind by a
// session that never finalized, for example after a crash.
func FindOrphanedTempFiles(dir string) ([]FileInfo, error) {
	files, err := listMatching(dir, tempPrefix, tempExt)
	if err == nil && diskMetrics != nil {
		diskMetrics.SetOrphanFiles(dir, len(files))
	}
	return files, err
}

func listMatching(dir, prefix, ext string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Path < files[j].Path
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}
