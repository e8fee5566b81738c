package diskmanager

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk2gpu/music-app/internal/errors"
)

func TestGetDetailedDiskUsage(t *testing.T) {
	t.Parallel()

	info, err := GetDetailedDiskUsage(t.TempDir())
	require.NoError(t, err)
	assert.Positive(t, info.TotalBytes)
	assert.LessOrEqual(t, info.FreeBytes, info.TotalBytes)
}

func TestGetDetailedDiskUsageMissingPath(t *testing.T) {
	t.Parallel()

	// Not created yet: resolves to the temp dir
	missing := filepath.Join(t.TempDir(), "recordings", "today")
	_, err := GetDetailedDiskUsage(missing)
	require.NoError(t, err)
}

func TestCheckFreeSpace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	free, err := CheckFreeSpace(dir, 0)
	require.NoError(t, err)
	assert.Positive(t, free)

	_, err = CheckFreeSpace(dir, math.MaxUint64)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLowDiskSpace))
	assert.True(t, errors.IsCategory(err, errors.CategoryDiskUsage))
}

func TestListRecordingsAndOrphans(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name string, age time.Duration) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		mt := time.Now().Add(-age)
		require.NoError(t, os.Chtimes(path, mt, mt))
	}
	write("audio_out_00000002.wav", time.Minute)
	write("audio_out_00000001.wav", time.Hour)
	write("temp_audio_out_00000003.raw", time.Second)
	write("notes.txt", 0)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "audio_out_dir.wav"), 0o755))

	recs, err := ListRecordings(dir)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "audio_out_00000001.wav", filepath.Base(recs[0].Path))
	assert.Equal(t, "audio_out_00000002.wav", filepath.Base(recs[1].Path))

	orphans, err := FindOrphanedTempFiles(dir)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, int64(1), orphans[0].Size)

	none, err := ListRecordings(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}
