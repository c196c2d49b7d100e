package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-trafficlight/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600))
	}
}

func TestLoadDirectoryImages(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "frame-10.jpg", "frame-2.png", "corner.JPEG", "avenue.bmp", "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o700))

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 4)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f.Path)
		assert.Equal(t, []byte(names[i]), f.Data)
	}
	assert.Equal(t, []string{"frame-2.png", "frame-10.jpg", "avenue.bmp", "corner.JPEG"}, names)

	assert.Equal(t, 2, files[0].Frame)
	assert.Equal(t, images.FormatPNG, files[0].Format)
	assert.Equal(t, -1, files[3].Frame)
	assert.Equal(t, images.FormatJPEG, files[3].Format)
}

func TestLoadDirectoryMissing(t *testing.T) {
	_, err := LoadDirectoryImageFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadImageFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "light.jpg", "notes")

	file, err := LoadImageFile(filepath.Join(dir, "light.jpg"))
	require.NoError(t, err)
	assert.Equal(t, images.FormatJPEG, file.Format, "falls back to the extension")

	file, err = LoadImageFile(filepath.Join(dir, "notes"))
	require.NoError(t, err)
	assert.Equal(t, images.FormatUnknown, file.Format)
	assert.Equal(t, []byte("notes"), file.Data)

	_, err = LoadImageFile(filepath.Join(dir, "missing.png"))
	assert.ErrorContains(t, err, "file not found")
}

func TestLoadImageFileSniffsContent(t *testing.T) {
	dir := t.TempDir()
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

	tests := []struct {
		name string
		data []byte
		want images.ImageFormat
	}{
		{name: "intersection.tif", data: jpeg, want: images.FormatJPEG},
		{name: "capture", data: jpeg, want: images.FormatJPEG},
		{name: "mislabeled.jpg", data: png, want: images.FormatPNG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, tt.data, 0o600))

			file, err := LoadImageFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, file.Format)
			assert.Equal(t, tt.data, file.Data)
		})
	}
}

func TestLoadDirectorySkipsUnknownExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "light.jpg", "light.tif", "README")

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "light.jpg", filepath.Base(files[0].Path))
}
