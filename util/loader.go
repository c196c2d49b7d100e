// Package util - Loading image files from disk.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-trafficlight/images"
	"github.com/pkg/errors"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Format is sniffed from the bytes, or taken from the extension when the
	// magic number is not recognized. It may be FormatUnknown.
	Format images.ImageFormat
	// Frame is the N of a "frame-N" file name, or -1.
	Frame int
}

// LoadImageFile reads one image file regardless of its extension. Whether the
// bytes decode is left to the caller.
//
// Arguments:
// - path: Path to the image file.
//
// Returns:
// - ImageFile: The file's bytes and metadata.
// - error: Error if the file is missing or unreadable.
func LoadImageFile(path string) (ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ImageFile{}, errors.Errorf("file not found: %s", path)
		}
		return ImageFile{}, errors.Wrapf(err, "failed to read %s", path)
	}

	format := images.SniffFormat(data)
	if format == images.FormatUnknown {
		format = images.FormatFromPath(path)
	}

	return ImageFile{
		Path:   path,
		Data:   data,
		Format: format,
		Frame:  frameNumber(filepath.Base(path)),
	}, nil
}

// LoadDirectoryImageFiles reads all image files from a directory, skipping
// subdirectories and files without a .jpg, .jpeg, .png or .bmp extension.
//
// Files named "frame-N.ext" sort by N ahead of all others; the rest sort by
// name.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() || images.FormatFromPath(entry.Name()) == images.FormatUnknown {
			continue
		}

		file, err := LoadImageFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		switch {
		case a.Frame >= 0 && b.Frame >= 0 && a.Frame != b.Frame:
			return a.Frame < b.Frame
		case (a.Frame >= 0) != (b.Frame >= 0):
			return a.Frame >= 0
		}
		return a.Path < b.Path
	})

	return files, nil
}

func frameNumber(name string) int {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(stem, "frame-") {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(stem, "frame-"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}
