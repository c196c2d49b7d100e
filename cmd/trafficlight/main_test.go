package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvr-ai/go-trafficlight/images"
	"github.com/nvr-ai/go-trafficlight/inference"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type stubDetector struct {
	boxes []inference.BoundingBox
}

func (s stubDetector) Detect(context.Context, gocv.Mat) ([]inference.BoundingBox, error) {
	return s.boxes, nil
}

func (stubDetector) Close() error { return nil }

func stubFactory(boxes ...inference.BoundingBox) detectorFactory {
	return func(inference.Config) (inference.Detector, error) {
		return stubDetector{boxes: boxes}, nil
	}
}

// writeRedLight writes a JPEG with one housing lit red in its top third.
func writeRedLight(t *testing.T, path string) {
	t.Helper()
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 240, 240, gocv.MatTypeCV8UC3)
	defer frame.Close()
	gocv.Rectangle(&frame, image.Rect(60, 20, 120, 73), color.RGBA{R: 255, A: 255}, -1)

	encoded, err := images.EncodeJPEG(frame, 100)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, encoded.Data, 0o600))
}

var redBox = inference.BoundingBox{Label: "traffic light", Confidence: 0.9, X1: 60, Y1: 20, X2: 120, Y2: 180}

func TestRunUsage(t *testing.T) {
	t.Chdir(t.TempDir())
	var out bytes.Buffer

	code := run(nil, &out, stubFactory())
	assert.Equal(t, 1, code)
	assert.JSONEq(t, `{"error":"Please provide an image path"}`, out.String())

	out.Reset()
	code = run([]string{"a.jpg", "b.jpg"}, &out, stubFactory())
	assert.Equal(t, 1, code)
	assert.JSONEq(t, `{"error":"Please provide an image path"}`, out.String())
}

func TestRunSingleImage(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "corner.jpg")
	writeRedLight(t, path)

	var out bytes.Buffer
	code := run([]string{path}, &out, stubFactory(redBox))
	require.Equal(t, 0, code, out.String())

	var body struct {
		Results []struct {
			Image string `json:"image"`
			Label string `json:"label"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "Red", body.Results[0].Label)
	assert.True(t, strings.HasPrefix(body.Results[0].Image, "data:image/jpeg;base64,"))
}

func TestRunMissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var out bytes.Buffer
	code := run([]string{filepath.Join(dir, "missing.jpg")}, &out, stubFactory())
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), `"error":"file not found`)
}

func TestRunDetectorUnavailable(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "corner.jpg")
	writeRedLight(t, path)

	failing := func(inference.Config) (inference.Detector, error) {
		return nil, errors.New("model not found")
	}

	var out bytes.Buffer
	assert.Equal(t, 1, run([]string{path}, &out, failing))
	assert.JSONEq(t, `{"error":"model not found"}`, out.String())
}

func TestRunDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeRedLight(t, filepath.Join(dir, "frame-1.jpg"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame-2.jpg"), []byte("broken"), 0o600))

	var out bytes.Buffer
	code := run([]string{"-dir", dir}, &out, stubFactory(redBox))
	assert.Equal(t, 1, code, "a broken file fails the run")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"label":"Red"`)
	assert.Contains(t, lines[0], "frame-1.jpg")
	assert.Contains(t, lines[1], `"error"`)
	assert.Contains(t, lines[1], "frame-2.jpg")
}

func TestRunImageWithUncommonExtension(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "corner.tif")
	writeRedLight(t, path)

	var out bytes.Buffer
	code := run([]string{path}, &out, stubFactory(redBox))
	require.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), `"label":"Red"`)
}

func TestRunUndecodableFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))

	var out bytes.Buffer
	assert.Equal(t, 1, run([]string{path}, &out, stubFactory(redBox)))
	assert.Contains(t, out.String(), "invalid image")
}
