// Package images - Image decoding, encoding and geometry helpers for the
// detection pipeline.
package images

import (
	"encoding/base64"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// DefaultJPEGQuality matches OpenCV's default imencode quality.
const DefaultJPEGQuality = 95

// ErrEmptyImage is returned when image bytes are missing or do not decode to
// any pixels.
var ErrEmptyImage = errors.New("image is empty")

// Image represents an encoded image with a format, data, width, and height.
type Image struct {
	// The format of the image.
	Format ImageFormat `json:"format" yaml:"format"`
	// The data of the image.
	Data []byte `json:"data" yaml:"data"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
}

// DataURI renders the image as an embeddable data URI.
//
// @example
// uri := img.DataURI() // data:image/jpeg;base64,/9j/4AAQ...
func (i Image) DataURI() string {
	return "data:" + i.Format.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Decode decodes encoded image bytes into a BGR Mat.
//
// Arguments:
//   - data: JPEG, PNG or BMP bytes.
//
// Returns:
//   - gocv.Mat: The decoded 8-bit BGR image. The caller closes it.
//   - error: ErrEmptyImage for empty input, or a decoding error.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), ErrEmptyImage
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		mat.Close()
		return gocv.NewMat(), errors.Wrap(err, "failed to decode image")
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), errors.Wrap(ErrEmptyImage, "decoded image has no pixels")
	}
	return mat, nil
}

// EncodeJPEG encodes a BGR Mat as JPEG.
//
// Arguments:
//   - mat: The image to encode.
//   - quality: JPEG quality in [1, 100].
//
// Returns:
//   - Image: The encoded image with its dimensions.
//   - error: An error if the Mat is empty or encoding fails.
func EncodeJPEG(mat gocv.Mat, quality int) (Image, error) {
	if mat.Empty() {
		return Image{}, ErrEmptyImage
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return Image{}, errors.Wrap(err, "failed to encode JPEG")
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)

	return Image{
		Format: FormatJPEG,
		Data:   out,
		Width:  mat.Cols(),
		Height: mat.Rows(),
	}, nil
}
