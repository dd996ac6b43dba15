// Package thumbnail turns uploaded images into fixed-size square PNG
// thumbnails and names the objects they are stored under.
package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// Suffix marks objects produced by this service. Keys ending with it are
	// never processed again.
	Suffix = "_thumbnail.png"

	// ContentType is the MIME type of every generated thumbnail.
	ContentType = "image/png"

	// reduceRatio estimates thumbnail bytes from the source object size.
	reduceRatio = 0.53
)

// ErrInvalidSize is returned when the requested edge length is not positive.
var ErrInvalidSize = errors.New("thumbnail size must be positive")

// IsThumbnailKey reports whether key names an object this service produced.
func IsThumbnailKey(key string) bool {
	return strings.HasSuffix(key, Suffix)
}

// DeriveKey drops everything from the last "." of key and appends Suffix.
// A key without a "." is used whole.
func DeriveKey(key string) string {
	base := key
	if i := strings.LastIndex(key, "."); i >= 0 {
		base = key[:i]
	}
	return base + Suffix
}

// ApproxReduceSize estimates the thumbnail size in kilobytes from the size of
// the original object. It is not a measurement of the encoded PNG.
func ApproxReduceSize(originalBytes int64) string {
	return fmt.Sprintf("%.1fKB", float64(originalBytes)*reduceRatio/1000)
}

// Resize center-crops img to a square and scales it to size x size.
func Resize(img image.Image, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos), nil
}

// Generate decodes the image read from r, resizes it and returns PNG bytes.
func Generate(r io.Reader, size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	thumb, err := Resize(img, size)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
