// Package encode serializes transformed images into the supported raster
// formats and writes them to disk as whole files.
package encode

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is a normalized output format name.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatGIF  Format = "gif"
	FormatWEBP Format = "webp"
	FormatTIFF Format = "tiff"
)

const jpegQuality = 90

// Normalize lowercases a format string and folds the jpg/tif aliases. An
// unrecognized name is a caller error.
func Normalize(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "gif":
		return FormatGIF, nil
	case "webp":
		return FormatWEBP, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Encode writes img in the given format to w.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatGIF:
		return gif.Encode(w, img, nil)
	case FormatWEBP:
		return webp.Encode(w, img, &webp.Options{Quality: 90})
	case FormatTIFF:
		return tiff.Encode(w, img, nil)
	default:
		return fmt.Errorf("unsupported output format: %s", f)
	}
}

// Save encodes img fully in memory, creates the destination directory if
// absent, and writes the file in one shot. A failure affects only this
// target.
func Save(path string, img image.Image, f Format) error {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
