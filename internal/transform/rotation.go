package transform

import (
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"
)

// ApplyRotation handles the rotation flag. spec is "" (no-op), "auto" (read
// the EXIF orientation tag from the original file bytes), or a degree
// literal reduced modulo 360 where only 90, 180, and 270 rotate. Unreadable
// EXIF or an unparseable literal is a silent no-op.
func ApplyRotation(img image.Image, spec string, original []byte) image.Image {
	switch spec {
	case "":
		return img
	case "auto":
		code, ok := orientationCode(original)
		if !ok {
			return img
		}
		return rotateClockwise(img, orientationDegrees(code))
	default:
		deg, err := strconv.Atoi(strings.TrimSpace(spec))
		if err != nil {
			return img
		}
		return rotateClockwise(img, NormalizeDegrees(deg))
	}
}

// NormalizeDegrees reduces any degree value into [0, 360).
func NormalizeDegrees(deg int) int {
	return ((deg % 360) + 360) % 360
}

// orientationDegrees maps the EXIF orientation codes this pipeline honors to
// clockwise degrees. Codes describing flips (2, 4, 5, 7) and the identity
// are no-ops.
func orientationDegrees(code int) int {
	switch code {
	case 3:
		return 180
	case 6:
		return 90
	case 8:
		return 270
	default:
		return 0
	}
}

// rotateClockwise rotates by deg clockwise. The imaging package rotates
// counter-clockwise, so 90 and 270 swap.
func rotateClockwise(img image.Image, deg int) image.Image {
	switch deg {
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// orientationCode extracts the EXIF Orientation value from raw file bytes.
func orientationCode(buf []byte) (int, bool) {
	rawExif, err := exif.SearchAndExtractExif(buf)
	if err != nil {
		return 0, false
	}
	tags, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return 0, false
	}
	for _, tag := range tags {
		if !strings.Contains(strings.ToLower(tag.TagName), "orientation") {
			continue
		}
		// SHORT tags decode to []uint16
		if vals, ok := tag.Value.([]uint16); ok && len(vals) > 0 {
			return int(vals[0]), true
		}
		// Formatted renders slice values bracketed, e.g. "[6]"
		fields := strings.Fields(tag.Formatted)
		if len(fields) == 0 {
			continue
		}
		code, err := strconv.Atoi(strings.Trim(fields[0], "[]"))
		if err != nil {
			continue
		}
		return code, true
	}
	return 0, false
}
