package imgutil

import (
	"bytes"
	"io"
	"os"

	exif "github.com/dsoprea/go-exif/v3"
)

// sniffLimit bounds how much of a file the heuristic inspects. NEF files keep
// the maker name within the first EXIF block, well inside this window.
const sniffLimit = 128 * 1024

var (
	tiffSigLE  = []byte{0x49, 0x49, 0x2a, 0x00} // "II*\0"
	tiffSigBE  = []byte{0x4d, 0x4d, 0x00, 0x2a} // "MM\0*"
	makerToken = []byte("nikon")
)

// DetectRaw reports whether buf looks like a NEF (Nikon RAW) file.
//
// The check is a best-effort heuristic: the buffer must start with a TIFF
// byte-order signature, and either contain the maker token anywhere in its
// head bytes or expose it through a structural EXIF parse. It never fails;
// unreadable or malformed input is simply not RAW.
func DetectRaw(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	if !bytes.HasPrefix(buf, tiffSigLE) && !bytes.HasPrefix(buf, tiffSigBE) {
		return false
	}
	if containsFold(buf, makerToken) {
		return true
	}
	return exifMentionsMaker(buf)
}

// SniffFile reads the head of the file at path and applies DetectRaw.
func SniffFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads up to sniffLimit bytes from r and applies DetectRaw.
func SniffReader(r io.Reader) (bool, error) {
	buf, err := io.ReadAll(io.LimitReader(r, sniffLimit))
	if err != nil {
		return false, err
	}
	return DetectRaw(buf), nil
}

// exifMentionsMaker walks the flat EXIF tag set looking for the maker token
// in any formatted value.
func exifMentionsMaker(buf []byte) bool {
	rawExif, err := exif.SearchAndExtractExif(buf)
	if err != nil {
		return false
	}
	tags, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return false
	}
	for _, tag := range tags {
		if containsFold([]byte(tag.Formatted), makerToken) {
			return true
		}
	}
	return false
}

// containsFold is a case-insensitive substring scan over raw bytes. token
// must already be lowercase ASCII.
func containsFold(buf, token []byte) bool {
	if len(token) == 0 || len(buf) < len(token) {
		return false
	}
	for i := 0; i+len(token) <= len(buf); i++ {
		j := 0
		for ; j < len(token); j++ {
			b := buf[i+j]
			if b >= 'A' && b <= 'Z' {
				b += 'a' - 'A'
			}
			if b != token[j] {
				break
			}
		}
		if j == len(token) {
			return true
		}
	}
	return false
}
