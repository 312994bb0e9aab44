package imgutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectRawMagicAndToken(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want bool
	}{
		{"little endian with token", append([]byte("II*\x00...."), []byte("NIKON CORPORATION")...), true},
		{"big endian with token", append([]byte("MM\x00*...."), []byte("nikon d750")...), true},
		{"mixed case token", append([]byte("II*\x00"), []byte("NiKoN")...), true},
		{"magic without token", append([]byte("II*\x00"), bytes.Repeat([]byte{0}, 64)...), false},
		{"token without magic", []byte("JFIF nikon"), false},
		{"png disguised", []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}, false},
		{"too short", []byte("II"), false},
		{"empty", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectRaw(tc.buf); got != tc.want {
				t.Fatalf("DetectRaw = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDetectRawStructuredMakeTag(t *testing.T) {
	buf := buildTIFFWithMake(t, "NIKON\x00")
	if !DetectRaw(buf) {
		t.Fatal("expected Make tag to mark the file as RAW")
	}

	other := buildTIFFWithMake(t, "Canon\x00")
	if DetectRaw(other) {
		t.Fatal("expected non-Nikon maker to be rejected")
	}
}

func TestSniffFile(t *testing.T) {
	dir := t.TempDir()

	raw := filepath.Join(dir, "shot.nef")
	if err := os.WriteFile(raw, append([]byte("II*\x00"), []byte("NIKON")...), 0o644); err != nil {
		t.Fatal(err)
	}
	ok, err := SniffFile(raw)
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if !ok {
		t.Fatal("expected RAW detection")
	}

	fake := filepath.Join(dir, "fake.nef")
	if err := os.WriteFile(fake, []byte("not a raw file at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	ok, err = SniffFile(fake)
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if ok {
		t.Fatal("expected disguised file to be rejected")
	}

	if _, err := SniffFile(filepath.Join(dir, "missing.nef")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// buildTIFFWithMake assembles a minimal little-endian TIFF with a single IFD
// carrying the Make (0x010f) tag.
func buildTIFFWithMake(t *testing.T, make string) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&buf, binary.LittleEndian, uint32(8)) // first IFD offset

	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))      // entry count
	_ = binary.Write(&buf, binary.LittleEndian, uint16(0x010f)) // Make
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))      // ASCII
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(make)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(26)) // value offset
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0))  // next IFD
	buf.WriteString(make)

	return buf.Bytes()
}
