package libraw

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"testing"
	"unsafe"

	"github.com/rs/zerolog"
)

// fakeLib is an in-memory stand-in for the native library. It counts every
// entry-point invocation and tracks per-buffer frees so tests can assert the
// exactly-once cleanup contract.
type fakeLib struct {
	t     *testing.T
	calls map[string]int

	failInit      bool
	openStatus    int32
	unpackStatus  int32
	processStatus int32

	// popped front-to-back on each MakeMemImage call; 0 means null.
	memImages []uintptr
	memErr    int32

	backing [][]byte
	freed   map[uintptr]int
	closed  int

	noAutoBright int32
}

func newFakeLib(t *testing.T) *fakeLib {
	return &fakeLib{
		t:     t,
		calls: map[string]int{},
		freed: map[uintptr]int{},
	}
}

// newImage fabricates a native processed-image buffer: header followed by
// payload, exactly as LibRaw lays it out.
func (f *fakeLib) newImage(kind int32, w, h, colors, bits uint16, data []byte, size uint32) uintptr {
	buf := make([]byte, int(memImageHeaderSize)+len(data))
	hdr := (*memImageHeader)(unsafe.Pointer(&buf[0]))
	hdr.Kind = kind
	hdr.Width = w
	hdr.Height = h
	hdr.Colors = colors
	hdr.Bits = bits
	hdr.DataSize = size
	copy(buf[memImageHeaderSize:], data)
	f.backing = append(f.backing, buf)
	return uintptr(unsafe.Pointer(&buf[0]))
}

func (f *fakeLib) api() *API {
	return &API{
		Init: func(flags int32) uintptr {
			f.calls["init"]++
			if f.failInit {
				return 0
			}
			return 0xbeef
		},
		OpenBuffer: func(handle uintptr, data unsafe.Pointer, size uintptr) int32 {
			f.calls["open_buffer"]++
			return f.openStatus
		},
		Unpack: func(handle uintptr) int32 {
			f.calls["unpack"]++
			return f.unpackStatus
		},
		Process: func(handle uintptr) int32 {
			f.calls["process"]++
			return f.processStatus
		},
		MakeMemImage: func(handle uintptr, errc *int32) uintptr {
			f.calls["make_mem_image"]++
			*errc = f.memErr
			if len(f.memImages) == 0 {
				return 0
			}
			p := f.memImages[0]
			f.memImages = f.memImages[1:]
			return p
		},
		ClearMem: func(img uintptr) {
			f.calls["clear_mem"]++
			f.freed[img]++
		},
		Close: func(handle uintptr) {
			f.calls["close"]++
			f.closed++
		},
		Strerror: func(code int32) string {
			f.calls["strerror"]++
			return "fake libraw error"
		},
		SetOutputBPS:   func(handle uintptr, bps int32) int32 { f.calls["set_bps"]++; return 0 },
		SetOutputColor: func(handle uintptr, space int32) int32 { f.calls["set_color"]++; return 0 },
		SetNoAutoBright: func(handle uintptr, disable int32) int32 {
			f.calls["set_no_auto_bright"]++
			f.noAutoBright = disable
			return 0
		},
	}
}

// checkCleanup asserts the native handle was closed exactly once and every
// fabricated buffer was freed exactly once.
func (f *fakeLib) checkCleanup(obtained ...uintptr) {
	f.t.Helper()
	if f.closed != 1 {
		f.t.Fatalf("close called %d times, want 1", f.closed)
	}
	for _, p := range obtained {
		if f.freed[p] != 1 {
			f.t.Fatalf("buffer %#x freed %d times, want 1", p, f.freed[p])
		}
	}
	if f.calls["clear_mem"] != len(obtained) {
		f.t.Fatalf("clear_mem called %d times, want %d", f.calls["clear_mem"], len(obtained))
	}
}

func rgbGrid(w, h int) []byte {
	data := make([]byte, w*h*3)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func TestDecodeFullProcessRGB(t *testing.T) {
	f := newFakeLib(t)
	data := rgbGrid(4, 3)
	p := f.newImage(imageKindBitmap, 4, 3, 3, 8, data, uint32(len(data)))
	f.memImages = []uintptr{p}

	img, err := Decode(f.api(), []byte("raw"), Options{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("got %dx%d, want 4x3", b.Dx(), b.Dy())
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("got %T, want *image.NRGBA", img)
	}
	if nrgba.Pix[0] != data[0] || nrgba.Pix[1] != data[1] || nrgba.Pix[2] != data[2] || nrgba.Pix[3] != 0xff {
		t.Fatalf("first pixel %v does not match source %v", nrgba.Pix[:4], data[:3])
	}
	if f.calls["process"] != 1 {
		t.Fatalf("process called %d times, want 1", f.calls["process"])
	}
	f.checkCleanup(p)
}

func TestDecodeRGBAGrid(t *testing.T) {
	f := newFakeLib(t)
	data := make([]byte, 2*2*4)
	for i := range data {
		data[i] = byte(10 + i)
	}
	p := f.newImage(imageKindBitmap, 2, 2, 4, 8, data, uint32(len(data)))
	f.memImages = []uintptr{p}

	img, err := Decode(f.api(), []byte("raw"), Options{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	nrgba := img.(*image.NRGBA)
	if !bytes.Equal(nrgba.Pix, data) {
		t.Fatal("RGBA pixels were not copied verbatim")
	}
	f.checkCleanup(p)
}

func TestDecodePreviewJPEGSkipsFullProcess(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for i := range src.Pix {
		src.Pix[i] = 0x80
	}
	var payload bytes.Buffer
	if err := jpeg.Encode(&payload, src, nil); err != nil {
		t.Fatal(err)
	}

	f := newFakeLib(t)
	p := f.newImage(imageKindJPEG, 0, 0, 0, 0, payload.Bytes(), uint32(payload.Len()))
	f.memImages = []uintptr{p}

	img, err := Decode(f.api(), []byte("raw"), Options{UsePreview: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Fatalf("got %dx%d, want 8x6", b.Dx(), b.Dy())
	}
	if f.calls["process"] != 0 {
		t.Fatalf("full process ran %d times on the preview path, want 0", f.calls["process"])
	}
	if f.calls["make_mem_image"] != 1 {
		t.Fatalf("make_mem_image called %d times, want 1", f.calls["make_mem_image"])
	}
	f.checkCleanup(p)
}

func TestDecodePreviewNullFallsThrough(t *testing.T) {
	f := newFakeLib(t)
	data := rgbGrid(2, 2)
	full := f.newImage(imageKindBitmap, 2, 2, 3, 8, data, uint32(len(data)))
	// first call (preview) returns null, second (full) succeeds
	f.memImages = []uintptr{0, full}

	img, err := Decode(f.api(), []byte("raw"), Options{UsePreview: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img == nil {
		t.Fatal("expected image from full processing")
	}
	if f.calls["process"] != 1 {
		t.Fatalf("process called %d times, want 1", f.calls["process"])
	}
	if f.calls["make_mem_image"] != 2 {
		t.Fatalf("make_mem_image called %d times, want 2", f.calls["make_mem_image"])
	}
	f.checkCleanup(full)
}

func TestDecodePreviewEmptyFallsThrough(t *testing.T) {
	f := newFakeLib(t)
	empty := f.newImage(imageKindBitmap, 2, 2, 3, 8, nil, 0)
	data := rgbGrid(2, 2)
	full := f.newImage(imageKindBitmap, 2, 2, 3, 8, data, uint32(len(data)))
	f.memImages = []uintptr{empty, full}

	_, err := Decode(f.api(), []byte("raw"), Options{UsePreview: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.calls["process"] != 1 {
		t.Fatalf("process called %d times, want 1", f.calls["process"])
	}
	f.checkCleanup(empty, full)
}

func TestDecodeFaultInjection(t *testing.T) {
	cases := []struct {
		name      string
		configure func(f *fakeLib) (obtained []uintptr)
		wantErr   any
		wantClose int
	}{
		{
			name:      "init returns null",
			configure: func(f *fakeLib) []uintptr { f.failInit = true; return nil },
			wantErr:   &InitError{},
			wantClose: 0,
		},
		{
			name:      "open buffer fails",
			configure: func(f *fakeLib) []uintptr { f.openStatus = -2; return nil },
			wantErr:   &OpenError{},
			wantClose: 1,
		},
		{
			name:      "unpack fails",
			configure: func(f *fakeLib) []uintptr { f.unpackStatus = -4; return nil },
			wantErr:   &UnpackError{},
			wantClose: 1,
		},
		{
			name:      "process fails",
			configure: func(f *fakeLib) []uintptr { f.processStatus = -6; return nil },
			wantErr:   &ProcessError{},
			wantClose: 1,
		},
		{
			name: "mem image null",
			configure: func(f *fakeLib) []uintptr {
				f.memErr = 7
				return nil
			},
			wantErr:   &NullImageError{},
			wantClose: 1,
		},
		{
			name: "unsupported bit depth",
			configure: func(f *fakeLib) []uintptr {
				data := make([]byte, 2*2*3*2)
				p := f.newImage(imageKindBitmap, 2, 2, 3, 16, data, uint32(len(data)))
				f.memImages = []uintptr{p}
				return []uintptr{p}
			},
			wantErr:   &UnsupportedBitDepthError{},
			wantClose: 1,
		},
		{
			name: "unsupported channel count",
			configure: func(f *fakeLib) []uintptr {
				data := make([]byte, 2*2*2)
				p := f.newImage(imageKindBitmap, 2, 2, 2, 8, data, uint32(len(data)))
				f.memImages = []uintptr{p}
				return []uintptr{p}
			},
			wantErr:   &UnsupportedChannelCountError{},
			wantClose: 1,
		},
		{
			name: "truncated buffer",
			configure: func(f *fakeLib) []uintptr {
				data := make([]byte, 5) // 2x2x3 needs 12
				p := f.newImage(imageKindBitmap, 2, 2, 3, 8, data, uint32(len(data)))
				f.memImages = []uintptr{p}
				return []uintptr{p}
			},
			wantErr:   &TruncatedBufferError{},
			wantClose: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeLib(t)
			obtained := tc.configure(f)

			img, err := Decode(f.api(), []byte("raw"), Options{}, zerolog.Nop())
			if err == nil {
				t.Fatal("expected error")
			}
			if img != nil {
				t.Fatal("no partial image may be returned on failure")
			}
			if !asAny(err, tc.wantErr) {
				t.Fatalf("got %T (%v), want %T", err, err, tc.wantErr)
			}
			if f.closed != tc.wantClose {
				t.Fatalf("close called %d times, want %d", f.closed, tc.wantClose)
			}
			for _, p := range obtained {
				if f.freed[p] != 1 {
					t.Fatalf("buffer %#x freed %d times, want 1", p, f.freed[p])
				}
			}
		})
	}
}

func TestDecodeAutoBrightnessToggle(t *testing.T) {
	for _, auto := range []bool{true, false} {
		f := newFakeLib(t)
		data := rgbGrid(1, 1)
		f.memImages = []uintptr{f.newImage(imageKindBitmap, 1, 1, 3, 8, data, uint32(len(data)))}

		if _, err := Decode(f.api(), []byte("raw"), Options{AutoBrightness: auto}, zerolog.Nop()); err != nil {
			t.Fatalf("decode: %v", err)
		}
		want := int32(1)
		if auto {
			want = 0
		}
		if f.noAutoBright != want {
			t.Fatalf("auto=%v: no_auto_bright=%d, want %d", auto, f.noAutoBright, want)
		}
	}
}

// asAny is errors.As over a concrete target instance.
func asAny(err error, target any) bool {
	switch target.(type) {
	case *InitError:
		var e *InitError
		return errors.As(err, &e)
	case *OpenError:
		var e *OpenError
		return errors.As(err, &e)
	case *UnpackError:
		var e *UnpackError
		return errors.As(err, &e)
	case *ProcessError:
		var e *ProcessError
		return errors.As(err, &e)
	case *NullImageError:
		var e *NullImageError
		return errors.As(err, &e)
	case *UnsupportedBitDepthError:
		var e *UnsupportedBitDepthError
		return errors.As(err, &e)
	case *UnsupportedChannelCountError:
		var e *UnsupportedChannelCountError
		return errors.As(err, &e)
	case *TruncatedBufferError:
		var e *TruncatedBufferError
		return errors.As(err, &e)
	default:
		return false
	}
}
