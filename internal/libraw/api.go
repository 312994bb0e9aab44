// Package libraw drives the native LibRaw decoding library through a
// runtime-loaded handle. The library is resolved at most once per process;
// each decode runs inside a session that owns one native decoder instance
// and releases it on every exit path.
package libraw

import "unsafe"

// Image kind tags reported by LibRaw in the processed image header.
const (
	imageKindJPEG   = 1 // compressed payload, decode as-is
	imageKindBitmap = 2 // raw pixel grid
)

// sRGBColorSpace is LibRaw's output_color value for sRGB.
const sRGBColorSpace = 1

// API is the resolved entry-point table of the native library. Fields are
// plain func values: production fills them via dynamic symbol registration,
// tests substitute fakes to inject faults and count invocations.
type API struct {
	Init            func(flags int32) uintptr
	OpenBuffer      func(handle uintptr, data unsafe.Pointer, size uintptr) int32
	Unpack          func(handle uintptr) int32
	Process         func(handle uintptr) int32
	MakeMemImage    func(handle uintptr, errc *int32) uintptr
	ClearMem        func(img uintptr)
	Close           func(handle uintptr)
	Strerror        func(code int32) string
	SetOutputBPS    func(handle uintptr, bps int32) int32
	SetOutputColor  func(handle uintptr, space int32) int32
	SetNoAutoBright func(handle uintptr, disable int32) int32
}

// memImageHeader mirrors the leading fields of libraw_processed_image_t.
// Pixel data follows the header in the same allocation.
type memImageHeader struct {
	Kind     int32
	Height   uint16
	Width    uint16
	Colors   uint16
	Bits     uint16
	DataSize uint32
}

const memImageHeaderSize = unsafe.Sizeof(memImageHeader{})

func (a *API) strmsg(code int32) string {
	if a.Strerror == nil {
		return "(unknown)"
	}
	if msg := a.Strerror(code); msg != "" {
		return msg
	}
	return "(unknown)"
}
