package libraw

import "fmt"

// LoadError means the native library could not be loaded or its symbols
// resolved. It is fatal for the whole run and carries a platform install
// hint for the presentation layer; the hint is not part of the error text.
type LoadError struct {
	Path string
	Hint string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load libraw from %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// InitError means libraw_init returned a null decoder handle.
type InitError struct{}

func (e *InitError) Error() string { return "libraw_init returned null" }

// OpenError is a nonzero status from libraw_open_buffer.
type OpenError struct{ Code int32 }

func (e *OpenError) Error() string {
	return fmt.Sprintf("libraw_open_buffer failed: %d", e.Code)
}

// UnpackError is a nonzero status from libraw_unpack.
type UnpackError struct{ Code int32 }

func (e *UnpackError) Error() string {
	return fmt.Sprintf("libraw_unpack failed: %d", e.Code)
}

// ProcessError is a nonzero status from libraw_dcraw_process.
type ProcessError struct{ Code int32 }

func (e *ProcessError) Error() string {
	return fmt.Sprintf("libraw_dcraw_process failed: %d", e.Code)
}

// NullImageError means libraw_dcraw_make_mem_image returned null after a
// successful full process step. Msg is the library's own error string.
type NullImageError struct {
	Code int32
	Msg  string
}

func (e *NullImageError) Error() string {
	return fmt.Sprintf("libraw_dcraw_make_mem_image returned null: %d (%s)", e.Code, e.Msg)
}

// EmptyImageError means the processed image carried no pixel data.
type EmptyImageError struct{}

func (e *EmptyImageError) Error() string { return "libraw processed image has no data" }

// UnsupportedBitDepthError rejects processed bitmaps that are not 8 bits
// per channel.
type UnsupportedBitDepthError struct{ Bits uint16 }

func (e *UnsupportedBitDepthError) Error() string {
	return fmt.Sprintf("libraw bitmap has unsupported bit depth: %d", e.Bits)
}

// UnsupportedChannelCountError rejects processed bitmaps that are neither
// RGB nor RGBA.
type UnsupportedChannelCountError struct{ Channels uint16 }

func (e *UnsupportedChannelCountError) Error() string {
	return fmt.Sprintf("libraw bitmap has unsupported channel count: %d", e.Channels)
}

// TruncatedBufferError means the native buffer is shorter than the pixel
// grid its own header describes.
type TruncatedBufferError struct {
	Size     int
	Expected int
}

func (e *TruncatedBufferError) Error() string {
	return fmt.Sprintf("libraw bitmap too small: %d < %d", e.Size, e.Expected)
}
