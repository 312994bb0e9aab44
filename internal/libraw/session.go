package libraw

import (
	"bytes"
	"image"
	_ "image/jpeg" // embedded previews are JPEG payloads
	"runtime"
	"unsafe"

	"github.com/rs/zerolog"
)

// Options control one decode.
type Options struct {
	// UsePreview asks for the embedded/processed memory image before the
	// full develop step. If the library has none, the decode falls through
	// to full processing.
	UsePreview bool
	// AutoBrightness enables the library's internal auto-exposure.
	AutoBrightness bool
}

// session owns one native decoder instance for the lifetime of one decode.
// The instance is closed exactly once, on every exit path.
type session struct {
	api    *API
	handle uintptr
	closed bool
	log    zerolog.Logger
}

// Decode runs the full decode protocol against raw NEF bytes and returns an
// owned 8-bit image. The native decoder instance and any native image buffer
// are always released, whichever step fails. There are no retries: any
// protocol failure is terminal for this input.
func Decode(api *API, raw []byte, opts Options, log zerolog.Logger) (image.Image, error) {
	log = log.With().Str("component", "libraw").Logger()

	log.Debug().Msg("calling libraw_init")
	handle := api.Init(0)
	if handle == 0 {
		return nil, &InitError{}
	}
	s := &session{api: api, handle: handle, log: log}
	defer s.close()

	if err := s.openBuffer(raw); err != nil {
		return nil, err
	}
	if err := s.unpack(); err != nil {
		return nil, err
	}
	s.configure(opts)

	if opts.UsePreview {
		img, ok, err := s.tryPreview()
		if err != nil {
			return nil, err
		}
		if ok {
			return img, nil
		}
	}

	if err := s.process(); err != nil {
		return nil, err
	}
	return s.extractImage()
}

func (s *session) openBuffer(raw []byte) error {
	var p unsafe.Pointer
	if len(raw) > 0 {
		p = unsafe.Pointer(&raw[0])
	}
	s.log.Debug().Int("len", len(raw)).Msg("calling libraw_open_buffer")
	status := s.api.OpenBuffer(s.handle, p, uintptr(len(raw)))
	runtime.KeepAlive(raw)
	s.log.Debug().Int32("status", status).Msg("libraw_open_buffer returned")
	if status != 0 {
		return &OpenError{Code: status}
	}
	return nil
}

func (s *session) unpack() error {
	s.log.Debug().Msg("calling libraw_unpack")
	status := s.api.Unpack(s.handle)
	s.log.Debug().Int32("status", status).Msg("libraw_unpack returned")
	if status != 0 {
		return &UnpackError{Code: status}
	}
	return nil
}

// configure sets output depth, color space, and auto-brightness. These are
// best-effort: a nonzero status does not abort the decode.
func (s *session) configure(opts Options) {
	if st := s.api.SetOutputBPS(s.handle, 8); st != 0 {
		s.log.Debug().Int32("status", st).Msg("libraw_set_output_bps rejected")
	}
	if st := s.api.SetOutputColor(s.handle, sRGBColorSpace); st != 0 {
		s.log.Debug().Int32("status", st).Msg("libraw_set_output_color rejected")
	}
	disable := int32(1)
	if opts.AutoBrightness {
		disable = 0
	}
	if st := s.api.SetNoAutoBright(s.handle, disable); st != 0 {
		s.log.Debug().Int32("status", st).Msg("libraw_set_no_auto_bright rejected")
	}
}

// tryPreview requests the embedded memory image. ok is true when a usable
// preview was extracted; a nil error with ok=false means there is no
// preview and the caller should fall through to full processing.
func (s *session) tryPreview() (image.Image, bool, error) {
	var errc int32
	s.log.Debug().Msg("calling libraw_dcraw_make_mem_image (preview)")
	p := s.api.MakeMemImage(s.handle, &errc)
	if p == 0 {
		s.log.Debug().
			Int32("err", errc).
			Str("msg", s.api.strmsg(errc)).
			Msg("preview unavailable, continuing to full processing")
		return nil, false, nil
	}

	view := (*memImageHeader)(unsafe.Pointer(p))
	if view.DataSize == 0 {
		s.api.ClearMem(p)
		s.log.Debug().
			Int32("err", errc).
			Str("msg", s.api.strmsg(errc)).
			Msg("preview empty, continuing to full processing")
		return nil, false, nil
	}

	img, err := s.copyOutImage(p)
	if err != nil {
		return nil, false, err
	}
	return img, true, nil
}

func (s *session) process() error {
	s.log.Debug().Msg("calling libraw_dcraw_process")
	status := s.api.Process(s.handle)
	s.log.Debug().Int32("status", status).Msg("libraw_dcraw_process returned")
	if status != 0 {
		return &ProcessError{Code: status}
	}
	return nil
}

func (s *session) extractImage() (image.Image, error) {
	var errc int32
	s.log.Debug().Msg("calling libraw_dcraw_make_mem_image")
	p := s.api.MakeMemImage(s.handle, &errc)
	if p == 0 {
		return nil, &NullImageError{Code: errc, Msg: s.api.strmsg(errc)}
	}
	view := (*memImageHeader)(unsafe.Pointer(p))
	if view.DataSize == 0 {
		s.api.ClearMem(p)
		return nil, &EmptyImageError{}
	}
	return s.copyOutImage(p)
}

// copyOutImage validates the native image buffer and copies its pixels into
// process-owned memory. The native buffer is freed exactly once before
// return, success or not; nothing may touch it afterwards.
func (s *session) copyOutImage(p uintptr) (image.Image, error) {
	defer s.api.ClearMem(p)

	view := (*memImageHeader)(unsafe.Pointer(p))
	data := unsafe.Slice((*byte)(unsafe.Pointer(p+memImageHeaderSize)), int(view.DataSize))

	if view.Kind == imageKindJPEG {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return img, nil
	}

	if view.Bits != 8 {
		return nil, &UnsupportedBitDepthError{Bits: view.Bits}
	}
	width := int(view.Width)
	height := int(view.Height)
	channels := int(view.Colors)
	if channels != 3 && channels != 4 {
		return nil, &UnsupportedChannelCountError{Channels: view.Colors}
	}
	expected := width * height * channels
	if int(view.DataSize) < expected {
		return nil, &TruncatedBufferError{Size: int(view.DataSize), Expected: expected}
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	src := data[:expected]
	if channels == 4 {
		copy(img.Pix, src)
	} else {
		for i, j := 0, 0; i < expected; i, j = i+3, j+4 {
			img.Pix[j] = src[i]
			img.Pix[j+1] = src[i+1]
			img.Pix[j+2] = src[i+2]
			img.Pix[j+3] = 0xff
		}
	}
	return img, nil
}

// close releases the native decoder instance. Idempotent; cleanup never
// escalates.
func (s *session) close() {
	if s.closed {
		return
	}
	s.closed = true
	s.api.Close(s.handle)
}
