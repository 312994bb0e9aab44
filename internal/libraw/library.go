package libraw

import (
	"fmt"
	"os"
	"sync"

	"github.com/ebitengine/purego"
)

var (
	loadOnce sync.Once
	loaded   *API
	loadErr  error
)

// Load resolves the native library exactly once per process. Every caller
// observes the same outcome: the first caller pays for the dlopen and symbol
// resolution, later callers get the stored API or the stored failure. Safe
// for concurrent use.
func Load() (*API, error) {
	loadOnce.Do(func() {
		path := libraryPath()
		handle, err := openLibrary(path)
		if err != nil {
			loadErr = &LoadError{Path: path, Hint: installHint(), Err: err}
			return
		}
		api, err := resolveSymbols(handle)
		if err != nil {
			loadErr = &LoadError{Path: path, Hint: installHint(), Err: err}
			return
		}
		loaded = api
	})
	return loaded, loadErr
}

// libraryPath returns the library to load, honoring the LIBRAW_PATH
// override before falling back to the platform default.
func libraryPath() string {
	if p := os.Getenv("LIBRAW_PATH"); p != "" {
		return p
	}
	return defaultLibraryName
}

func resolveSymbols(handle uintptr) (*API, error) {
	api := &API{}
	symbols := []struct {
		name string
		out  any
	}{
		{"libraw_init", &api.Init},
		{"libraw_open_buffer", &api.OpenBuffer},
		{"libraw_unpack", &api.Unpack},
		{"libraw_dcraw_process", &api.Process},
		{"libraw_dcraw_make_mem_image", &api.MakeMemImage},
		{"libraw_dcraw_clear_mem", &api.ClearMem},
		{"libraw_close", &api.Close},
		{"libraw_strerror", &api.Strerror},
		{"libraw_set_output_bps", &api.SetOutputBPS},
		{"libraw_set_output_color", &api.SetOutputColor},
		{"libraw_set_no_auto_bright", &api.SetNoAutoBright},
	}
	for _, sym := range symbols {
		if err := register(sym.out, handle, sym.name); err != nil {
			return nil, err
		}
	}
	return api, nil
}

// register wraps purego's RegisterLibFunc, which panics on a missing
// symbol, into an error return.
func register(fptr any, handle uintptr, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resolve symbol %s: %v", name, r)
		}
	}()
	purego.RegisterLibFunc(fptr, handle, name)
	return nil
}
