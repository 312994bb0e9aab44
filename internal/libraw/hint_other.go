//go:build !linux && !darwin && !windows

package libraw

const defaultLibraryName = "libraw.so"

func installHint() string {
	return "Install LibRaw for your platform and set LIBRAW_PATH to the shared library."
}
