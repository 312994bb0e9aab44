//go:build windows

package libraw

const defaultLibraryName = "libraw.dll"

func installHint() string {
	return "Please install LibRaw and make sure libraw.dll is on PATH,\n" +
		"or point LIBRAW_PATH at the DLL:\n  vcpkg install libraw"
}
