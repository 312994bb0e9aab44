//go:build darwin

package libraw

const defaultLibraryName = "libraw.dylib"

func installHint() string {
	return "Please install LibRaw using Homebrew:\n  brew install libraw"
}
