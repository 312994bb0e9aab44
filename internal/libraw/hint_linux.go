//go:build linux

package libraw

const defaultLibraryName = "libraw.so"

func installHint() string {
	return "Please install LibRaw using your package manager:\n" +
		"  sudo apt install libraw-dev   # Ubuntu/Debian\n" +
		"  sudo dnf install libraw       # Fedora\n" +
		"  sudo pacman -S libraw         # Arch Linux"
}
