package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nefconv/internal/exiftool"
)

const version = "0.4.1"

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "nefconv",
	Short: "nefconv - convert Nikon NEF images to common raster formats",
	Long:  "nefconv converts Nikon NEF raw images to png, jpeg, bmp, gif, webp, or tiff using the system libraw library.",
}

func Execute() {
	// intercepted before cobra so the probe can run code
	for _, a := range os.Args[1:] {
		if a == "--version" || a == "-v" {
			printVersion()
			return
		}
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("nefconv version %s\n", version)
	if v, err := exiftool.Version(); err == nil {
		fmt.Printf("exiftool version: %s\n", v)
	}
}

// newLogger builds the process logger. Quiet by default; -d turns on the
// per-step decode traces.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if debugFlag {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "enable debug output")
}
