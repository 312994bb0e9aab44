// Package exiftool shells out to the exiftool binary for full metadata
// dumps. The binary is optional; callers fall back to the built-in EXIF
// parser when it is missing.
package exiftool

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// NotInstalledError reports a missing exiftool binary together with a
// platform install hint.
type NotInstalledError struct {
	Hint string
}

func (e *NotInstalledError) Error() string {
	return "exiftool is not installed. " + e.Hint
}

func installHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install it with: brew install exiftool"
	case "windows":
		return "Download it from https://exiftool.org and put exiftool.exe on your PATH"
	default:
		return "Install it with your package manager, e.g. apt install libimage-exiftool-perl"
	}
}

// Available reports whether the exiftool binary can be found on PATH.
func Available() bool {
	_, err := exec.LookPath("exiftool")
	return err == nil
}

// Version returns the exiftool version string, e.g. "12.76".
func Version() (string, error) {
	out, err := run("-ver")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Metadata extracts every tag exiftool knows about, group-qualified
// ("EXIF:ISO", "MakerNotes:ShutterCount"). Values are stringified as
// exiftool prints them.
func Metadata(path string) (map[string]string, error) {
	out, err := run("-j", "-G", path)
	if err != nil {
		return nil, err
	}
	return parseMetadata(out)
}

func parseMetadata(out []byte) (map[string]string, error) {
	// -j emits one JSON object per input file
	var records []map[string]any
	if err := json.Unmarshal(out, &records); err != nil {
		return nil, fmt.Errorf("parsing exiftool output: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("exiftool returned no records")
	}

	tags := make(map[string]string, len(records[0]))
	for k, v := range records[0] {
		if k == "SourceFile" {
			continue
		}
		tags[k] = fmt.Sprint(v)
	}
	return tags, nil
}

func run(args ...string) ([]byte, error) {
	bin, err := exec.LookPath("exiftool")
	if err != nil {
		return nil, &NotInstalledError{Hint: installHint()}
	}
	cmd := exec.Command(bin, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("exiftool: %w", err)
		}
		return nil, errors.New("exiftool: " + msg)
	}
	return out, nil
}
