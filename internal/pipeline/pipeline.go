// Package pipeline composes one job's conversion: sniff, decode, transform,
// encode.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"nefconv/internal/batch"
	"nefconv/internal/encode"
	"nefconv/internal/libraw"
	"nefconv/internal/transform"
	"nefconv/pkg/imgutil"
)

// NotRawError marks an input the format heuristic rejected. The batch
// scheduler reports it as skipped, not failed.
type NotRawError struct{ Path string }

func (e *NotRawError) Error() string      { return "not a NEF file: " + e.Path }
func (e *NotRawError) SkipReason() string { return "Skipped (not NEF)" }

// Converter turns one Job into its output files using a resolved native API.
type Converter struct {
	API *libraw.API
	Log zerolog.Logger
}

// Convert implements batch.Convert. The success detail is the list of
// formats written. A failing output target does not stop sibling targets;
// the job fails only if at least one target failed, after all were
// attempted.
func (c *Converter) Convert(job batch.Job) (string, error) {
	raw, err := os.ReadFile(job.Input)
	if err != nil {
		return "", err
	}
	if !imgutil.DetectRaw(raw) {
		return "", &NotRawError{Path: job.Input}
	}

	img, err := libraw.Decode(c.API, raw, libraw.Options{
		UsePreview:     job.Preview,
		AutoBrightness: job.Brightness.Mode == transform.BrightnessAuto,
	}, c.Log)
	if err != nil {
		return "", err
	}

	out := transform.Apply(img, transform.Options{
		Ratio:      job.Ratio,
		Brightness: job.Brightness,
		Rotation:   job.Rotation,
		Enhance:    job.Enhance,
	}, raw)

	var written []string
	var failures []error
	for _, target := range job.Outputs {
		if err := encode.Save(target.Path, out, target.Format); err != nil {
			c.Log.Error().Str("path", target.Path).Err(err).Msg("saving output failed")
			failures = append(failures, fmt.Errorf("%s: %w", target.Path, err))
			continue
		}
		written = append(written, string(target.Format))
	}
	if len(failures) > 0 {
		return "", errors.Join(failures...)
	}
	return strings.Join(written, "+"), nil
}
