package transform

import (
	"strconv"
	"strings"
)

// BrightnessMode selects how brightness is handled.
type BrightnessMode int

const (
	// BrightnessNone leaves pixel values as decoded.
	BrightnessNone BrightnessMode = iota
	// BrightnessAuto enables the decoder's auto-exposure; no post multiply.
	BrightnessAuto
	// BrightnessFactor multiplies RGB by Factor.
	BrightnessFactor
)

// Brightness is a parsed brightness request.
type Brightness struct {
	Mode   BrightnessMode
	Factor float64
}

// ParseBrightness turns the flag state into a Brightness. present reports
// whether the flag was given at all; value is its argument, empty when the
// flag was given bare.
//
// The parser is total, it never fails. Rules: bare flag, "true" or "auto"
// mean Auto; "false" or "none" mean None; a "%" suffix divides by 100; a
// value with '.', 'e', or 'E' parses as a float; otherwise an integer
// literal becomes that factor. Anything unparseable falls back to None.
func ParseBrightness(present bool, value string) Brightness {
	if !present {
		return Brightness{Mode: BrightnessNone}
	}
	v := strings.TrimSpace(value)
	if v == "" {
		return Brightness{Mode: BrightnessAuto}
	}
	switch strings.ToLower(v) {
	case "true", "auto":
		return Brightness{Mode: BrightnessAuto}
	case "false", "none":
		return Brightness{Mode: BrightnessNone}
	}
	if strings.HasSuffix(v, "%") {
		num := strings.TrimSpace(strings.TrimSuffix(v, "%"))
		if f, err := strconv.ParseFloat(num, 64); err == nil {
			return Brightness{Mode: BrightnessFactor, Factor: f / 100}
		}
	}
	if strings.ContainsAny(v, ".eE") {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return Brightness{Mode: BrightnessFactor, Factor: f}
		}
	}
	if i, err := strconv.ParseInt(v, 10, 32); err == nil {
		return Brightness{Mode: BrightnessFactor, Factor: float64(i)}
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return Brightness{Mode: BrightnessFactor, Factor: f}
	}
	return Brightness{Mode: BrightnessNone}
}
