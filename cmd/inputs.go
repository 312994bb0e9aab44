package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"nefconv/internal/batch"
	"nefconv/internal/encode"
	"nefconv/internal/transform"
)

// parseFormats splits a "+"- or ","-separated format list and normalizes
// every entry.
func parseFormats(s string) ([]encode.Format, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '+' || r == ',' })
	if len(parts) == 0 {
		return nil, errors.New("no output format given")
	}
	formats := make([]encode.Format, 0, len(parts))
	for _, p := range parts {
		f, err := encode.Normalize(p)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// collectInputs expands the argument list into concrete input files. A
// single directory argument is scanned for *.nef entries; otherwise only
// arguments that exist as regular files are kept.
func collectInputs(args []string) (inputs []string, fromDir bool, err error) {
	if len(args) == 1 {
		if info, statErr := os.Stat(args[0]); statErr == nil && info.IsDir() {
			entries, err := os.ReadDir(args[0])
			if err != nil {
				return nil, false, err
			}
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				if strings.EqualFold(filepath.Ext(e.Name()), ".nef") {
					inputs = append(inputs, filepath.Join(args[0], e.Name()))
				}
			}
			sort.Strings(inputs)
			return inputs, true, nil
		}
	}
	for _, a := range args {
		if info, statErr := os.Stat(a); statErr == nil && info.Mode().IsRegular() {
			inputs = append(inputs, a)
		}
	}
	return inputs, false, nil
}

// sortInputs reorders inputs in place. An unknown method leaves the order
// untouched.
func sortInputs(inputs []string, method string) {
	switch strings.ToLower(method) {
	case "name":
		sort.SliceStable(inputs, func(i, j int) bool {
			return filepath.Base(inputs[i]) < filepath.Base(inputs[j])
		})
	case "numeric":
		// digits extracted from the stem; numbered files sort before
		// unnumbered ones
		sort.SliceStable(inputs, func(i, j int) bool {
			a, aok := stemNumber(inputs[i])
			b, bok := stemNumber(inputs[j])
			switch {
			case aok && bok:
				return a < b
			case aok:
				return true
			case bok:
				return false
			default:
				return inputs[i] < inputs[j]
			}
		})
	case "size":
		sort.SliceStable(inputs, func(i, j int) bool {
			return fileSize(inputs[i]) < fileSize(inputs[j])
		})
	case "mtime", "time", "date":
		sort.SliceStable(inputs, func(i, j int) bool {
			return fileMtime(inputs[i]).Before(fileMtime(inputs[j]))
		})
	}
}

func stemNumber(path string) (uint64, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, stem(path))
	n, err := strconv.ParseUint(digits, 10, 64)
	return n, err == nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func fileMtime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type jobSettings struct {
	Ratio      float64
	Brightness transform.Brightness
	Rotation   string
	Enhance    bool
	Preview    bool
}

// buildJobs turns the raw arguments into fully resolved conversion jobs.
func buildJobs(args []string, output string, formats []encode.Format, sortMethod string, s jobSettings) ([]batch.Job, error) {
	inputs, fromDir, err := collectInputs(args)
	if err != nil {
		return nil, err
	}
	if fromDir && output == "" {
		return nil, errors.New("output directory required when input is a directory")
	}
	if sortMethod != "" {
		sortInputs(inputs, sortMethod)
	}

	single := len(inputs) == 1 && !fromDir
	jobs := make([]batch.Job, 0, len(inputs))
	for _, in := range inputs {
		jobs = append(jobs, batch.Job{
			Input:      in,
			Outputs:    resolveTargets(in, output, formats, fromDir, single),
			Ratio:      s.Ratio,
			Brightness: s.Brightness,
			Rotation:   s.Rotation,
			Enhance:    s.Enhance,
			Preview:    s.Preview,
		})
	}
	return jobs, nil
}

// resolveTargets maps one input to its output files. Directory inputs get
// one subdirectory per format; a single input with an explicit output file
// writes exactly there when one format is requested.
func resolveTargets(input, output string, formats []encode.Format, fromDir, single bool) []batch.Target {
	targets := make([]batch.Target, 0, len(formats))
	base := stem(input)

	switch {
	case fromDir:
		for _, f := range formats {
			targets = append(targets, batch.Target{
				Path:   filepath.Join(output, string(f), base+"."+string(f)),
				Format: f,
			})
		}
	case output == "":
		dir := filepath.Dir(input)
		for _, f := range formats {
			targets = append(targets, batch.Target{Path: filepath.Join(dir, base+"."+string(f)), Format: f})
		}
	default:
		info, err := os.Stat(output)
		outputIsDir := err == nil && info.IsDir()
		if outputIsDir || !single {
			for _, f := range formats {
				targets = append(targets, batch.Target{Path: filepath.Join(output, base+"."+string(f)), Format: f})
			}
		} else if len(formats) == 1 {
			targets = append(targets, batch.Target{Path: output, Format: formats[0]})
		} else {
			dir := filepath.Dir(output)
			outBase := stem(output)
			for _, f := range formats {
				targets = append(targets, batch.Target{Path: filepath.Join(dir, outBase+"."+string(f)), Format: f})
			}
		}
	}
	return targets
}
