package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nefconv/internal/batch"
	"nefconv/internal/libraw"
	"nefconv/internal/pipeline"
	"nefconv/internal/transform"
	"nefconv/internal/tui"
)

var (
	convertOutput     string
	convertFormats    string
	convertRatio      float64
	convertThreads    int
	convertPreview    bool
	convertBrightness string
	convertRotation   string
	convertEnhance    bool
	convertSort       string
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <file>... | <directory>",
	Short: "Convert NEF images to common raster formats",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		formats, err := parseFormats(convertFormats)
		if err != nil {
			return err
		}
		if !(convertRatio > 0 && convertRatio <= 1) {
			return errors.New("resize ratio must be between 0 and 1")
		}
		brightness := transform.ParseBrightness(cmd.Flags().Changed("brightness"), convertBrightness)

		jobs, err := buildJobs(args, convertOutput, formats, convertSort, jobSettings{
			Ratio:      convertRatio,
			Brightness: brightness,
			Rotation:   convertRotation,
			Enhance:    convertEnhance,
			Preview:    convertPreview,
		})
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Println("No NEF files found.")
			return nil
		}

		api, err := libraw.Load()
		if err != nil {
			var le *libraw.LoadError
			if errors.As(err, &le) {
				fmt.Fprintln(os.Stderr, le.Error())
				fmt.Fprintln(os.Stderr, le.Hint)
				os.Exit(1)
			}
			return err
		}
		conv := &pipeline.Converter{API: api, Log: log}

		if len(jobs) == 1 {
			return convertSingle(jobs[0], conv)
		}
		return convertBatch(jobs, conv, log)
	},
}

// convertSingle runs one job in the foreground with a spinner when stdout
// is a terminal.
func convertSingle(job batch.Job, conv *pipeline.Converter) error {
	done := make(chan struct{})
	uiDone := make(chan struct{})

	if isatty.IsTerminal(os.Stdout.Fd()) {
		label := "Converting " + filepath.Base(job.Input) + " to " + describeTargets(job.Outputs) + "..."
		program := tea.NewProgram(tui.NewSpinner(label, done))
		go func() {
			_, _ = program.Run()
			close(uiDone)
		}()
	} else {
		close(uiDone)
	}

	t0 := time.Now()
	_, err := conv.Convert(job)
	close(done)
	<-uiDone
	if err != nil {
		var nr *pipeline.NotRawError
		if errors.As(err, &nr) {
			// a rejected input is not a failure
			fmt.Printf("%s: %s\n", nr.SkipReason(), job.Input)
			return nil
		}
		return err
	}

	plural := ""
	if len(job.Outputs) > 1 {
		plural = "s"
	}
	fmt.Printf("Done conversion, output file%s: %s\n", plural, describeTargets(job.Outputs))
	fmt.Printf("Total execution time: %s\n", tui.FormatDuration(time.Since(t0)))
	return nil
}

// convertBatch fans the jobs out over the worker pool, printing one styled
// line per finished job and the summary table at the end. An interrupt
// lets in-flight jobs finish and drops the rest.
func convertBatch(jobs []batch.Job, conv *pipeline.Converter, log zerolog.Logger) error {
	fmt.Printf("Found %d NEF files. Starting conversion...\n\n", len(jobs))

	var stop atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "Received interrupt, stopping after current tasks...")
		stop.Store(true)
	}()

	runner := &batch.Runner{Workers: convertThreads, Stop: &stop, Log: log}
	sum := runner.Run(jobs, conv.Convert, func(m batch.Message) {
		fmt.Println(tui.RenderMessage(m))
	})

	fmt.Println()
	fmt.Println(tui.RenderSummary(sum))
	return batchError(sum)
}

// batchError maps the batch outcome to the process exit status: failures
// and interrupts both exit nonzero.
func batchError(sum batch.Summary) error {
	if sum.Failed > 0 {
		return fmt.Errorf("%d file(s) failed to convert", sum.Failed)
	}
	if sum.Interrupted {
		return errors.New("conversion interrupted before all files were processed")
	}
	return nil
}

func describeTargets(targets []batch.Target) string {
	paths := make([]string, len(targets))
	for i, t := range targets {
		paths[i] = t.Path
	}
	return strings.Join(paths, ", ")
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertOutput, "output", "o", "", "output directory, or output file for a single input")
	f.StringVarP(&convertFormats, "format", "f", "png", "output format(s): png, jpeg, bmp, gif, webp, tiff; join several with + or ,")
	f.Float64VarP(&convertRatio, "ratio", "r", 0.15, "resize to this area ratio, 0 < r <= 1")
	f.IntVarP(&convertThreads, "threads", "t", 0, "worker count (default: number of CPU cores)")
	f.BoolVarP(&convertPreview, "preview", "p", false, "use the embedded preview image if available")
	f.StringVarP(&convertBrightness, "brightness", "b", "", "brightness: auto, none, a factor (0.58), or a percentage (120%)")
	f.Lookup("brightness").NoOptDefVal = "auto"
	f.StringVarP(&convertRotation, "rotation", "R", "", "rotation: auto (EXIF orientation) or degrees (90/180/270)")
	f.BoolVarP(&convertEnhance, "enhance", "e", false, "slight brighten and sharpen")
	f.StringVar(&convertSort, "sort", "", "sort inputs before converting: name, numeric, size, mtime")
	rootCmd.AddCommand(convertCmd)
}
