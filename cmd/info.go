package cmd

import (
	"fmt"
	"os"
	"sort"

	exif "github.com/dsoprea/go-exif/v3"
	"github.com/spf13/cobra"

	"nefconv/internal/exiftool"
	"nefconv/pkg/imgutil"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print metadata for one NEF file",
	Long:  "info dumps the file's metadata via exiftool when it is installed, falling back to the built-in EXIF parser otherwise.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		stat, err := os.Stat(path)
		if err != nil {
			return err
		}
		buf, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		fmt.Printf("Metadata: %s\n", path)
		fmt.Printf("  Size: %d bytes\n", stat.Size())

		if exiftool.Available() {
			if v, verr := exiftool.Version(); verr == nil {
				fmt.Printf("  exiftool: %s\n", v)
			}
			tags, err := exiftool.Metadata(path)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(tags))
			for k := range tags {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Println()
			for _, k := range keys {
				fmt.Printf("  %s: %s\n", k, truncateValue(tags[k]))
			}
		} else if err := printBuiltinExif(buf); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to parse EXIF: %v\n", err)
		}

		if imgutil.DetectRaw(buf) {
			fmt.Println("\nFormat hint: NEF (Nikon RAW) detected")
		} else {
			fmt.Println("\nFormat hint: NEF not detected by header heuristics")
		}
		return nil
	},
}

func printBuiltinExif(buf []byte) error {
	rawExif, err := exif.SearchAndExtractExif(buf)
	if err != nil {
		return err
	}
	tags, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return err
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].IfdPath != tags[j].IfdPath {
			return tags[i].IfdPath < tags[j].IfdPath
		}
		return tags[i].TagName < tags[j].TagName
	})
	fmt.Println()
	for _, t := range tags {
		fmt.Printf("  %s %s: %s\n", t.IfdPath, t.TagName, truncateValue(t.Formatted))
	}
	return nil
}

// truncateValue keeps huge binary tag dumps from flooding the terminal.
func truncateValue(v string) string {
	const max = 512
	if len(v) > max {
		return v[:max] + "..."
	}
	return v
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
