package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/decal"
	"github.com/phanxgames/decal/imageload"
)

var inspectJSON bool

// ImageReport is the inspect result for one file.
type ImageReport struct {
	Path     string  `json:"path"`
	OK       bool    `json:"ok"`
	Format   string  `json:"format,omitempty"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Bytes    int64   `json:"bytes,omitempty"`
	HasAlpha bool    `json:"has_alpha,omitempty"`
	StickerW float64 `json:"sticker_width,omitempty"`
	StickerH float64 `json:"sticker_height,omitempty"`
	Reason   string  `json:"reason,omitempty"`
	Error    string  `json:"error,omitempty"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <image>...",
	Short: "Check images against the upload rules",
	Long: `Validate each image the way the editor does on upload (format, byte
size, decodability) and report its size and sticker footprint.

Exits non-zero if any image is rejected.

Examples:
  decal inspect photo.jpg sticker.png
  decal inspect --json *.webp`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false,
		"output as JSON")
}

func runInspect(cmd *cobra.Command, args []string) error {
	loader := imageload.New(cfg.MaxUploadBytes, imageload.WithLogger(logger))

	reports := make([]ImageReport, 0, len(args))
	rejected := 0
	for _, path := range args {
		r := ImageReport{Path: path}
		bm, err := loader.LoadFile(cmd.Context(), path)
		if err != nil {
			rejected++
			r.Error = err.Error()
			var ve *decal.ValidationError
			if errors.As(err, &ve) {
				r.Reason = ve.Reason.String()
			}
		} else {
			r.OK = true
			r.Format = string(bm.Format)
			r.Width, r.Height = bm.Width, bm.Height
			r.Bytes = bm.Bytes
			r.HasAlpha = bm.HasAlpha
			r.StickerW, r.StickerH = bm.Footprint(cfg.MaxImageFootprint)
		}
		reports = append(reports, r)
	}

	if inspectJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			if !r.OK {
				fmt.Printf("%s: rejected (%s)\n", r.Path, r.Error)
				continue
			}
			fmt.Printf("%s: %s %dx%d, %d bytes, alpha=%v, sticker %.0fx%.0f\n",
				r.Path, r.Format, r.Width, r.Height, r.Bytes, r.HasAlpha, r.StickerW, r.StickerH)
		}
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d images rejected", rejected, len(args))
	}
	return nil
}
