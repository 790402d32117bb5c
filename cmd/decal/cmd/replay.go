package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phanxgames/decal"
	"github.com/phanxgames/decal/export"
	"github.com/phanxgames/decal/imageload"
)

var (
	outDir      string
	scales      []float64
	formatName  string
	quality     float64
	background  string
	fontPath    string
	showMetrics bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <base-image> <script>",
	Short: "Replay an input script and export the result",
	Long: `Load a base photo, run a YAML input script against a headless editor
and export the composed image once per requested scale.

Outputs are written as <base>@<scale>x.<ext> in the output directory.

Examples:
  # Export at 1x and 2x as PNG
  decal replay photo.jpg session.yaml --scales 1,2

  # JPEG at 80% quality on a black background
  decal replay photo.jpg session.yaml --format jpg --quality 0.8 --background "#000000"`,
	Args: cobra.ExactArgs(2),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&outDir, "out", "o", ".",
		"output directory")
	replayCmd.Flags().Float64SliceVar(&scales, "scales", []float64{1},
		"export scales")
	replayCmd.Flags().StringVarP(&formatName, "format", "f", "png",
		"output format: png, jpeg or webp")
	replayCmd.Flags().Float64Var(&quality, "quality", 0.92,
		"JPEG quality in [0, 1]")
	replayCmd.Flags().StringVar(&background, "background", "#ffffff",
		"flatten colour for JPEG output")
	replayCmd.Flags().StringVar(&fontPath, "font", "",
		"emoji-capable TTF/OTF font (Go Regular has no emoji)")
	replayCmd.Flags().BoolVar(&showMetrics, "metrics", false,
		"print export metrics after the run")
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	basePath, scriptPath := args[0], args[1]

	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	sc, err := decal.LoadScriptFile(scriptPath)
	if err != nil {
		return err
	}

	loader := imageload.New(cfg.MaxUploadBytes, imageload.WithLogger(logger))
	ed := decal.NewEditor(cfg, decal.WithLogger(logger), decal.WithLoader(loader))

	f, err := os.Open(basePath)
	if err != nil {
		return fmt.Errorf("open base image: %w", err)
	}
	err = ed.LoadBaseImage(ctx, f)
	f.Close()
	if err != nil {
		return fmt.Errorf("load base image: %w", err)
	}

	if err := sc.Run(ed); err != nil {
		return fmt.Errorf("replay %s: %w", scriptPath, err)
	}
	logger.Info("script replayed",
		zap.String("script", scriptPath),
		zap.Int("steps", sc.Len()),
		zap.Int("stickers", ed.Document().Len()),
		zap.Int("history", ed.History().Len()),
	)

	reg := prometheus.NewRegistry()
	metrics := export.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		return err
	}
	opts := []export.Option{export.WithLogger(logger), export.WithMetrics(metrics)}
	if fontPath != "" {
		ttf, err := os.ReadFile(fontPath)
		if err != nil {
			return fmt.Errorf("read font: %w", err)
		}
		opts = append(opts, export.WithFont(ttf))
	}
	x, err := export.New(opts...)
	if err != nil {
		return fmt.Errorf("create exporter: %w", err)
	}

	opt := export.Options{Format: format, Quality: quality, Background: background}
	results, err := x.ExportSet(ctx, ed.Record(false), scales, opt)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(basePath), filepath.Ext(basePath))
	for _, res := range results {
		name := filepath.Join(outDir, fmt.Sprintf("%s@%gx%s", stem, res.Scale, res.Format.Ext()))
		if err := os.WriteFile(name, res.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		fmt.Printf("%s  %dx%d  %d bytes\n", name, res.Width, res.Height, len(res.Data))
	}

	if showMetrics {
		return printMetrics(reg)
	}
	return nil
}

func printMetrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Printf("%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Printf("%s{%s} count=%d sum=%.4fs\n", mf.GetName(), strings.Join(labels, ","), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}
