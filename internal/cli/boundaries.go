package cli

import (
	"fmt"
	"image"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/stripscroll/internal/analyzer"
	"github.com/ivlev/stripscroll/internal/source"
)

func newBoundariesCmd() *cobra.Command {
	var (
		variant       string
		count         int
		width, height int
		dpi           int
	)

	cmd := &cobra.Command{
		Use:   "boundaries <input>",
		Short: "Detect card boundaries in the first viewport",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			det, err := analyzer.NewDetector(variant)
			if err != nil {
				return err
			}
			if even, ok := det.(*analyzer.EvenDetector); ok {
				even.Count = count
			}

			src, err := source.Open(args[0])
			if err != nil {
				return err
			}
			defer src.Close()
			strip, err := source.Stitch(ctx, src, dpi, height)
			if err != nil {
				return err
			}

			view := strip.SubImage(image.Rect(0, 0, min(width, strip.Bounds().Dx()), height))
			bands, err := det.Detect(view)
			if err != nil {
				return err
			}
			logger.Debug("detected", "detector", variant, "cards", len(bands))

			out := cmd.OutOrStdout()
			if len(bands) == 0 {
				printWarning(out, "no cards found, try --detector even")
				return nil
			}
			data, err := yaml.Marshal(map[string][]float64{"card_boundaries": analyzer.Boundaries(bands)})
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(data))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&variant, "detector", "gap", "detector: gap or even")
	f.IntVar(&count, "count", 3, "card count for the even detector")
	f.IntVar(&width, "width", 1280, "viewport width")
	f.IntVar(&height, "height", 720, "viewport height")
	f.IntVar(&dpi, "dpi", 150, "PDF render DPI")
	return cmd
}
