package cli

import (
	"encoding/json"
	stderrors "errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/openhaven/matchgrid/internal/application/heatmap"
	"github.com/openhaven/matchgrid/internal/domain/geo"
	"github.com/openhaven/matchgrid/pkg/errors"
)

func newHeatmapCommand(opts *rootOptions) *cobra.Command {
	var (
		boundsArgs []float64
		mode       string
		cellSize   float64
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Export a GeoJSON heatmap for a viewport",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(boundsArgs) != 4 {
				return errors.New(errors.CodeInvalidBounds,
					"--bounds requires minLat,minLon,maxLat,maxLon")
			}
			bounds, err := geo.NewBounds(boundsArgs[0], boundsArgs[1], boundsArgs[2], boundsArgs[3])
			if err != nil {
				return err
			}
			parsedMode, err := heatmap.ParseMode(mode)
			if err != nil {
				return err
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, err := opts.newLogger(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rt, err := buildRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			fc, err := rt.heatmap.Generate(ctx, bounds, parsedMode, cellSize)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && !stderrors.Is(cerr, os.ErrClosed) {
						logger.Warn("closing heatmap output file failed")
					}
				}()
				out = f
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(fc)
		},
	}
	cmd.Flags().Float64SliceVar(&boundsArgs, "bounds", nil, "viewport as minLat,minLon,maxLat,maxLon")
	cmd.Flags().StringVar(&mode, "mode", string(heatmap.ModeDemand), "demand, supply or gap")
	cmd.Flags().Float64Var(&cellSize, "cell-size", 0, "explicit hex cell size in meters (0 = auto)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout when empty)")
	return cmd
}
