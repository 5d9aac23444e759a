package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/annotations"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/geomap"
)

func newMapCmd(newApp appFactory) *cobra.Command {
	var out string
	var origin string
	var zoom int

	cmd := &cobra.Command{
		Use:   "map <annotation-id>",
		Short: "Render a saved annotation's trees on an interactive map",
		Long: `Fetches a saved annotation and writes a self-contained HTML map with one
marker per detected tree. Requires a logged-in session and a map tile
access token (PALMA_MAP_TOKEN or map_token in the config file).`,
		Example: `  palma map 42 --out block7.html --origin "3.1390,101.6869"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if app.Config.MapToken == "" {
				return fmt.Errorf("no map tile token configured: set PALMA_MAP_TOKEN")
			}

			ann, err := app.Annotations.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			anchor, err := parseOrigin(origin, app.Config)
			if err != nil {
				return err
			}
			if zoom != 0 {
				app.Config.MapZoom = zoom
			}

			target := out
			if target == "" {
				target = "annotation_" + ann.ID + ".html"
			}
			title := ann.Metadata.OriginalFileName
			if title == "" {
				title = "Annotation " + ann.ID
			}
			if err := writeMap(app, target, title, &ann.Results, anchor); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Map written to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output HTML path (default: annotation_<id>.html)")
	cmd.Flags().StringVar(&origin, "origin", "", "Geographic anchor as \"lat,lng\" (default: configured map center)")
	cmd.Flags().IntVar(&zoom, "zoom", 0, "Initial zoom level (default: configured map zoom)")

	return cmd
}

func writeMap(app *App, path, title string, results *annotations.Results, anchor geomap.Origin) error {
	if app.Config.MapToken == "" {
		return fmt.Errorf("no map tile token configured: set PALMA_MAP_TOKEN")
	}
	trees := geomap.Locations(results.Detections, anchor)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	page := &geomap.Page{
		Title:     title,
		Token:     app.Config.MapToken,
		Latitude:  anchor.Latitude,
		Longitude: anchor.Longitude,
		Zoom:      app.Config.MapZoom,
		Trees:     trees,
	}
	if err := geomap.RenderHTML(f, page); err != nil {
		return err
	}
	return f.Close()
}
