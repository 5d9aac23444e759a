package cmd

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/config"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/detect"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/export"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/geomap"
)

func newAnalyzeCmd(newApp appFactory) *cobra.Command {
	var save bool
	var output string
	var exportFormat string
	var exportOut string
	var mapOut string
	var origin string

	cmd := &cobra.Command{
		Use:   "analyze <image-file>",
		Short: "Upload an image and wait for detection results",
		Long: `Uploads an aerial image to the detection backend, polls until the
annotated result is ready (or the attempt budget runs out), and writes the
annotated image next to the original.

With --save the result is also stored as an annotation in your history,
which requires a logged-in session.`,
		Example: `  # Analyze a drone photo
  palma analyze block7.jpg

  # Analyze, save to history, and export tree locations
  palma analyze block7.jpg --save --export geojson`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			out := cmd.OutOrStdout()
			job := detect.NewJob(filepath.Base(path), data)
			workflow := app.Workflow.WithProgress(func(percent int) {
				fmt.Fprintf(out, "\rUploading... %d%%", percent)
			})

			if err := workflow.Run(cmd.Context(), job); err != nil {
				fmt.Fprintln(out)
				return err
			}
			fmt.Fprintln(out)

			result := job.Result
			annotatedPath := output
			if annotatedPath == "" {
				annotatedPath = derivedName(path, "_annotated."+imageExt(result.AnnotatedImage.Format))
			}
			imageData, err := base64.StdEncoding.DecodeString(result.AnnotatedImage.Data)
			if err != nil {
				return fmt.Errorf("failed to decode annotated image: %w", err)
			}
			if err := os.WriteFile(annotatedPath, imageData, 0o644); err != nil {
				return fmt.Errorf("failed to write annotated image: %w", err)
			}
			fmt.Fprintf(out, "Annotated image written to %s\n\n", annotatedPath)

			printSummary(cmd, job)

			if save {
				user, err := app.Auth.CurrentUser(cmd.Context())
				if err != nil {
					return err
				}
				saved, err := workflow.Save(cmd.Context(), job, user, app.Annotations)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\nSaved to history as %s\n", saved.ID)
			}

			if exportFormat != "" {
				anchor, err := parseOrigin(origin, app.Config)
				if err != nil {
					return err
				}
				report := export.NewReport(job.FileName, &result.Results, anchor)
				target := exportOut
				if target == "" {
					target = derivedName(path, "_trees."+exportFormat)
				}
				if err := writeReport(report, target, exportFormat); err != nil {
					return err
				}
				fmt.Fprintf(out, "Tree locations exported to %s\n", target)
			}

			if mapOut != "" {
				anchor, err := parseOrigin(origin, app.Config)
				if err != nil {
					return err
				}
				if err := writeMap(app, mapOut, job.FileName, &result.Results, anchor); err != nil {
					return err
				}
				fmt.Fprintf(out, "Map written to %s\n", mapOut)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Save the result to your annotation history (requires login)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path for the annotated image (default: <input>_annotated.<format>)")
	cmd.Flags().StringVar(&exportFormat, "export", "", "Export tree locations (csv, geojson, yaml, parquet)")
	cmd.Flags().StringVar(&exportOut, "export-out", "", "Path for the exported report")
	cmd.Flags().StringVar(&mapOut, "map", "", "Write an interactive HTML map to this path")
	cmd.Flags().StringVar(&origin, "origin", "", "Geographic anchor for detections as \"lat,lng\" (default: configured map center)")

	return cmd
}

func printSummary(cmd *cobra.Command, job *detect.Job) {
	out := cmd.OutOrStdout()
	counts := job.Result.Results.Counts
	summary := job.Result.Results.Summary

	fmt.Fprintln(out, "Detection Summary")
	fmt.Fprintf(out, "  Mature (Healthy)  %d\n", counts.MatureHealthy)
	fmt.Fprintf(out, "  Mature (Yellow)   %d\n", counts.MatureYellow)
	fmt.Fprintf(out, "  Mature (Dead)     %d\n", counts.MatureDead)
	fmt.Fprintf(out, "  Young             %d\n", counts.Young)
	fmt.Fprintf(out, "\nTotal palms: %d | Total mature: %d | Total young: %d\n",
		summary.TotalPalms, summary.TotalMature, summary.TotalYoung)
}

func writeReport(report *export.Report, path, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := report.Write(f, format); err != nil {
		return err
	}
	return f.Close()
}

func derivedName(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

func imageExt(format string) string {
	if format == "" {
		return "jpeg"
	}
	return strings.ToLower(format)
}

// parseOrigin reads a "lat,lng" pair, falling back to the configured map
// center.
func parseOrigin(value string, cfg *config.Config) (geomap.Origin, error) {
	if value == "" {
		return geomap.Origin{Latitude: cfg.MapLatitude, Longitude: cfg.MapLongitude}, nil
	}
	parts := strings.SplitN(value, ",", 2)
	if len(parts) != 2 {
		return geomap.Origin{}, fmt.Errorf("invalid origin %q: expected \"lat,lng\"", value)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geomap.Origin{}, fmt.Errorf("invalid origin latitude %q", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geomap.Origin{}, fmt.Errorf("invalid origin longitude %q", parts[1])
	}
	return geomap.Origin{Latitude: lat, Longitude: lng}, nil
}
