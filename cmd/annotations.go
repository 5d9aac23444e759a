package cmd

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/annotations"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/export"
)

func newAnnotationsCmd(newApp appFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "annotations",
		Aliases: []string{"history"},
		Short:   "Browse and manage saved annotations",
	}

	cmd.AddCommand(newAnnotationsListCmd(newApp))
	cmd.AddCommand(newAnnotationsGetCmd(newApp))
	cmd.AddCommand(newAnnotationsRenameCmd(newApp))
	cmd.AddCommand(newAnnotationsDeleteCmd(newApp))
	cmd.AddCommand(newAnnotationsExportCmd(newApp))

	return cmd
}

func newAnnotationsListCmd(newApp appFactory) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved annotations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			list, err := app.Annotations.List(cmd.Context())
			if err != nil {
				return err
			}

			if filter != "" {
				list = filterAnnotations(list, filter)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved annotations")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFILE\tUPLOADED\tTOTAL PALMS")
			for _, ann := range list {
				uploaded := ""
				if !ann.Metadata.UploadDate.IsZero() {
					uploaded = ann.Metadata.UploadDate.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
					ann.ID, ann.Metadata.OriginalFileName, uploaded, ann.Results.Summary.TotalPalms)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only show annotations whose id or filename contains this text")

	return cmd
}

// filterAnnotations matches the query against annotation ids and original
// filenames, case-insensitively.
func filterAnnotations(list []annotations.Annotation, query string) []annotations.Annotation {
	query = strings.ToLower(query)
	matched := make([]annotations.Annotation, 0, len(list))
	for _, ann := range list {
		if strings.Contains(strings.ToLower(ann.ID), query) ||
			strings.Contains(strings.ToLower(ann.Metadata.OriginalFileName), query) {
			matched = append(matched, ann)
		}
	}
	return matched
}

func newAnnotationsGetCmd(newApp appFactory) *cobra.Command {
	var imageOut string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one saved annotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			ann, err := app.Annotations.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %s\n", ann.ID)
			fmt.Fprintf(out, "File:     %s\n", ann.Metadata.OriginalFileName)
			if !ann.Metadata.UploadDate.IsZero() {
				fmt.Fprintf(out, "Uploaded: %s\n", ann.Metadata.UploadDate.Local().Format("2006-01-02 15:04"))
			}
			counts := ann.Results.Counts
			summary := ann.Results.Summary
			fmt.Fprintf(out, "Counts:   Mature(Healthy)=%d Mature(Yellow)=%d Mature(Dead)=%d Young=%d\n",
				counts.MatureHealthy, counts.MatureYellow, counts.MatureDead, counts.Young)
			fmt.Fprintf(out, "Totals:   palms=%d mature=%d young=%d\n",
				summary.TotalPalms, summary.TotalMature, summary.TotalYoung)

			if imageOut != "" {
				data, err := base64.StdEncoding.DecodeString(ann.AnnotatedImage.Data)
				if err != nil {
					return fmt.Errorf("failed to decode annotated image: %w", err)
				}
				if err := os.WriteFile(imageOut, data, 0o644); err != nil {
					return fmt.Errorf("failed to write annotated image: %w", err)
				}
				fmt.Fprintf(out, "Annotated image written to %s\n", imageOut)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&imageOut, "image-out", "", "Also write the annotated image to this path")

	return cmd
}

func newAnnotationsRenameCmd(newApp appFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <id> <new-name>",
		Short: "Rename a saved annotation",
		Long: `Changes the original-filename label of a saved annotation. The annotated
image itself is immutable after creation; only results, success and
metadata can change.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			ann, err := app.Annotations.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			req := &annotations.UpdateRequest{
				Results:  ann.Results,
				Success:  ann.Success,
				Metadata: ann.Metadata,
			}
			req.Metadata.OriginalFileName = args[1]

			updated, err := app.Annotations.Update(cmd.Context(), ann.ID, req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", updated.ID, updated.Metadata.OriginalFileName)
			return nil
		},
	}

	return cmd
}

func newAnnotationsDeleteCmd(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved annotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if err := app.Annotations.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted annotation %s\n", args[0])
			return nil
		},
	}
}

func newAnnotationsExportCmd(newApp appFactory) *cobra.Command {
	var format string
	var out string
	var origin string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a saved annotation's tree locations",
		Example: `  palma annotations export 42 --format geojson
  palma annotations export 42 --format parquet --out trees.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			ann, err := app.Annotations.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			anchor, err := parseOrigin(origin, app.Config)
			if err != nil {
				return err
			}

			report := export.NewReport(ann.Metadata.OriginalFileName, &ann.Results, anchor)
			target := out
			if target == "" {
				target = "annotation_" + ann.ID + "." + format
			}
			if err := writeReport(report, target, format); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "geojson", "Export format (csv, geojson, yaml, parquet)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (default: annotation_<id>.<format>)")
	cmd.Flags().StringVar(&origin, "origin", "", "Geographic anchor as \"lat,lng\" (default: configured map center)")

	return cmd
}
