package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/service"
	"github.com/noah-isme/wellness-api/pkg/export"
)

func newReportCmd() *cobra.Command {
	var (
		reportType string
		format     string
		studentID  string
		out        string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a report synchronously to a local file",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			renderer, err := export.ForFormat(format)
			if err != nil {
				return err
			}
			exporter := service.NewExportService(e.store, nil, nil, service.ExportConfig{}, e.logger)
			dataset, err := exporter.Dataset(cmd.Context(), models.ReportType(reportType), studentID)
			if err != nil {
				return err
			}
			data, err := renderer.Render(dataset)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			if out == "" {
				out = fmt.Sprintf("%s.%s", reportType, renderer.Extension())
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(dataset.Rows), out)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&reportType, "type", "t", string(models.ReportTypeSummary), "sessions|mood|risk|summary")
	cmd.Flags().StringVarP(&format, "format", "f", string(models.ReportFormatCSV), "csv|pdf")
	cmd.Flags().StringVar(&studentID, "student", "", "limit to one student code")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default <type>.<ext>)")
	return cmd
}
