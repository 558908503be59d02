package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	reportdomain "github.com/smallbiznis/sevadesk/internal/report/domain"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type reportRunner func(ctx context.Context, year, month int) (reportdomain.Artifact, error)

// NewReportCmd generates and stores the workbook for one month.
func NewReportCmd(opts *RootOptions, run reportRunner) *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the monthly service report",
		Long:  "Generate the monthly service report workbook and store it in the configured report storage.\nYear and month default to the current UTC month.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			if !cmd.Flags().Changed("year") {
				year = now.Year()
			}
			if !cmd.Flags().Changed("month") {
				month = int(now.Month())
			}
			if _, err := reportdomain.NewPeriod(year, month); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			artifact, err := run(ctx, year, month)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, artifact, func() string {
				return formatArtifact(artifact)
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "report year (default: current year)")
	cmd.Flags().IntVar(&month, "month", 0, "report month 1-12 (default: current month)")
	return cmd
}

func formatArtifact(a reportdomain.Artifact) string {
	total := "-"
	if a.Summary.TotalAmount != nil {
		total = a.Summary.TotalAmount.StringFixed(2)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Report:          %s\n", a.Name)
	fmt.Fprintf(&sb, "Location:        %s\n", a.Location)
	fmt.Fprintf(&sb, "Size:            %d bytes\n", a.Size)
	fmt.Fprintf(&sb, "Total services:  %d\n", a.Summary.TotalCount)
	fmt.Fprintf(&sb, "Total amount:    %s\n", total)
	fmt.Fprintf(&sb, "Unique devotees: %d\n", a.Summary.UniqueDevoteeCount)
	return sb.String()
}

func runReport(ctx context.Context, year, month int) (reportdomain.Artifact, error) {
	var svc reportdomain.Service
	app := fx.New(
		coreModules(),
		fx.NopLogger,
		fx.Populate(&svc),
	)
	if err := app.Start(ctx); err != nil {
		return reportdomain.Artifact{}, err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return svc.GenerateMonthly(ctx, year, month)
}
