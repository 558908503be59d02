package cli

import (
	"strconv"

	"github.com/smallbiznis/sevadesk/internal/catalog"
	"github.com/smallbiznis/sevadesk/internal/config"
	"github.com/smallbiznis/sevadesk/internal/pricing"
	"github.com/spf13/cobra"
)

type catalogRow struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Single      string `json:"single"`
	Weekly      string `json:"weekly"`
	Monthly     string `json:"monthly"`
}

// NewCatalogCmd prints the service catalog with the price of every frequency.
func NewCatalogCmd(opts *RootOptions, load func() (*catalog.Catalog, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show the service catalog and prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}

			rows, err := catalogRows(c)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, rows, func() string {
				table := make([][]string, 0, len(rows))
				for _, r := range rows {
					table = append(table, []string{strconv.Itoa(r.ID), r.DisplayName, r.Single, r.Weekly, r.Monthly})
				}
				return "Catalog " + c.Version() + "\n" +
					FormatTable([]string{"ID", "SERVICE", "SINGLE", "WEEKLY", "MONTHLY"}, table)
			})
		},
	}
}

func catalogRows(c *catalog.Catalog) ([]catalogRow, error) {
	resolver := pricing.NewResolver(c)
	entries := c.Entries()
	rows := make([]catalogRow, 0, len(entries))
	for _, entry := range entries {
		row := catalogRow{ID: int(entry.ID), Name: entry.Name, DisplayName: entry.DisplayName}
		for _, target := range []struct {
			frequency pricing.Frequency
			dst       *string
		}{
			{pricing.FrequencySingle, &row.Single},
			{pricing.FrequencyWeekly, &row.Weekly},
			{pricing.FrequencyMonthly, &row.Monthly},
		} {
			amount, err := resolver.ResolveAmount(entry.ID, target.frequency)
			if err != nil {
				return nil, err
			}
			*target.dst = amount.StringFixed(2)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func loadCatalog() (*catalog.Catalog, error) {
	return catalog.Load(config.Load().CatalogFile)
}
