package cli

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-orderbi/internal/analytics"
	"github.com/pgEdge/pgedge-orderbi/internal/db"
)

var (
	reportCustomer string
	reportList     bool
)

var reportCmd = &cobra.Command{
	Use:   "report [query...]",
	Short: "Run the built-in analytical reports",
	Long: `Run one or more of the built-in reports against the loaded data and
print the results as tables. Without arguments every report runs; the
customer reports run only when --customer is given.

Example:
  pgedge-orderbi report --list
  pgedge-orderbi report top-customers monthly-totals
  pgedge-orderbi report customer-orders --customer "Jane Doe"`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportCustomer, "customer", "",
		"customer full name for the customer reports")
	reportCmd.Flags().BoolVar(&reportList, "list", false,
		"list the available reports and exit")
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportList {
		rows := [][]string{{"Report", "Needs customer", "Description"}}
		for _, q := range analytics.Catalog() {
			needs := ""
			if q.NeedsCustomer {
				needs = "yes"
			}
			rows = append(rows, []string{q.Name, needs, q.Description})
		}
		printTable(rows)
		return nil
	}

	var queries []analytics.Query
	if len(args) == 0 {
		for _, q := range analytics.Catalog() {
			if q.NeedsCustomer && reportCustomer == "" {
				continue
			}
			queries = append(queries, q)
		}
	}
	for _, name := range args {
		q, ok := analytics.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown report %q; use --list to see the reports", name)
		}
		queries = append(queries, q)
	}

	connString, err := cfg.DatabaseURL()
	if err != nil {
		return err
	}

	ctx := context.Background()
	conn, err := db.ConnectSingle(ctx, connString, "report")
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	for _, q := range queries {
		table, err := q.Run(ctx, conn, reportCustomer)
		if err != nil {
			return fmt.Errorf("report %s failed: %w", q.Name, err)
		}

		pterm.DefaultSection.Println(q.Description)
		if len(table.Rows) == 0 {
			pterm.Info.Println("No rows")
			continue
		}
		printTable(append([][]string{table.Columns}, table.Rows...))
	}
	return nil
}
