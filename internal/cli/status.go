package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-orderbi/internal/db"
	"github.com/pgEdge/pgedge-orderbi/internal/schema"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show table row counts and the last load summary",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	connString, err := cfg.DatabaseURL()
	if err != nil {
		return err
	}

	ctx := context.Background()
	conn, err := db.ConnectSingle(ctx, connString, "status")
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	exists, err := schema.Exists(ctx, conn)
	if err != nil {
		return err
	}
	if !exists {
		pterm.Warning.Println("Schema not found; run 'pgedge-orderbi load' first")
		return nil
	}

	counts, err := schema.RowCounts(ctx, conn)
	if err != nil {
		return err
	}
	pterm.DefaultSection.Println("Tables")
	rows := [][]string{{"Table", "Rows"}}
	for _, t := range schema.Tables {
		rows = append(rows, []string{t, strconv.FormatInt(counts[t], 10)})
	}
	printTable(rows)

	hasMeta, err := db.MetadataExists(ctx, conn)
	if err != nil {
		return err
	}
	if !hasMeta {
		pterm.Info.Println("No load has been recorded")
		return nil
	}

	meta, err := db.GetAllMetadata(ctx, conn)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pterm.DefaultSection.Println("Last load")
	rows = [][]string{{"Key", "Value"}}
	for _, k := range keys {
		rows = append(rows, []string{k, meta[k]})
	}
	printTable(rows)
	return nil
}
