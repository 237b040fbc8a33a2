package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-orderbi/internal/db"
	"github.com/pgEdge/pgedge-orderbi/internal/logging"
	"github.com/pgEdge/pgedge-orderbi/internal/schema"
)

var initPrintSQL bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Drop and recreate the order analytics schema",
	Long: `Drop the Region, Country, Customer, Product and OrderDetail tables
(and the load metadata) if they exist, then create them empty.

The load command does this itself before every run; init is useful to
prepare an empty database, or with --print-sql to review the DDL.

Example:
  pgedge-orderbi init --connection "postgres://..."
  pgedge-orderbi init --print-sql`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initPrintSQL, "print-sql", false,
		"print the schema DDL and exit without connecting")
}

func runInit(cmd *cobra.Command, args []string) error {
	if initPrintSQL {
		cmd.Print(schema.DropSQL())
		cmd.Print(schema.CreateSQL())
		return nil
	}

	connString, err := cfg.DatabaseURL()
	if err != nil {
		return err
	}

	ctx := context.Background()
	conn, err := db.ConnectSingle(ctx, connString, "init")
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	logging.Info().Msg("Resetting schema")
	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if err := schema.Reset(ctx, tx); err != nil {
			return err
		}
		return db.DropMetadata(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("failed to reset schema: %w", err)
	}

	logging.Info().
		Strs("tables", schema.Tables).
		Msg("Schema initialization complete")
	return nil
}
