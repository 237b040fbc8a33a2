package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-orderbi/internal/datagen"
)

var (
	generateRows      int
	generateOut       string
	generateSeed      uint64
	generateCustomers int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a sample order history file",
	Long: `Write a tab-separated order history file in the format the load
command reads. Customer names and addresses are random; countries,
regions and the product catalogue come from a fixed list. Each record
holds one to four line items.

Example:
  pgedge-orderbi generate --rows 5000 --out orders_data.txt --seed 42`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&generateRows, "rows", 1000,
		"number of records to write")
	generateCmd.Flags().StringVar(&generateOut, "out", "",
		"output file (default: the configured data file)")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0,
		"random seed for reproducible output (0 = random)")
	generateCmd.Flags().IntVar(&generateCustomers, "customers", 0,
		"number of distinct customers (default: rows/3)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if generateRows < 0 {
		return fmt.Errorf("rows must not be negative")
	}
	out := generateOut
	if out == "" {
		out = cfg.Load.DataFile
	}

	ctx, cancel := signalContext()
	defer cancel()

	opts := datagen.DefaultOptions()
	opts.Rows = generateRows
	opts.Seed = generateSeed
	opts.Customers = generateCustomers
	return datagen.WriteFile(ctx, out, opts)
}
