package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-orderbi/internal/etl"
	"github.com/pgEdge/pgedge-orderbi/internal/logging"
	"github.com/pgEdge/pgedge-orderbi/internal/source"
)

var (
	loadFile            string
	loadBatchSize       int
	loadStrictLineItems bool
	loadStage           string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the order history file into the database",
	Long: `Reset the schema and load a tab-separated order history file.

The load runs four stages in order, each on its own connection and in
its own transaction:
  dimensions - regions, countries and product categories
  customers  - one row per distinct customer name
  products   - one row per distinct product name (first seen wins)
  orders     - one row per order line item

A missing data file is reported and every stage is skipped. Use --stage
to re-run a single stage against the existing tables without a reset.

Example:
  pgedge-orderbi load --file orders_data.txt
  pgedge-orderbi load --file orders_data.txt --stage orders`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadFile, "file", "",
		"tab-separated order history file (default: orders_data.txt)")
	loadCmd.Flags().IntVar(&loadBatchSize, "batch-size", 0,
		"statements sent per round trip (default: 5000)")
	loadCmd.Flags().BoolVar(&loadStrictLineItems, "strict-line-items", false,
		"skip records whose multi-value columns differ in length")
	loadCmd.Flags().StringVar(&loadStage, "stage", "",
		"run only this stage: "+strings.Join(etl.Stages, ", "))
}

func runLoad(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if loadFile != "" {
		cfg.Load.DataFile = loadFile
	}
	if loadBatchSize > 0 {
		cfg.Load.BatchSize = loadBatchSize
	}
	if loadStrictLineItems {
		cfg.Load.StrictLineItems = true
	}

	// Validate configuration
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}
	if loadStage != "" && !slices.Contains(etl.Stages, loadStage) {
		return fmt.Errorf("unknown stage %q (valid: %s)", loadStage, strings.Join(etl.Stages, ", "))
	}

	connString, err := cfg.DatabaseURL()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pipeline := etl.NewPipeline(connString, source.FromFile(cfg.Load.DataFile), etl.Options{
		BatchSize:       cfg.Load.BatchSize,
		StrictLineItems: cfg.Load.StrictLineItems,
	})

	logging.Info().
		Str("file", cfg.Load.DataFile).
		Int("batch_size", cfg.Load.BatchSize).
		Bool("strict_line_items", cfg.Load.StrictLineItems).
		Msg("Starting load")

	if loadStage != "" {
		result, err := pipeline.RunStage(ctx, loadStage)
		printStages([]etl.StageResult{result})
		return err
	}

	summary, err := pipeline.Run(ctx)
	if summary != nil {
		printStages(summary.Stages)
	}
	if err != nil {
		return err
	}
	if !summary.Complete() {
		return fmt.Errorf("data file %s not found; nothing was loaded", cfg.Load.DataFile)
	}
	return nil
}

func printStages(stages []etl.StageResult) {
	rows := [][]string{{"Stage", "Records", "Inserted", "Already present", "Skipped records", "Skipped items", "Truncated"}}
	for _, st := range stages {
		if st.SourceMissing {
			rows = append(rows, []string{st.Stage, "source missing", "", "", "", "", ""})
			continue
		}
		rows = append(rows, []string{
			st.Stage,
			strconv.Itoa(st.Records),
			strconv.Itoa(st.Inserted()),
			strconv.Itoa(st.AlreadyPresent()),
			strconv.Itoa(st.SkippedRecords),
			strconv.Itoa(st.SkippedItems),
			strconv.Itoa(st.Truncated),
		})
	}
	printTable(rows)
}
