package cli

import (
	"github.com/pterm/pterm"

	"github.com/pgEdge/pgedge-orderbi/internal/logging"
)

// printTable renders rows as a terminal table. The first row is the header.
func printTable(rows [][]string) {
	if err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(rows)).Render(); err != nil {
		logging.Error().Err(err).Msg("Failed to render table")
	}
}
