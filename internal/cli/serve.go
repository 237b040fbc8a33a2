package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-orderbi/internal/assistant"
	"github.com/pgEdge/pgedge-orderbi/internal/db"
	"github.com/pgEdge/pgedge-orderbi/internal/web"
)

var (
	serveAddr    string
	serveModel   string
	serveMaxRows int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SQL assistant web UI",
	Long: `Start a password protected web UI where questions about the order
data are turned into SQL by a language model. The generated query can be
reviewed and edited before it runs. Queries run in read-only transactions.

Requires OPENAI_API_KEY and HASHED_PASSWORD (see hash-password) in the
environment, the .env file or the config file.

Example:
  pgedge-orderbi serve --addr :8501`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"listen address (default: :8501)")
	serveCmd.Flags().StringVar(&serveModel, "model", "",
		"chat model used to generate SQL (default: gpt-4o-mini)")
	serveCmd.Flags().IntVar(&serveMaxRows, "max-rows", assistant.DefaultMaxRows,
		"maximum rows returned per query")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if serveAddr != "" {
		cfg.Web.Addr = serveAddr
	}
	if serveModel != "" {
		cfg.Web.Model = serveModel
	}

	// Validate configuration
	if err := cfg.ValidateWeb(); err != nil {
		return err
	}

	connString, err := cfg.DatabaseURL()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := db.Connect(ctx, connString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	server, err := web.NewServer(cfg.Web,
		assistant.NewOpenAI(cfg.Web),
		assistant.NewRunner(pool, serveMaxRows))
	if err != nil {
		return err
	}

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
