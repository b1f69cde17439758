package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clarifai/internal/backend"
	"github.com/ppiankov/clarifai/internal/llm"
	"github.com/ppiankov/clarifai/internal/model"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the ClarifAI API",
	Long: `Report the effective data mode, whether the script writer is reachable and
whether the ClarifAI API and its graph database answer the health check.

Example:
  clarifai status
  CLARIFAI_API_URL=http://clarifai.internal:8000 clarifai status`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTP.Timeout+5*time.Second)
	defer cancel()

	store := newStore(cfg, logger)
	writer, err := newScriptWriter(cfg, store, logger)
	if err != nil {
		return err
	}
	return reportStatus(ctx, cmd.OutOrStdout(), cfg, store, writer)
}

func reportStatus(ctx context.Context, w io.Writer, cfg *model.Config, store *backend.Store, writer *llm.ScriptWriter) error {
	fmt.Fprintf(w, "  Mode:       %s\n", store.Mode())
	fmt.Fprintf(w, "  API:        %s\n", cfg.API.URL)
	fmt.Fprintf(w, "  Studio:     %s\n", cfg.Broadcast.URL)
	fmt.Fprintf(w, "  Scripts:    %s\n\n", writer.ProviderName())

	if writer.Available(ctx) {
		fmt.Fprintf(w, "✓ Script writer %s available\n", writer.ProviderName())
	} else {
		fmt.Fprintf(w, "✗ Script writer %s unavailable, the template writer is used\n", writer.ProviderName())
	}

	client := store.Client()
	if client == nil {
		fmt.Fprintf(w, "✓ Demo mode, the API is not contacted\n")
		return nil
	}

	h, err := client.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "✗ API unreachable: %v\n", err)
		if store.Mode() == model.ModeAuto {
			fmt.Fprintf(w, "  The dashboard will serve cached or demo data\n")
		}
		return err
	}
	fmt.Fprintf(w, "✓ API %s\n", h.API)
	if h.Neo4j != "" {
		fmt.Fprintf(w, "✓ Graph database %s\n", h.Neo4j)
	}
	return nil
}
