package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/memgate/internal/control"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend health and memory statistics",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	app, err := control.NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize memgate", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := app.Service()

	health, err := svc.Health(ctx)
	if err != nil {
		slog.Error("Health check failed", "error", err)
		os.Exit(1)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		slog.Error("Stats fetch failed", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "FIELD\tVALUE")
	_, _ = fmt.Fprintf(w, "healthy\t%v\n", health.Healthy)
	if health.Version != "" {
		_, _ = fmt.Fprintf(w, "version\t%s\n", health.Version)
	}
	if health.Uptime > 0 {
		_, _ = fmt.Fprintf(w, "uptime\t%.0fs\n", health.Uptime)
	}
	_, _ = fmt.Fprintf(w, "memories\t%d\n", stats.Total)
	for layer, n := range stats.ByLayer {
		_, _ = fmt.Fprintf(w, "layer %s\t%d\n", layer, n)
	}
	_ = w.Flush()
}
