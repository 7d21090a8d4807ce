package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/killallgit/digest-api/internal/database"
	"github.com/killallgit/digest-api/internal/models"
	"github.com/killallgit/digest-api/pkg/config"
	"github.com/spf13/cobra"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the pipeline workers without the API server",
	Long: `Run the worker pool and scheduler as a standalone process.

Useful when the HTTP API and the pipeline should scale independently:
one process runs 'serve --no-workers', another runs 'worker' against
the same database.

Example:
  digest-api worker`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return err
	}

	deps, err := buildDependencies(db, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler, err := startWorkers(ctx, deps, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Worker pool running with %d workers\n", cfg.Processing.Workers)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	fmt.Println("\nShutting down workers...")
	cancel()
	scheduler.Stop()
	deps.WorkerPool.Stop()

	fmt.Println("Workers stopped")
	return nil
}
