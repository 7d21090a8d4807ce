package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/killallgit/digest-api/api"
	"github.com/killallgit/digest-api/api/types"
	"github.com/killallgit/digest-api/internal/database"
	"github.com/killallgit/digest-api/internal/models"
	channelsService "github.com/killallgit/digest-api/internal/services/channels"
	digestsService "github.com/killallgit/digest-api/internal/services/digests"
	"github.com/killallgit/digest-api/internal/services/discovery"
	"github.com/killallgit/digest-api/internal/services/generative"
	jobsService "github.com/killallgit/digest-api/internal/services/jobs"
	"github.com/killallgit/digest-api/internal/services/mailer"
	"github.com/killallgit/digest-api/internal/services/summaries"
	"github.com/killallgit/digest-api/internal/services/transcripts"
	videosService "github.com/killallgit/digest-api/internal/services/videos"
	"github.com/killallgit/digest-api/internal/services/workers"
	"github.com/killallgit/digest-api/pkg/config"
	"github.com/spf13/cobra"
)

var (
	serverHost string
	serverPort int
	noWorkers  bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and pipeline workers",
	Long: `Start the Video Digest API server with the configured settings.

The server handles HTTP requests while the worker pool processes the
pipeline jobs: channel feed checks, transcript and summary generation,
and digest delivery.

Example:
  digest-api serve
  digest-api serve --port 9090
  digest-api serve --host 0.0.0.0 --port 8080 --no-workers`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
	serveCmd.Flags().BoolVar(&noWorkers, "no-workers", false, "serve HTTP only, without pipeline workers")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if serverHost == "" {
		serverHost = cfg.Server.Host
	}
	if serverPort == 0 {
		serverPort = cfg.Server.Port
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

	var scheduler *workers.Scheduler
	if noWorkers {
		fmt.Println("Pipeline workers disabled, serving HTTP only")
	} else {
		scheduler, err = startWorkers(ctx, deps, cfg)
		if err != nil {
			return err
		}
	}

	server := api.NewServer(fmt.Sprintf("%s:%d", serverHost, serverPort))
	server.SetDatabase(db)
	server.SetDependencies(deps)
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	fmt.Printf("Server is ready to handle requests at %s:%d\n", serverHost, serverPort)

	select {
	case <-stop:
		fmt.Println("\nShutting down server...")
	case err := <-serverErr:
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		fmt.Println("Shutting down server...")
	}

	cancel()
	if scheduler != nil {
		scheduler.Stop()
	}
	if deps.WorkerPool != nil {
		deps.WorkerPool.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Server forced to shutdown: %v\n", err)
		return err
	}

	fmt.Println("Server gracefully stopped")
	return nil
}

// buildDependencies wires the domain services from configuration
func buildDependencies(db *database.DB, cfg *config.Config) (*types.Dependencies, error) {
	deps := &types.Dependencies{DB: db}

	deps.ChannelService = channelsService.NewService(channelsService.NewRepository(db.DB))
	deps.VideoService = videosService.NewService(videosService.NewRepository(db.DB), videosService.EligibilityRules{
		MinDuration: cfg.Processing.MinVideoDuration,
		MaxRetries:  cfg.Processing.MaxRetries,
		RetryDelay:  cfg.Processing.RetryDelay,
	})
	deps.DigestService = digestsService.NewService(
		digestsService.NewRepository(db.DB),
		digestsService.Triggers{
			Interval:       time.Duration(cfg.Digest.IntervalDays) * 24 * time.Hour,
			VideoThreshold: cfg.Digest.VideoThreshold,
			MaxVideos:      cfg.Digest.MaxVideos,
		},
		cfg.Mail.ToAddress,
	)
	deps.JobService = jobsService.NewService(jobsService.NewRepository(db.DB))

	return deps, nil
}

// startWorkers builds the pipeline processors, starts the worker pool,
// and kicks off the recurring schedules
func startWorkers(ctx context.Context, deps *types.Dependencies, cfg *config.Config) (*workers.Scheduler, error) {
	source, err := discovery.NewYouTubeSource(ctx, discovery.Credentials{
		APIKey:    cfg.YouTube.APIKey,
		TokenPath: cfg.YouTube.TokenPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery source: %w", err)
	}

	transcriptService := transcripts.NewService(
		transcripts.NewYouTubeCaptionClient(transcripts.YouTubeCaptionConfig{
			BaseURL: cfg.Transcripts.PrimaryBaseURL,
			APIKey:  cfg.Transcripts.PrimaryAPIKey,
			Timeout: cfg.Transcripts.Timeout,
		}),
		transcripts.NewSupadataClient(transcripts.SupadataConfig{
			BaseURL:  cfg.Transcripts.FallbackBaseURL,
			APIKey:   cfg.Transcripts.FallbackAPIKey,
			Language: cfg.Transcripts.TargetLanguage,
			Timeout:  cfg.Transcripts.Timeout,
		}),
		cfg.Transcripts.TargetLanguage,
		cfg.Transcripts.SecondaryLanguage,
	)

	summaryService := summaries.NewService(
		generative.NewOpenAIClient(generative.Config{
			APIKey:    cfg.Summarizer.APIKey,
			Model:     cfg.Summarizer.Model,
			Timeout:   cfg.Summarizer.RequestTimeout,
			RateLimit: int(cfg.Summarizer.RateLimit),
		}),
		summaries.Options{
			MaxTranscriptChars: cfg.Summarizer.MaxTranscriptChars,
			MaxAttempts:        cfg.Summarizer.MaxAttempts,
		},
	)

	sender := mailer.NewResendClient(mailer.ResendConfig{
		APIKey:  cfg.Mail.APIKey,
		BaseURL: cfg.Mail.BaseURL,
		Timeout: cfg.Mail.Timeout,
	})

	pool := workers.NewWorkerPool(deps.JobService, cfg.Processing.Workers, cfg.Processing.PollInterval)
	pool.RegisterProcessor(workers.NewDiscoveryProcessor(
		deps.JobService,
		deps.ChannelService,
		deps.VideoService,
		source,
		time.Hour,
		time.Duration(cfg.YouTube.CheckWindowDays)*24*time.Hour,
	))
	pool.RegisterProcessor(workers.NewVideoProcessor(
		deps.JobService,
		deps.VideoService,
		deps.ChannelService,
		transcriptService,
		summaryService,
	))
	pool.RegisterProcessor(workers.NewDigestProcessor(
		deps.JobService,
		deps.DigestService,
		sender,
		cfg.Mail.FromAddress,
	))
	if err := pool.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start worker pool: %w", err)
	}
	deps.WorkerPool = pool

	scheduler := workers.NewScheduler(deps.JobService, deps.VideoService, workers.SchedulerConfig{
		JobRetentionDays: cfg.Processing.JobRetentionDays,
	})
	scheduler.Start(ctx)

	return scheduler, nil
}
