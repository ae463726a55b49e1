package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bendaklara/restaurantsaround/config"
	"github.com/bendaklara/restaurantsaround/handlers"
	"github.com/bendaklara/restaurantsaround/logger"
	"github.com/bendaklara/restaurantsaround/metrics"
	"github.com/bendaklara/restaurantsaround/services"
	"github.com/bendaklara/restaurantsaround/tracer"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "restaurantsaround",
		Short:        "Messenger bot that finds restaurants at your zip code",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default: "+config.DefaultConfigFile+")")

	root.AddCommand(serveCmd())
	root.AddCommand(geocodeCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(sendCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE:  runServe,
	}
}

// loadConfig reads .env, the config file and the environment, then installs
// the configured logger as the default.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found")
	}
	if configPath != "" {
		os.Setenv("CONFIG_FILE", configPath)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger.New(cfg.Logger, os.Stdout))
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("setup tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Warn("Tracer shutdown failed", "error", err)
		}
	}()

	metrics.Register()

	opts := handlers.Options{
		SearchCategory:   cfg.SearchCategory,
		MaxPlaces:        cfg.MaxPlaces,
		PrivacyPolicyURL: cfg.PrivacyPolicyURL,
	}

	// Deduplication is optional; without MongoDB every delivery is answered.
	if cfg.MongoURI != "" {
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := services.InitMongoDB(dbCtx, cfg.MongoURI)
		if err != nil {
			slog.Error("Failed to connect to MongoDB", "error", err)
			return err
		}
		defer client.Disconnect(context.Background())

		dedup, err := services.NewMongoDeduplicator(dbCtx, client.Database(cfg.DatabaseName), cfg.DedupTTL)
		if err != nil {
			slog.Error("Failed to initialize deduplication", "error", err)
			return err
		}
		opts.Dedup = dedup
	}

	bot := newBot(cfg, opts)
	app := newApp(cfg, bot)

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Server starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("Server failed to start", "error", err)
		return err
	}
	return nil
}

func newBot(cfg *config.Config, opts handlers.Options) *handlers.Bot {
	client := services.NewHTTPClient(cfg.HTTPTimeout)
	return handlers.NewBot(
		services.NewGeocoder(cfg, client),
		services.NewGraphClient(cfg, client),
		services.NewMessenger(cfg, client),
		opts,
	)
}
