package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/askweb/internal/api/handlers"
	"github.com/cloo-solutions/askweb/internal/config"
	"github.com/cloo-solutions/askweb/internal/openai"
	"github.com/cloo-solutions/askweb/internal/scrape"
	"github.com/cloo-solutions/askweb/internal/search"
	"github.com/cloo-solutions/askweb/internal/server"
	"github.com/cloo-solutions/askweb/internal/service"
	"github.com/cloo-solutions/askweb/internal/telemetry"

	sdk "github.com/sashabaranov/go-openai"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the askweb API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	searcher := buildSearchChain(cfg)

	fetcher := scrape.NewFetcher(scrape.FetcherConfig{
		MaxConcurrent: cfg.MaxConcurrentRequests,
		Timeout:       cfg.FetchTimeout,
	})
	filter := scrape.NewFilter(cfg.MinContentLength)

	var llm service.CompletionClient
	var embeddings service.EmbeddingClient
	if cfg.HasOpenAI() {
		client := openai.NewClientWithConfig(openai.Config{
			APIKey:         cfg.OpenAIAPIKey,
			EmbeddingModel: sdk.EmbeddingModel(cfg.EmbeddingModel),
		})
		llm = client
		embeddings = client
	} else {
		return fmt.Errorf("ASKWEB_OPENAI_API_KEY is required")
	}

	ranker := service.NewRanker(embeddings)
	registry := service.NewRegistry(llm)
	pipeline := service.NewPipeline(searcher, fetcher, filter, ranker, registry)

	queryHandler := handlers.NewQueryHandler(pipeline, handlers.QueryDefaults{
		TargetDomain: cfg.TargetDomain,
		ModelID:      cfg.ModelID,
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	})

	router := server.NewRouter(server.RouterConfig{
		QueryHandler: queryHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// buildSearchChain assembles providers in cost order: Brave and SerpAPI when
// keys are configured, DuckDuckGo scraping as the keyless fallback.
func buildSearchChain(cfg *config.Config) *search.Chain {
	var providers []search.Provider
	if cfg.HasBrave() {
		providers = append(providers, search.NewBraveProvider(cfg.BraveAPIKey, cfg.SearchTimeout))
	}
	if cfg.HasSerpAPI() {
		providers = append(providers, search.NewSerpAPIProvider(cfg.SerpAPIKey, cfg.SearchTimeout))
	}
	providers = append(providers, search.NewDuckDuckGoProvider(cfg.SearchTimeout))

	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	log.Printf("search providers: %v", names)

	return search.NewChain(providers...)
}
