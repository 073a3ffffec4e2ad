package cli

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

	"github.com/agora-platform/agora/internal/cache"
	"github.com/agora-platform/agora/internal/factcheck"
	"github.com/agora-platform/agora/internal/httpapi"
	"github.com/agora-platform/agora/internal/llm"
	"github.com/agora-platform/agora/internal/model"
	"github.com/agora-platform/agora/internal/search"
	"github.com/agora-platform/agora/internal/store"
)

var (
	serveAddr   string
	serveNoInit bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the debate platform HTTP API",
	Long: `Serve starts the HTTP API: topics, pro/con arguments, voting, and
evidence-based fact checking of arguments.

Requires a reachable Postgres database and, for verification endpoints,
a text-generation provider key and a Tavily search key.

Example:
  agora serve
  agora serve --addr :9000
  AGORA_LLM_PROVIDER=ollama agora serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveNoInit, "no-init", false, "skip database schema initialization")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger := log.New(os.Stderr, "agora ", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer st.Close()

	if !serveNoInit {
		if err := st.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
	}

	checker, err := buildChecker(cfg)
	if err != nil {
		return err
	}

	srv := httpapi.NewServer(st, checker, cfg.Worker, logger)
	if err := srv.ListenAndServe(ctx, cfg.Server); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// buildChecker wires the verification pipeline from configuration
func buildChecker(cfg *model.Config) (*factcheck.Checker, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("create text-generation provider: %w", err)
	}

	if verbose {
		probeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if provider.IsAvailable(probeCtx) {
			fmt.Fprintf(os.Stderr, "Provider %s: available\n", provider.Name())
		} else {
			fmt.Fprintf(os.Stderr, "Provider %s: not reachable, verification requests will fail\n", provider.Name())
		}
		cancel()
	}

	searchOpts := []search.Option{}
	if cfg.Search.BaseURL != "" {
		searchOpts = append(searchOpts, search.WithBaseURL(cfg.Search.BaseURL))
	}
	if cfg.Search.Timeout > 0 {
		searchOpts = append(searchOpts, search.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Search.Timeout) * time.Second,
		}))
	}
	searcher := search.NewClient(cfg.Search.APIKey, searchOpts...)

	opts := []factcheck.Option{}
	if cfg.Cache.Enabled {
		opts = append(opts, factcheck.WithCache(
			cache.NewVerdictCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)))
	}

	return factcheck.NewChecker(provider, searcher, cfg.FactCheck, cfg.Search, opts...), nil
}
