package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/clarifai/internal/backend"
	"github.com/ppiankov/clarifai/internal/broadcast"
	"github.com/ppiankov/clarifai/internal/layout"
	"github.com/ppiankov/clarifai/internal/model"
	"github.com/ppiankov/clarifai/internal/web"
	"github.com/ppiankov/clarifai/internal/worker"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard web server",
	Long: `Serve the ClarifAI dashboard:
- Pages for the dashboard, news, sources, analytics, graph, anchor and settings
- JSON view models under /api for scripted clients
- A live claim feed over websocket at /ws/claims
- Briefing jobs handed to the broadcast studio

Example:
  clarifai serve
  clarifai serve --addr :8080 --api-url http://clarifai.internal:8000
  CLARIFAI_BROADCAST_URL=http://studio:5500 clarifai serve
  clarifai serve --mode demo`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", ":3000", "listen address")
	flags.String("broadcast-url", model.DefaultBroadcastURL, "broadcast studio base URL")
	flags.String("theme", "system", "default theme for new sessions (light, dark, system)")
	flags.Int("workers", 4, "panels loaded concurrently per page")
	flags.String("llm-provider", "", "anchor script writer: openai, ollama, api or empty for the template writer")
	flags.String("llm-model", "", "anchor script model name")

	_ = viper.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("broadcast.url", flags.Lookup("broadcast-url"))
	_ = viper.BindPFlag("ui.theme", flags.Lookup("theme"))
	_ = viper.BindPFlag("concurrency.workers", flags.Lookup("workers"))
	_ = viper.BindPFlag("llm.provider", flags.Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.model", flags.Lookup("llm-model"))
}

// app is the wired dashboard
type app struct {
	store     *backend.Store
	briefings *broadcast.Manager
	feed      *web.FeedHub
	server    *web.Server
}

// newApp wires every dashboard component from cfg. Briefing jobs live as
// long as ctx.
func newApp(ctx context.Context, cfg *model.Config, logger *zap.Logger) (*app, error) {
	store := newStore(cfg, logger)

	writer, err := newScriptWriter(cfg, store, logger)
	if err != nil {
		return nil, err
	}

	studio := broadcast.NewStudioClient(cfg.Broadcast.URL, cfg.HTTP)
	briefings := broadcast.NewManager(ctx, studio, writer, store,
		broadcast.OptionsFromModel(cfg.Broadcast), logger.With(zap.String("component", "broadcast")))

	feed := web.NewFeedHub(store, cfg.Server.FeedPollInterval, logger.With(zap.String("component", "feed")))

	server, err := web.NewServer(web.Options{
		Store:     store,
		Sessions:  layout.NewSessionStore(cfg.Server.SessionTTL, cfg.UI),
		Briefings: briefings,
		Panels:    worker.NewPanelLoader(cfg.Concurrency.Workers),
		Feed:      feed,
		Robots:    cfg.Server.Robots,
		Logger:    logger.With(zap.String("component", "web")),
	})
	if err != nil {
		return nil, fmt.Errorf("web server: %w", err)
	}

	return &app{store: store, briefings: briefings, feed: feed, server: server}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.server.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ErrorLog:          zap.NewStdLog(logger),
	}

	logger.Info("dashboard starting",
		zap.String("addr", cfg.Server.Addr),
		zap.String("mode", a.store.Mode()),
		zap.String("api", cfg.API.URL),
		zap.String("broadcast", cfg.Broadcast.URL),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.feed.Run(gctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("dashboard shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	stop()
	a.briefings.Wait()
	return err
}
