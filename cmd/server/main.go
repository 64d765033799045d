package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"
	"golang.org/x/time/rate"

	"github.com/AngelCh415/campaign-dashboard/internal/config"
	"github.com/AngelCh415/campaign-dashboard/internal/dashboard"
	"github.com/AngelCh415/campaign-dashboard/internal/httpx"
	"github.com/AngelCh415/campaign-dashboard/internal/ingest"
	"github.com/AngelCh415/campaign-dashboard/internal/projection"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
	"github.com/AngelCh415/campaign-dashboard/internal/telemetry"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.ServiceName, cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		logger.Warn("tracing disabled", slog.String("err", err.Error()))
	}

	metric, err := projection.ParseMetric(cfg.SecondaryMetric)
	if err != nil {
		logger.Warn("chart metric", slog.String("err", err.Error()), slog.String("fallback", string(projection.MetricCTR)))
		metric = projection.MetricCTR
	}
	mode := store.ModeFull
	if cfg.DemoMode {
		mode = store.ModeDemo
	}

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	st := store.NewMemoryStore()
	m := telemetry.NewMetrics()
	ctl := dashboard.New(ingest.NewSource(cl, cfg.ResultsPath), st, logger, m, dashboard.Options{
		Mode:             mode,
		RevealDelay:      cfg.RevealDelay,
		DefaultSelection: cfg.DefaultSelectionSize,
		InlineActions:    cfg.InlineActions,
		LeaderboardSize:  cfg.LeaderboardSize,
		Metric:           metric,
	})

	// un fallo de carga no tumba el server: la vista muestra el error
	go func() {
		_ = ctl.Load(ctx)
	}()

	agent := httpx.Agent{
		URL:    cfg.AgentURL,
		Client: cl,
		Hint:   "Agent service not configured. Run the agent backend first: " + cfg.AgentCommand,
	}
	if cfg.AgentRPS > 0 {
		agent.Limiter = rate.NewLimiter(rate.Limit(cfg.AgentRPS), 1)
	}

	r := httpx.NewRouter(logger, ctl, m, agent)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ctl.Close()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Error("shutdown", slog.String("err", err.Error()))
		}
		if err := shutdownTracing(sctx); err != nil {
			logger.Error("tracing shutdown", slog.String("err", err.Error()))
		}
	}()

	logger.Info("starting server", slog.String("port", cfg.Port), slog.String("results", cfg.ResultsPath), slog.String("mode", string(mode)))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
	<-idle
}
