package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/ZeroHub/backend/internal/api/http"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/api/middleware"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/notify"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/palette"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/shell"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/providers/oracle"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/shared/clock"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/ws"
)

// StreamPath is the WebSocket endpoint. It bypasses response compression.
const StreamPath = "/stream"

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	loop    *shell.Loop
	ctrl    *shell.Controller
	catalog *catalog.Catalog
	watcher *catalog.Watcher
	notices *notify.Center
	oracle  *oracle.Client
	tracer  *tracing.Tracer
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// Option customizes server construction
type Option func(*options)

type options struct {
	logger    *logging.Logger
	scheduler clock.Scheduler
}

// WithLogger replaces the logger built from the configuration
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithScheduler replaces the wall clock driving simulations
func WithScheduler(s clock.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// New creates a new server instance. The event loop is started; Close
// stops it.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	logger.Info("Initializing ZERO HUB server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Bool("oracle_enabled", cfg.Oracle.Enabled),
		zap.String("catalog_dir", cfg.Catalog.Dir),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("zerohub", logger.Logger)

	// Simulation catalog
	cat := catalog.New().WithLogger(logger.Logger)
	if err := cat.Seed(); err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}
	if cfg.Catalog.Dir != "" {
		report, err := cat.LoadDir(cfg.Catalog.Dir)
		if err != nil {
			tracer.Close()
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		for file, ferr := range report.Failed {
			logger.Warn("Skipped catalog file", zap.String("file", file), zap.Error(ferr))
		}
	}

	oracleClient := oracle.New(oracle.Options{
		BaseURL:           cfg.Oracle.BaseURL,
		APIKey:            cfg.Oracle.APIKey,
		Model:             cfg.Oracle.Model,
		Timeout:           cfg.Oracle.Timeout,
		RequestsPerSecond: cfg.Oracle.RequestsPerSecond,
		Enabled:           cfg.Oracle.Enabled,
		Logger:            logger.Logger,
		Metrics:           metrics,
	})

	// Shell: one loop owns every desktop transition
	bus := shell.NewBus(0, logger.Logger)
	notices := notify.NewCenter(cfg.Notify.DefaultDuration, time.Second).
		WithLogger(logger.Logger).
		OnChange(func(list []notify.Notification) {
			bus.Publish(shell.Event{Type: shell.EventNotification, Notifications: list})
		})

	var watcher *catalog.Watcher
	if cfg.Catalog.Watch {
		var err error
		watcher, err = cat.Watch(cfg.Catalog.Dir, cfg.Catalog.WatchDebounce, func(report catalog.LoadReport) {
			notices.Add(notify.Notification{
				Title:   "Catalog Updated",
				Message: fmt.Sprintf("%d simulations available", cat.Len()),
				Type:    notify.TypeInfo,
			})
			for file, ferr := range report.Failed {
				logger.Warn("Skipped catalog file", zap.String("file", file), zap.Error(ferr))
			}
		})
		if err != nil {
			tracer.Close()
			return nil, fmt.Errorf("failed to watch catalog: %w", err)
		}
	}

	loop := shell.NewLoop(logger.Logger)
	ctrl := shell.NewController(shell.Options{
		Loop:      loop,
		Scheduler: o.scheduler,
		Timings:   cfg.Terminal.Timings(),
		Notifier:  shell.NotifierFunc(func(n notify.Notification) { notices.Add(n) }),
		Bus:       bus,
		Metrics:   metrics,
		Logger:    logger.Logger,
	})
	loop.Start()

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.AllowOrigins...)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			Logger:            logger.Logger,
		}))
	}

	handlers := api.NewHandlers(api.Deps{
		Controller:    ctrl,
		Catalog:       cat,
		Notifications: notices,
		Palette:       palette.New(oracleClient),
		Oracle:        oracleClient,
		Metrics:       metrics,
		Logger:        logger.Logger,
	})
	handlers.Register(router)

	wsHandler := ws.NewHandler(ctrl, oracleClient, metrics, logger.Logger)
	router.GET(StreamPath, wsHandler.HandleConnection)

	logger.Info("Server initialized successfully",
		zap.Int("simulations", cat.Len()),
	)

	return &Server{
		router:  router,
		loop:    loop,
		ctrl:    ctrl,
		catalog: cat,
		watcher: watcher,
		notices: notices,
		oracle:  oracleClient,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Handler returns the root HTTP handler. Responses are gzip compressed
// except on the WebSocket stream.
func (s *Server) Handler() http.Handler {
	compressed := gzhttp.GzipHandler(s.router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == StreamPath {
			s.router.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})
}

// Controller returns the desktop controller
func (s *Server) Controller() *shell.Controller { return s.ctrl }

// Run serves on the configured address until ctx is done, then shuts the
// HTTP server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close tears the running simulation down and stops the event loop
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := s.ctrl.HandleCloseSimulation(ctx); err != nil && !errors.Is(err, shell.ErrLoopStopped) {
		s.logger.Warn("Failed to close simulation", zap.Error(err))
	}
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.logger.Warn("Failed to stop catalog watcher", zap.Error(err))
		}
	}
	s.loop.Stop()
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()
	return nil
}
