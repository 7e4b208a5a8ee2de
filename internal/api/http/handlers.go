package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/notify"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/palette"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/pattern"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/shell"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/terminal"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/window"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/providers/oracle"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/shared/utils"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Oracle is the generative AI backend used by the chat and site builder
// panels
type Oracle interface {
	Enabled() bool
	BreakerState() resilience.State
	Ask(ctx context.Context, mode oracle.Mode, prompt string) (string, error)
	Chat(ctx context.Context, history []oracle.Message, prompt string) (string, error)
	Site(ctx context.Context, prompt string) (oracle.Site, error)
}

// Deps are the collaborators the handlers serve
type Deps struct {
	Controller    *shell.Controller
	Catalog       *catalog.Catalog
	Notifications *notify.Center
	Palette       *palette.Palette
	Oracle        Oracle
	Metrics       *monitoring.Metrics
	Logger        *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	ctrl    *shell.Controller
	catalog *catalog.Catalog
	notices *notify.Center
	palette *palette.Palette
	oracle  Oracle
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(deps Deps) *Handlers {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Handlers{
		ctrl:    deps.Controller,
		catalog: deps.Catalog,
		notices: deps.Notifications,
		palette: deps.Palette,
		oracle:  deps.Oracle,
		metrics: deps.Metrics,
		logger:  deps.Logger.Named("http"),
	}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/state", h.State)
	r.POST("/start", h.Start)

	// Windows
	r.GET("/windows", h.ListWindows)
	r.POST("/windows", h.OpenWindow)
	r.POST("/windows/:id/focus", h.FocusWindow)
	r.DELETE("/windows/:id", h.CloseWindow)

	// Simulations
	r.GET("/catalog", h.ListCatalog)
	r.GET("/catalog/:id", h.GetCatalogEntry)
	r.GET("/simulation", h.GetSimulation)
	r.POST("/simulation", h.LaunchSimulation)
	r.POST("/simulation/input", h.SubmitCommand)
	r.DELETE("/simulation", h.CloseSimulation)

	// AI overlay and backend
	r.POST("/oracle/open", h.OpenOracle)
	r.DELETE("/oracle", h.CloseOracle)
	r.POST("/oracle/ask", h.AskOracle)

	// Command palette
	r.GET("/palette", h.SearchPalette)
	r.POST("/palette/toggle", h.TogglePalette)
	r.POST("/palette/key", h.PaletteKey)
	r.POST("/palette/action", h.PaletteAction)
	r.POST("/palette/query", h.QueryPalette)

	// Notifications
	r.GET("/notifications", h.ListNotifications)
	r.POST("/notifications", h.AddNotification)
	r.DELETE("/notifications/:id", h.DismissNotification)

	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
		r.GET("/metrics/json", h.MetricsSummary)
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "ZERO HUB",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	sim, err := h.ctrl.Simulation(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	oracleHealth := gin.H{"enabled": false}
	if h.oracle != nil {
		oracleHealth = gin.H{
			"enabled": h.oracle.Enabled(),
			"breaker": h.oracle.BreakerState().String(),
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"windows":           len(h.ctrl.Windows()),
		"simulation_active": sim.Active,
		"catalog":           h.catalog.Len(),
		"subscribers":       h.ctrl.Bus().Subscribers(),
		"oracle":            oracleHealth,
	})
}

// MetricsSummary returns the headline numbers for the dashboard
func (h *Handlers) MetricsSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

// fail maps a domain error onto a status code and writes it
func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shell.ErrSimulationActive),
		errors.Is(err, shell.ErrNoSimulation):
		return http.StatusConflict
	case errors.Is(err, pattern.ErrMalformedPattern),
		errors.Is(err, terminal.ErrInvalidOutput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, utils.ErrInvalid),
		errors.Is(err, window.ErrUnknownView),
		errors.Is(err, notify.ErrUnknownType),
		errors.Is(err, oracle.ErrUnknownMode),
		errors.Is(err, oracle.ErrEmptyPrompt),
		errors.Is(err, palette.ErrNotAIQuery),
		errors.Is(err, palette.ErrEmptyPrompt):
		return http.StatusBadRequest
	case errors.Is(err, oracle.ErrDisabled),
		errors.Is(err, shell.ErrLoopStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window id"})
		return 0, false
	}
	return id, true
}
