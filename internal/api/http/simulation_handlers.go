package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/terminal"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/shared/utils"
)

var errLaunchTarget = errors.New("exactly one of catalog_id or script is required")

// ListCatalog lists the launchable simulations, optionally of one kind
func (h *Handlers) ListCatalog(c *gin.Context) {
	var entries []catalog.Entry
	if kind := c.Query("kind"); kind != "" {
		entries = h.catalog.ListKind(catalog.Kind(kind))
	} else {
		entries = h.catalog.List()
	}
	c.JSON(http.StatusOK, gin.H{"simulations": entries, "count": len(entries)})
}

// GetCatalogEntry returns one catalog entry
func (h *Handlers) GetCatalogEntry(c *gin.Context) {
	if err := utils.ValidateID(c.Param("id"), "id", true); err != nil {
		h.fail(c, err)
		return
	}
	entry, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

type launchRequest struct {
	CatalogID string           `json:"catalog_id"`
	Script    *terminal.Script `json:"script"`
}

// LaunchSimulation starts a catalog simulation or an inline script
func (h *Handlers) LaunchSimulation(c *gin.Context) {
	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if (req.CatalogID == "") == (req.Script == nil) {
		badRequest(c, errLaunchTarget)
		return
	}
	if err := utils.ValidateID(req.CatalogID, "catalog_id", false); err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	var (
		snap terminal.Snapshot
		err  error
	)
	if req.CatalogID != "" {
		var entry catalog.Entry
		if entry, err = h.catalog.Get(req.CatalogID); err != nil {
			h.fail(c, err)
			return
		}
		snap, err = h.ctrl.HandleLaunchProgram(ctx, entry.Program())
	} else {
		snap, err = h.ctrl.HandleLaunchSimulation(ctx, *req.Script)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Debug("Simulation launched over HTTP",
		zap.String("catalog_id", req.CatalogID),
		zap.String("session_id", snap.ID.String()),
	)
	c.JSON(http.StatusCreated, snap)
}

// GetSimulation returns the running simulation, if any
func (h *Handlers) GetSimulation(c *gin.Context) {
	sim, err := h.ctrl.Simulation(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sim)
}

type commandRequest struct {
	Command string `json:"command"`
}

// SubmitCommand feeds a command line to the running simulation
func (h *Handlers) SubmitCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := utils.ValidateCommand(req.Command); err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	accepted, err := h.ctrl.HandleSubmitCommand(ctx, req.Command)
	if err != nil {
		h.fail(c, err)
		return
	}
	sim, err := h.ctrl.Simulation(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": accepted, "simulation": sim})
}

// CloseSimulation tears the running simulation down
func (h *Handlers) CloseSimulation(c *gin.Context) {
	closed, err := h.ctrl.HandleCloseSimulation(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed": closed})
}
