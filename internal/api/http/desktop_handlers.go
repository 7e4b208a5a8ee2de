package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/notify"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/shell"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/window"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/shared/utils"
)

// Start dismisses the splash screen
func (h *Handlers) Start(c *gin.Context) {
	first, err := h.ctrl.HandleStart(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"started": true, "first": first})
}

// State returns the whole desktop picture
func (h *Handlers) State(c *gin.Context) {
	state, err := h.ctrl.State(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ListWindows lists the open windows, bottom to top
func (h *Handlers) ListWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"windows": h.ctrl.Windows()})
}

type openWindowRequest struct {
	View string `json:"view" binding:"required"`
}

// OpenWindow opens a panel application or focuses its window
func (h *Handlers) OpenWindow(c *gin.Context) {
	var req openWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := window.ParseView(req.View)
	if err != nil {
		h.fail(c, err)
		return
	}

	rec, created, err := h.ctrl.HandleOpenApp(c.Request.Context(), view)
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"window": rec, "created": created})
}

// FocusWindow brings a window to the top. Unknown ids are not an error.
func (h *Handlers) FocusWindow(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	changed, err := h.ctrl.HandleFocusApp(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "changed": changed})
}

// CloseWindow closes a window. Unknown ids are not an error.
func (h *Handlers) CloseWindow(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	closed, err := h.ctrl.HandleCloseApp(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "closed": closed})
}

// SearchPalette filters the palette entries
func (h *Handlers) SearchPalette(c *gin.Context) {
	c.JSON(http.StatusOK, h.palette.Search(c.Query("q")))
}

// TogglePalette flips the command palette
func (h *Handlers) TogglePalette(c *gin.Context) {
	open, err := h.ctrl.HandleTogglePalette(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"open": open})
}

// PaletteKey applies a desktop keyboard shortcut
func (h *Handlers) PaletteKey(c *gin.Context) {
	var key shell.Key
	if err := c.ShouldBindJSON(&key); err != nil {
		badRequest(c, err)
		return
	}
	handled, err := h.ctrl.HandleKey(c.Request.Context(), key)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"handled": handled})
}

// PaletteAction runs a palette launcher
func (h *Handlers) PaletteAction(c *gin.Context) {
	var req openWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := window.ParseView(req.View)
	if err != nil {
		h.fail(c, err)
		return
	}
	rec, err := h.ctrl.HandlePaletteAction(c.Request.Context(), view)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": rec})
}

type paletteQueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// QueryPalette answers a `?` query in quick-answer mode
func (h *Handlers) QueryPalette(c *gin.Context) {
	var req paletteQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidatePrompt(req.Query); err != nil {
		h.fail(c, err)
		return
	}
	answer, err := h.palette.Ask(c.Request.Context(), req.Query)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": req.Query, "answer": answer})
}

// ListNotifications lists the live banners, oldest first
func (h *Handlers) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.notices.List()})
}

type notificationRequest struct {
	Title      string `json:"title" binding:"required"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	DurationMS int    `json:"duration"`
}

// AddNotification posts a banner
func (h *Handlers) AddNotification(c *gin.Context) {
	var req notificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateString(req.Title, "title", 1, utils.MaxTitleLength, true); err != nil {
		h.fail(c, err)
		return
	}
	if err := utils.ValidateString(req.Message, "message", 0, utils.MaxMessageLength, false); err != nil {
		h.fail(c, err)
		return
	}
	n := notify.Notification{
		Title:    req.Title,
		Message:  req.Message,
		Duration: notify.Duration(time.Duration(req.DurationMS) * time.Millisecond),
	}
	if req.Type != "" {
		typ, err := notify.ParseType(req.Type)
		if err != nil {
			h.fail(c, err)
			return
		}
		n.Type = typ
	}
	c.JSON(http.StatusCreated, h.notices.Add(n))
}

// DismissNotification removes a banner before it expires
func (h *Handlers) DismissNotification(c *gin.Context) {
	id := c.Param("id")
	if err := utils.ValidateID(id, "id", true); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "removed": h.notices.Remove(id)})
}
