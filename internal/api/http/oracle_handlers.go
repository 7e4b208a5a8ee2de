package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/providers/oracle"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/shared/utils"
)

type openOracleRequest struct {
	Prompt string `json:"prompt"`
}

// OpenOracle opens the AI overlay primed with a prompt
func (h *Handlers) OpenOracle(c *gin.Context) {
	var req openOracleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidatePrompt(req.Prompt); err != nil {
		h.fail(c, err)
		return
	}
	state, err := h.ctrl.HandleAskOracle(c.Request.Context(), req.Prompt)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// CloseOracle closes the AI overlay
func (h *Handlers) CloseOracle(c *gin.Context) {
	wasOpen, err := h.ctrl.HandleCloseOracle(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"was_open": wasOpen})
}

type askRequest struct {
	Prompt  string           `json:"prompt" binding:"required"`
	Mode    string           `json:"mode"`
	History []oracle.Message `json:"history"`
}

type askResponse struct {
	Mode     oracle.Mode  `json:"mode"`
	Text     string       `json:"text,omitempty"`
	Site     *oracle.Site `json:"site,omitempty"`
	Fallback bool         `json:"fallback"`
}

// AskOracle sends one prompt to the AI backend. Backend failures are
// answered with the mode's fallback text so the panel always has
// something to show.
func (h *Handlers) AskOracle(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := validateAsk(req); err != nil {
		h.fail(c, err)
		return
	}
	mode := oracle.ModeChat
	if req.Mode != "" {
		m, err := oracle.ParseMode(req.Mode)
		if err != nil {
			h.fail(c, err)
			return
		}
		mode = m
	}
	if h.oracle == nil {
		h.fail(c, oracle.ErrDisabled)
		return
	}

	ctx := c.Request.Context()
	resp := askResponse{Mode: mode}
	var err error
	switch mode {
	case oracle.ModeSite:
		var site oracle.Site
		site, err = h.oracle.Site(ctx, req.Prompt)
		resp.Site = &site
	case oracle.ModeChat:
		resp.Text, err = h.oracle.Chat(ctx, req.History, req.Prompt)
	default:
		resp.Text, err = h.oracle.Ask(ctx, mode, req.Prompt)
	}

	if err != nil {
		if errors.Is(err, oracle.ErrEmptyPrompt) {
			h.fail(c, err)
			return
		}
		h.logger.Warn("Oracle request failed, using fallback",
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		resp.Fallback = true
		if mode == oracle.ModeSite {
			resp.Site = &oracle.Site{HTML: oracle.Fallback(mode), Title: "Generation Error"}
		} else {
			resp.Text = oracle.Fallback(mode)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func validateAsk(req askRequest) error {
	if err := utils.ValidatePrompt(req.Prompt); err != nil {
		return err
	}
	turns := make([]string, len(req.History))
	for i, m := range req.History {
		turns[i] = m.Content
	}
	return utils.ValidateHistory(turns)
}
