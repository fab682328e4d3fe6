package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/pet-composer/internal/storage"
)

// AdminHandler handles administrative endpoints.
type AdminHandler struct {
	captionCalls storage.CaptionCallRepository
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(captionCalls storage.CaptionCallRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		captionCalls: captionCalls,
		logger:       logger,
	}
}

// Stats returns caption-call counters for cost monitoring.
// Route: GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.captionCalls.Count(ctx)
	if err != nil {
		h.internalError(c, "counting caption calls", err)
		return
	}

	succeeded, err := h.captionCalls.CountBySuccess(ctx, true)
	if err != nil {
		h.internalError(c, "counting successful caption calls", err)
		return
	}

	byVoice, err := h.captionCalls.CountByVoice(ctx)
	if err != nil {
		h.internalError(c, "counting caption calls by voice", err)
		return
	}
	if byVoice == nil {
		byVoice = []storage.VoiceCount{} // render [] rather than null
	}

	c.JSON(http.StatusOK, gin.H{
		"caption_calls": gin.H{
			"total":     total,
			"succeeded": succeeded,
			"failed":    total - succeeded,
			"by_voice":  byVoice,
		},
	})
}

func (h *AdminHandler) internalError(c *gin.Context, what string, err error) {
	h.logger.Error(what, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
