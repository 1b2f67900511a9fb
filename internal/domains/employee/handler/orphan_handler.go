package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"staff-directory/internal/infrastructure/cache"
	"staff-directory/internal/shared/response"
	"staff-directory/pkg/logger"
)

// OrphanLedger is the operator view of photos that could not be released.
type OrphanLedger interface {
	List(ctx context.Context, limit int64) ([]cache.OrphanEntry, error)
	Resolve(ctx context.Context, externalID string) error
	Count(ctx context.Context) (int64, error)
}

// OrphanHandler serves /api/v1/admin/orphaned-images. A nil ledger answers 503.
type OrphanHandler struct {
	ledger OrphanLedger
}

func NewOrphanHandler(ledger OrphanLedger) *OrphanHandler {
	return &OrphanHandler{ledger: ledger}
}

// List GET /api/v1/admin/orphaned-images?limit=100
func (h *OrphanHandler) List(c *gin.Context) {
	if h.ledger == nil {
		response.ErrorResponse(c, http.StatusServiceUnavailable, "LEDGER_UNAVAILABLE", "Orphan ledger is not configured")
		return
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)
	if err != nil || limit <= 0 || limit > 1000 {
		response.BadRequest(c, "limit must be between 1 and 1000")
		return
	}

	entries, err := h.ledger.List(c.Request.Context(), limit)
	if err != nil {
		logger.Error("failed to list orphaned images", err)
		response.InternalServerError(c, "Failed to list orphaned images")
		return
	}

	total, err := h.ledger.Count(c.Request.Context())
	if err != nil {
		logger.Error("failed to count orphaned images", err)
		total = int64(len(entries))
	}

	response.SuccessWithMeta(c, http.StatusOK, entries, &response.Meta{Total: int(total)})
}

// Resolve DELETE /api/v1/admin/orphaned-images?external_id=employees/<uuid>.jpg
func (h *OrphanHandler) Resolve(c *gin.Context) {
	if h.ledger == nil {
		response.ErrorResponse(c, http.StatusServiceUnavailable, "LEDGER_UNAVAILABLE", "Orphan ledger is not configured")
		return
	}

	externalID := c.Query("external_id")
	if externalID == "" {
		response.BadRequest(c, "external_id is required")
		return
	}

	if err := h.ledger.Resolve(c.Request.Context(), externalID); err != nil {
		logger.Error("failed to resolve orphaned image", err)
		response.InternalServerError(c, "Failed to resolve orphaned image")
		return
	}

	logger.Info("orphaned image resolved", map[string]interface{}{"external_id": externalID})
	response.Success(c, http.StatusOK, gin.H{"external_id": externalID})
}
