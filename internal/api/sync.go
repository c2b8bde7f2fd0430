package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/linkmirror/linkmirror/internal/models"
	"github.com/linkmirror/linkmirror/internal/service"
)

// SyncHandler serves the run-trigger endpoints.
type SyncHandler struct {
	runner SyncRunner
	log    *logrus.Logger
}

// NewSyncHandler creates a SyncHandler with the given runner and logger.
func NewSyncHandler(runner SyncRunner, log *logrus.Logger) *SyncHandler {
	return &SyncHandler{runner: runner, log: log}
}

// Sync handles POST /api/v1/sync.
func (h *SyncHandler) Sync(c *gin.Context) {
	opts := service.SyncOptions{
		DryRun: parseBool(c.Query("dry_run")),
		Max:    parseInt(c.Query("max"), 0),
	}

	summary, err := h.runner.Sync(c.Request.Context(), opts)
	if err != nil {
		h.respondRunError(c, "sync", err)

		return
	}

	c.JSON(http.StatusOK, summary)
}

// Reconcile handles POST /api/v1/reconcile.
func (h *SyncHandler) Reconcile(c *gin.Context) {
	opts := service.ReconcileOptions{
		DryRun: parseBool(c.Query("dry_run")),
	}

	summary, err := h.runner.Reconcile(c.Request.Context(), opts)
	if err != nil {
		h.respondRunError(c, "reconcile", err)

		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *SyncHandler) respondRunError(c *gin.Context, job string, err error) {
	if errors.Is(err, models.ErrRunInProgress) {
		respondError(c, http.StatusConflict, ErrCodeConflict, job+" already running")

		return
	}

	h.log.WithError(err).WithField("job", job).Error("run failed")
	respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}
