package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/services"
)

// OpsHandler exposes the expiry sweep to operators and automation.
type OpsHandler struct {
	sweeper services.ExpirySweeperServicer
	timeout time.Duration
}

// NewOpsHandler creates a new OpsHandler. timeout bounds a synchronous sweep.
func NewOpsHandler(sweeper services.ExpirySweeperServicer, timeout time.Duration) *OpsHandler {
	return &OpsHandler{sweeper: sweeper, timeout: timeout}
}

// RunExpirySweep triggers a sweep. With wait=true the sweep runs inline and
// its result is returned; otherwise it is queued and 202 is returned.
// @Summary     Run expiry sweep
// @Tags        ops
// @Produce     json
// @Security    BearerAuth
// @Security    ApiKeyAuth
// @Param       wait query bool false "Run synchronously and return the result"
// @Success     200 {object} services.SweepResult "Sweep finished"
// @Success     202 {object} object "Sweep queued"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /ops/expiry-sweep/run [post]
func (h *OpsHandler) RunExpirySweep(c *gin.Context) {
	if c.Query("wait") == "true" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		result, err := h.sweeper.Run(ctx)
		if err != nil {
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				err = apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
			}
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": result})
		return
	}

	if err := h.sweeper.RunNow(); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// GetExpirySweepStatus reports whether the periodic sweep is scheduled and how
// the last one went.
// @Summary     Expiry sweep status
// @Tags        ops
// @Produce     json
// @Security    BearerAuth
// @Security    ApiKeyAuth
// @Success     200 {object} services.SweepStatus "Sweep status"
// @Router      /ops/expiry-sweep/status [get]
func (h *OpsHandler) GetExpirySweepStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sweep": h.sweeper.Status()})
}
