package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrovista/fermops/internal/domain/models"
	"github.com/agrovista/fermops/internal/identity"
	"github.com/agrovista/fermops/internal/metrics"
	"github.com/agrovista/fermops/internal/service/analytics"
	"github.com/agrovista/fermops/internal/service/dismissals"
	"github.com/agrovista/fermops/internal/service/reporting"
)

// AlertsHandler adapts the analytics core to the dashboard HTTP API.
type AlertsHandler struct {
	reports    *reporting.Service
	dismissals *dismissals.Service
	logger     *zap.Logger
}

// NewAlertsHandler constructs the HTTP handler adapter.
func NewAlertsHandler(reports *reporting.Service, dismissalSvc *dismissals.Service, logger *zap.Logger) *AlertsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertsHandler{reports: reports, dismissals: dismissalSvc, logger: logger}
}

// List returns the tenant's current smart alerts with today's dismissed
// keys already filtered out.
func (h *AlertsHandler) List(c *gin.Context) {
	tenantID := c.Param("tenantID")

	generated, err := h.reports.GenerateAlerts(c.Request.Context(), tenantID, time.Now())
	if err != nil {
		h.logger.Error("failed generating alerts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate alerts"})
		return
	}

	dismissed, err := h.dismissals.GetTodayDismissals(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed loading dismissals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dismissals"})
		return
	}

	dismissedSet := make(map[string]struct{}, len(dismissed))
	for _, key := range dismissed {
		dismissedSet[key] = struct{}{}
	}

	visible := make([]models.SmartAlert, 0, len(generated))
	for _, alert := range generated {
		if _, gone := dismissedSet[alert.AlertKey]; gone {
			metrics.AlertsSuppressedTotal.Inc()
			continue
		}
		metrics.AlertsGeneratedTotal.WithLabelValues(string(alert.Severity)).Inc()
		visible = append(visible, alert)
	}

	c.JSON(http.StatusOK, gin.H{"alerts": visible})
}

type dismissRequest struct {
	AlertKey string `json:"alert_key" binding:"required"`
}

// Dismiss suppresses one alert key for the current user for the rest of
// the day.
func (h *AlertsHandler) Dismiss(c *gin.Context) {
	tenantID := c.Param("tenantID")

	var req dismissRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid dismissal payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.dismissals.DismissAlert(c.Request.Context(), tenantID, req.AlertKey); err != nil {
		h.respondDismissError(c, err)
		return
	}

	metrics.DismissalsWrittenTotal.Inc()
	c.Status(http.StatusNoContent)
}

type dismissBulkRequest struct {
	AlertKeys []string `json:"alert_keys" binding:"required"`
}

// DismissBulk suppresses a batch of alert keys at once.
func (h *AlertsHandler) DismissBulk(c *gin.Context) {
	tenantID := c.Param("tenantID")

	var req dismissBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid bulk dismissal payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.dismissals.DismissAlertsBulk(c.Request.Context(), tenantID, req.AlertKeys); err != nil {
		h.respondDismissError(c, err)
		return
	}

	metrics.DismissalsWrittenTotal.Inc()
	c.Status(http.StatusNoContent)
}

// Profit serves the dashboard profit summary. Optional from/to query
// parameters restrict the range; anything unparseable means unbounded.
func (h *AlertsHandler) Profit(c *gin.Context) {
	tenantID := c.Param("tenantID")

	var from, to time.Time
	if parsed, ok := analytics.ParseDateOnly(c.Query("from")); ok {
		from = parsed
	}
	if parsed, ok := analytics.ParseDateOnly(c.Query("to")); ok {
		to = parsed
	}

	summary, err := h.reports.ProfitSummary(c.Request.Context(), tenantID, from, to)
	if err != nil {
		h.logger.Error("failed computing profit summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute profit"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ParcelPause serves the re-entry pause status for one parcel.
func (h *AlertsHandler) ParcelPause(c *gin.Context) {
	tenantID := c.Param("tenantID")
	parcelID := c.Param("parcelID")

	status, err := h.reports.ParcelPause(c.Request.Context(), tenantID, parcelID, time.Now())
	if err != nil {
		h.logger.Error("failed computing pause status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute pause status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *AlertsHandler) respondDismissError(c *gin.Context, err error) {
	if errors.Is(err, identity.ErrNoUserContext) {
		h.logger.Warn("dismissal rejected without user context", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user context"})
		return
	}

	h.logger.Error("failed recording dismissal", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record dismissal"})
}
