package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casedesk/session-guard/internal/core/audit"
	"github.com/casedesk/session-guard/internal/core/domain"
)

// AuditReader is the read side of the audit log.
type AuditReader interface {
	Events(eventType string) []audit.Event
}

type AuditHandler struct {
	reader AuditReader
}

func NewAuditHandler(reader AuditReader) *AuditHandler {
	return &AuditHandler{reader: reader}
}

type auditQuery struct {
	Type  string `query:"type" validate:"max=64"`
	Limit int    `query:"limit" validate:"gte=0,lte=1000"`
}

type auditResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Events  []audit.Event `json:"events"`
}

// List returns the retained security events, oldest first, optionally
// filtered by type. With limit set only the newest events are returned.
//
// @Summary      List security audit events
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        type   query     string  false  "Event type filter"
// @Param        limit  query     int     false  "Return only the newest N events"
// @Success      200    {object}  auditResponse
// @Failure      400    {object}  errorEnvelope
// @Failure      401    {object}  errorEnvelope
// @Failure      403    {object}  errorEnvelope
// @Router       /admin/audit [get]
func (h *AuditHandler) List(c echo.Context) error {
	var q auditQuery
	if err := c.Bind(&q); err != nil {
		return domain.ValidationError("invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	events := h.reader.Events(q.Type)
	if q.Limit > 0 && len(events) > q.Limit {
		events = events[len(events)-q.Limit:]
	}
	if events == nil {
		events = []audit.Event{}
	}
	return c.JSON(http.StatusOK, auditResponse{Success: true, Count: len(events), Events: events})
}
