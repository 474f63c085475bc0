package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "audycon/internal/errors"
	"audycon/internal/pagination"
	"audycon/internal/services"
)

// AuditHandler serves the audit trail review views.
type AuditHandler struct {
	auditService services.AuditServicer
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService services.AuditServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListLogsRequest represents the audit log filter query parameters.
type ListLogsRequest struct {
	pagination.PageRequest
	Query  string `form:"query"`
	Action string `form:"action"`
}

// ListLogs returns one page of the audit trail, newest first
// @Summary     List audit entries
// @Description Paginated audit trail, most recent first, enriched with actor and target names
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "1-indexed page" default(1)
// @Param       page_size query int    false "Page size" default(20)
// @Param       query     query string false "Substring match over action and detail"
// @Param       action    query string false "Exact action tag or ALL"
// @Success     200 {object} pagination.PageResponse[services.EnrichedEntry]
// @Failure     400 {object} ErrorResponse "Invalid pagination"
// @Failure     403 {object} ErrorResponse "Not an administrator"
// @Router      /admin/logs [get]
func (h *AuditHandler) ListLogs(c *gin.Context) {
	var req ListLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.auditService.ListEntries(req.PageRequest, services.EntryFilter{
		Query:  req.Query,
		Action: req.Action,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UserLogs returns the audit history touching one account
// @Summary     List audit entries for an account
// @Description Entries where the account is actor or target, newest first, capped at 200
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {array} services.EnrichedEntry
// @Failure     400 {object} ErrorResponse "Invalid account id"
// @Failure     403 {object} ErrorResponse "Not an administrator"
// @Router      /admin/users/{id}/logs [get]
func (h *AuditHandler) UserLogs(c *gin.Context) {
	accountID, err := parseAccountID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entries, err := h.auditService.ListEntriesForAccount(accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": entries})
}
