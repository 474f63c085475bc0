package services

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	apperrors "audycon/internal/errors"
	"audycon/internal/logger"
	"audycon/internal/models"
	"audycon/internal/pagination"
)

// accountLogLimit caps the per-account history view.
const accountLogLimit = 200

// auditService records and queries the append-only audit trail.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Record appends one audit entry. It is best-effort by design: a failed
// audit write is logged and swallowed, never propagated, so losing a record
// can never block or roll back the administrative action it describes.
func (s *auditService) Record(action models.Action, performedBy *string, targetUser string, detail map[string]interface{}) {
	detailJSON := "{}"
	if detail != nil {
		data, err := json.Marshal(detail)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit detail", "error", err, "action", action)
		} else {
			detailJSON = string(data)
		}
	}

	entry := &models.AuditEntry{
		Action:      action,
		PerformedBy: performedBy,
		TargetUser:  targetUser,
		Detail:      detailJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to write audit entry",
			"error", err,
			"action", action,
			"target_user", targetUser,
		)
	}
}

// ListEntries returns one page of the audit trail, newest first, enriched
// with actor and target display names. A page past the end is empty, not
// an error.
func (s *auditService) ListEntries(page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[EnrichedEntry], error) {
	page.Defaults()

	query := s.db.Model(&models.AuditEntry{})
	if filter.Action != "" && filter.Action != "ALL" {
		query = query.Where("action = ?", filter.Action)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("LOWER(action) LIKE ? OR LOWER(detail) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.AuditEntry
	if err := query.
		Order("created_at DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	enriched := s.enrich(entries)
	resp := pagination.NewPageResponse(enriched, page.Page, page.PageSize, total)
	return &resp, nil
}

// ListEntriesForAccount returns the entries where the account is either the
// actor or the target, newest first, capped at accountLogLimit. Enrichment
// is best-effort: if the name lookup fails the entries are still returned
// with shortened-id fallbacks.
func (s *auditService) ListEntriesForAccount(accountID string) ([]EnrichedEntry, error) {
	var entries []models.AuditEntry
	if err := s.db.
		Where("target_user = ? OR performed_by = ?", accountID, accountID).
		Order("created_at DESC, id DESC").
		Limit(accountLogLimit).
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.enrich(entries), nil
}

// enrich resolves performer and target display names for a batch of entries.
// Unresolvable references (deleted accounts, failed lookups) fall back to a
// shortened id so the trail never loses rows to a broken join.
func (s *auditService) enrich(entries []models.AuditEntry) []EnrichedEntry {
	ids := make([]string, 0, len(entries)*2)
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, e := range entries {
		if e.PerformedBy != nil {
			add(*e.PerformedBy)
		}
		add(e.TargetUser)
	}

	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		var accounts []models.Account
		if err := s.db.Select("id", "full_name", "email").Where("id IN ?", ids).Find(&accounts).Error; err != nil {
			logger.Get().Warnw("audit enrichment lookup failed, falling back to raw ids", "error", err)
		} else {
			for _, a := range accounts {
				if a.FullName != "" {
					names[a.ID] = a.FullName
				} else {
					names[a.ID] = a.Email
				}
			}
		}
	}

	resolve := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return shortID(id)
	}

	enriched := make([]EnrichedEntry, 0, len(entries))
	for _, e := range entries {
		ee := EnrichedEntry{AuditEntry: e, TargetName: resolve(e.TargetUser)}
		if e.PerformedBy != nil {
			ee.PerformerName = resolve(*e.PerformedBy)
		} else {
			ee.PerformerName = "-"
		}
		enriched = append(enriched, ee)
	}
	return enriched
}

// shortID abbreviates an account id for display when no name resolves.
func shortID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) > 10 {
		return id[:8] + "…"
	}
	return id
}
