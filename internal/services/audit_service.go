package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"avrexpense/internal/logger"
	"avrexpense/internal/models"
	"avrexpense/internal/store"
)

// Audit actions.
const (
	AuditDelegationCreated = "DELEGATION_CREATED"
	AuditDelegationUpdated = "DELEGATION_UPDATED"
	AuditDelegationExpired = "DELEGATION_EXPIRED"
	AuditDelegationRemoved = "DELEGATION_REMOVED"
	AuditExpenseApproved   = "EXPENSE_APPROVED"
	AuditExpenseRejected   = "EXPENSE_REJECTED"
)

// auditService handles audit log recording.
type auditService struct {
	store  store.Store
	logger *zap.SugaredLogger
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(st store.Store) AuditServicer {
	return &auditService{store: st, logger: logger.Named("audit")}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(ctx context.Context, actorID, action, resourceType, resourceID, projectID string, changes map[string]any) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			s.logger.Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ProjectID:    projectID,
		Changes:      changesJSON,
	}

	if err := s.store.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Errorw("failed to create audit log entry",
			"error", err,
			"actor_id", actorID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
