package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/logger"
	"avrexpense/internal/models"
	"avrexpense/internal/store"
)

// errLostRace rolls back a deactivation whose record another writer already
// deactivated. It never leaves this file.
var errLostRace = errors.New("delegation already deactivated")

// DelegationNotifier is told when a delegation leaves the ACTIVE state.
type DelegationNotifier interface {
	NotifyDelegationExpired(ctx context.Context, record *models.TemporaryApprover) (int, error)
}

// delegationService owns the temporary approver state machine:
// NONE -> ACTIVE -> EXPIRED, with EXPIRED terminal.
type delegationService struct {
	store    store.Store
	notifier DelegationNotifier
	audit    AuditServicer
	now      func() time.Time
	logger   *zap.SugaredLogger
}

// NewDelegationService creates a new DelegationServicer.
func NewDelegationService(st store.Store, notifier DelegationNotifier, audit AuditServicer) DelegationServicer {
	return &delegationService{
		store:    st,
		notifier: notifier,
		audit:    audit,
		now:      time.Now,
		logger:   logger.Named("delegation"),
	}
}

// Create starts a delegation. A project may have at most one active
// delegation; overdue ones are expired first, any other active one is a conflict.
func (s *delegationService) Create(ctx context.Context, projectID, createdBy string, in CreateDelegationInput) (*models.TemporaryApprover, error) {
	start := in.StartDate
	if start.IsZero() {
		start = s.now().UTC()
	}
	if in.ExpiringDate != nil && !in.ExpiringDate.After(start) {
		return nil, apperrors.ErrInvalidDateRange
	}

	approver, err := s.loadApprover(ctx, in.ApproverID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ExpireDue(ctx, projectID); err != nil {
		return nil, err
	}

	record := &models.TemporaryApprover{
		ProjectID:     projectID,
		ApproverID:    approver.ID,
		ApproverName:  approver.Name,
		ApproverPhone: approver.Phone,
		StartDate:     start,
		ExpiringDate:  in.ExpiringDate,
		IsActive:      true,
		Status:        models.DelegationStatusActive,
		CreatedBy:     createdBy,
		ChangedBy:     createdBy,
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		project, err := tx.GetProjectForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		active, err := tx.ListActiveTemporaryApprovers(ctx, projectID)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return apperrors.ErrDelegationAlreadyActive
		}
		if err := tx.CreateTemporaryApprover(ctx, record); err != nil {
			return err
		}
		return tx.UpdateProject(ctx, projectID, map[string]any{
			"team_members":             datatypes.JSONSlice[string](models.AddID(project.TeamMembers, approver.ID)),
			"temporary_approver_phone": approver.Phone,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Delegation created", "project_id", projectID, "delegation_id", record.ID, "approver_id", approver.ID)
	s.audit.Log(ctx, createdBy, AuditDelegationCreated, "temporary_approver", record.ID, projectID, map[string]any{
		"approver_id":   approver.ID,
		"start_date":    start,
		"expiring_date": in.ExpiringDate,
	})
	return record, nil
}

// Update edits an active delegation's dates or re-parents it to another approver.
// A delegation already past its expiry is expired rather than revived.
func (s *delegationService) Update(ctx context.Context, projectID, delegationID, changedBy string, in UpdateDelegationInput) (*models.TemporaryApprover, error) {
	var newApprover *models.User
	if in.ApproverID != nil {
		u, err := s.loadApprover(ctx, *in.ApproverID)
		if err != nil {
			return nil, err
		}
		newApprover = u
	}

	if _, err := s.ExpireDue(ctx, projectID); err != nil {
		return nil, err
	}

	var updated *models.TemporaryApprover
	changes := map[string]any{}

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		project, err := tx.GetProjectForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		current, err := tx.GetTemporaryApprover(ctx, delegationID)
		if err != nil {
			return err
		}
		if current.ProjectID != projectID {
			return apperrors.ErrDelegationNotFound
		}
		if !current.InEffect(s.now()) {
			return apperrors.ErrDelegationNotActive
		}

		start := current.StartDate
		if in.StartDate != nil {
			start = *in.StartDate
		}
		expiring := current.ExpiringDate
		if in.ClearExpiringDate {
			expiring = nil
		} else if in.ExpiringDate != nil {
			expiring = in.ExpiringDate
		}
		if expiring != nil && !expiring.After(start) {
			return apperrors.ErrInvalidDateRange
		}

		fields := map[string]any{
			"start_date":    start,
			"expiring_date": expiring,
			"changed_by":    changedBy,
			"updated_at":    s.now().UTC(),
		}
		changes["start_date"] = start
		changes["expiring_date"] = expiring

		projectFields := map[string]any{}
		if newApprover != nil && newApprover.ID != current.ApproverID {
			fields["approver_id"] = newApprover.ID
			fields["approver_name"] = newApprover.Name
			fields["approver_phone"] = newApprover.Phone

			members := []string(project.TeamMembers)
			if !project.HoldsPermanentRole(current.ApproverID) {
				members = models.RemoveID(members, current.ApproverID)
			}
			members = models.AddID(members, newApprover.ID)
			projectFields["team_members"] = datatypes.JSONSlice[string](members)
			projectFields["temporary_approver_phone"] = newApprover.Phone

			changes["previous_approver_id"] = current.ApproverID
			changes["approver_id"] = newApprover.ID
		}

		applied, err := tx.UpdateTemporaryApprover(ctx, delegationID, fields)
		if err != nil {
			return err
		}
		if !applied {
			return apperrors.ErrDelegationNotActive
		}
		if len(projectFields) > 0 {
			if err := tx.UpdateProject(ctx, projectID, projectFields); err != nil {
				return err
			}
		}

		updated, err = tx.GetTemporaryApprover(ctx, delegationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, changedBy, AuditDelegationUpdated, "temporary_approver", delegationID, projectID, changes)
	return updated, nil
}

// Expire is the automatic expiry transition, recorded as changed by System.
// It reports false without error when another caller expired the record first.
func (s *delegationService) Expire(ctx context.Context, projectID string, record *models.TemporaryApprover) (bool, error) {
	if record == nil {
		return false, apperrors.ErrDelegationNotFound
	}

	expired, err := s.deactivate(ctx, projectID, record.ID, models.SystemActor)
	if err != nil || expired == nil {
		return false, err
	}

	s.logger.Infow("Delegation expired", "project_id", projectID, "delegation_id", expired.ID, "approver_id", expired.ApproverID)
	s.notifyExpired(ctx, expired)
	s.audit.Log(ctx, models.SystemActor, AuditDelegationExpired, "temporary_approver", expired.ID, projectID, map[string]any{
		"approver_id":   expired.ApproverID,
		"expiring_date": expired.ExpiringDate,
	})
	return true, nil
}

// ExpireDue expires every active delegation on the project whose expiry has
// passed. A failure on one record does not stop the others; the errors are joined.
func (s *delegationService) ExpireDue(ctx context.Context, projectID string) (int, error) {
	active, err := s.store.ListActiveTemporaryApprovers(ctx, projectID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	expired := 0
	var errs []error
	for i := range active {
		if !active[i].IsDue(now) {
			continue
		}
		ok, err := s.Expire(ctx, projectID, &active[i])
		if err != nil {
			s.logger.Errorw("Failed to expire delegation", "project_id", projectID, "delegation_id", active[i].ID, "error", err)
			errs = append(errs, err)
			continue
		}
		if ok {
			expired++
		}
	}
	return expired, errors.Join(errs...)
}

// Remove ends a delegation on request of a production head. The effects match
// Expire except that the acting user is recorded.
func (s *delegationService) Remove(ctx context.Context, projectID, delegationID, removedBy string) error {
	record, err := s.store.GetTemporaryApprover(ctx, delegationID)
	if err != nil {
		return err
	}
	if record.ProjectID != projectID {
		return apperrors.ErrDelegationNotFound
	}
	if !record.IsActive {
		return apperrors.ErrDelegationNotActive
	}

	removed, err := s.deactivate(ctx, projectID, delegationID, removedBy)
	if err != nil || removed == nil {
		return err
	}

	s.logger.Infow("Delegation removed", "project_id", projectID, "delegation_id", delegationID, "removed_by", removedBy)
	s.notifyExpired(ctx, removed)
	s.audit.Log(ctx, removedBy, AuditDelegationRemoved, "temporary_approver", delegationID, projectID, map[string]any{
		"approver_id": removed.ApproverID,
	})
	return nil
}

// List returns the project's delegation history, newest first.
func (s *delegationService) List(ctx context.Context, projectID string) ([]models.TemporaryApprover, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListTemporaryApprovers(ctx, projectID)
}

// deactivate runs the compensating actions of expiry in one transaction under
// the project row lock: flip the record to EXPIRED conditional on it still
// being active, drop the approver from the team unless they hold a permanent
// role, and clear the delegation phone. When the project row is gone only the
// record is flipped. It returns the deactivated record, or nil when another
// writer had already deactivated it.
func (s *delegationService) deactivate(ctx context.Context, projectID, delegationID, changedBy string) (*models.TemporaryApprover, error) {
	var snapshot *models.TemporaryApprover

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		project, err := tx.GetProjectForUpdate(ctx, projectID)
		if errors.Is(err, apperrors.ErrProjectNotFound) {
			s.logger.Warnw("Project missing, expiring orphaned delegation", "project_id", projectID, "delegation_id", delegationID)
			project = nil
		} else if err != nil {
			return err
		}
		current, err := tx.GetTemporaryApprover(ctx, delegationID)
		if err != nil {
			return err
		}
		if current.ProjectID != projectID {
			return apperrors.ErrDelegationNotFound
		}
		if !current.IsActive {
			return errLostRace
		}

		at := s.now().UTC()
		applied, err := tx.DeactivateTemporaryApprover(ctx, delegationID, changedBy, at)
		if err != nil {
			return err
		}
		if !applied {
			return errLostRace
		}

		if project != nil {
			fields := map[string]any{"temporary_approver_phone": nil}
			if !project.HoldsPermanentRole(current.ApproverID) {
				fields["team_members"] = datatypes.JSONSlice[string](models.RemoveID(project.TeamMembers, current.ApproverID))
			}
			if err := tx.UpdateProject(ctx, projectID, fields); err != nil {
				return err
			}
		}

		current.IsActive = false
		current.Status = models.DelegationStatusExpired
		current.ChangedBy = changedBy
		current.UpdatedAt = at
		snapshot = current
		return nil
	})
	if errors.Is(err, errLostRace) {
		s.logger.Debugw("Delegation already deactivated", "project_id", projectID, "delegation_id", delegationID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *delegationService) notifyExpired(ctx context.Context, record *models.TemporaryApprover) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.NotifyDelegationExpired(ctx, record); err != nil {
		s.logger.Errorw("Failed to send delegation expired notification",
			"project_id", record.ProjectID,
			"delegation_id", record.ID,
			"error", err,
		)
	}
}

// loadApprover returns the user behind approverID, who must be an active APPROVER.
func (s *delegationService) loadApprover(ctx context.Context, approverID string) (*models.User, error) {
	if approverID == "" {
		return nil, apperrors.ErrInvalidApprover
	}
	user, err := s.store.GetUserByID(ctx, approverID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleApprover || !user.IsActive {
		return nil, apperrors.ErrInvalidApprover
	}
	return user, nil
}
