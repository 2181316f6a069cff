package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"avrexpense/internal/logger"
	"avrexpense/internal/models"
	"avrexpense/internal/store"
)

// AuthorityResolver decides who holds review authority on a project. Nothing
// is cached; every call reads the store.
type AuthorityResolver struct {
	store   store.Store
	sweeper ProjectSweeper
	now     func() time.Time
	logger  *zap.SugaredLogger
}

var _ AuthorityResolverServicer = (*AuthorityResolver)(nil)

// NewAuthorityResolver creates a resolver. Attach a sweeper with AttachSweeper
// to expire overdue delegations before authority is evaluated.
func NewAuthorityResolver(st store.Store) *AuthorityResolver {
	return &AuthorityResolver{
		store:  st,
		now:    time.Now,
		logger: logger.Named("authority-resolver"),
	}
}

// AttachSweeper sets the sweeper run against a project before its authority
// is resolved. It must be called before the resolver is shared.
func (r *AuthorityResolver) AttachSweeper(s ProjectSweeper) {
	r.sweeper = s
}

// AuthorityFor returns the project's current approvers and production heads.
// Only active users hold authority. On any store failure it returns an empty authority alongside the error.
func (r *AuthorityResolver) AuthorityFor(ctx context.Context, projectID string) (*Authority, error) {
	empty := &Authority{ApproverIDs: []string{}, ProductionHeadIDs: []string{}, Source: AuthoritySourceExplicit}

	if r.sweeper != nil {
		if _, err := r.sweeper.SweepProject(ctx, projectID); err != nil {
			r.logger.Warnw("Implicit expiry sweep failed", "project_id", projectID, "error", err)
		}
	}

	project, err := r.store.GetProject(ctx, projectID)
	if err != nil {
		return empty, err
	}
	approverUsers, err := r.store.GetUsersByRole(ctx, models.RoleApprover)
	if err != nil {
		return empty, err
	}
	headUsers, err := r.store.GetUsersByRole(ctx, models.RoleProductionHead)
	if err != nil {
		return empty, err
	}
	delegations, err := r.store.ListActiveTemporaryApprovers(ctx, projectID)
	if err != nil {
		return empty, err
	}

	approverUsers = activeUsers(approverUsers)
	headUsers = activeUsers(headUsers)
	isApprover := idSet(approverUsers)
	isHead := idSet(headUsers)

	authority := &Authority{
		ApproverIDs:       []string{},
		ProductionHeadIDs: []string{},
		Source:            AuthoritySourceExplicit,
	}
	for _, id := range project.ApproverIDs {
		if isApprover[id] {
			authority.ApproverIDs = models.AddID(authority.ApproverIDs, id)
		}
	}
	if project.ManagerID != "" && isApprover[project.ManagerID] {
		authority.ApproverIDs = models.AddID(authority.ApproverIDs, project.ManagerID)
	}
	for _, id := range project.ProductionHeadIDs {
		if isHead[id] {
			authority.ProductionHeadIDs = models.AddID(authority.ProductionHeadIDs, id)
		}
	}

	if authority.IsEmpty() {
		for _, u := range approverUsers {
			authority.ApproverIDs = models.AddID(authority.ApproverIDs, u.ID)
		}
		for _, u := range headUsers {
			authority.ProductionHeadIDs = models.AddID(authority.ProductionHeadIDs, u.ID)
		}
		authority.Source = AuthoritySourceFallback
		r.logger.Warnw("Project has no explicit reviewers, using system-wide fallback",
			"project_id", projectID,
			"approvers", len(authority.ApproverIDs),
			"production_heads", len(authority.ProductionHeadIDs),
		)
	}

	now := r.now()
	for i := range delegations {
		if delegations[i].InEffect(now) {
			authority.ApproverIDs = models.AddID(authority.ApproverIDs, delegations[i].ApproverID)
		}
	}

	return authority, nil
}

// IsUserAssignedToProject is the access gate for project data and notifications.
// It fails closed: any store error yields false.
func (r *AuthorityResolver) IsUserAssignedToProject(ctx context.Context, user *models.User, projectID string) bool {
	if user == nil || projectID == "" {
		return false
	}

	switch user.Role {
	case models.RoleAdmin:
		return true
	case models.RoleUser:
		return models.ContainsID(user.AssignedProjects, projectID)
	case models.RoleApprover:
		project, err := r.store.GetProject(ctx, projectID)
		if err != nil {
			r.logAccessFailure(user, projectID, err)
			return false
		}
		if models.ContainsID(project.ApproverIDs, user.ID) || (project.ManagerID != "" && project.ManagerID == user.ID) {
			return true
		}
		return r.hasDelegation(ctx, user.ID, projectID)
	case models.RoleProductionHead:
		project, err := r.store.GetProject(ctx, projectID)
		if err != nil {
			r.logAccessFailure(user, projectID, err)
			return false
		}
		return models.ContainsID(project.ProductionHeadIDs, user.ID)
	}
	return false
}

func (r *AuthorityResolver) hasDelegation(ctx context.Context, userID, projectID string) bool {
	delegations, err := r.store.ListActiveTemporaryApprovers(ctx, projectID)
	if err != nil {
		r.logger.Warnw("Delegation lookup failed, denying access", "user_id", userID, "project_id", projectID, "error", err)
		return false
	}
	now := r.now()
	for i := range delegations {
		if delegations[i].ApproverID == userID && delegations[i].InEffect(now) {
			return true
		}
	}
	return false
}

func (r *AuthorityResolver) logAccessFailure(user *models.User, projectID string, err error) {
	r.logger.Warnw("Project lookup failed, denying access", "user_id", user.ID, "project_id", projectID, "error", err)
}

func activeUsers(users []models.User) []models.User {
	out := users[:0:0]
	for _, u := range users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out
}

func idSet(users []models.User) map[string]bool {
	set := make(map[string]bool, len(users))
	for _, u := range users {
		set[u.ID] = true
	}
	return set
}
