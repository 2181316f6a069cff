package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/logger"
	"avrexpense/internal/models"
	"avrexpense/internal/pagination"
	"avrexpense/internal/push"
	"avrexpense/internal/store"
)

// notificationRouter resolves the audience of a workflow event, stores one
// notification per recipient and pushes to the devices of eligible users.
// Delivery problems are logged and never surface to the triggering action.
type notificationRouter struct {
	store    store.Store
	resolver AuthorityResolverServicer
	sender   push.Sender
	logger   *zap.SugaredLogger
}

// NewNotificationRouter creates a new NotificationRouterServicer.
func NewNotificationRouter(st store.Store, resolver AuthorityResolverServicer, sender push.Sender) NotificationRouterServicer {
	return &notificationRouter{
		store:    st,
		resolver: resolver,
		sender:   sender,
		logger:   logger.Named("notification-router"),
	}
}

// NotifySubmission tells every current reviewer of the project about a new
// expense. An empty authority set is logged, not returned as an error.
func (r *notificationRouter) NotifySubmission(
	ctx context.Context,
	projectID, expenseID, submitterName string,
	amount decimal.Decimal,
	category string,
) (int, error) {
	project, err := r.store.GetProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	authority, err := r.resolver.AuthorityFor(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if authority.IsEmpty() {
		r.logger.Warnw("No reviewers for submitted expense, nobody notified",
			"project_id", projectID,
			"expense_id", expenseID,
		)
		return 0, nil
	}

	title := "New Expense Submitted"
	message := fmt.Sprintf("%s submitted %s for %s on %s", submitterName, amount.StringFixed(2), category, project.Name)

	sent := 0
	for _, group := range []struct {
		role models.UserRole
		ids  []string
	}{
		{models.RoleApprover, authority.ApproverIDs},
		{models.RoleProductionHead, authority.ProductionHeadIDs},
	} {
		for _, id := range group.ids {
			if r.persist(ctx, &models.Notification{
				RecipientID:      id,
				RecipientRole:    group.role,
				Title:            title,
				Message:          message,
				Type:             models.NotificationExpenseSubmitted,
				ProjectID:        projectID,
				ProjectName:      project.Name,
				RelatedID:        expenseID,
				ActionRequired:   true,
				NavigationTarget: pendingPath(group.role, projectID),
			}) {
				sent++
			}
		}
	}

	for _, role := range []models.UserRole{models.RoleApprover, models.RoleProductionHead} {
		if _, err := r.NotifyByRoleFiltered(ctx, role, projectID, title, message, models.NotificationExpenseSubmitted); err != nil {
			r.logger.Warnw("Push fan-out failed", "role", role, "project_id", projectID, "error", err)
		}
	}

	r.logger.Infow("Submission notifications sent",
		"project_id", projectID,
		"expense_id", expenseID,
		"recipients", sent,
		"authority_source", authority.Source,
	)
	return sent, nil
}

// NotifyDecision tells the submitter their expense was approved or rejected.
func (r *notificationRouter) NotifyDecision(ctx context.Context, notice DecisionNotice) error {
	if notice.SubmitterID == "" {
		return apperrors.ErrEmptyRecipient
	}

	projectName := ""
	if project, err := r.store.GetProject(ctx, notice.ProjectID); err == nil {
		projectName = project.Name
	} else {
		r.logger.Warnw("Project lookup failed for decision notification", "project_id", notice.ProjectID, "error", err)
	}

	nType := models.NotificationExpenseRejected
	title := "Expense Rejected"
	message := fmt.Sprintf("Your expense of %s was rejected by %s", notice.Amount.StringFixed(2), notice.ReviewerName)
	if notice.Comments != "" {
		message += ". Reason: " + notice.Comments
	}
	if notice.Approved {
		nType = models.NotificationExpenseApproved
		title = "Expense Approved"
		message = fmt.Sprintf("Your expense of %s was approved by %s", notice.Amount.StringFixed(2), notice.ReviewerName)
	}

	n := &models.Notification{
		RecipientID:      notice.SubmitterID,
		RecipientRole:    models.RoleUser,
		Title:            title,
		Message:          message,
		Type:             nType,
		ProjectID:        notice.ProjectID,
		ProjectName:      projectName,
		RelatedID:        notice.ExpenseID,
		NavigationTarget: "/user/expenses/" + notice.ExpenseID,
	}
	if _, err := r.store.CreateNotification(ctx, n); err != nil {
		return err
	}

	if submitter, err := r.store.GetUserByID(ctx, notice.SubmitterID); err == nil {
		n.RecipientRole = submitter.Role
		r.pushToUser(ctx, submitter, n)
	}
	return nil
}

// NotifyAssignment tells a user they were added to a project. The navigation
// target follows the recipient's own role.
func (r *notificationRouter) NotifyAssignment(ctx context.Context, projectID, userID, roleLabel string) error {
	if userID == "" {
		return apperrors.ErrEmptyRecipient
	}
	user, err := r.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	project, err := r.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}

	n := &models.Notification{
		RecipientID:      user.ID,
		RecipientRole:    user.Role,
		Title:            "Project Assignment",
		Message:          fmt.Sprintf("You have been assigned to %s as %s", project.Name, roleLabel),
		Type:             models.NotificationProjectAssignment,
		ProjectID:        projectID,
		ProjectName:      project.Name,
		NavigationTarget: dashboardPath(user.Role, projectID),
	}
	if _, err := r.store.CreateNotification(ctx, n); err != nil {
		return err
	}
	r.pushToUser(ctx, user, n)
	return nil
}

// NotifyPendingApprovals reminds the project's production heads, and only
// them, that expenses are waiting.
func (r *notificationRouter) NotifyPendingApprovals(ctx context.Context, projectID string, pendingCount int64) (int, error) {
	if pendingCount <= 0 {
		return 0, nil
	}
	project, err := r.store.GetProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	authority, err := r.resolver.AuthorityFor(ctx, projectID)
	if err != nil {
		return 0, err
	}

	title := "Pending Approvals"
	message := fmt.Sprintf("%d expense(s) awaiting approval on %s", pendingCount, project.Name)

	sent := 0
	for _, id := range authority.ProductionHeadIDs {
		if r.persist(ctx, &models.Notification{
			RecipientID:      id,
			RecipientRole:    models.RoleProductionHead,
			Title:            title,
			Message:          message,
			Type:             models.NotificationPendingApproval,
			ProjectID:        projectID,
			ProjectName:      project.Name,
			ActionRequired:   true,
			NavigationTarget: pendingPath(models.RoleProductionHead, projectID),
		}) {
			sent++
		}
	}

	if _, err := r.NotifyByRoleFiltered(ctx, models.RoleProductionHead, projectID, title, message, models.NotificationPendingApproval); err != nil {
		r.logger.Warnw("Push fan-out failed", "project_id", projectID, "error", err)
	}
	return sent, nil
}

// NotifyDelegationExpired tells the former delegate and the project's
// production heads that a delegation ended. Heads are only notified while they
// still hold the role and are active.
func (r *notificationRouter) NotifyDelegationExpired(ctx context.Context, record *models.TemporaryApprover) (int, error) {
	project, err := r.store.GetProject(ctx, record.ProjectID)
	if err != nil {
		return 0, err
	}

	title := "Temporary Approval Ended"
	delegateMsg := fmt.Sprintf("Your temporary approver access to %s has ended", project.Name)
	headMsg := fmt.Sprintf("Temporary approver %s no longer has access to %s", record.ApproverName, project.Name)

	sent := 0
	delegateNote := &models.Notification{
		RecipientID:      record.ApproverID,
		RecipientRole:    models.RoleApprover,
		Title:            title,
		Message:          delegateMsg,
		Type:             models.NotificationDelegationExpired,
		ProjectID:        project.ID,
		ProjectName:      project.Name,
		RelatedID:        record.ID,
		NavigationTarget: "/approver/projects",
	}
	if r.persist(ctx, delegateNote) {
		sent++
		if delegate, err := r.store.GetUserByID(ctx, record.ApproverID); err == nil {
			r.pushToUser(ctx, delegate, delegateNote)
		}
	}

	heads, err := r.store.GetUsersByRole(ctx, models.RoleProductionHead)
	if err != nil {
		return sent, err
	}
	isHead := idSet(activeUsers(heads))

	for _, id := range project.ProductionHeadIDs {
		if !isHead[id] {
			continue
		}
		if r.persist(ctx, &models.Notification{
			RecipientID:      id,
			RecipientRole:    models.RoleProductionHead,
			Title:            title,
			Message:          headMsg,
			Type:             models.NotificationDelegationExpired,
			ProjectID:        project.ID,
			ProjectName:      project.Name,
			RelatedID:        record.ID,
			NavigationTarget: dashboardPath(models.RoleProductionHead, project.ID) + "/delegations",
		}) {
			sent++
		}
	}

	if _, err := r.NotifyByRoleFiltered(ctx, models.RoleProductionHead, project.ID, title, headMsg, models.NotificationDelegationExpired); err != nil {
		r.logger.Warnw("Push fan-out failed", "project_id", project.ID, "error", err)
	}
	return sent, nil
}

// NotifyByRoleFiltered pushes to every active user of role who is assigned to
// the project, opted in to notificationType and has a registered device. It
// returns the number of users reached.
func (r *notificationRouter) NotifyByRoleFiltered(
	ctx context.Context,
	role models.UserRole,
	projectID, title, message string,
	notificationType models.NotificationType,
) (int, error) {
	users, err := r.store.GetUsersByRole(ctx, role)
	if err != nil {
		return 0, err
	}

	data := map[string]string{
		"type":      string(notificationType),
		"projectId": projectID,
	}

	reached := 0
	for i := range users {
		u := &users[i]
		if !u.IsActive || !u.NotificationPreferences.Allows(notificationType) {
			continue
		}
		if !r.resolver.IsUserAssignedToProject(ctx, u, projectID) {
			continue
		}
		if r.sendToDevices(ctx, u.ID, title, message, data) {
			reached++
		}
	}
	return reached, nil
}

// ListForUser returns a page of the user's notifications, newest first.
func (r *notificationRouter) ListForUser(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error) {
	return r.store.ListNotificationsForUser(ctx, userID, page)
}

// RegisterDevice stores a push token for the user.
func (r *notificationRouter) RegisterDevice(ctx context.Context, userID, token, platform string) error {
	if userID == "" || token == "" {
		return apperrors.ErrInvalidInput
	}
	return r.store.RegisterDeviceToken(ctx, &models.DeviceToken{UserID: userID, Token: token, Platform: platform})
}

// persist stores n and reports whether it was written. Empty recipients are skipped.
func (r *notificationRouter) persist(ctx context.Context, n *models.Notification) bool {
	if n.RecipientID == "" {
		return false
	}
	if _, err := r.store.CreateNotification(ctx, n); err != nil {
		r.logger.Errorw("Failed to store notification",
			"recipient_id", n.RecipientID,
			"type", n.Type,
			"project_id", n.ProjectID,
			"error", err,
		)
		return false
	}
	return true
}

// pushToUser sends n to user's devices when the user is active and opted in.
func (r *notificationRouter) pushToUser(ctx context.Context, user *models.User, n *models.Notification) {
	if !user.IsActive || !user.NotificationPreferences.Allows(n.Type) {
		return
	}
	r.sendToDevices(ctx, user.ID, n.Title, n.Message, map[string]string{
		"type":             string(n.Type),
		"projectId":        n.ProjectID,
		"relatedId":        n.RelatedID,
		"navigationTarget": n.NavigationTarget,
	})
}

// sendToDevices pushes to every token of userID and reports whether at least
// one send succeeded.
func (r *notificationRouter) sendToDevices(ctx context.Context, userID, title, message string, data map[string]string) bool {
	if r.sender == nil {
		return false
	}
	tokens, err := r.store.GetDeviceTokens(ctx, userID)
	if err != nil {
		r.logger.Warnw("Device token lookup failed", "user_id", userID, "error", err)
		return false
	}

	delivered := false
	for _, token := range tokens {
		if err := r.sender.Send(ctx, token, title, message, data); err != nil {
			r.logger.Warnw("Push send failed", "user_id", userID, "error", err)
			continue
		}
		delivered = true
	}
	return delivered
}

// dashboardPath is the project view of the recipient's role.
func dashboardPath(role models.UserRole, projectID string) string {
	switch role {
	case models.RoleApprover:
		return "/approver/projects/" + projectID
	case models.RoleProductionHead:
		return "/production-head/projects/" + projectID
	case models.RoleAdmin:
		return "/admin/projects/" + projectID
	}
	return "/user/projects/" + projectID
}

func pendingPath(role models.UserRole, projectID string) string {
	return dashboardPath(role, projectID) + "/pending"
}
