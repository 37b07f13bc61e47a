package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/attest/internal/domain"
	"github.com/gosuda/attest/internal/server/middleware"
	"github.com/gosuda/attest/internal/workflow"
)

type CreateAuditInput struct {
	Body struct {
		Title      string    `json:"title" minLength:"1" maxLength:"500" doc:"Audit title"`
		AuditorID  uuid.UUID `json:"auditor_id" doc:"Assigned auditor user ID"`
		ReviewerID uuid.UUID `json:"reviewer_id" doc:"Assigned reviewer user ID"`
	}
}

type CreateAuditOutput struct {
	Body *domain.Audit
}

type ListAuditsOutput struct {
	Body []*domain.Audit
}

type GetAuditInput struct {
	ID uuid.UUID `path:"id" doc:"Audit ID"`
}

type GetAuditOutput struct {
	Body *domain.Audit
}

type UpdateAuditInput struct {
	ID   uuid.UUID `path:"id" doc:"Audit ID"`
	Body struct {
		Title string `json:"title" minLength:"1" maxLength:"500" doc:"Audit title"`
	}
}

type UpdateAuditOutput struct {
	Body *domain.Audit
}

type AssignmentInput struct {
	ID   uuid.UUID `path:"id" doc:"Audit ID"`
	Body struct {
		AuditorID  *uuid.UUID `json:"auditor_id,omitempty" doc:"New auditor user ID"`
		ReviewerID *uuid.UUID `json:"reviewer_id,omitempty" doc:"New reviewer user ID"`
	}
}

type AssignmentOutput struct {
	Body *domain.Audit
}

type ListViewersInput struct {
	ID uuid.UUID `path:"id" doc:"Audit ID"`
}

// AuditViewer is a viewer grant joined with the granted user's identity.
type AuditViewer struct {
	UserID    uuid.UUID `json:"user_id" doc:"Viewer user ID"`
	Name      string    `json:"name" doc:"Viewer display name"`
	Email     string    `json:"email" doc:"Viewer email"`
	GrantedAt time.Time `json:"granted_at" doc:"When access was granted"`
}

type ListViewersOutput struct {
	Body []*AuditViewer
}

type GrantViewerInput struct {
	ID   uuid.UUID `path:"id" doc:"Audit ID"`
	Body struct {
		UserID uuid.UUID `json:"user_id" doc:"Viewer user ID"`
	}
}

type GrantViewerOutput struct {
	Body *domain.ViewerGrant
}

type RevokeViewerInput struct {
	ID     uuid.UUID `path:"id" doc:"Audit ID"`
	UserID uuid.UUID `path:"user_id" doc:"Viewer user ID"`
}

type ListAuditRecordsInput struct {
	ID uuid.UUID `path:"id" doc:"Audit ID"`
}

type ListAuditRecordsOutput struct {
	Body []*domain.Record
}

// requireAdmin returns the current user if they are an administrator.
func requireAdmin(ctx context.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}
	if user.Role != domain.RoleAdmin {
		return nil, huma.Error403Forbidden("administrator role required")
	}
	return user, nil
}

// requireViewerManager loads the audit and checks the caller may manage its
// viewer grants: the assigned auditor, the assigned reviewer, or an admin.
func requireViewerManager(ctx context.Context, store DataStore, auditID uuid.UUID) (*domain.User, *domain.Audit, error) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return nil, nil, huma.Error401Unauthorized("authentication required")
	}

	a, err := store.Audits().GetByID(ctx, auditID)
	if err != nil {
		return nil, nil, mapDomainError(err, "audit")
	}

	if !workflow.CanManageViewers(user, a) {
		return nil, nil, huma.Error403Forbidden("only the audit's auditor, reviewer or an admin can manage viewers")
	}

	return user, a, nil
}

// requireAssignee validates the referenced user exists, is active, and holds
// the expected global role before an assignment goes through.
func requireAssignee(ctx context.Context, store DataStore, id uuid.UUID, role domain.Role) (*domain.User, error) {
	u, err := store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error422UnprocessableEntity(fmt.Sprintf("%s user %s not found", role, id))
		}
		return nil, huma.Error500InternalServerError("failed to validate assignee", err)
	}
	if !u.Active {
		return nil, huma.Error422UnprocessableEntity(fmt.Sprintf("%s user %s is deactivated", role, id))
	}
	if u.Role != role {
		return nil, huma.Error422UnprocessableEntity(fmt.Sprintf("user %s has role %s, expected %s", id, u.Role, role))
	}
	return u, nil
}

func RegisterAuditRoutes(api huma.API, store DataStore, svc WorkflowService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-audit",
		Method:      http.MethodPost,
		Path:        "/audits",
		Summary:     "Create an audit with its auditor and reviewer assignment",
		Tags:        []string{"Audits"},
	}, func(ctx context.Context, input *CreateAuditInput) (*CreateAuditOutput, error) {
		admin, err := requireAdmin(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := requireAssignee(ctx, store, input.Body.AuditorID, domain.RoleAuditor); err != nil {
			return nil, err
		}
		if _, err := requireAssignee(ctx, store, input.Body.ReviewerID, domain.RoleReviewer); err != nil {
			return nil, err
		}

		now := time.Now()
		a := &domain.Audit{
			ID:         uuid.New(),
			Title:      input.Body.Title,
			AuditorID:  input.Body.AuditorID,
			ReviewerID: input.Body.ReviewerID,
			Status:     domain.AuditStatusActive,
			CreatedBy:  admin.ID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := store.Audits().Create(ctx, a); err != nil {
			return nil, huma.Error500InternalServerError("failed to create audit", err)
		}

		return &CreateAuditOutput{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-audits",
		Method:      http.MethodGet,
		Path:        "/audits",
		Summary:     "List audits visible to the caller",
		Tags:        []string{"Audits"},
	}, func(ctx context.Context, _ *struct{}) (*ListAuditsOutput, error) {
		user, ok := middleware.CurrentUser(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		var (
			audits []*domain.Audit
			err    error
		)
		if user.Role == domain.RoleAdmin {
			audits, err = store.Audits().List(ctx)
		} else {
			audits, err = store.Audits().ListForUser(ctx, user.ID)
		}
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list audits", err)
		}

		return &ListAuditsOutput{Body: audits}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-audit",
		Method:      http.MethodGet,
		Path:        "/audits/{id}",
		Summary:     "Get an audit by ID",
		Tags:        []string{"Audits"},
	}, func(ctx context.Context, input *GetAuditInput) (*GetAuditOutput, error) {
		user, ok := middleware.CurrentUser(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		a, err := store.Audits().GetByID(ctx, input.ID)
		if err != nil {
			return nil, mapDomainError(err, "audit")
		}

		hasGrant := false
		if user.Role == domain.RoleViewer {
			hasGrant, err = store.Grants().Exists(ctx, a.ID, user.ID)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to check viewer grant", err)
			}
		}
		if !workflow.CanViewAudit(user, a, hasGrant) {
			return nil, huma.Error403Forbidden("no access to this audit")
		}

		return &GetAuditOutput{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-audit",
		Method:      http.MethodPut,
		Path:        "/audits/{id}",
		Summary:     "Update audit metadata",
		Tags:        []string{"Audits"},
	}, func(ctx context.Context, input *UpdateAuditInput) (*UpdateAuditOutput, error) {
		if _, err := requireAdmin(ctx); err != nil {
			return nil, err
		}

		a, err := store.Audits().GetByID(ctx, input.ID)
		if err != nil {
			return nil, mapDomainError(err, "audit")
		}

		a.Title = input.Body.Title
		a.UpdatedAt = time.Now()

		if err := store.Audits().Update(ctx, a); err != nil {
			return nil, mapDomainError(err, "audit")
		}

		return &UpdateAuditOutput{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "archive-audit",
		Method:      http.MethodPost,
		Path:        "/audits/{id}/archive",
		Summary:     "Archive an audit",
		Tags:        []string{"Audits"},
	}, func(ctx context.Context, input *GetAuditInput) (*GetAuditOutput, error) {
		if _, err := requireAdmin(ctx); err != nil {
			return nil, err
		}

		a, err := store.Audits().GetByID(ctx, input.ID)
		if err != nil {
			return nil, mapDomainError(err, "audit")
		}

		a.Status = domain.AuditStatusArchived
		a.UpdatedAt = time.Now()

		if err := store.Audits().Update(ctx, a); err != nil {
			return nil, mapDomainError(err, "audit")
		}

		return &GetAuditOutput{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-audit-assignment",
		Method:      http.MethodPut,
		Path:        "/audits/{id}/assignment",
		Summary:     "Reassign the audit's auditor and/or reviewer",
		Description: "Workflow ownership follows the assignment: the new assignee takes over records in their owned states immediately. The change is documented in the audit trail.",
		Tags:        []string{"Audits"},
	}, func(ctx context.Context, input *AssignmentInput) (*AssignmentOutput, error) {
		admin, err := requireAdmin(ctx)
		if err != nil {
			return nil, err
		}

		if input.Body.AuditorID == nil && input.Body.ReviewerID == nil {
			return nil, huma.Error422UnprocessableEntity("at least one of auditor_id, reviewer_id is required")
		}

		prev, err := store.Audits().GetByID(ctx, input.ID)
		if err != nil {
			return nil, mapDomainError(err, "audit")
		}

		notes := ""
		if input.Body.AuditorID != nil {
			if _, err := requireAssignee(ctx, store, *input.Body.AuditorID, domain.RoleAuditor); err != nil {
				return nil, err
			}
			notes += fmt.Sprintf("auditor %s -> %s; ", prev.AuditorID, *input.Body.AuditorID)
		}
		if input.Body.ReviewerID != nil {
			if _, err := requireAssignee(ctx, store, *input.Body.ReviewerID, domain.RoleReviewer); err != nil {
				return nil, err
			}
			notes += fmt.Sprintf("reviewer %s -> %s; ", prev.ReviewerID, *input.Body.ReviewerID)
		}

		entry := &domain.StateHistoryEntry{
			ID:          uuid.New(),
			RecordType:  domain.HistoryRecordTypeAudit,
			RecordID:    input.ID,
			Action:      "reassign",
			PerformedBy: admin.ID,
			PerformedAt: time.Now(),
			Notes:       notes,
		}

		a, err := store.Audits().Reassign(ctx, input.ID, input.Body.AuditorID, input.Body.ReviewerID, entry)
		if err != nil {
			return nil, mapDomainError(err, "audit")
		}

		return &AssignmentOutput{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-audit-viewers",
		Method:      http.MethodGet,
		Path:        "/audits/{id}/viewers",
		Summary:     "List viewer grants on an audit",
		Tags:        []string{"Viewers"},
	}, func(ctx context.Context, input *ListViewersInput) (*ListViewersOutput, error) {
		if _, _, err := requireViewerManager(ctx, store, input.ID); err != nil {
			return nil, err
		}

		grants, err := store.Grants().ListByAudit(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list viewer grants", err)
		}

		viewers := make([]*AuditViewer, 0, len(grants))
		for _, g := range grants {
			u, err := store.Users().GetByID(ctx, g.ViewerUserID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, huma.Error500InternalServerError("failed to resolve viewer", err)
			}
			viewers = append(viewers, &AuditViewer{
				UserID:    u.ID,
				Name:      u.Name,
				Email:     u.Email,
				GrantedAt: g.GrantedAt,
			})
		}

		return &ListViewersOutput{Body: viewers}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "grant-viewer",
		Method:      http.MethodPost,
		Path:        "/audits/{id}/viewers",
		Summary:     "Grant a viewer read access to an audit",
		Description: "Idempotent: granting an existing viewer again is a no-op.",
		Tags:        []string{"Viewers"},
	}, func(ctx context.Context, input *GrantViewerInput) (*GrantViewerOutput, error) {
		actor, _, err := requireViewerManager(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		if _, err := requireAssignee(ctx, store, input.Body.UserID, domain.RoleViewer); err != nil {
			return nil, err
		}

		grantedBy := actor.ID
		g := &domain.ViewerGrant{
			AuditID:      input.ID,
			ViewerUserID: input.Body.UserID,
			GrantedBy:    &grantedBy,
			GrantedAt:    time.Now(),
		}

		if err := store.Grants().Grant(ctx, g); err != nil {
			return nil, huma.Error500InternalServerError("failed to grant viewer access", err)
		}

		return &GrantViewerOutput{Body: g}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "revoke-viewer",
		Method:      http.MethodDelete,
		Path:        "/audits/{id}/viewers/{user_id}",
		Summary:     "Revoke a viewer's access to an audit",
		Tags:        []string{"Viewers"},
	}, func(ctx context.Context, input *RevokeViewerInput) (*struct{}, error) {
		if _, _, err := requireViewerManager(ctx, store, input.ID); err != nil {
			return nil, err
		}

		if err := store.Grants().Revoke(ctx, input.ID, input.UserID); err != nil {
			return nil, mapDomainError(err, "viewer grant")
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-audit-records",
		Method:      http.MethodGet,
		Path:        "/audits/{id}/records",
		Summary:     "List the records of an audit",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *ListAuditRecordsInput) (*ListAuditRecordsOutput, error) {
		actor, err := actorID(ctx)
		if err != nil {
			return nil, err
		}

		recs, err := svc.ListRecords(ctx, actor, input.ID)
		if err != nil {
			return nil, mapDomainError(err, "audit")
		}

		return &ListAuditRecordsOutput{Body: recs}, nil
	})
}
