package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/attest/internal/auth"
	"github.com/gosuda/attest/internal/domain"
	"github.com/gosuda/attest/internal/workflow"
)

type AdminLockInput struct {
	Type string    `path:"type" enum:"risk,issue" doc:"Record type"`
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body struct {
		Reason string `json:"reason" minLength:"1" doc:"Why the record is being locked"`
	}
}

type AdminUnlockInput struct {
	Type string    `path:"type" enum:"risk,issue" doc:"Record type"`
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body struct {
		Reason   string `json:"reason,omitempty" doc:"Why the record is being unlocked"`
		ReturnTo string `json:"return_to" enum:"draft,in_review" doc:"Status to release the record into"`
	}
}

type AdminUnlockSignoffInput struct {
	Type string    `path:"type" enum:"risk,issue" doc:"Record type"`
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body struct {
		Reason       string `json:"reason,omitempty" doc:"Why the sign-off is being reopened"`
		ReturnTo     string `json:"return_to" enum:"draft,in_review" doc:"Status to release the record into"`
		Confirmation string `json:"confirmation" doc:"Must be exactly UNLOCK SIGNED OFF"`
	}
}

type AuditLogInput struct {
	RecordType string    `query:"record_type" doc:"Filter by record type (risk, issue or audit)"`
	UserID     uuid.UUID `query:"user_id" doc:"Filter by acting user"`
	Action     string    `query:"action" doc:"Filter by action"`
	FromDate   time.Time `query:"from_date" doc:"Earliest performed_at (inclusive)"`
	ToDate     time.Time `query:"to_date" doc:"Latest performed_at (inclusive)"`
	Limit      int       `query:"limit" minimum:"1" maximum:"1000" doc:"Maximum entries returned"`
}

type AuditLogOutput struct {
	Body []*domain.StateHistoryEntry
}

type ListUsersOutput struct {
	Body []*domain.User
}

type CreateUserInput struct {
	Body struct {
		Email    string      `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string      `json:"password" minLength:"8" maxLength:"128" doc:"Initial password"` //nolint:gosec // G117: provisioning DTO
		Name     string      `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Role     domain.Role `json:"role" enum:"admin,auditor,reviewer,viewer" doc:"Global role"`
	}
}

type CreateUserOutput struct {
	Body *domain.User
}

type UpdateUserInput struct {
	ID   uuid.UUID `path:"id" doc:"User ID"`
	Body struct {
		Name   string       `json:"name,omitempty" maxLength:"255" doc:"Display name"`
		Role   *domain.Role `json:"role,omitempty" enum:"admin,auditor,reviewer,viewer" doc:"Global role"`
		Active *bool        `json:"active,omitempty" doc:"Whether the account may authenticate"`
	}
}

type UpdateUserOutput struct {
	Body *domain.User
}

// RegisterAdminRoutes mounts the administrative surface: record locking,
// audit-trail search and user management. The lock operations delegate to the
// workflow engine, which enforces the admin role itself; everything else
// checks the caller's role explicitly.
func RegisterAdminRoutes(api huma.API, store DataStore, svc WorkflowService, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "admin-lock-record",
		Method:      http.MethodPost,
		Path:        "/admin/records/{type}/{id}/lock",
		Summary:     "Lock a record, freezing it in admin hold",
		Description: "Locking a signed-off record clears the sign-off; releasing it later requires a fresh review.",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *AdminLockInput) (*RecordOutput, error) {
		actor, err := actorID(ctx)
		if err != nil {
			return nil, err
		}

		rec, err := svc.Transition(ctx, actor, domain.RecordType(input.Type), input.ID,
			workflow.ActionAdminLock, workflow.Payload{Reason: input.Body.Reason})
		if err != nil {
			return nil, mapDomainError(err, "record")
		}

		return &RecordOutput{Body: rec}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-unlock-record",
		Method:      http.MethodPost,
		Path:        "/admin/records/{type}/{id}/unlock",
		Summary:     "Release a record from admin hold",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *AdminUnlockInput) (*RecordOutput, error) {
		actor, err := actorID(ctx)
		if err != nil {
			return nil, err
		}

		rec, err := svc.Transition(ctx, actor, domain.RecordType(input.Type), input.ID,
			workflow.ActionAdminUnlock, workflow.Payload{
				Reason:   input.Body.Reason,
				ReturnTo: domain.RecordStatus(input.Body.ReturnTo),
			})
		if err != nil {
			return nil, mapDomainError(err, "record")
		}

		return &RecordOutput{Body: rec}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-unlock-signoff",
		Method:      http.MethodPost,
		Path:        "/admin/records/{type}/{id}/unlock-signoff",
		Summary:     "Reopen a signed-off record",
		Description: "The confirmation phrase must match exactly. The original sign-off is cleared; the trail keeps who signed off and when.",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *AdminUnlockSignoffInput) (*RecordOutput, error) {
		actor, err := actorID(ctx)
		if err != nil {
			return nil, err
		}

		rec, err := svc.Transition(ctx, actor, domain.RecordType(input.Type), input.ID,
			workflow.ActionAdminUnlockSignoff, workflow.Payload{
				Reason:       input.Body.Reason,
				ReturnTo:     domain.RecordStatus(input.Body.ReturnTo),
				Confirmation: input.Body.Confirmation,
			})
		if err != nil {
			return nil, mapDomainError(err, "record")
		}

		return &RecordOutput{Body: rec}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "search-audit-log",
		Method:      http.MethodGet,
		Path:        "/admin/audit-log",
		Summary:     "Search the audit trail across all records",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *AuditLogInput) (*AuditLogOutput, error) {
		actor, err := actorID(ctx)
		if err != nil {
			return nil, err
		}

		entries, err := svc.SearchHistory(ctx, actor, domain.HistoryFilter{
			RecordType:  input.RecordType,
			PerformedBy: input.UserID,
			Action:      input.Action,
			From:        input.FromDate,
			To:          input.ToDate,
			Limit:       input.Limit,
		})
		if err != nil {
			return nil, mapDomainError(err, "audit log")
		}

		return &AuditLogOutput{Body: entries}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/admin/users",
		Summary:     "List all users",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
		if _, err := requireAdmin(ctx); err != nil {
			return nil, err
		}

		users, err := store.Users().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list users", err)
		}

		for _, u := range users {
			u.PasswordHash = ""
		}

		return &ListUsersOutput{Body: users}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-user",
		Method:      http.MethodPost,
		Path:        "/admin/users",
		Summary:     "Provision a user account",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
		if _, err := requireAdmin(ctx); err != nil {
			return nil, err
		}

		user, err := authSvc.CreateUser(ctx, input.Body.Email, input.Body.Password, input.Body.Name, input.Body.Role)
		if err != nil {
			if errors.Is(err, auth.ErrUserAlreadyExists) {
				return nil, huma.Error409Conflict("a user with this email already exists")
			}
			return nil, mapDomainError(err, "user")
		}

		user.PasswordHash = ""

		return &CreateUserOutput{Body: user}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-user",
		Method:      http.MethodPut,
		Path:        "/admin/users/{id}",
		Summary:     "Update a user's name, role or active flag",
		Description: "Role and deactivation changes take effect on the user's next request; tokens carry identity only.",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *UpdateUserInput) (*UpdateUserOutput, error) {
		if _, err := requireAdmin(ctx); err != nil {
			return nil, err
		}

		user, err := store.Users().GetByID(ctx, input.ID)
		if err != nil {
			return nil, mapDomainError(err, "user")
		}

		if input.Body.Name != "" {
			user.Name = input.Body.Name
		}
		if input.Body.Role != nil {
			if !input.Body.Role.Valid() {
				return nil, huma.Error422UnprocessableEntity("unknown role")
			}
			user.Role = *input.Body.Role
		}
		if input.Body.Active != nil {
			user.Active = *input.Body.Active
		}
		user.UpdatedAt = time.Now()

		if err := store.Users().Update(ctx, user); err != nil {
			return nil, mapDomainError(err, "user")
		}

		user.PasswordHash = ""

		return &UpdateUserOutput{Body: user}, nil
	})
}
