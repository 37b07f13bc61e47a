package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/attest/internal/domain"
	"github.com/gosuda/attest/internal/workflow"
)

type CreateRecordInput struct {
	Type string `path:"type" enum:"risk,issue" doc:"Record type"`
	Body struct {
		AuditID     uuid.UUID `json:"audit_id" doc:"Containing audit ID"`
		Ref         string    `json:"ref,omitempty" maxLength:"100" doc:"External reference"`
		Title       string    `json:"title" minLength:"1" maxLength:"500" doc:"Record title"`
		Description string    `json:"description,omitempty" doc:"Record description"`
	}
}

type RecordOutput struct {
	Body *domain.Record
}

type GetRecordInput struct {
	Type string    `path:"type" enum:"risk,issue" doc:"Record type"`
	ID   uuid.UUID `path:"id" doc:"Record ID"`
}

type UpdateRecordInput struct {
	Type string    `path:"type" enum:"risk,issue" doc:"Record type"`
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body struct {
		Ref         string `json:"ref,omitempty" maxLength:"100" doc:"External reference"`
		Title       string `json:"title" minLength:"1" maxLength:"500" doc:"Record title"`
		Description string `json:"description,omitempty" doc:"Record description"`
	}
}

type SubmitForReviewInput struct {
	Type string    `path:"type" enum:"risk,issue" doc:"Record type"`
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body struct {
		Notes string `json:"notes,omitempty" doc:"Optional handover notes"`
	}
}

type ReturnToAuditorInput struct {
	Type string    `path:"type" enum:"risk,issue" doc:"Record type"`
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body struct {
		Notes string `json:"notes" minLength:"1" doc:"What the auditor should revise"`
	}
}

type SignOffInput struct {
	Type string    `path:"type" enum:"risk,issue" doc:"Record type"`
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body struct {
		Confirmation string `json:"confirmation" doc:"Must be exactly SIGN OFF"`
		Notes        string `json:"notes,omitempty" doc:"Optional sign-off notes"`
	}
}

type RecordHistoryInput struct {
	Type string    `path:"type" enum:"risk,issue" doc:"Record type"`
	ID   uuid.UUID `path:"id" doc:"Record ID"`
}

type RecordHistoryOutput struct {
	Body []*domain.StateHistoryEntry
}

func RegisterRecordRoutes(api huma.API, svc WorkflowService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-record",
		Method:      http.MethodPost,
		Path:        "/records/{type}",
		Summary:     "Create a record in draft state",
		Description: "Only the audit's assigned auditor may create records.",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *CreateRecordInput) (*RecordOutput, error) {
		actor, err := actorID(ctx)
		if err != nil {
			return nil, err
		}

		rec, err := svc.CreateRecord(ctx, actor, input.Body.AuditID, domain.RecordType(input.Type),
			input.Body.Ref, input.Body.Title, input.Body.Description)
		if err != nil {
			return nil, mapDomainError(err, "audit")
		}

		return &RecordOutput{Body: rec}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-record",
		Method:      http.MethodGet,
		Path:        "/records/{type}/{id}",
		Summary:     "Get a record by ID",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *GetRecordInput) (*RecordOutput, error) {
		actor, err := actorID(ctx)
		if err != nil {
			return nil, err
		}

		rec, err := svc.GetRecord(ctx, actor, domain.RecordType(input.Type), input.ID)
		if err != nil {
			return nil, mapDomainError(err, "record")
		}

		return &RecordOutput{Body: rec}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-record-content",
		Method:      http.MethodPut,
		Path:        "/records/{type}/{id}",
		Summary:     "Update a record's content fields",
		Description: "Edit rights follow the workflow state: the assigned auditor in draft, the assigned reviewer in review, nobody in admin hold or after sign-off.",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *UpdateRecordInput) (*RecordOutput, error) {
		actor, err := actorID(ctx)
		if err != nil {
			return nil, err
		}

		rec, err := svc.UpdateContent(ctx, actor, domain.RecordType(input.Type), input.ID,
			input.Body.Ref, input.Body.Title, input.Body.Description)
		if err != nil {
			return nil, mapDomainError(err, "record")
		}

		return &RecordOutput{Body: rec}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "submit-for-review",
		Method:      http.MethodPost,
		Path:        "/records/{type}/{id}/submit-for-review",
		Summary:     "Submit a draft record for review",
		Tags:        []string{"Workflow"},
	}, func(ctx context.Context, input *SubmitForReviewInput) (*RecordOutput, error) {
		actor, err := actorID(ctx)
		if err != nil {
			return nil, err
		}

		rec, err := svc.Transition(ctx, actor, domain.RecordType(input.Type), input.ID,
			workflow.ActionSubmitForReview, workflow.Payload{Notes: input.Body.Notes})
		if err != nil {
			return nil, mapDomainError(err, "record")
		}

		return &RecordOutput{Body: rec}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "return-to-auditor",
		Method:      http.MethodPost,
		Path:        "/records/{type}/{id}/return-to-auditor",
		Summary:     "Return a record under review to the auditor",
		Tags:        []string{"Workflow"},
	}, func(ctx context.Context, input *ReturnToAuditorInput) (*RecordOutput, error) {
		actor, err := actorID(ctx)
		if err != nil {
			return nil, err
		}

		rec, err := svc.Transition(ctx, actor, domain.RecordType(input.Type), input.ID,
			workflow.ActionReturnToAuditor, workflow.Payload{Notes: input.Body.Notes})
		if err != nil {
			return nil, mapDomainError(err, "record")
		}

		return &RecordOutput{Body: rec}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "sign-off-record",
		Method:      http.MethodPost,
		Path:        "/records/{type}/{id}/sign-off",
		Summary:     "Sign off a record under review",
		Description: "The confirmation phrase must match exactly; sign-off is final short of an administrative unlock.",
		Tags:        []string{"Workflow"},
	}, func(ctx context.Context, input *SignOffInput) (*RecordOutput, error) {
		actor, err := actorID(ctx)
		if err != nil {
			return nil, err
		}

		rec, err := svc.Transition(ctx, actor, domain.RecordType(input.Type), input.ID,
			workflow.ActionSignOff, workflow.Payload{Confirmation: input.Body.Confirmation, Notes: input.Body.Notes})
		if err != nil {
			return nil, mapDomainError(err, "record")
		}

		return &RecordOutput{Body: rec}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-record-history",
		Method:      http.MethodGet,
		Path:        "/records/{type}/{id}/history",
		Summary:     "Get the full state history of a record",
		Tags:        []string{"Workflow"},
	}, func(ctx context.Context, input *RecordHistoryInput) (*RecordHistoryOutput, error) {
		actor, err := actorID(ctx)
		if err != nil {
			return nil, err
		}

		entries, err := svc.History(ctx, actor, domain.RecordType(input.Type), input.ID)
		if err != nil {
			return nil, mapDomainError(err, "record")
		}

		return &RecordHistoryOutput{Body: entries}, nil
	})
}
