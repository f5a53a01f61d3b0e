package service

import (
	"context"
	"fmt"
	"strings"

	"backend/internal/audit"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateOrUpdateFunctionRequest struct {
	ID        *uuid.UUID  `json:"id"`
	Name      string      `json:"name" binding:"required"`
	ParentID  *uuid.UUID  `json:"parentId"`
	SortOrder int         `json:"sortOrder"`
	URL       string      `json:"url"`
	Icon      string      `json:"icon"`
	IsActive  bool        `json:"isActive"`
	ActionIDs []uuid.UUID `json:"actionIds"`
}

type ActionResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	IsActive  bool      `json:"isActive"`
}

type FunctionResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	ParentID  *uuid.UUID       `json:"parentId"`
	SortOrder int              `json:"sortOrder"`
	URL       string           `json:"url"`
	Icon      string           `json:"icon"`
	IsActive  bool             `json:"isActive"`
	Actions   []ActionResponse `json:"actions"`
}

// FunctionService manages the function catalog and the actions valid inside
// each function.
type FunctionService interface {
	List(ctx context.Context) ([]FunctionResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*FunctionResponse, error)
	CreateOrUpdate(ctx context.Context, req CreateOrUpdateFunctionRequest) (*FunctionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListActions(ctx context.Context) ([]ActionResponse, error)
}

type functionService struct {
	functions   repository.FunctionRepository
	permissions repository.PermissionRepository
	tx          repository.TransactionManager
	recorder    *audit.Recorder
}

// NewFunctionService returns a new instance of FunctionService.
func NewFunctionService(
	functions repository.FunctionRepository,
	permissions repository.PermissionRepository,
	tx repository.TransactionManager,
	recorder *audit.Recorder,
) FunctionService {
	return &functionService{
		functions:   functions,
		permissions: permissions,
		tx:          tx,
		recorder:    recorder,
	}
}

func (s *functionService) List(ctx context.Context) ([]FunctionResponse, error) {
	functions, err := s.functions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list functions: %w", err)
	}

	out := make([]FunctionResponse, 0, len(functions))
	for i := range functions {
		out = append(out, toFunctionResponse(&functions[i]))
	}
	return out, nil
}

func (s *functionService) GetByID(ctx context.Context, id uuid.UUID) (*FunctionResponse, error) {
	fn, err := s.functions.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Function Not Found.")
	}
	resp := toFunctionResponse(fn)
	return &resp, nil
}

func (s *functionService) CreateOrUpdate(ctx context.Context, req CreateOrUpdateFunctionRequest) (*FunctionResponse, error) {
	if req.ID == nil || *req.ID == uuid.Nil {
		return s.create(ctx, req)
	}
	return s.update(ctx, *req.ID, req)
}

func (s *functionService) create(ctx context.Context, req CreateOrUpdateFunctionRequest) (*FunctionResponse, error) {
	fn := &model.Function{
		Name:      strings.TrimSpace(req.Name),
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
		URL:       req.URL,
		Icon:      req.Icon,
		IsActive:  req.IsActive,
	}
	if err := s.functions.Create(ctx, fn); err != nil {
		return nil, fmt.Errorf("failed to create function: %w", err)
	}

	if err := s.syncLinks(ctx, fn.ID, req.ActionIDs); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, audit.Added("functions", fn))
	return s.GetByID(ctx, fn.ID)
}

func (s *functionService) update(ctx context.Context, id uuid.UUID, req CreateOrUpdateFunctionRequest) (*FunctionResponse, error) {
	fn, err := s.functions.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Function Not Found.")
	}

	before := *fn
	fn.Name = strings.TrimSpace(req.Name)
	fn.ParentID = req.ParentID
	fn.SortOrder = req.SortOrder
	fn.URL = req.URL
	fn.Icon = req.Icon
	fn.IsActive = req.IsActive

	if err := s.functions.Save(ctx, fn); err != nil {
		return nil, fmt.Errorf("failed to update function: %w", err)
	}

	if req.ActionIDs != nil {
		if err := s.syncLinks(ctx, id, req.ActionIDs); err != nil {
			return nil, err
		}
	}

	if entry, changed := audit.Modified("functions", &before, fn); changed {
		s.recorder.Record(ctx, entry)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a function and its action links. Functions referenced by
// any permission grant cannot be removed.
func (s *functionService) Delete(ctx context.Context, id uuid.UUID) error {
	fn, err := s.functions.GetByID(ctx, id)
	if err != nil {
		return apperror.NotFound("Function Not Found.")
	}

	referenced, err := s.permissions.ExistsForFunction(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return apperror.Conflict(fmt.Sprintf("Not allowed to delete Function %s as it is being used.", fn.Name))
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.functions.DeleteLinks(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete function action links: %w", err)
		}
		return s.functions.Delete(txCtx, fn)
	})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, audit.Deleted("functions", fn))
	return nil
}

func (s *functionService) ListActions(ctx context.Context) ([]ActionResponse, error) {
	actions, err := s.functions.ListActions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}

	out := make([]ActionResponse, 0, len(actions))
	for _, a := range actions {
		out = append(out, ActionResponse{
			ID:        a.ID,
			Name:      a.Name,
			SortOrder: a.SortOrder,
			IsActive:  a.IsActive,
		})
	}
	return out, nil
}

// syncLinks reconciles the action-in-function join rows with the wanted set.
func (s *functionService) syncLinks(ctx context.Context, functionID uuid.UUID, actionIDs []uuid.UUID) error {
	existing, err := s.functions.ListLinks(ctx, functionID)
	if err != nil {
		return err
	}

	current := map[uuid.UUID]bool{}
	for _, link := range existing {
		current[link.ActionID] = true
	}
	wanted := map[uuid.UUID]bool{}
	for _, id := range actionIDs {
		wanted[id] = true
	}

	for id := range wanted {
		if !current[id] {
			if err := s.functions.AddLink(ctx, functionID, id); err != nil {
				return fmt.Errorf("failed to add function action link: %w", err)
			}
		}
	}
	for id := range current {
		if !wanted[id] {
			if err := s.functions.RemoveLink(ctx, functionID, id); err != nil {
				return fmt.Errorf("failed to remove function action link: %w", err)
			}
		}
	}
	return nil
}

func toFunctionResponse(fn *model.Function) FunctionResponse {
	actions := make([]ActionResponse, 0, len(fn.Actions))
	for _, link := range fn.Actions {
		actions = append(actions, ActionResponse{
			ID:        link.Action.ID,
			Name:      link.Action.Name,
			SortOrder: link.Action.SortOrder,
			IsActive:  link.Action.IsActive,
		})
	}
	return FunctionResponse{
		ID:        fn.ID,
		Name:      fn.Name,
		ParentID:  fn.ParentID,
		SortOrder: fn.SortOrder,
		URL:       fn.URL,
		Icon:      fn.Icon,
		IsActive:  fn.IsActive,
		Actions:   actions,
	}
}
