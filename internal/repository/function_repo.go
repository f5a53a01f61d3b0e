package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FunctionRepository defines data access for Function, Action and the
// ActionInFunction join.
type FunctionRepository interface {
	List(ctx context.Context) ([]model.Function, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Function, error)
	Create(ctx context.Context, fn *model.Function) error
	Save(ctx context.Context, fn *model.Function) error
	Delete(ctx context.Context, fn *model.Function) error

	ListActions(ctx context.Context) ([]model.Action, error)
	ListLinks(ctx context.Context, functionID uuid.UUID) ([]model.ActionInFunction, error)
	AddLink(ctx context.Context, functionID, actionID uuid.UUID) error
	RemoveLink(ctx context.Context, functionID, actionID uuid.UUID) error
	DeleteLinks(ctx context.Context, functionID uuid.UUID) error
}

type functionRepository struct {
	db *gorm.DB
}

// NewFunctionRepository returns a GORM-backed FunctionRepository.
func NewFunctionRepository(db *gorm.DB) FunctionRepository {
	return &functionRepository{db: db}
}

func (r *functionRepository) List(ctx context.Context) ([]model.Function, error) {
	var functions []model.Function
	if err := GetDB(ctx, r.db).
		Preload("Actions.Action").
		Order("sort_order ASC").
		Find(&functions).Error; err != nil {
		return nil, err
	}
	return functions, nil
}

func (r *functionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Function, error) {
	var fn model.Function
	if err := GetDB(ctx, r.db).
		Preload("Actions.Action").
		First(&fn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fn, nil
}

func (r *functionRepository) Create(ctx context.Context, fn *model.Function) error {
	return GetDB(ctx, r.db).Create(fn).Error
}

func (r *functionRepository) Save(ctx context.Context, fn *model.Function) error {
	return GetDB(ctx, r.db).Omit("Actions").Save(fn).Error
}

func (r *functionRepository) Delete(ctx context.Context, fn *model.Function) error {
	return GetDB(ctx, r.db).Delete(fn).Error
}

func (r *functionRepository) ListActions(ctx context.Context) ([]model.Action, error) {
	var actions []model.Action
	if err := GetDB(ctx, r.db).Order("sort_order ASC").Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *functionRepository) ListLinks(ctx context.Context, functionID uuid.UUID) ([]model.ActionInFunction, error) {
	var links []model.ActionInFunction
	if err := GetDB(ctx, r.db).
		Where("function_id = ?", functionID).
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *functionRepository) AddLink(ctx context.Context, functionID, actionID uuid.UUID) error {
	link := model.ActionInFunction{ActionID: actionID, FunctionID: functionID}
	return GetDB(ctx, r.db).Create(&link).Error
}

func (r *functionRepository) RemoveLink(ctx context.Context, functionID, actionID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("function_id = ? AND action_id = ?", functionID, actionID).
		Delete(&model.ActionInFunction{}).Error
}

func (r *functionRepository) DeleteLinks(ctx context.Context, functionID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("function_id = ?", functionID).
		Delete(&model.ActionInFunction{}).Error
}
