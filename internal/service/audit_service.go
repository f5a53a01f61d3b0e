package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/pagination"

	"github.com/google/uuid"
)

// --- DTOs ---

type SearchTrailsRequest struct {
	UserID    *uuid.UUID `form:"userId"`
	TableName string     `form:"tableName"`
	Type      string     `form:"type"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

type TrailResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"userId"`
	Type            string    `json:"type"`
	TableName       string    `json:"tableName"`
	DateTime        time.Time `json:"dateTime"`
	OldValues       string    `json:"oldValues,omitempty"`
	NewValues       string    `json:"newValues,omitempty"`
	AffectedColumns string    `json:"affectedColumns,omitempty"`
	PrimaryKey      string    `json:"primaryKey"`
}

// AuditService exposes read access over the audit trail.
type AuditService interface {
	Search(ctx context.Context, req SearchTrailsRequest, page pagination.Params) (*pagination.PageResponse[TrailResponse], error)
	// UserTrails lists the trail of one user, newest first. Backs the
	// personal activity log.
	UserTrails(ctx context.Context, userID uuid.UUID, page pagination.Params) (*pagination.PageResponse[TrailResponse], error)
}

type auditService struct {
	trails repository.TrailRepository
}

// NewAuditService returns a new instance of AuditService.
func NewAuditService(trails repository.TrailRepository) AuditService {
	return &auditService{trails: trails}
}

func (s *auditService) Search(ctx context.Context, req SearchTrailsRequest, page pagination.Params) (*pagination.PageResponse[TrailResponse], error) {
	filter := repository.TrailFilter{
		TableName: req.TableName,
		Type:      req.Type,
		From:      req.From,
		To:        req.To,
		Page:      page,
	}
	if req.UserID != nil {
		filter.UserID = *req.UserID
	}
	return s.search(ctx, filter, page)
}

func (s *auditService) UserTrails(ctx context.Context, userID uuid.UUID, page pagination.Params) (*pagination.PageResponse[TrailResponse], error) {
	return s.search(ctx, repository.TrailFilter{UserID: userID, Page: page}, page)
}

func (s *auditService) search(ctx context.Context, filter repository.TrailFilter, page pagination.Params) (*pagination.PageResponse[TrailResponse], error) {
	trails, total, err := s.trails.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search audit trails: %w", err)
	}

	items := make([]TrailResponse, 0, len(trails))
	for _, t := range trails {
		items = append(items, toTrailResponse(t))
	}

	resp := pagination.NewPageResponse(items, total, page)
	return &resp, nil
}

func toTrailResponse(t model.Trail) TrailResponse {
	return TrailResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		Type:            t.Type,
		TableName:       t.TableName,
		DateTime:        t.DateTime,
		OldValues:       t.OldValues,
		NewValues:       t.NewValues,
		AffectedColumns: t.AffectedColumns,
		PrimaryKey:      t.PrimaryKey,
	}
}
