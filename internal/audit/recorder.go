package audit

import (
	"context"
	"time"

	"backend/internal/currentuser"
	"backend/internal/model"

	"go.uber.org/zap"
)

// TrailAppender persists trail rows. Satisfied by repository.TrailRepository.
type TrailAppender interface {
	Append(ctx context.Context, trails []model.Trail) error
}

// Recorder appends audit trails after a successful business save. The append
// runs as a second write: a failure here is logged and does not roll back or
// fail the request.
type Recorder struct {
	trails TrailAppender
	log    *zap.SugaredLogger
}

// NewRecorder builds a Recorder over the trail store.
func NewRecorder(trails TrailAppender, log *zap.SugaredLogger) *Recorder {
	return &Recorder{trails: trails, log: log}
}

// Record persists one Trail row per entry, attributed to the current user.
// Call only after the primary save has committed.
func (r *Recorder) Record(ctx context.Context, entries ...Entry) {
	if len(entries) == 0 {
		return
	}

	userID := currentuser.UserID(ctx)
	now := time.Now().UTC()

	trails := make([]model.Trail, 0, len(entries))
	for _, entry := range entries {
		trails = append(trails, entry.Trail(userID, now))
	}

	if err := r.trails.Append(ctx, trails); err != nil {
		r.log.Errorw("audit trail append failed",
			"error", err,
			"userId", userID,
			"entries", len(trails),
		)
	}
}
