package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/assignexpert/assignexpert/internal/common/cache"
	"github.com/assignexpert/assignexpert/internal/execution/model"
	appErr "github.com/assignexpert/assignexpert/pkg/errors"
)

const progressKeyPrefix = "execution:progress:"

// ProgressRepository records how far each job has advanced. Markers exist for
// external polling only, so writes that fail must never affect the pipeline;
// callers log and continue.
type ProgressRepository struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewProgressRepository creates a repository on top of the given cache.
func NewProgressRepository(c cache.Cache, ttl time.Duration) *ProgressRepository {
	return &ProgressRepository{cache: c, ttl: ttl}
}

func progressKey(jobID string) string {
	return fmt.Sprintf("%s%s", progressKeyPrefix, jobID)
}

// Set records the current progress marker for a job.
func (r *ProgressRepository) Set(ctx context.Context, jobID string, p model.Progress) error {
	if err := r.cache.Set(ctx, progressKey(jobID), p.String(), r.ttl); err != nil {
		return appErr.Wrapf(err, appErr.CacheSetFailed, "save progress for %s failed", jobID)
	}
	return nil
}

// Get returns the latest progress marker for a job. The second return value
// is false when no marker has been recorded yet.
func (r *ProgressRepository) Get(ctx context.Context, jobID string) (model.Progress, bool, error) {
	raw, err := r.cache.Get(ctx, progressKey(jobID))
	if err != nil {
		return 0, false, appErr.Wrapf(err, appErr.CacheError, "load progress for %s failed", jobID)
	}
	if raw == "" {
		return 0, false, nil
	}
	p, ok := model.ParseProgress(raw)
	if !ok {
		return 0, false, appErr.Newf(appErr.InternalServerError, "unknown progress marker %q for %s", raw, jobID)
	}
	return p, true, nil
}
