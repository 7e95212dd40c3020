// Package repository persists job results and progress markers in the shared
// cache so callers can poll for them after the asynchronous pipeline finishes.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/assignexpert/assignexpert/internal/common/cache"
	"github.com/assignexpert/assignexpert/internal/execution/model"
	appErr "github.com/assignexpert/assignexpert/pkg/errors"
)

const resultKeyPrefix = "execution:result:"

// ResultRepository stores the terminal ExecutionResult of each job. Absence
// of a key means the job has not completed yet.
type ResultRepository struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewResultRepository creates a repository on top of the given cache. A zero
// ttl keeps results forever.
func NewResultRepository(c cache.Cache, ttl time.Duration) *ResultRepository {
	return &ResultRepository{cache: c, ttl: ttl}
}

func resultKey(jobID string) string {
	return fmt.Sprintf("%s%s", resultKeyPrefix, jobID)
}

// Save writes the result for a job. Re-saving the same job id overwrites the
// previous record, which keeps duplicate queue deliveries harmless.
func (r *ResultRepository) Save(ctx context.Context, jobID string, result model.ExecutionResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return appErr.Wrapf(err, appErr.InternalServerError, "encode result failed")
	}
	if err := r.cache.Set(ctx, resultKey(jobID), string(body), r.ttl); err != nil {
		return appErr.Wrapf(err, appErr.CacheSetFailed, "save result for %s failed", jobID)
	}
	return nil
}

// Delete evicts a job's result, returning the key to the absent state.
func (r *ResultRepository) Delete(ctx context.Context, jobID string) error {
	if err := r.cache.Del(ctx, resultKey(jobID)); err != nil {
		return appErr.Wrapf(err, appErr.CacheError, "delete result for %s failed", jobID)
	}
	return nil
}

// Get returns the result for a job, or nil when the job has not completed.
func (r *ResultRepository) Get(ctx context.Context, jobID string) (*model.ExecutionResult, error) {
	raw, err := r.cache.Get(ctx, resultKey(jobID))
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.CacheError, "load result for %s failed", jobID)
	}
	if raw == "" {
		return nil, nil
	}
	var result model.ExecutionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, appErr.Wrapf(err, appErr.InternalServerError, "decode result for %s failed", jobID)
	}
	return &result, nil
}
