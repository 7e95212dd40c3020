// Package service contains the execution engine's two entry points: intake,
// which validates submissions and enqueues them, and the orchestrator, which
// consumes the queue and runs each job through the sandbox pipeline.
package service

import (
	"context"

	"github.com/assignexpert/assignexpert/internal/common/mq"
	"github.com/assignexpert/assignexpert/internal/execution/model"
	"github.com/assignexpert/assignexpert/internal/execution/repository"
	appErr "github.com/assignexpert/assignexpert/pkg/errors"
	"github.com/assignexpert/assignexpert/pkg/utils/logger"

	"go.uber.org/zap"
)

// DefaultExecutionTopic is the queue topic jobs are published to.
const DefaultExecutionTopic = "execution.jobs"

// IntakeConfig wires the intake service's dependencies.
type IntakeConfig struct {
	Producer mq.Producer
	Results  *repository.ResultRepository
	Progress *repository.ProgressRepository

	// Topic overrides DefaultExecutionTopic when set.
	Topic string
	// MaxCodeBytes caps submission source size; 0 disables the cap.
	MaxCodeBytes int
}

// IntakeService accepts submissions, assigns job ids, and hands jobs to the
// queue. All later failures surface only through the cached result.
type IntakeService struct {
	producer     mq.Producer
	results      *repository.ResultRepository
	progress     *repository.ProgressRepository
	topic        string
	maxCodeBytes int
}

// NewIntakeService validates the configuration and creates the service.
func NewIntakeService(cfg IntakeConfig) (*IntakeService, error) {
	if cfg.Producer == nil {
		return nil, appErr.Newf(appErr.InvalidParams, "producer is required")
	}
	if cfg.Results == nil {
		return nil, appErr.Newf(appErr.InvalidParams, "result repository is required")
	}
	if cfg.Progress == nil {
		return nil, appErr.Newf(appErr.InvalidParams, "progress repository is required")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultExecutionTopic
	}
	return &IntakeService{
		producer:     cfg.Producer,
		results:      cfg.Results,
		progress:     cfg.Progress,
		topic:        topic,
		maxCodeBytes: cfg.MaxCodeBytes,
	}, nil
}

// Submit validates the request and enqueues it, returning the assigned job
// id. Validation errors are returned synchronously; nothing is enqueued for
// an invalid request.
func (s *IntakeService) Submit(ctx context.Context, req model.ExecutionRequest) (string, error) {
	if err := req.Validate(s.maxCodeBytes); err != nil {
		return "", err
	}

	job := &model.Job{ID: model.NewJobID(), Request: req}
	body, err := job.Marshal()
	if err != nil {
		return "", err
	}

	msg := mq.NewMessage(body)
	msg.ID = job.ID
	if err := s.producer.Publish(ctx, s.topic, msg); err != nil {
		return "", appErr.Wrapf(err, appErr.QueuePublishFailed, "enqueue job %s failed", job.ID)
	}

	logger.Info(logger.WithJobID(ctx, job.ID), "job enqueued",
		zap.String("language", req.Language),
		zap.String("mode", string(req.Mode)))
	return job.ID, nil
}

// GetResult returns the terminal result for a job, or nil when the job has
// not completed yet.
func (s *IntakeService) GetResult(ctx context.Context, jobID string) (*model.ExecutionResult, error) {
	return s.results.Get(ctx, jobID)
}

// GetProgress returns the latest progress marker for a job. The boolean is
// false when no marker has been recorded.
func (s *IntakeService) GetProgress(ctx context.Context, jobID string) (model.Progress, bool, error) {
	return s.progress.Get(ctx, jobID)
}
