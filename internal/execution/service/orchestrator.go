package service

import (
	"context"
	"fmt"

	"github.com/assignexpert/assignexpert/internal/common/mq"
	"github.com/assignexpert/assignexpert/internal/execution/classify"
	"github.com/assignexpert/assignexpert/internal/execution/model"
	"github.com/assignexpert/assignexpert/internal/execution/repository"
	"github.com/assignexpert/assignexpert/internal/execution/sandbox"
	"github.com/assignexpert/assignexpert/internal/execution/workspace"
	appErr "github.com/assignexpert/assignexpert/pkg/errors"
	"github.com/assignexpert/assignexpert/pkg/utils/logger"

	"go.uber.org/zap"
)

// Hard ceilings on the per-job resource limits. Requested values above these
// are clamped, never honored.
const (
	MaxTimeLimitSeconds = 10
	MaxMemoryLimitMB    = 1024
)

// DefaultImagePrefix names the execution images: "<prefix>-<language>".
const DefaultImagePrefix = "assignexpert"

// OrchestratorConfig wires the orchestrator's dependencies.
type OrchestratorConfig struct {
	Engine   sandbox.Engine
	Results  *repository.ResultRepository
	Progress *repository.ProgressRepository

	// WorkspaceRoot is the host directory job workspaces are created under.
	WorkspaceRoot string
	// ImagePrefix overrides DefaultImagePrefix when set.
	ImagePrefix string
}

// Orchestrator processes one dequeued job end-to-end: clamp limits, build the
// workspace, create and run the sandbox, classify the artifacts, publish the
// result, tear down. It holds no cross-job state; concurrency is whatever the
// queue subscription is configured for.
type Orchestrator struct {
	engine        sandbox.Engine
	results       *repository.ResultRepository
	progress      *repository.ProgressRepository
	workspaceRoot string
	imagePrefix   string
}

// NewOrchestrator validates the configuration and creates the orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Engine == nil {
		return nil, appErr.Newf(appErr.InvalidParams, "sandbox engine is required")
	}
	if cfg.Results == nil {
		return nil, appErr.Newf(appErr.InvalidParams, "result repository is required")
	}
	if cfg.Progress == nil {
		return nil, appErr.Newf(appErr.InvalidParams, "progress repository is required")
	}
	if cfg.WorkspaceRoot == "" {
		return nil, appErr.Newf(appErr.InvalidParams, "workspace root is required")
	}
	prefix := cfg.ImagePrefix
	if prefix == "" {
		prefix = DefaultImagePrefix
	}
	return &Orchestrator{
		engine:        cfg.Engine,
		results:       cfg.Results,
		progress:      cfg.Progress,
		workspaceRoot: cfg.WorkspaceRoot,
		imagePrefix:   prefix,
	}, nil
}

// HandleMessage is the queue subscription handler. Returning an error hands
// the message back to the queue's retry policy.
func (o *Orchestrator) HandleMessage(ctx context.Context, msg *mq.Message) error {
	job, err := model.UnmarshalJob(msg.Body)
	if err != nil {
		logger.Error(ctx, "dropping undecodable job payload",
			zap.String("message_id", msg.ID), zap.Error(err))
		return err
	}
	return o.Process(logger.WithJobID(ctx, job.ID), job)
}

// Process runs the pipeline for one job. Once the sandbox has run, a result
// is always published, even when classification only partially succeeds;
// teardown after publication is best-effort and never fails the job.
func (o *Orchestrator) Process(ctx context.Context, job *model.Job) error {
	o.mark(ctx, job.ID, model.ProgressStarted)

	req := job.Request
	if req.TimeLimit > MaxTimeLimitSeconds {
		req.TimeLimit = MaxTimeLimitSeconds
	}
	if req.MemoryLimit > MaxMemoryLimitMB {
		req.MemoryLimit = MaxMemoryLimitMB
	}

	ws, err := workspace.Build(o.workspaceRoot, job.ID, req)
	if err != nil {
		logger.Error(ctx, "workspace setup failed", zap.Error(err))
		return err
	}
	o.mark(ctx, job.ID, model.ProgressWorkspaceReady)

	spec := sandbox.CreateSpec{
		Name:             job.ID,
		Image:            o.image(req.Language),
		WorkspacePath:    ws.Path(),
		MemoryLimitMB:    req.MemoryLimit,
		TimeLimitSeconds: req.TimeLimit,
	}
	if err := o.engine.Create(ctx, spec); err != nil {
		logger.Error(ctx, "sandbox create failed", zap.String("image", spec.Image), zap.Error(err))
		if rmErr := ws.Remove(); rmErr != nil {
			logger.Warn(ctx, "workspace cleanup after create failure failed", zap.Error(rmErr))
		}
		return err
	}
	o.mark(ctx, job.ID, model.ProgressSandboxCreated)

	startRes, startErr := o.engine.Start(ctx, job.ID)
	o.mark(ctx, job.ID, model.ProgressSandboxRan)

	var result model.ExecutionResult
	if startErr == nil && startRes.MemoryKilled() {
		result = classify.MemoryExceeded()
	} else {
		if startErr != nil {
			logger.Warn(ctx, "sandbox start failed, classifying available artifacts", zap.Error(startErr))
		}
		var clsErr error
		result, clsErr = classify.Run(ws, req.Mode)
		if clsErr != nil {
			logger.Warn(ctx, "classification degraded", zap.Error(clsErr),
				zap.String("verdict", string(result.Status)))
		}
	}
	o.mark(ctx, job.ID, model.ProgressResultComputed)

	if err := o.results.Save(ctx, job.ID, result); err != nil {
		logger.Error(ctx, "result publish failed", zap.Error(err))
		// Release the sandbox and workspace before handing the job back to
		// the queue; a redelivery rebuilds both from scratch.
		o.teardown(ctx, job.ID, ws)
		return err
	}
	logger.Info(ctx, "result published", zap.String("verdict", string(result.Status)))

	if o.teardown(ctx, job.ID, ws) {
		o.mark(ctx, job.ID, model.ProgressCleaned)
	}
	return nil
}

func (o *Orchestrator) image(language string) string {
	return fmt.Sprintf("%s-%s", o.imagePrefix, language)
}

// teardown destroys the sandbox and removes the workspace. Failures are
// logged, not propagated; the job's outcome is decided by the publish step,
// never by cleanup.
func (o *Orchestrator) teardown(ctx context.Context, jobID string, ws *workspace.Workspace) bool {
	ok := true
	if err := o.engine.Destroy(ctx, jobID); err != nil {
		logger.Error(ctx, "sandbox destroy failed", zap.Error(err))
		ok = false
	}
	if err := ws.Remove(); err != nil {
		logger.Error(ctx, "workspace remove failed", zap.Error(err))
		ok = false
	}
	return ok
}

// mark records a progress marker. Markers are observability only, so a failed
// write is logged and the pipeline continues.
func (o *Orchestrator) mark(ctx context.Context, jobID string, p model.Progress) {
	if err := o.progress.Set(ctx, jobID, p); err != nil {
		logger.Warn(ctx, "progress update failed",
			zap.String("progress", p.String()), zap.Error(err))
	}
}
