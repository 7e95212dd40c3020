// Package controller exposes the execution engine over HTTP.
package controller

import (
	"context"

	"github.com/assignexpert/assignexpert/internal/execution/model"
	"github.com/assignexpert/assignexpert/internal/execution/service"
	"github.com/assignexpert/assignexpert/pkg/errors"
	"github.com/assignexpert/assignexpert/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// Pinger is anything whose liveness the health endpoint should report.
type Pinger interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name   string
	pinger Pinger
}

// ExecutionController handles submission intake and result/progress polling.
type ExecutionController struct {
	intake *service.IntakeService
	deps   []dependency
}

// NewExecutionController creates the controller.
func NewExecutionController(intake *service.IntakeService) *ExecutionController {
	return &ExecutionController{intake: intake}
}

// WithDependency registers a named dependency for the health endpoint.
func (ctl *ExecutionController) WithDependency(name string, p Pinger) *ExecutionController {
	ctl.deps = append(ctl.deps, dependency{name: name, pinger: p})
	return ctl
}

// RegisterRoutes registers the controller's routes on the engine.
func (ctl *ExecutionController) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/execution", ctl.Submit)
		api.GET("/execution/:id/result", ctl.GetResult)
		api.GET("/execution/:id/progress", ctl.GetProgress)
	}
	r.GET("/healthz", ctl.Health)
}

// Submit accepts a submission and returns the assigned job id with 202. The
// result becomes pollable once the asynchronous pipeline completes.
func (ctl *ExecutionController) Submit(c *gin.Context) {
	var req model.ExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	jobID, err := ctl.intake.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, gin.H{"jobId": jobID})
}

// GetResult returns the terminal result of a job, or 404 while the job is
// still in flight.
func (ctl *ExecutionController) GetResult(c *gin.Context) {
	jobID := c.Param("id")
	result, err := ctl.intake.GetResult(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result == nil {
		response.ErrorWithCode(c, errors.ExecutionNotFound, "result not available")
		return
	}
	response.Success(c, result)
}

// GetProgress returns the latest progress marker of a job, or 404 when the
// job is unknown.
func (ctl *ExecutionController) GetProgress(c *gin.Context) {
	jobID := c.Param("id")
	progress, ok, err := ctl.intake.GetProgress(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ok {
		response.ErrorWithCode(c, errors.ExecutionNotFound, "no progress recorded")
		return
	}
	response.Success(c, gin.H{"progress": progress.String()})
}

// Health pings the registered dependencies and reports liveness.
func (ctl *ExecutionController) Health(c *gin.Context) {
	for _, dep := range ctl.deps {
		if err := dep.pinger.Ping(c.Request.Context()); err != nil {
			response.ErrorWithCode(c, errors.ServiceUnavailable, dep.name+" is unreachable")
			return
		}
	}
	response.Success(c, gin.H{"status": "ok"})
}
