// Package pipeline provides the pipeline stages bounded context module.
// Stage names are the allowed values of a lead's status.
package pipeline

import (
	"context"

	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/pipeline/handler"
	"leadflow_backend/internal/pipeline/repository"
	"leadflow_backend/internal/pipeline/service"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the pipeline bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the pipeline module. With a nil pool stages live in memory.
func NewModule(ctx context.Context, pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	var repo repository.Repository = repository.NewMemory()
	if pool != nil {
		repo = repository.New(pool)
	}

	svc, err := service.New(ctx, repo, eventBus, log)
	if err != nil {
		return nil, err
	}

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipeline"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts stage routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/pipeline/stages"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
