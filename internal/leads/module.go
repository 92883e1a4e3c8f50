// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"context"
	"fmt"

	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// ModuleConfig combines the config interfaces the leads module reads.
type ModuleConfig interface {
	config.LeadEngineConfig
	config.MinIOConfig
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	cfg        ModuleConfig
	val        *validator.Validator
	management *management.Service
	store      *repository.Memory
	activity   *repository.ActivityStore
	jobs       ports.ImportJobQueue
}

// NewModule creates the leads module. With a nil pool the module runs purely
// in memory; otherwise durable state is loaded at startup and every commit is
// written through to Postgres.
func NewModule(ctx context.Context, pool *pgxpool.Pool, stages ports.StageProvider, eventBus events.Bus, val *validator.Validator, cfg ModuleConfig, log *logger.Logger, m *metrics.Metrics) (*Module, error) {
	scoringCfg, err := scoring.LoadFile(cfg.GetScoringConfigPath())
	if err != nil {
		return nil, err
	}

	store := repository.NewMemory(scoringCfg)
	activity := repository.NewActivityStore()

	opts := []management.Option{
		management.WithLatency(cfg.GetLeadSimulatedLatency()),
		management.WithPhoneRegion(cfg.GetPhoneRegion()),
		management.WithMaxImportRows(cfg.GetImportMaxRows()),
		management.WithValidator(val),
		management.WithMetrics(m),
	}

	if pool != nil {
		repo := repository.New(pool)
		if err := restore(ctx, repo, store, activity, scoringCfg, log); err != nil {
			return nil, err
		}
		opts = append(opts, management.WithPersister(repo))
	}

	m.SetLeadCount(store.Load().Len())
	log.Info("leads store ready",
		"leads", store.Load().Len(),
		"configVersion", store.Load().ConfigVersion(),
		"activeWeight", store.Load().Config().ActiveWeight(),
	)

	return &Module{
		cfg:        cfg,
		val:        val,
		management: management.New(store, activity, stages, eventBus, log, opts...),
		store:      store,
		activity:   activity,
	}, nil
}

// restore loads leads, the scoring configuration and activity in parallel.
// A stored configuration replaces the file default only when it validates.
func restore(ctx context.Context, loader repository.Loader, store *repository.Memory, activity *repository.ActivityStore, fallback scoring.Config, log *logger.Logger) error {
	var (
		leads   []domain.Lead
		entries []domain.ActivityEntry
		cfg     scoring.Config
		found   bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		leads, err = loader.LoadLeads(gctx)
		return err
	})
	g.Go(func() (err error) {
		cfg, found, err = loader.LoadScoringConfig(gctx)
		return err
	})
	g.Go(func() (err error) {
		entries, err = loader.LoadActivities(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("restore leads state: %w", err)
	}

	if found {
		if err := cfg.Validate(); err != nil {
			log.Warn("stored scoring config is invalid, using file default", "error", err)
			found = false
		}
	}
	if !found {
		cfg = fallback
	}
	store.Seed(leads, cfg)
	activity.Seed(entries)
	return nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// ManagementService returns the lead management service for external use.
func (m *Module) ManagementService() *management.Service {
	return m.management
}

// SetImportJobQueue enables the asynchronous CSV import routes
// (breaks the scheduler -> leads -> scheduler dependency cycle).
func (m *Module) SetImportJobQueue(q ports.ImportJobQueue) {
	m.jobs = q
}

// RegisterRoutes mounts leads and scoring routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	h := handler.New(m.management, m.jobs, m.val, m.cfg.GetMinIOMaxFileSize())
	h.RegisterRoutes(ctx.V1.Group("/leads"))
	h.RegisterScoringRoutes(ctx.V1.Group("/scoring"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
