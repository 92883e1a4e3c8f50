package management

import (
	"context"
	"errors"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
)

// ScoringConfig returns the active configuration.
func (s *Service) ScoringConfig(_ context.Context) transport.ScoringConfigResponse {
	return toScoringConfigResponse(s.store.Load())
}

// UpdateScoringConfig validates and installs a new configuration and
// re-scores every lead in the same commit. A rejected configuration changes
// nothing and triggers no sweep.
func (s *Service) UpdateScoringConfig(ctx context.Context, req transport.UpdateScoringConfigRequest) (transport.UpdateScoringConfigResponse, error) {
	cfg := scoring.Config{Fields: req.Fields}.Clone()
	if err := cfg.Validate(); err != nil {
		return transport.UpdateScoringConfigResponse{}, configError(err)
	}

	defer s.lock()()

	snap, sweep, err := s.sweep(ctx, cfg, true)
	if err != nil {
		return transport.UpdateScoringConfigResponse{}, err
	}
	return transport.UpdateScoringConfigResponse{
		Config: toScoringConfigResponse(snap),
		Sweep:  sweep,
	}, nil
}

// Rescore re-runs the sweep with the current configuration. Running it
// twice in a row changes nothing the second time.
func (s *Service) Rescore(ctx context.Context) (transport.SweepResponse, error) {
	defer s.lock()()

	_, sweep, err := s.sweep(ctx, s.store.Load().Config(), false)
	return sweep, err
}

// SweepCount reports how many sweeps have committed since start.
func (s *Service) SweepCount() uint64 {
	return s.sweeps.Load()
}

// PreviewScore scores an unsaved lead against the active configuration, or
// against req.Fields when present. Weights need not sum to 100 for a preview.
func (s *Service) PreviewScore(_ context.Context, req transport.PreviewScoreRequest) (transport.PreviewScoreResponse, error) {
	cfg := s.store.Load().Config()
	if req.Fields != nil {
		cfg = scoring.Config{Fields: req.Fields}.Clone()
		if err := cfg.ValidateStructure(); err != nil {
			return transport.PreviewScoreResponse{}, configError(err)
		}
	}

	result := scoring.Breakdown(createFields(req.Lead).Normalized(s.phoneRegion), cfg)
	active := cfg.ActiveWeight()
	return transport.PreviewScoreResponse{
		Score:        result.Score,
		Fields:       result.Fields,
		ActiveWeight: active,
		WeightValid:  active == scoring.RequiredActiveWeight,
	}, nil
}

// sweep rescores every lead of the current snapshot under cfg. The caller
// holds the write lock.
func (s *Service) sweep(ctx context.Context, cfg scoring.Config, configChanged bool) (*repository.Snapshot, transport.SweepResponse, error) {
	started := time.Now()
	now := s.now()

	leads := s.store.Load().Leads()
	changed := make([]domain.Lead, 0)
	for i := range leads {
		score := scoring.ComputeScore(leads[i].LeadFields, cfg)
		if score == leads[i].Score {
			continue
		}
		leads[i].Score = score
		leads[i].UpdatedAt = now
		changed = append(changed, leads[i])
	}

	if configChanged || len(changed) > 0 {
		if err := s.persister.SaveScoringConfig(context.WithoutCancel(ctx), cfg, changed); err != nil {
			s.log.DatabaseError("save scoring config", err)
			return nil, transport.SweepResponse{}, apperr.Wrap(apperr.KindInternal, "failed to save scoring configuration", err)
		}
	}

	snap, err := s.store.ApplyConfig(cfg, leads, configChanged)
	if err != nil {
		return nil, transport.SweepResponse{}, apperr.Wrap(apperr.KindInternal, "failed to apply scoring configuration", err)
	}

	elapsed := time.Since(started)
	s.sweeps.Add(1)
	s.metrics.RecordSweep(elapsed)
	s.metrics.RecordMutation("rescore")
	s.log.WithContext(ctx).RescoreCompleted(snap.ConfigVersion(), len(leads), len(changed))
	s.bus.Publish(ctx, events.ScoringConfigUpdated{
		BaseEvent:     events.NewBaseEventAt(now),
		ConfigVersion: snap.ConfigVersion(),
		ActiveWeight:  cfg.ActiveWeight(),
		Rescored:      len(leads),
		Changed:       len(changed),
		ConfigChanged: configChanged,
	})

	return snap, transport.SweepResponse{
		ConfigVersion: snap.ConfigVersion(),
		Rescored:      len(leads),
		Changed:       len(changed),
		DurationMs:    elapsed.Milliseconds(),
	}, nil
}

func configError(err error) error {
	if werr, ok := scoring.IsWeightError(err); ok {
		return apperr.Validation(werr.Error()).WithDetails(map[string]any{
			"totalWeight":    werr.Total,
			"requiredWeight": scoring.RequiredActiveWeight,
		})
	}
	var ferr *scoring.FieldError
	if errors.As(err, &ferr) {
		return apperr.Validation(ferr.Error()).WithDetails(map[string]any{
			"index": ferr.Index,
			"field": ferr.Field,
		})
	}
	return apperr.Validation(err.Error())
}
