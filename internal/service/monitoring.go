package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"miheater/internal/logger"
	"miheater/internal/models"
	"miheater/internal/repository"
)

const stateCacheKey = "heater_state"

// ErrStorage marks a refresh that reached the device but could not persist
// the snapshot.
var ErrStorage = errors.New("state storage failed")

type MonitoringService struct {
	dev       Device
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	cache     *cache.Cache
	ttl       time.Duration
	log       *logger.Logger
	now       func() time.Time
}

// NewMonitoringService caches the latest snapshot for ttl; ttl <= 0
// disables the cache and every GetState reads the database.
func NewMonitoringService(dev Device, stateRepo repository.StateRepo, eventRepo repository.EventRepo,
	ttl time.Duration, log *logger.Logger) *MonitoringService {
	if log == nil {
		log = logger.Nop()
	}
	return &MonitoringService{
		dev:       dev,
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		cache:     cache.New(ttl, 2*ttl),
		ttl:       ttl,
		log:       log,
		now:       time.Now,
	}
}

// Refresh reads the device, persists the decoded snapshot and caches it.
// Device failures are recorded as ERROR events and returned unchanged.
func (s *MonitoringService) Refresh(ctx context.Context) (models.HeaterState, error) {
	st, err := s.dev.Status(ctx)
	if err != nil {
		s.recordFailure(ctx, "refresh failed", err)
		return models.HeaterState{}, err
	}

	state, err := models.StateFromStatus(st, s.now())
	if err != nil {
		s.recordFailure(ctx, "decode failed", err)
		return models.HeaterState{}, err
	}
	if err := s.stateRepo.Save(ctx, state); err != nil {
		s.log.Errorw("heater_state_save_failed", "error", err)
		return models.HeaterState{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.remember(state)
	s.log.Debugw("heater_state_refreshed", "model", state.Model, "power", state.Power)
	return state, nil
}

// GetState serves the cached snapshot, then the persisted one, then a
// baseline for a database that has never been filled.
func (s *MonitoringService) GetState(ctx context.Context) (models.HeaterState, error) {
	if v, ok := s.cache.Get(stateCacheKey); ok {
		return v.(models.HeaterState), nil
	}
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.HeaterState{}, err
	}
	if state.ID == 0 {
		return s.baselineState(), nil
	}
	s.remember(state)
	return state, nil
}

// Invalidate drops the cached snapshot after a command changed the device.
func (s *MonitoringService) Invalidate() {
	s.cache.Delete(stateCacheKey)
}

func (s *MonitoringService) remember(state models.HeaterState) {
	if s.ttl > 0 {
		s.cache.Set(stateCacheKey, state, cache.DefaultExpiration)
	}
}

func (s *MonitoringService) baselineState() models.HeaterState {
	return models.HeaterState{
		ID:        1,
		Model:     s.dev.Model().ID,
		Power:     "off",
		UpdatedAt: s.now().UTC(),
	}
}

func (s *MonitoringService) recordFailure(ctx context.Context, what string, cause error) {
	s.log.Warnw("heater_refresh_failed", "stage", what, "error", cause)
	err := s.eventRepo.Append(ctx, models.HeaterEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  s.now().UTC(),
		Type:        models.EventError,
		Description: what + ": " + cause.Error(),
	})
	if err != nil {
		s.log.Errorw("heater_event_append_failed", "error", err)
	}
}
