package service

import (
	"context"
	"time"

	"miheater/internal/heater"
	"miheater/internal/logger"
	"miheater/internal/models"
	"miheater/internal/repository"
)

// Device is the part of *heater.Client the services drive.
type Device interface {
	Status(ctx context.Context) (*heater.Status, error)
	Apply(ctx context.Context, cmd heater.Command) (heater.Ack, error)
	Model() heater.ModelSpec
}

var _ Device = (*heater.Client)(nil)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
	Bootstrap(ctx context.Context, username, password string) error
}

// Control changes device settings and records each accepted command.
type Control interface {
	Apply(ctx context.Context, cmd heater.Command) (heater.Ack, error)
	SetParams(ctx context.Context, params map[string]any) (map[string]heater.Ack, error)
	Model() heater.ModelSpec
}

// Monitoring reads device state.
type Monitoring interface {
	Refresh(ctx context.Context) (models.HeaterState, error)
	GetState(ctx context.Context) (models.HeaterState, error)
	Invalidate()
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.HeaterEvent, error)
}

// Poller refreshes state on a fixed interval until ctx is cancelled.
type Poller interface {
	Run(ctx context.Context, interval time.Duration)
}

// StateSink receives every successfully refreshed snapshot.
type StateSink interface {
	Publish(ctx context.Context, s models.HeaterState) error
}

type Service struct {
	Control
	Monitoring
	EventLog
	Poller
	Authorization
}

// Deps carries the settings and collaborators the services need beyond the
// repositories.
type Deps struct {
	Device   Device
	Auth     AuthConfig
	CacheTTL time.Duration
	Sinks    []StateSink
	Logger   *logger.Logger
}

func NewService(repos *repository.Repository, d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	mon := NewMonitoringService(d.Device, repos.StateRepo, repos.EventRepo, d.CacheTTL, log.Named("monitoring"))
	return &Service{
		Control:       NewControlService(d.Device, repos.EventRepo, mon, log.Named("control")),
		Monitoring:    mon,
		EventLog:      NewEventLogService(repos.EventRepo),
		Poller:        NewPollerService(mon, d.Sinks, log.Named("poller")),
		Authorization: NewAuthService(repos.Auth, d.Auth),
	}
}
