package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"miheater/internal/models"
	"miheater/internal/repository"
)

// MaxLogLimit caps how many events one List call returns.
const MaxLogLimit = 1000

// LogFilter selects events by inclusive time range and type. Zero values do
// not filter; a zero Limit means MaxLogLimit.
type LogFilter struct {
	From  time.Time
	To    time.Time
	Type  string
	Limit int
}

// ErrInvalidFilter wraps every rejected LogFilter.
var ErrInvalidFilter = errors.New("invalid log filter")

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.HeaterEvent, error) {
	rf, err := toRepoFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, rf)
}

func toRepoFilter(f LogFilter) (repository.EventFilter, error) {
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return repository.EventFilter{}, fmt.Errorf("%w: from must be <= to", ErrInvalidFilter)
	}
	if f.Limit < 0 {
		return repository.EventFilter{}, fmt.Errorf("%w: negative limit %d", ErrInvalidFilter, f.Limit)
	}
	limit := f.Limit
	if limit == 0 || limit > MaxLogLimit {
		limit = MaxLogLimit
	}
	return repository.EventFilter{From: f.From, To: f.To, Type: f.Type, Limit: limit}, nil
}
