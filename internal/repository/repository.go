package repository

import (
	"context"
	"database/sql"

	"miheater/internal/models"
)

// Authorization stores API users.
type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

// StateRepo stores the latest heater snapshot.
type StateRepo interface {
	Save(ctx context.Context, s models.HeaterState) error
	Load(ctx context.Context) (models.HeaterState, error)
}

// EventRepo is the append-only command and error log.
type EventRepo interface {
	Append(ctx context.Context, e models.HeaterEvent) error
	List(ctx context.Context, f EventFilter) ([]models.HeaterEvent, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
