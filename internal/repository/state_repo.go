package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"miheater/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	heaterStateRowID = 1

	upsertStateSQL = `
		INSERT INTO heater_state (id, model, power, temperature, target_temperature, humidity,
			brightness, buzzer, child_lock, use_time, delay_off, raw, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			model=excluded.model,
			power=excluded.power,
			temperature=excluded.temperature,
			target_temperature=excluded.target_temperature,
			humidity=excluded.humidity,
			brightness=excluded.brightness,
			buzzer=excluded.buzzer,
			child_lock=excluded.child_lock,
			use_time=excluded.use_time,
			delay_off=excluded.delay_off,
			raw=excluded.raw,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, model, power, temperature, target_temperature, humidity,
			brightness, buzzer, child_lock, use_time, delay_off, raw, updated_at
		FROM heater_state WHERE id=?
	`
)

// Save replaces the single heater_state row.
func (r *StateSQLite) Save(ctx context.Context, s models.HeaterState) error {
	raw, err := json.Marshal(s.Raw)
	if err != nil {
		return fmt.Errorf("encode raw properties: %w", err)
	}

	ts := s.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = r.db.ExecContext(ctx, upsertStateSQL,
		heaterStateRowID,
		s.Model,
		s.Power,
		nullFloat(s.Temperature),
		nullInt(s.TargetTemperature),
		nullInt(s.Humidity),
		s.Brightness,
		s.Buzzer,
		s.ChildLock,
		nullInt(s.UseTime),
		nullInt(s.DelayOffCountdown),
		string(raw),
		ts.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save heater state: %w", err)
	}
	return nil
}

// Load returns a zero state when nothing has been saved yet.
func (r *StateSQLite) Load(ctx context.Context) (models.HeaterState, error) {
	var (
		s                                   models.HeaterState
		temp                                sql.NullFloat64
		target, humidity, useTime, delayOff sql.NullInt64
		raw                                 sql.NullString
	)
	err := r.db.QueryRowContext(ctx, selectStateSQL, heaterStateRowID).Scan(
		&s.ID,
		&s.Model,
		&s.Power,
		&temp,
		&target,
		&humidity,
		&s.Brightness,
		&s.Buzzer,
		&s.ChildLock,
		&useTime,
		&delayOff,
		&raw,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.HeaterState{}, nil
		}
		return models.HeaterState{}, fmt.Errorf("load heater state: %w", err)
	}

	if temp.Valid {
		s.Temperature = &temp.Float64
	}
	s.TargetTemperature = intPtr(target)
	s.Humidity = intPtr(humidity)
	s.UseTime = intPtr(useTime)
	s.DelayOffCountdown = intPtr(delayOff)
	s.IsOn = s.Power == "on"
	s.UpdatedAt = s.UpdatedAt.UTC()

	if raw.Valid && raw.String != "" && raw.String != "null" {
		if err := json.Unmarshal([]byte(raw.String), &s.Raw); err != nil {
			return models.HeaterState{}, fmt.Errorf("decode raw properties: %w", err)
		}
	}
	return s, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
