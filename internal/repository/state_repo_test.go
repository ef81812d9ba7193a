package repository

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"miheater/internal/models"
)

var stateColumns = []string{
	"id", "model", "power", "temperature", "target_temperature", "humidity",
	"brightness", "buzzer", "child_lock", "use_time", "delay_off", "raw", "updated_at",
}

func newStateRepo(t *testing.T) (*StateSQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("mock expectations: %v", err)
		}
		_ = db.Close()
	})
	return NewStateSQLite(db), mock
}

func TestStateSave(t *testing.T) {
	repo, mock := newStateRepo(t)

	temp := 21.5
	target := 24
	at := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(upsertStateSQL)).
		WithArgs(1, "zhimi.heater.za1", "on", 21.5, int64(24), nil, "dim", true, false, nil, nil,
			`{"power":"on"}`, at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Save(testCtx(t), models.HeaterState{
		Model:             "zhimi.heater.za1",
		Power:             "on",
		IsOn:              true,
		Temperature:       &temp,
		TargetTemperature: &target,
		Brightness:        "dim",
		Buzzer:            true,
		Raw:               map[string]any{"power": "on"},
		UpdatedAt:         at,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestStateSave_DBError(t *testing.T) {
	repo, mock := newStateRepo(t)
	mock.ExpectExec("INSERT INTO heater_state").WillReturnError(errors.New("readonly"))

	if err := repo.Save(testCtx(t), models.HeaterState{Power: "off"}); err == nil || !strings.Contains(err.Error(), "readonly") {
		t.Fatalf("expected error, got %v", err)
	}
}

func TestStateLoad(t *testing.T) {
	repo, mock := newStateRepo(t)
	at := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(selectStateSQL)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(stateColumns).
			AddRow(1, "zhimi.elecheater.ma1", "on", 19.5, 22, nil, "off", false, true, 3600, 2, `{"poweroff_level":2}`, at))

	s, err := repo.Load(testCtx(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.IsOn || s.Model != "zhimi.elecheater.ma1" || !s.ChildLock || s.Buzzer {
		t.Fatalf("unexpected state %+v", s)
	}
	if s.Temperature == nil || *s.Temperature != 19.5 {
		t.Fatalf("temperature = %v", s.Temperature)
	}
	if s.Humidity != nil {
		t.Fatalf("humidity should be absent")
	}
	if s.DelayOffCountdown == nil || *s.DelayOffCountdown != 2 {
		t.Fatalf("countdown = %v", s.DelayOffCountdown)
	}
	if s.Raw["poweroff_level"] != float64(2) {
		t.Fatalf("raw = %#v", s.Raw)
	}
}

func TestStateLoad_Empty(t *testing.T) {
	repo, mock := newStateRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectStateSQL)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(stateColumns))

	s, err := repo.Load(testCtx(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ID != 0 || s.Power != "" {
		t.Fatalf("expected zero state, got %+v", s)
	}
}
