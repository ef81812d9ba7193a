package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"miheater/internal/models"
)

func TestEventLogService_List(t *testing.T) {
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	tests := []struct {
		name      string
		filter    LogFilter
		wantLimit int
		wantErr   bool
	}{
		{name: "no filter uses max limit", filter: LogFilter{}, wantLimit: MaxLogLimit},
		{name: "explicit range and type", filter: LogFilter{From: from, To: to, Type: "power", Limit: 10}, wantLimit: 10},
		{name: "limit capped", filter: LogFilter{Limit: MaxLogLimit * 5}, wantLimit: MaxLogLimit},
		{name: "equal bounds allowed", filter: LogFilter{From: from, To: from}, wantLimit: MaxLogLimit},
		{name: "inverted range", filter: LogFilter{From: to, To: from}, wantErr: true},
		{name: "negative limit", filter: LogFilter{Limit: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeEventRepo{events: []models.HeaterEvent{{EventID: "1", Type: models.EventPower}}}
			svc := NewEventLogService(repo)

			got, err := svc.List(context.Background(), tt.filter)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFilter) {
					t.Fatalf("expected ErrInvalidFilter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("expected repo events passed through, got %v", got)
			}
			f := repo.gotFilter
			if f.Limit != tt.wantLimit || f.Type != tt.filter.Type || !f.From.Equal(tt.filter.From) || !f.To.Equal(tt.filter.To) {
				t.Fatalf("unexpected repo filter %+v", f)
			}
		})
	}
}

func TestEventLogService_RepoError(t *testing.T) {
	repo := &fakeEventRepo{listErr: errors.New("db down")}
	if _, err := NewEventLogService(repo).List(context.Background(), LogFilter{}); err == nil {
		t.Fatalf("expected repo error")
	}
}
