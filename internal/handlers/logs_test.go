package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"miheater/internal/models"
	"miheater/internal/service"
)

func TestLogsHandler_List(t *testing.T) {
	now := time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC)
	logs := &mockEventLog{resp: []models.HeaterEvent{
		{EventID: "e1", OccurredAt: now, Type: models.EventPower, Description: "power set to true"},
		{EventID: "e2", OccurredAt: now.Add(time.Second), Type: models.EventError, Description: "refresh failed"},
	}}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: logs})

	w := do(r, http.MethodGet, "/api/v1/logs?from=2025-08-27&to=2025-08-27&type=power&limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                  `json:"count"`
		Events []models.HeaterEvent `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}

	f := logs.last
	if f.Type != models.EventPower || f.Limit != 5 {
		t.Fatalf("unexpected filter %+v", f)
	}
	wantTo := time.Date(2025, 8, 27, 23, 59, 59, 999999999, time.UTC)
	if !f.From.Equal(time.Date(2025, 8, 27, 0, 0, 0, 0, time.UTC)) || !f.To.Equal(wantTo) {
		t.Fatalf("date-only bounds: from=%s to=%s", f.From, f.To)
	}
}

func TestLogsHandler_BadRequests(t *testing.T) {
	for _, q := range []string{"from=notatime", "to=yesterday", "limit=0", "limit=abc"} {
		r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: &mockEventLog{}})
		if w := do(r, http.MethodGet, "/api/v1/logs?"+q, ""); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestLogsHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: from must be <= to", service.ErrInvalidFilter), http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: &mockEventLog{err: tc.err}})
		if w := do(r, http.MethodGet, "/api/v1/logs", ""); w.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, w.Code)
		}
	}
}

func TestParseQueryTime(t *testing.T) {
	for _, s := range []string{"2025-08-27T15:04:05Z", "2025-08-27T17:04:05+02:00", "2025-08-27 15:04:05"} {
		got, err := parseQueryTime(s)
		if err != nil || !got.Equal(time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC)) {
			t.Fatalf("%s: got %s, %v", s, got, err)
		}
	}
	if _, err := parseQueryTime("27/08/2025"); err == nil {
		t.Fatalf("expected error")
	}
}
