// Package tsdb records heater snapshots in InfluxDB v2.
package tsdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"miheater/internal/models"
)

const (
	measurement        = "heater"
	defaultPingTimeout = 5 * time.Second
)

var (
	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrNotConnected     = errors.New("influxdb: not connected")
)

type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
	Device string
}

// pointWriter is satisfied by api.WriteAPIBlocking.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Sink writes one "heater" point per refreshed snapshot.
type Sink struct {
	client influxdb2.Client
	w      pointWriter
	device string
	now    func() time.Time
}

// Connect verifies the server is reachable and returns a sink writing to
// cfg.Bucket.
func Connect(ctx context.Context, cfg Config) (*Sink, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	s := newSink(client.WriteAPIBlocking(cfg.Org, cfg.Bucket), cfg.Device)
	s.client = client
	return s, nil
}

func newSink(w pointWriter, device string) *Sink {
	if device == "" {
		device = "miheater"
	}
	return &Sink{w: w, device: device, now: time.Now}
}

func (s *Sink) Name() string { return "influxdb" }

// Publish writes the snapshot. Fields the model does not report are left
// out of the point rather than written as zero.
func (s *Sink) Publish(ctx context.Context, st models.HeaterState) error {
	if s.w == nil {
		return ErrNotConnected
	}
	if err := s.w.WritePoint(ctx, s.point(st)); err != nil {
		return fmt.Errorf("write %s point: %w", measurement, err)
	}
	return nil
}

func (s *Sink) point(st models.HeaterState) *write.Point {
	tags := map[string]string{"device": s.device}
	if st.Model != "" {
		tags["model"] = st.Model
	}

	fields := map[string]any{
		"is_on":      st.IsOn,
		"buzzer":     st.Buzzer,
		"child_lock": st.ChildLock,
	}
	if st.Temperature != nil {
		fields["temperature"] = *st.Temperature
	}
	if st.TargetTemperature != nil {
		fields["target_temperature"] = *st.TargetTemperature
	}
	if st.Humidity != nil {
		fields["humidity"] = *st.Humidity
	}
	if st.UseTime != nil {
		fields["use_time"] = *st.UseTime
	}
	if st.DelayOffCountdown != nil {
		fields["delay_off_countdown"] = *st.DelayOffCountdown
	}

	at := st.UpdatedAt
	if at.IsZero() {
		at = s.now()
	}
	return write.NewPoint(measurement, tags, fields, at)
}

// Close releases the HTTP client. Writes are blocking, so nothing is
// pending.
func (s *Sink) Close() {
	if s.client != nil {
		s.client.Close()
	}
}
