package tsdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miheater/internal/models"
)

type fakeWriter struct {
	points []*write.Point
	err    error
}

func (w *fakeWriter) WritePoint(_ context.Context, p ...*write.Point) error {
	if w.err != nil {
		return w.err
	}
	w.points = append(w.points, p...)
	return nil
}

func fieldsOf(p *write.Point) map[string]any {
	out := map[string]any{}
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func tagsOf(p *write.Point) map[string]string {
	out := map[string]string{}
	for _, t := range p.TagList() {
		out[t.Key] = t.Value
	}
	return out
}

func TestSink_Publish(t *testing.T) {
	w := &fakeWriter{}
	s := newSink(w, "hall")

	temp, target, hum := 19.5, 22, 40
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	err := s.Publish(context.Background(), models.HeaterState{
		Model:             "zhimi.heater.za1",
		IsOn:              true,
		Temperature:       &temp,
		TargetTemperature: &target,
		Humidity:          &hum,
		UpdatedAt:         at,
	})
	require.NoError(t, err)
	require.Len(t, w.points, 1)

	p := w.points[0]
	assert.Equal(t, "heater", p.Name())
	assert.Equal(t, at, p.Time())
	assert.Equal(t, map[string]string{"device": "hall", "model": "zhimi.heater.za1"}, tagsOf(p))

	fields := fieldsOf(p)
	assert.Equal(t, 19.5, fields["temperature"])
	assert.EqualValues(t, 22, fields["target_temperature"])
	assert.EqualValues(t, 40, fields["humidity"])
	assert.Equal(t, true, fields["is_on"])
	assert.NotContains(t, fields, "use_time")
}

func TestSink_PublishDefaultsTime(t *testing.T) {
	w := &fakeWriter{}
	s := newSink(w, "")
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Publish(context.Background(), models.HeaterState{}))
	require.Len(t, w.points, 1)
	assert.Equal(t, now, w.points[0].Time())
	assert.Equal(t, "miheater", tagsOf(w.points[0])["device"])
	assert.NotContains(t, tagsOf(w.points[0]), "model")
}

func TestSink_PublishError(t *testing.T) {
	boom := errors.New("bucket not found")
	s := newSink(&fakeWriter{err: boom}, "hall")
	assert.ErrorIs(t, s.Publish(context.Background(), models.HeaterState{}), boom)

	assert.ErrorIs(t, (&Sink{}).Publish(context.Background(), models.HeaterState{}), ErrNotConnected)
}

func TestSink_Name(t *testing.T) {
	assert.Equal(t, "influxdb", newSink(&fakeWriter{}, "").Name())
}
