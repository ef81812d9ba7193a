package service

import (
	"context"
	"sync"

	"miheater/internal/heater"
	"miheater/internal/models"
	"miheater/internal/repository"
)

type fakeDevice struct {
	mu        sync.Mutex
	status    *heater.Status
	statusErr error
	applyErr  error
	applied   []heater.Command
	reads     int
}

func newFakeDevice(props []string, values []any) *fakeDevice {
	st, err := heater.NewStatus(props, values)
	if err != nil {
		panic(err)
	}
	return &fakeDevice{status: st}
}

func (d *fakeDevice) Status(ctx context.Context) (*heater.Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reads++
	return d.status, d.statusErr
}

func (d *fakeDevice) Apply(ctx context.Context, cmd heater.Command) (heater.Ack, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.applyErr != nil {
		return nil, d.applyErr
	}
	d.applied = append(d.applied, cmd)
	return heater.Ack{"ok"}, nil
}

func (d *fakeDevice) Model() heater.ModelSpec {
	return heater.DefaultRegistry().Resolve(heater.ModelZA1)
}

type fakeStateRepo struct {
	mu      sync.Mutex
	state   models.HeaterState
	loadErr error
	saveErr error
	saves   int
	loads   int
}

func (r *fakeStateRepo) Save(ctx context.Context, s models.HeaterState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.state = s
	return nil
}

func (r *fakeStateRepo) Load(ctx context.Context) (models.HeaterState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	return r.state, r.loadErr
}

type fakeEventRepo struct {
	mu        sync.Mutex
	events    []models.HeaterEvent
	appendErr error
	listErr   error
	gotFilter repository.EventFilter
}

func (r *fakeEventRepo) Append(ctx context.Context, e models.HeaterEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.events = append(r.events, e)
	return nil
}

func (r *fakeEventRepo) List(ctx context.Context, f repository.EventFilter) ([]models.HeaterEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gotFilter = f
	return r.events, r.listErr
}

func (r *fakeEventRepo) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

var (
	za1Props  = []string{"power", "target_temperature", "brightness", "buzzer", "child_lock", "temperature", "use_time", "poweroff_time", "relative_humidity"}
	za1Values = []any{"on", 24.0, 1.0, "on", "off", 21.5, 3600.0, 0.0, 40.0}
)
