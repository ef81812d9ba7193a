package service

import (
	"context"
	"time"

	"miheater/internal/logger"
	"miheater/internal/models"
)

type refresher interface {
	Refresh(ctx context.Context) (models.HeaterState, error)
}

// PollerService periodically refreshes the heater state and fans each
// snapshot out to the configured sinks.
type PollerService struct {
	mon   refresher
	sinks []StateSink
	log   *logger.Logger
}

func NewPollerService(mon refresher, sinks []StateSink, log *logger.Logger) *PollerService {
	if log == nil {
		log = logger.Nop()
	}
	return &PollerService{mon: mon, sinks: sinks, log: log}
}

// Run polls once immediately and then every interval until ctx is cancelled.
func (p *PollerService) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.poll(ctx)
		}
	}
}

func (p *PollerService) poll(ctx context.Context) {
	state, err := p.mon.Refresh(ctx)
	if err != nil {
		// already logged and recorded by Refresh
		return
	}
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, state); err != nil {
			p.log.Warnw("heater_state_publish_failed", "sink", sinkName(sink), "error", err)
		}
	}
}

func sinkName(s StateSink) string {
	if n, ok := s.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "unnamed"
}
