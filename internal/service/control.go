package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"miheater/internal/heater"
	"miheater/internal/logger"
	"miheater/internal/models"
	"miheater/internal/repository"
)

type invalidator interface {
	Invalidate()
}

type ControlService struct {
	dev       Device
	eventRepo repository.EventRepo
	state     invalidator
	log       *logger.Logger
	now       func() time.Time
}

func NewControlService(dev Device, eventRepo repository.EventRepo, state invalidator, log *logger.Logger) *ControlService {
	if log == nil {
		log = logger.Nop()
	}
	return &ControlService{dev: dev, eventRepo: eventRepo, state: state, log: log, now: time.Now}
}

var eventTypes = map[heater.CommandKind]string{
	heater.CommandPower:             models.EventPower,
	heater.CommandTargetTemperature: models.EventTargetTemperature,
	heater.CommandBrightness:        models.EventBrightness,
	heater.CommandBuzzer:            models.EventBuzzer,
	heater.CommandChildLock:         models.EventChildLock,
	heater.CommandDelayOff:          models.EventDelayOff,
}

// Apply sends one command and logs it once the device acknowledged.
func (s *ControlService) Apply(ctx context.Context, cmd heater.Command) (heater.Ack, error) {
	ack, err := s.dev.Apply(ctx, cmd)
	if err != nil {
		s.log.Warnw("heater_command_failed", "command", cmd.Kind.String(), "value", commandValue(cmd), "error", err)
		return nil, err
	}
	if s.state != nil {
		s.state.Invalidate()
	}
	s.log.Infow("heater_command_applied", "command", cmd.Kind.String(), "value", commandValue(cmd), "ack", ack)

	err = s.eventRepo.Append(ctx, models.HeaterEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  s.now().UTC(),
		Type:        eventTypes[cmd.Kind],
		Description: fmt.Sprintf("%s set to %v", cmd.Kind, commandValue(cmd)),
		Metadata:    map[string]any{"value": commandValue(cmd), "ack": []any(ack)},
	})
	if err != nil {
		// the device already accepted the command
		s.log.Errorw("heater_event_append_failed", "command", cmd.Kind.String(), "error", err)
	}
	return ack, nil
}

// SetParams validates every parameter before touching the device, then
// applies them in name order and stops at the first failure. The returned
// map holds the acknowledgements received so far.
func (s *ControlService) SetParams(ctx context.Context, params map[string]any) (map[string]heater.Ack, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: no parameters given", heater.ErrInvalidParameter)
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	spec := s.dev.Model()
	cmds := make([]heater.Command, 0, len(names))
	for _, name := range names {
		cmd, err := heater.ParseCommand(name, params[name])
		if err != nil {
			return nil, err
		}
		if err := spec.Check(cmd); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		cmds = append(cmds, cmd)
	}

	acks := make(map[string]heater.Ack, len(cmds))
	for i, cmd := range cmds {
		ack, err := s.Apply(ctx, cmd)
		if err != nil {
			return acks, fmt.Errorf("%s: %w", names[i], err)
		}
		acks[names[i]] = ack
	}
	return acks, nil
}

func (s *ControlService) Model() heater.ModelSpec {
	return s.dev.Model()
}

func commandValue(cmd heater.Command) any {
	switch cmd.Kind {
	case heater.CommandPower, heater.CommandBuzzer, heater.CommandChildLock:
		return cmd.On
	case heater.CommandBrightness:
		return cmd.Brightness.String()
	default:
		return cmd.Value
	}
}
