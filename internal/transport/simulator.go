package transport

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"miheater/internal/heater"
)

// Thermal model of the simulated room.
const (
	AmbientC        = 18.0 // room temperature with the heater off, °C
	RampUpCPerSec   = 0.05 // heating rate while on and below target
	DriftCPerSec    = 0.02 // cooling rate toward ambient
	TargetTolerance = 0.5  // °C band treated as "at target"
	baseHumidity    = 45   // %RH at ambient
)

// Simulator is an in-process heater answering the same RPC methods as a
// real device. Time advances only through Tick, so tests stay deterministic.
type Simulator struct {
	mu   sync.Mutex
	spec heater.ModelSpec

	power      bool
	target     int
	temp       float64
	brightness heater.Brightness
	buzzer     bool
	childLock  bool
	useTime    float64
	delayOff   float64 // seconds until power-off, 0 when unset
	updatedAt  time.Time
}

var _ heater.Transport = (*Simulator)(nil)

// NewSimulator builds a simulated device behaving as spec, starting
// switched off at ambient temperature. Callers resolve spec from the same
// registry the client uses so that file-defined models are honoured.
func NewSimulator(spec heater.ModelSpec, now time.Time) *Simulator {
	return &Simulator{
		spec:       spec,
		target:     spec.TargetTemperature.Min + (spec.TargetTemperature.Max-spec.TargetTemperature.Min)/2,
		temp:       AmbientC,
		brightness: heater.Bright,
		buzzer:     true,
		updatedAt:  now,
	}
}

// Run advances the simulation every tick until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.Tick(now)
		}
	}
}

// Tick advances the thermal model and the delay-off countdown to now.
func (s *Simulator) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := now.Sub(s.updatedAt).Seconds()
	if elapsed <= 0 {
		return
	}
	s.updatedAt = now

	if s.power {
		s.useTime += elapsed
		s.countDown(elapsed)
	}
	if s.power {
		s.heat(elapsed)
	} else {
		s.drift(elapsed)
	}
}

// countDown switches the heater off once the delay-off timer expires.
func (s *Simulator) countDown(elapsed float64) {
	if s.delayOff <= 0 {
		return
	}
	s.delayOff -= elapsed
	if s.delayOff <= 0 {
		s.delayOff = 0
		s.power = false
	}
}

// heat ramps toward target, then holds within tolerance.
func (s *Simulator) heat(elapsed float64) {
	goal := float64(s.target)
	switch {
	case s.temp < goal-TargetTolerance:
		s.temp = math.Min(s.temp+RampUpCPerSec*elapsed, goal)
	case s.temp > goal+TargetTolerance:
		s.temp = math.Max(s.temp-DriftCPerSec*elapsed, goal)
	}
}

func (s *Simulator) drift(elapsed float64) {
	if s.temp > AmbientC {
		s.temp = math.Max(s.temp-DriftCPerSec*elapsed, AmbientC)
	}
}

// Send implements heater.Transport.
func (s *Simulator) Send(ctx context.Context, method string, params []any) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch method {
	case "miIO.info":
		return []any{map[string]any{
			"model":  s.spec.ID,
			"fw_ver": "2.1.0_sim",
			"hw_ver": "sim",
			"mac":    "00:00:5E:00:53:01",
		}}, nil
	case "get_prop":
		out := make([]any, 0, len(params))
		for _, p := range params {
			name, _ := p.(string)
			out = append(out, s.property(name))
		}
		return out, nil
	}

	if len(params) != 1 {
		return nil, &RPCError{Code: codeInvalidArg, Message: fmt.Sprintf("%s expects one argument", method)}
	}
	arg := params[0]

	switch method {
	case "set_power":
		on, err := onOffArg(arg)
		if err != nil {
			return nil, err
		}
		s.power = on
		if !on {
			s.delayOff = 0
		}
	case "set_target_temperature":
		v, ok := intArg(arg)
		if !ok || !s.spec.TargetTemperature.Contains(v) {
			return nil, &RPCError{Code: codeInvalidArg, Message: fmt.Sprintf("target temperature %v", arg)}
		}
		s.target = v
	case "set_brightness":
		v, ok := intArg(arg)
		if !ok || !heater.Brightness(v).Valid() {
			return nil, &RPCError{Code: codeInvalidArg, Message: fmt.Sprintf("brightness %v", arg)}
		}
		s.brightness = heater.Brightness(v)
	case "set_buzzer":
		on, err := onOffArg(arg)
		if err != nil {
			return nil, err
		}
		s.buzzer = on
	case "set_child_lock":
		on, err := onOffArg(arg)
		if err != nil {
			return nil, err
		}
		s.childLock = on
	case s.spec.DelayOff.Method:
		v, ok := intArg(arg)
		if !ok || v < 0 {
			return nil, &RPCError{Code: codeInvalidArg, Message: fmt.Sprintf("delay off %v", arg)}
		}
		if s.spec.DelayOff.Unit == heater.DelayOffHours {
			v *= 3600
		}
		s.delayOff = float64(v)
	default:
		return nil, &RPCError{Code: codeMethodNotFound, Message: "method not found: " + method}
	}
	return []any{"ok"}, nil
}

// property returns the wire value for one property; unknown names read as nil.
// The ma1 family reports its buzzer numerically, the za1 family as on/off.
func (s *Simulator) property(name string) any {
	switch name {
	case "power":
		return onOff(s.power)
	case "target_temperature":
		return s.target
	case "brightness":
		return int(s.brightness)
	case "buzzer":
		if s.spec.DelayOff.Unit == heater.DelayOffHours {
			if s.buzzer {
				return 1
			}
			return 0
		}
		return onOff(s.buzzer)
	case "child_lock":
		return onOff(s.childLock)
	case "temperature":
		return math.Round(s.temp*10) / 10
	case "use_time":
		return int(s.useTime)
	case "relative_humidity":
		// warmer air holds more water, so relative humidity falls
		return int(math.Max(20, baseHumidity-(s.temp-AmbientC)*2))
	case "poweroff_time", "poweroff_value":
		return int(math.Ceil(s.delayOff))
	case "poweroff_level":
		return int(math.Ceil(s.delayOff / 3600))
	}
	return nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func onOffArg(v any) (bool, error) {
	switch v {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, &RPCError{Code: codeInvalidArg, Message: fmt.Sprintf("expected on/off, got %v", v)}
}

func intArg(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}
