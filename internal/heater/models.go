package heater

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Known model identifiers.
const (
	ModelZA1 = "zhimi.heater.za1"
	ModelMA1 = "zhimi.elecheater.ma1"

	// DefaultModel is selected for unknown or empty identifiers.
	DefaultModel = ModelZA1
)

// A single get_prop request is limited to 16 properties by the protocol.
const defaultPropsPerRequest = 15

// DelayOffUnit is the unit a model expects on the delay-off wire method.
type DelayOffUnit string

const (
	DelayOffSeconds DelayOffUnit = "seconds"
	DelayOffHours   DelayOffUnit = "hours"
)

// TemperatureRange is an inclusive target temperature range in °C.
type TemperatureRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether v lies within the range, bounds included.
func (r TemperatureRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// DelayOffSpec describes how a model accepts a delayed power-off.
// MaxSeconds is always expressed in seconds regardless of the wire unit.
type DelayOffSpec struct {
	MaxSeconds int          `json:"max_seconds" yaml:"max_seconds"`
	Method     string       `json:"method" yaml:"method"`
	Unit       DelayOffUnit `json:"unit" yaml:"unit"`
}

// wireValue converts seconds into the value sent on the wire.
func (d DelayOffSpec) wireValue(seconds int) int {
	if d.Unit == DelayOffHours {
		return seconds / 3600
	}
	return seconds
}

// ModelSpec is the immutable description of one heater model.
type ModelSpec struct {
	ID                string           `json:"id"`
	Properties        []string         `json:"properties"`
	TargetTemperature TemperatureRange `json:"target_temperature"`
	DelayOff          DelayOffSpec     `json:"delay_off"`
	PropsPerRequest   int              `json:"props_per_request"`
	// CountdownProperties lists, in priority order, the properties that may
	// carry the delay-off countdown.
	CountdownProperties []string `json:"countdown_properties"`
}

func (m ModelSpec) clone() ModelSpec {
	m.Properties = append([]string(nil), m.Properties...)
	m.CountdownProperties = append([]string(nil), m.CountdownProperties...)
	return m
}

func (m ModelSpec) validate() error {
	switch {
	case m.ID == "":
		return errors.New("model id is empty")
	case len(m.Properties) == 0:
		return fmt.Errorf("model %s: no properties", m.ID)
	case m.PropsPerRequest <= 0:
		return fmt.Errorf("model %s: props_per_request must be positive", m.ID)
	case m.TargetTemperature.Min > m.TargetTemperature.Max:
		return fmt.Errorf("model %s: target temperature min %d > max %d",
			m.ID, m.TargetTemperature.Min, m.TargetTemperature.Max)
	case m.DelayOff.Method == "" || m.DelayOff.MaxSeconds < 0:
		return fmt.Errorf("model %s: delay-off method and non-negative max are required", m.ID)
	case m.DelayOff.Unit != DelayOffSeconds && m.DelayOff.Unit != DelayOffHours:
		return fmt.Errorf("model %s: unknown delay-off unit %q", m.ID, m.DelayOff.Unit)
	}
	seen := make(map[string]struct{}, len(m.Properties))
	for _, p := range m.Properties {
		if _, dup := seen[p]; dup {
			return fmt.Errorf("model %s: duplicate property %q", m.ID, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

var commonProperties = []string{
	"power",
	"target_temperature",
	"brightness",
	"buzzer",
	"child_lock",
	"temperature",
	"use_time",
}

// modelEntry is one row of the built-in table: common properties plus extras.
type modelEntry struct {
	extra       []string
	tempRange   TemperatureRange
	delayOff    DelayOffSpec
	perRequest  int
	countdownBy []string
}

// The za1 and ma1 reject multi-property batches, so both use one property
// per request.
var builtinModels = map[string]modelEntry{
	ModelZA1: {
		extra:       []string{"poweroff_time", "relative_humidity"},
		tempRange:   TemperatureRange{Min: 16, Max: 32},
		delayOff:    DelayOffSpec{MaxSeconds: 9 * 3600, Method: "set_poweroff_time", Unit: DelayOffSeconds},
		perRequest:  1,
		countdownBy: []string{"poweroff_time"},
	},
	ModelMA1: {
		extra:       []string{"poweroff_level", "poweroff_value"},
		tempRange:   TemperatureRange{Min: 20, Max: 32},
		delayOff:    DelayOffSpec{MaxSeconds: 5 * 3600, Method: "set_poweroff_level", Unit: DelayOffHours},
		perRequest:  1,
		countdownBy: []string{"poweroff_level"},
	},
}

func composeProperties(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

// Registry maps model identifiers to their specs. It is safe for concurrent
// use; Register is expected at start-up only.
type Registry struct {
	mu       sync.RWMutex
	models   map[string]ModelSpec
	fallback string
}

// NewRegistry returns a registry holding the built-in models.
func NewRegistry() *Registry {
	r := &Registry{
		models:   make(map[string]ModelSpec, len(builtinModels)),
		fallback: DefaultModel,
	}
	for id, e := range builtinModels {
		r.models[id] = ModelSpec{
			ID:                  id,
			Properties:          composeProperties(commonProperties, e.extra),
			TargetTemperature:   e.tempRange,
			DelayOff:            e.delayOff,
			PropsPerRequest:     e.perRequest,
			CountdownProperties: append([]string(nil), e.countdownBy...),
		}
	}
	return r
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the shared registry used when a client is built
// without WithRegistry.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds or replaces a model.
func (r *Registry) Register(spec ModelSpec) error {
	if spec.PropsPerRequest == 0 {
		spec.PropsPerRequest = defaultPropsPerRequest
	}
	if err := spec.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[spec.ID] = spec.clone()
	return nil
}

// Lookup returns the spec for id and whether it is known.
func (r *Registry) Lookup(id string) (ModelSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.models[id]
	if !ok {
		return ModelSpec{}, false
	}
	return spec.clone(), true
}

// Resolve returns the spec for id, falling back to the default model.
func (r *Registry) Resolve(id string) ModelSpec {
	if spec, ok := r.Lookup(id); ok {
		return spec
	}
	spec, _ := r.Lookup(r.fallback)
	return spec
}

// Models returns the known identifiers in sorted order.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.models))
	for id := range r.models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
