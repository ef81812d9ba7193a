package heater

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Property names read by Status.
const (
	propPower             = "power"
	propTargetTemperature = "target_temperature"
	propBrightness        = "brightness"
	propBuzzer            = "buzzer"
	propChildLock         = "child_lock"
	propTemperature       = "temperature"
	propUseTime           = "use_time"
	propHumidity          = "relative_humidity"
	propPoweroffTime      = "poweroff_time"
	propPoweroffLevel     = "poweroff_level"
)

// Used when a snapshot is built without a model.
var defaultCountdownProperties = []string{propPoweroffTime, propPoweroffLevel}

// Status is an immutable snapshot of one refresh. Readers of optional
// properties return ok=false when the device did not report a value.
type Status struct {
	model     string
	props     []string
	data      map[string]any
	countdown []string
}

// NewStatus zips property names with the values returned for them. The two
// slices are positionally aligned and must have the same length.
func NewStatus(props []string, values []any) (*Status, error) {
	return newStatus("", props, values, defaultCountdownProperties)
}

func newStatus(model string, props []string, values []any, countdown []string) (*Status, error) {
	if len(props) != len(values) {
		return nil, &MismatchError{Requested: len(props), Received: len(values)}
	}
	data := make(map[string]any, len(props))
	for i, p := range props {
		data[p] = values[i]
	}
	if len(countdown) == 0 {
		countdown = defaultCountdownProperties
	}
	return &Status{
		model:     model,
		props:     append([]string(nil), props...),
		data:      data,
		countdown: countdown,
	}, nil
}

// Model returns the model the snapshot was read for, if known.
func (s *Status) Model() string { return s.model }

// Properties returns the requested property names in order.
func (s *Status) Properties() []string { return append([]string(nil), s.props...) }

// Raw returns the wire value of a property; null values count as absent.
func (s *Status) Raw(name string) (any, bool) {
	v, ok := s.data[name]
	if !ok || isNull(v) {
		return nil, false
	}
	return v, true
}

// Data returns a copy of the property map.
func (s *Status) Data() map[string]any {
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Power returns the raw power state ("on"/"off"), or "" if not reported.
func (s *Status) Power() string {
	v, _ := s.Raw(propPower)
	str, _ := v.(string)
	return str
}

// IsOn reports whether the heater is switched on.
func (s *Status) IsOn() bool { return s.Power() == "on" }

// Temperature is the current room temperature in °C.
func (s *Status) Temperature() (float64, bool) {
	v, ok := s.Raw(propTemperature)
	if !ok {
		return 0, false
	}
	return asFloat(v)
}

func (s *Status) TargetTemperature() (int, bool) { return s.intProp(propTargetTemperature) }

// Humidity is the relative humidity in percent; not every model has it.
func (s *Status) Humidity() (int, bool) { return s.intProp(propHumidity) }

// UseTime is how long the device has been active, in seconds.
func (s *Status) UseTime() (int, bool) { return s.intProp(propUseTime) }

// Brightness decodes the display brightness code.
func (s *Status) Brightness() (Brightness, error) {
	v, ok := s.Raw(propBrightness)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotReported, propBrightness)
	}
	code, ok := asCode(v)
	if !ok {
		return 0, fmt.Errorf("%w: brightness %v", ErrInvalidValue, v)
	}
	return BrightnessFromCode(code)
}

// Buzzer reports whether the buzzer is enabled. Devices report either
// "on"/"off" or a numeric code where 1 and 2 mean enabled.
func (s *Status) Buzzer() bool {
	v, ok := s.Raw(propBuzzer)
	if !ok {
		return false
	}
	if str, isStr := v.(string); isStr {
		return str == "on"
	}
	n, ok := asCode(v)
	return ok && (n == 1 || n == 2)
}

func (s *Status) ChildLock() bool {
	v, _ := s.Raw(propChildLock)
	str, _ := v.(string)
	return str == "on"
}

// DelayOffCountdown returns the remaining delay-off countdown from the
// first countdown property the model reports.
func (s *Status) DelayOffCountdown() (int, bool) {
	for _, p := range s.countdown {
		if n, ok := s.intProp(p); ok {
			return n, true
		}
	}
	return 0, false
}

func (s *Status) intProp(name string) (int, bool) {
	v, ok := s.Raw(name)
	if !ok {
		return 0, false
	}
	return asInt(v)
}

func (s *Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<Status model=%s power=%s", s.model, s.Power())
	writeOpt := func(name string, v any, ok bool) {
		if ok {
			fmt.Fprintf(&b, " %s=%v", name, v)
		} else {
			fmt.Fprintf(&b, " %s=None", name)
		}
	}
	tt, ok := s.TargetTemperature()
	writeOpt("target_temperature", tt, ok)
	t, ok := s.Temperature()
	writeOpt("temperature", t, ok)
	h, ok := s.Humidity()
	writeOpt("humidity", h, ok)
	if br, err := s.Brightness(); err == nil {
		fmt.Fprintf(&b, " brightness=%s", br)
	} else {
		b.WriteString(" brightness=None")
	}
	fmt.Fprintf(&b, " buzzer=%t child_lock=%t", s.Buzzer(), s.ChildLock())
	u, ok := s.UseTime()
	writeOpt("use_time", u, ok)
	d, ok := s.DelayOffCountdown()
	writeOpt("delay_off_countdown", d, ok)
	b.WriteString(">")
	return b.String()
}

// Reading is the decoded, serialisable form of a Status.
type Reading struct {
	Model             string      `json:"model,omitempty"`
	Power             string      `json:"power"`
	IsOn              bool        `json:"is_on"`
	Temperature       *float64    `json:"temperature,omitempty"`
	TargetTemperature *int        `json:"target_temperature,omitempty"`
	Humidity          *int        `json:"humidity,omitempty"`
	Brightness        *Brightness `json:"brightness,omitempty"`
	Buzzer            bool        `json:"buzzer"`
	ChildLock         bool        `json:"child_lock"`
	UseTime           *int        `json:"use_time,omitempty"`
	DelayOffCountdown *int        `json:"delay_off_countdown,omitempty"`
}

// Reading decodes every field. An undecodable brightness is an error; a
// missing one is left nil.
func (s *Status) Reading() (Reading, error) {
	r := Reading{
		Model:     s.model,
		Power:     s.Power(),
		IsOn:      s.IsOn(),
		Buzzer:    s.Buzzer(),
		ChildLock: s.ChildLock(),
	}
	if v, ok := s.Temperature(); ok {
		r.Temperature = &v
	}
	r.TargetTemperature = optInt(s.TargetTemperature())
	r.Humidity = optInt(s.Humidity())
	r.UseTime = optInt(s.UseTime())
	r.DelayOffCountdown = optInt(s.DelayOffCountdown())

	br, err := s.Brightness()
	switch {
	case err == nil:
		r.Brightness = &br
	case isNotReported(err):
	default:
		return Reading{}, err
	}
	return r, nil
}

func optInt(v int, ok bool) *int {
	if !ok {
		return nil
	}
	return &v
}

// isNull treats Go nil and the device's "NULL" marker as absent.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == "NULL"
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	}
	f, ok := asFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// asCode decodes an enumeration or flag code. Only whole numbers qualify;
// strings and fractional values are rejected rather than coerced.
func asCode(v any) (int, bool) {
	if _, isStr := v.(string); isStr {
		return 0, false
	}
	return asInt(v)
}
