package mqtt

import (
	"encoding/json"

	"miheater/internal/heater"
)

// discoveryMsg is a retained Home Assistant discovery announcement.
type discoveryMsg struct {
	Topic   string
	Payload []byte
}

type haDevice struct {
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name"`
}

// haClimate is the discovery payload of an MQTT climate entity.
type haClimate struct {
	Name                       string   `json:"name"`
	UniqueID                   string   `json:"unique_id"`
	AvailabilityTopic          string   `json:"availability_topic"`
	Modes                      []string `json:"modes"`
	ModeCommandTopic           string   `json:"mode_command_topic"`
	ModeStateTopic             string   `json:"mode_state_topic"`
	ModeStateTemplate          string   `json:"mode_state_template"`
	TemperatureCommandTopic    string   `json:"temperature_command_topic"`
	TemperatureStateTopic      string   `json:"temperature_state_topic"`
	TemperatureStateTemplate   string   `json:"temperature_state_template"`
	CurrentTemperatureTopic    string   `json:"current_temperature_topic"`
	CurrentTemperatureTemplate string   `json:"current_temperature_template"`
	MinTemp                    int      `json:"min_temp,omitempty"`
	MaxTemp                    int      `json:"max_temp,omitempty"`
	TempStep                   float64  `json:"temp_step"`
	TemperatureUnit            string   `json:"temperature_unit"`
	Device                     haDevice `json:"device"`
}

func buildDiscovery(cfg Config, model heater.ModelSpec) discoveryMsg {
	state := cfg.stateTopic()
	payload := haClimate{
		Name:                       cfg.Device,
		UniqueID:                   "miheater_" + cfg.Device,
		AvailabilityTopic:          cfg.availabilityTopic(),
		Modes:                      []string{"off", "heat"},
		ModeCommandTopic:           cfg.setTopic("mode"),
		ModeStateTopic:             state,
		ModeStateTemplate:          "{{ 'heat' if value_json.is_on else 'off' }}",
		TemperatureCommandTopic:    cfg.setTopic("target_temperature"),
		TemperatureStateTopic:      state,
		TemperatureStateTemplate:   "{{ value_json.target_temperature }}",
		CurrentTemperatureTopic:    state,
		CurrentTemperatureTemplate: "{{ value_json.temperature }}",
		MinTemp:                    model.TargetTemperature.Min,
		MaxTemp:                    model.TargetTemperature.Max,
		TempStep:                   1,
		TemperatureUnit:            "C",
		Device: haDevice{
			Identifiers:  []string{"miheater_" + cfg.Device},
			Manufacturer: "Xiaomi",
			Model:        model.ID,
			Name:         cfg.Device,
		},
	}
	// haClimate holds only strings, ints and slices
	data, _ := json.Marshal(payload)
	return discoveryMsg{
		Topic:   cfg.DiscoveryPrefix + "/climate/" + cfg.Device + "/config",
		Payload: data,
	}
}
