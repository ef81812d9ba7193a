package models

import (
	"time"

	"miheater/internal/heater"
)

// HeaterState is the last snapshot read from the device, as persisted and
// served over the API. Optional fields are nil when the model does not
// report them.
type HeaterState struct {
	ID                int            `json:"id"`
	Model             string         `json:"model"`
	Power             string         `json:"power"`
	IsOn              bool           `json:"is_on"`
	Temperature       *float64       `json:"temperature,omitempty"`
	TargetTemperature *int           `json:"target_temperature,omitempty"`
	Humidity          *int           `json:"humidity,omitempty"`
	Brightness        string         `json:"brightness,omitempty"`
	Buzzer            bool           `json:"buzzer"`
	ChildLock         bool           `json:"child_lock"`
	UseTime           *int           `json:"use_time,omitempty"`
	DelayOffCountdown *int           `json:"delay_off_countdown,omitempty"`
	Raw               map[string]any `json:"raw,omitempty"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// StateFromStatus decodes a snapshot into its persisted form.
func StateFromStatus(st *heater.Status, at time.Time) (HeaterState, error) {
	r, err := st.Reading()
	if err != nil {
		return HeaterState{}, err
	}
	s := HeaterState{
		ID:                1,
		Model:             r.Model,
		Power:             r.Power,
		IsOn:              r.IsOn,
		Temperature:       r.Temperature,
		TargetTemperature: r.TargetTemperature,
		Humidity:          r.Humidity,
		Buzzer:            r.Buzzer,
		ChildLock:         r.ChildLock,
		UseTime:           r.UseTime,
		DelayOffCountdown: r.DelayOffCountdown,
		Raw:               st.Data(),
		UpdatedAt:         at.UTC(),
	}
	if r.Brightness != nil {
		s.Brightness = r.Brightness.String()
	}
	return s, nil
}
