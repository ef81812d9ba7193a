package models

import "time"

// Event types written to the heater log.
const (
	EventPower             = "POWER"
	EventTargetTemperature = "TARGET_TEMPERATURE"
	EventBrightness        = "BRIGHTNESS"
	EventBuzzer            = "BUZZER"
	EventChildLock         = "CHILD_LOCK"
	EventDelayOff          = "DELAY_OFF"
	EventModel             = "MODEL"
	EventError             = "ERROR"
)

// HeaterEvent is a single log entry.
type HeaterEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
