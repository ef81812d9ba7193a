package heater

import (
	"fmt"
	"strings"
)

// Brightness is the display brightness. Values are the device's own codes.
type Brightness int

const (
	Bright Brightness = 0
	Dim    Brightness = 1
	Off    Brightness = 2
)

var brightnessNames = map[Brightness]string{
	Bright: "bright",
	Dim:    "dim",
	Off:    "off",
}

// Valid reports whether b is one of the known codes.
func (b Brightness) Valid() bool {
	_, ok := brightnessNames[b]
	return ok
}

func (b Brightness) String() string {
	if name, ok := brightnessNames[b]; ok {
		return name
	}
	return fmt.Sprintf("brightness(%d)", int(b))
}

// ParseBrightness accepts a case-insensitive name ("bright", "Dim", "OFF").
func ParseBrightness(s string) (Brightness, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for b, name := range brightnessNames {
		if name == want {
			return b, nil
		}
	}
	return 0, invalidParam("unknown brightness %q", s)
}

// BrightnessFromCode maps a wire code to Brightness, failing outside the domain.
func BrightnessFromCode(code int) (Brightness, error) {
	b := Brightness(code)
	if !b.Valid() {
		return 0, fmt.Errorf("%w: brightness code %d", ErrInvalidValue, code)
	}
	return b, nil
}

func (b Brightness) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: brightness code %d", ErrInvalidValue, int(b))
	}
	return []byte(b.String()), nil
}

func (b *Brightness) UnmarshalText(text []byte) error {
	v, err := ParseBrightness(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
