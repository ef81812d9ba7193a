package heater

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatus_LengthMismatch(t *testing.T) {
	st, err := NewStatus([]string{"power", "temperature"}, []any{"on"})
	assert.Nil(t, st)
	require.ErrorIs(t, err, ErrProtocolMismatch)

	var me *MismatchError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 2, me.Requested)
	assert.Equal(t, 1, me.Received)
}

func TestStatus_Buzzer(t *testing.T) {
	cases := []struct {
		wire any
		want bool
	}{
		{"on", true},
		{1, true},
		{2, true},
		{float64(2), true},
		{json.Number("1"), true},
		{1.5, false},
		{"1", false},
		{"off", false},
		{0, false},
		{nil, false},
	}
	for _, tc := range cases {
		st, err := NewStatus([]string{"buzzer"}, []any{tc.wire})
		require.NoError(t, err)
		assert.Equal(t, tc.want, st.Buzzer(), "buzzer wire value %v", tc.wire)
	}
}

func TestStatus_Brightness(t *testing.T) {
	st, err := NewStatus([]string{"brightness"}, []any{1})
	require.NoError(t, err)
	b, err := st.Brightness()
	require.NoError(t, err)
	assert.Equal(t, Dim, b)

	st, err = NewStatus([]string{"brightness"}, []any{float64(2)})
	require.NoError(t, err)
	b, err = st.Brightness()
	require.NoError(t, err)
	assert.Equal(t, Off, b)

	for _, wire := range []any{9, 1.6, "1", "dim", -0.5} {
		st, err = NewStatus([]string{"brightness"}, []any{wire})
		require.NoError(t, err)
		_, err = st.Brightness()
		require.ErrorIs(t, err, ErrInvalidValue, "brightness wire value %v", wire)
	}

	st, err = NewStatus([]string{"power"}, []any{"on"})
	require.NoError(t, err)
	_, err = st.Brightness()
	require.ErrorIs(t, err, ErrNotReported)
}

func TestStatus_IntegerReadersRejectFractions(t *testing.T) {
	st, err := NewStatus(
		[]string{"target_temperature", "use_time", "relative_humidity"},
		[]any{"24.4", 120.5, float64(40)},
	)
	require.NoError(t, err)

	_, ok := st.TargetTemperature()
	assert.False(t, ok)
	_, ok = st.UseTime()
	assert.False(t, ok)
	hum, ok := st.Humidity()
	require.True(t, ok)
	assert.Equal(t, 40, hum)

	st, err = NewStatus([]string{"target_temperature"}, []any{"24"})
	require.NoError(t, err)
	target, ok := st.TargetTemperature()
	require.True(t, ok)
	assert.Equal(t, 24, target)
}

func TestStatus_ChildLockAndPower(t *testing.T) {
	st, err := NewStatus([]string{"power", "child_lock"}, []any{"on", "on"})
	require.NoError(t, err)
	assert.True(t, st.IsOn())
	assert.True(t, st.ChildLock())

	st, err = NewStatus([]string{"power", "child_lock"}, []any{"off", "off"})
	require.NoError(t, err)
	assert.False(t, st.IsOn())
	assert.False(t, st.ChildLock())
}

func TestStatus_MissingOptionalFields(t *testing.T) {
	st, err := NewStatus(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "", st.Power())
	assert.False(t, st.IsOn())
	_, ok := st.Temperature()
	assert.False(t, ok)
	_, ok = st.TargetTemperature()
	assert.False(t, ok)
	_, ok = st.Humidity()
	assert.False(t, ok)
	_, ok = st.UseTime()
	assert.False(t, ok)
	_, ok = st.DelayOffCountdown()
	assert.False(t, ok)
	assert.False(t, st.Buzzer())
	assert.False(t, st.ChildLock())

	r, err := st.Reading()
	require.NoError(t, err)
	assert.Nil(t, r.Brightness)
	assert.Nil(t, r.Humidity)
}

func TestStatus_NullMarkersAreAbsent(t *testing.T) {
	st, err := NewStatus([]string{"relative_humidity", "temperature"}, []any{"NULL", nil})
	require.NoError(t, err)
	_, ok := st.Humidity()
	assert.False(t, ok)
	_, ok = st.Temperature()
	assert.False(t, ok)
	_, ok = st.Raw("relative_humidity")
	assert.False(t, ok)
}

func TestStatus_DelayOffCountdownAlternates(t *testing.T) {
	st, err := NewStatus([]string{"poweroff_time"}, []any{600})
	require.NoError(t, err)
	v, ok := st.DelayOffCountdown()
	require.True(t, ok)
	assert.Equal(t, 600, v)

	st, err = NewStatus([]string{"poweroff_time", "poweroff_level"}, []any{nil, 3})
	require.NoError(t, err)
	v, ok = st.DelayOffCountdown()
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestStatus_JSONNumbers(t *testing.T) {
	var values []any
	require.NoError(t, json.Unmarshal([]byte(`["on", 24, 1, 22.3, 43117]`), &values))
	st, err := NewStatus([]string{"power", "target_temperature", "brightness", "temperature", "use_time"}, values)
	require.NoError(t, err)

	r, err := st.Reading()
	require.NoError(t, err)
	require.NotNil(t, r.TargetTemperature)
	assert.Equal(t, 24, *r.TargetTemperature)
	require.NotNil(t, r.Brightness)
	assert.Equal(t, Dim, *r.Brightness)
	require.NotNil(t, r.Temperature)
	assert.InDelta(t, 22.3, *r.Temperature, 0.0001)
	require.NotNil(t, r.UseTime)
	assert.Equal(t, 43117, *r.UseTime)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"brightness":"dim"`)
}

func TestStatus_ReadingFailsOnBadBrightness(t *testing.T) {
	st, err := NewStatus([]string{"brightness"}, []any{5})
	require.NoError(t, err)
	_, err = st.Reading()
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestStatus_DataIsACopy(t *testing.T) {
	st, err := NewStatus([]string{"power"}, []any{"on"})
	require.NoError(t, err)
	d := st.Data()
	d["power"] = "off"
	assert.True(t, st.IsOn())
}

func TestStatus_String(t *testing.T) {
	st, err := NewStatus([]string{"power", "brightness", "buzzer"}, []any{"on", 0, "on"})
	require.NoError(t, err)
	s := st.String()
	assert.Contains(t, s, "power=on")
	assert.Contains(t, s, "brightness=bright")
	assert.Contains(t, s, "humidity=None")
}

func TestParseBrightness(t *testing.T) {
	for in, want := range map[string]Brightness{"bright": Bright, "Dim": Dim, " OFF ": Off} {
		got, err := ParseBrightness(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseBrightness("blinding")
	assert.ErrorIs(t, err, ErrInvalidParameter)

	var b Brightness
	require.NoError(t, json.Unmarshal([]byte(`"off"`), &b))
	assert.Equal(t, Off, b)
}
