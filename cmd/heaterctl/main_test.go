package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miheater/internal/heater"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--simulate"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStatus(t *testing.T) {
	out, err := run(t, "status")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, heater.ModelZA1, got["model"])
	assert.Contains(t, got, "power")
}

func TestInfo(t *testing.T) {
	out, err := run(t, "info")
	require.NoError(t, err)
	assert.Contains(t, out, heater.ModelZA1)
}

func TestValueCommands(t *testing.T) {
	tests := []struct {
		args    []string
		wantErr bool
	}{
		{[]string{"on"}, false},
		{[]string{"off"}, false},
		{[]string{"set-temperature", "22"}, false},
		{[]string{"set-temperature", "99"}, true},
		{[]string{"set-temperature", "warm"}, true},
		{[]string{"set-brightness", "dim"}, false},
		{[]string{"set-brightness", "blinding"}, true},
		{[]string{"set-buzzer", "off"}, false},
		{[]string{"set-child-lock", "on"}, false},
		{[]string{"delay-off", "3600"}, false},
		{[]string{"delay-off", "40000"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.args[0]+" "+tt.args[len(tt.args)-1], func(t *testing.T) {
			out, err := run(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, `"ack"`)
		})
	}
}

func TestSet(t *testing.T) {
	out, err := run(t, "set", "power=on", "target_temperature=21")
	require.NoError(t, err)

	var acks map[string][]any
	require.NoError(t, json.Unmarshal([]byte(out), &acks))
	assert.Equal(t, []any{"ok"}, acks["power"])
	assert.Equal(t, []any{"ok"}, acks["target_temperature"])
}

func TestSetRejectsBeforeApplying(t *testing.T) {
	_, err := run(t, "set", "power=on", "target_temperature=5")
	assert.ErrorIs(t, err, heater.ErrInvalidParameter)

	_, err = run(t, "set", "power")
	assert.Error(t, err)

	_, err = run(t, "set", "fan=1")
	assert.ErrorIs(t, err, heater.ErrInvalidParameter)
}

func TestModels(t *testing.T) {
	out, err := run(t, "models")
	require.NoError(t, err)
	assert.Contains(t, out, heater.ModelZA1)
	assert.Contains(t, out, heater.ModelMA1)
}

func TestSimulateFileDefinedModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - id: acme.heater.narrow
    extends: zhimi.heater.za1
    target_temperature: {min: 18, max: 24}
`), 0o600))
	t.Cleanup(func() {
		flags.model = ""
		flags.modelsFile = ""
	})

	out, err := run(t, "--models-file", path, "--model", "acme.heater.narrow", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "acme.heater.narrow")
	assert.NotContains(t, out, heater.ModelZA1)

	_, err = run(t, "--models-file", path, "--model", "acme.heater.narrow", "set-temperature", "28")
	assert.Error(t, err)
}
