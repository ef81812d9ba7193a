package heater

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const (
	methodSetPower             = "set_power"
	methodSetTargetTemperature = "set_target_temperature"
	methodSetBrightness        = "set_brightness"
	methodSetBuzzer            = "set_buzzer"
	methodSetChildLock         = "set_child_lock"
)

// CommandKind enumerates the mutating operations.
type CommandKind int

const (
	CommandPower CommandKind = iota + 1
	CommandTargetTemperature
	CommandBrightness
	CommandBuzzer
	CommandChildLock
	CommandDelayOff
)

var commandNames = map[CommandKind]string{
	CommandPower:             "power",
	CommandTargetTemperature: "target_temperature",
	CommandBrightness:        "brightness",
	CommandBuzzer:            "buzzer",
	CommandChildLock:         "child_lock",
	CommandDelayOff:          "delay_off",
}

// poweroff_time is the parameter name older integrations used for delay-off.
var commandAliases = map[string]CommandKind{
	"poweroff_time": CommandDelayOff,
	"temperature":   CommandTargetTemperature,
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "command(" + strconv.Itoa(int(k)) + ")"
}

// ParseCommandKind maps a parameter name to its command.
func ParseCommandKind(name string) (CommandKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range commandNames {
		if n == name {
			return k, nil
		}
	}
	if k, ok := commandAliases[name]; ok {
		return k, nil
	}
	return 0, invalidParam("unknown parameter %q", name)
}

// Command is a request to change one device setting. Which value field is
// read depends on Kind: On for power, buzzer and child lock; Value for
// target temperature and delay-off seconds; Brightness for brightness.
type Command struct {
	Kind       CommandKind
	On         bool
	Value      int
	Brightness Brightness
}

// ParseCommand builds a Command from a parameter name and a loosely typed
// value, as received from JSON or MQTT payloads.
func ParseCommand(name string, value any) (Command, error) {
	kind, err := ParseCommandKind(name)
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Kind: kind}
	switch kind {
	case CommandPower, CommandBuzzer, CommandChildLock:
		cmd.On, err = coerceBool(value)
	case CommandTargetTemperature, CommandDelayOff:
		cmd.Value, err = coerceInt(value)
	case CommandBrightness:
		cmd.Brightness, err = coerceBrightness(value)
	}
	if err != nil {
		return Command{}, fmt.Errorf("%s: %w", kind, err)
	}
	return cmd, nil
}

// Apply dispatches a command to its operation.
func (c *Client) Apply(ctx context.Context, cmd Command) (Ack, error) {
	switch cmd.Kind {
	case CommandPower:
		return c.SetPower(ctx, cmd.On)
	case CommandTargetTemperature:
		return c.SetTargetTemperature(ctx, cmd.Value)
	case CommandBrightness:
		return c.SetBrightness(ctx, cmd.Brightness)
	case CommandBuzzer:
		return c.SetBuzzer(ctx, cmd.On)
	case CommandChildLock:
		return c.SetChildLock(ctx, cmd.On)
	case CommandDelayOff:
		return c.SetDelayOff(ctx, cmd.Value)
	default:
		return nil, invalidParam("unknown command %s", cmd.Kind)
	}
}

func (c *Client) On(ctx context.Context) (Ack, error)  { return c.SetPower(ctx, true) }
func (c *Client) Off(ctx context.Context) (Ack, error) { return c.SetPower(ctx, false) }

func (c *Client) SetPower(ctx context.Context, on bool) (Ack, error) {
	return c.send(ctx, methodSetPower, onOff(on))
}

// SetTargetTemperature sets the target in °C within the model's range.
func (c *Client) SetTargetTemperature(ctx context.Context, celsius int) (Ack, error) {
	if err := c.Model().Check(Command{Kind: CommandTargetTemperature, Value: celsius}); err != nil {
		return nil, err
	}
	return c.send(ctx, methodSetTargetTemperature, celsius)
}

func (c *Client) SetBrightness(ctx context.Context, b Brightness) (Ack, error) {
	if err := c.Model().Check(Command{Kind: CommandBrightness, Brightness: b}); err != nil {
		return nil, err
	}
	return c.send(ctx, methodSetBrightness, int(b))
}

func (c *Client) SetBuzzer(ctx context.Context, on bool) (Ack, error) {
	return c.send(ctx, methodSetBuzzer, onOff(on))
}

func (c *Client) SetChildLock(ctx context.Context, on bool) (Ack, error) {
	return c.send(ctx, methodSetChildLock, onOff(on))
}

// SetDelayOff schedules a power-off after the given number of seconds.
// Models counting in hours receive seconds/3600 on their own wire method.
func (c *Client) SetDelayOff(ctx context.Context, seconds int) (Ack, error) {
	m := c.Model()
	if err := m.Check(Command{Kind: CommandDelayOff, Value: seconds}); err != nil {
		return nil, err
	}
	return c.send(ctx, m.DelayOff.Method, m.DelayOff.wireValue(seconds))
}

// Check validates cmd against the model's limits without contacting the
// device.
func (m ModelSpec) Check(cmd Command) error {
	switch cmd.Kind {
	case CommandPower, CommandBuzzer, CommandChildLock:
		return nil
	case CommandTargetTemperature:
		if r := m.TargetTemperature; !r.Contains(cmd.Value) {
			return invalidParam("target temperature %d outside [%d, %d]", cmd.Value, r.Min, r.Max)
		}
	case CommandBrightness:
		if !cmd.Brightness.Valid() {
			return invalidParam("brightness code %d", int(cmd.Brightness))
		}
	case CommandDelayOff:
		if d := m.DelayOff; cmd.Value < 0 || cmd.Value > d.MaxSeconds {
			return invalidParam("delay-off %ds outside [0, %d]", cmd.Value, d.MaxSeconds)
		}
	default:
		return invalidParam("unknown command %s", cmd.Kind)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method string, value any) (Ack, error) {
	res, err := c.transport.Send(ctx, method, []any{value})
	if err != nil {
		return nil, err
	}
	c.log.Debugw("heater_command_sent", "method", method, "value", value, "ack", res)
	return Ack(res), nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func coerceBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "on", "true", "1", "yes":
			return true, nil
		case "off", "false", "0", "no":
			return false, nil
		}
	default:
		if n, ok := asInt(v); ok && (n == 0 || n == 1) {
			return n == 1, nil
		}
	}
	return false, invalidParam("not a boolean: %v", v)
}

func coerceInt(v any) (int, error) {
	if _, isBool := v.(bool); !isBool {
		if f, ok := asFloat(v); ok && f == float64(int(f)) {
			return int(f), nil
		}
	}
	return 0, invalidParam("not an integer: %v", v)
}

func coerceBrightness(v any) (Brightness, error) {
	switch b := v.(type) {
	case Brightness:
		if b.Valid() {
			return b, nil
		}
	case string:
		if parsed, err := ParseBrightness(b); err == nil {
			return parsed, nil
		}
		if n, err := strconv.Atoi(strings.TrimSpace(b)); err == nil && Brightness(n).Valid() {
			return Brightness(n), nil
		}
	default:
		if n, err := coerceInt(v); err == nil && Brightness(n).Valid() {
			return Brightness(n), nil
		}
	}
	return 0, invalidParam("unknown brightness %v", v)
}
