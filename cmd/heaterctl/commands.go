package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"miheater/internal/heater"
)

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(fixedCommand("on", "Turn the heater on", "power", "on"))
	rootCmd.AddCommand(fixedCommand("off", "Turn the heater off", "power", "off"))
	rootCmd.AddCommand(valueCommand("set-temperature <celsius>", "Set the target temperature", "target_temperature"))
	rootCmd.AddCommand(valueCommand("set-brightness <bright|dim|off>", "Set the display brightness", "brightness"))
	rootCmd.AddCommand(valueCommand("set-buzzer <on|off>", "Enable or disable the buzzer", "buzzer"))
	rootCmd.AddCommand(valueCommand("set-child-lock <on|off>", "Enable or disable the child lock", "child_lock"))
	rootCmd.AddCommand(valueCommand("delay-off <seconds>", "Power off after a delay; 0 cancels", "delay_off"))
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dev, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
		defer cancel()
		info, err := dev.Info(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd, info)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read and decode all properties",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dev, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
		defer cancel()
		st, err := dev.Status(ctx)
		if err != nil {
			return err
		}
		r, err := st.Reading()
		if err != nil {
			return err
		}
		return printJSON(cmd, r)
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry := heater.NewRegistry()
		if flags.modelsFile != "" {
			if _, err := registry.LoadModelsFile(flags.modelsFile); err != nil {
				return err
			}
		}
		specs := make([]heater.ModelSpec, 0)
		for _, id := range registry.Models() {
			spec, _ := registry.Lookup(id)
			specs = append(specs, spec)
		}
		return printJSON(cmd, specs)
	},
}

var setCmd = &cobra.Command{
	Use:   "set <name=value>...",
	Short: "Apply several parameters, e.g. set power=on target_temperature=22",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmds := make([]heater.Command, 0, len(args))
		for _, arg := range args {
			name, value, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("expected name=value, got %q", arg)
			}
			c, err := heater.ParseCommand(name, value)
			if err != nil {
				return err
			}
			cmds = append(cmds, c)
		}

		dev, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		model := dev.Model()
		for _, c := range cmds {
			if err := model.Check(c); err != nil {
				return fmt.Errorf("%s: %w", c.Kind, err)
			}
		}
		acks := make(map[string]heater.Ack, len(cmds))
		for _, c := range cmds {
			ack, err := applyOne(cmd.Context(), dev, c)
			if err != nil {
				return err
			}
			acks[c.Kind.String()] = ack
		}
		return printJSON(cmd, acks)
	},
}

// fixedCommand applies param=value with no arguments.
func fixedCommand(use, short, param, value string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, param, value)
		},
	}
}

// valueCommand applies param set to its single argument.
func valueCommand(use, short, param string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, param, args[0])
		},
	}
}

func runCommand(cmd *cobra.Command, param, value string) error {
	c, err := heater.ParseCommand(param, value)
	if err != nil {
		return err
	}
	dev, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	ack, err := applyOne(cmd.Context(), dev, c)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{"command": c.Kind.String(), "ack": ack})
}

func applyOne(ctx context.Context, dev *heater.Client, c heater.Command) (heater.Ack, error) {
	ctx, cancel := context.WithTimeout(ctx, flags.timeout)
	defer cancel()
	return dev.Apply(ctx, c)
}
