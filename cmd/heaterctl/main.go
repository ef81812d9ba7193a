// Command heaterctl talks to a heater directly, without the daemon.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"miheater/internal/heater"
	"miheater/internal/logger"
	"miheater/internal/transport"
)

var flags struct {
	bridgeURL  string
	host       string
	token      string
	model      string
	modelsFile string
	simulate   bool
	timeout    time.Duration
	verbose    bool
}

var rootCmd = &cobra.Command{
	Use:           "heaterctl",
	Short:         "Control a Xiaomi Mi smart space heater",
	Long:          "Read status from and send commands to a Mi heater through a local gateway, or to an in-process simulator with --simulate.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.bridgeURL, "bridge-url", os.Getenv("MIHEATER_DEVICE_BRIDGE_URL"), "gateway base URL")
	pf.StringVar(&flags.host, "host", os.Getenv("MIHEATER_DEVICE_HOST"), "heater IP address")
	pf.StringVar(&flags.token, "token", os.Getenv("MIHEATER_DEVICE_TOKEN"), "heater token (32 hex characters)")
	pf.StringVar(&flags.model, "model", "", "model identifier; queried from the device when empty")
	pf.StringVar(&flags.modelsFile, "models-file", "", "YAML file with additional model definitions")
	pf.BoolVar(&flags.simulate, "simulate", false, "talk to a simulated heater")
	pf.DurationVar(&flags.timeout, "timeout", 5*time.Second, "per-command timeout")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log protocol traffic")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openClient builds a client from the persistent flags and resolves the
// model unless --model was given.
func openClient(ctx context.Context) (*heater.Client, error) {
	log := logger.Nop()
	if flags.verbose {
		log = logger.New(logger.DebugLevel)
	}

	registry := heater.NewRegistry()
	if flags.modelsFile != "" {
		if _, err := registry.LoadModelsFile(flags.modelsFile); err != nil {
			return nil, err
		}
	}

	var t heater.Transport
	if flags.simulate {
		model := flags.model
		if model == "" {
			model = heater.DefaultModel
		}
		t = transport.NewSimulator(registry.Resolve(model), time.Now())
	} else {
		if flags.bridgeURL == "" {
			return nil, fmt.Errorf("--bridge-url is required unless --simulate is set")
		}
		t = transport.NewBridge(transport.BridgeConfig{
			URL:     flags.bridgeURL,
			Host:    flags.host,
			Token:   flags.token,
			Timeout: flags.timeout,
		})
	}

	dev := heater.New(transport.Serialize(t, log),
		heater.WithRegistry(registry),
		heater.WithModel(flags.model),
		heater.WithLogger(log),
	)
	if _, err := dev.ResolveModel(ctx); err != nil {
		return nil, fmt.Errorf("resolve model: %w", err)
	}
	return dev, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
