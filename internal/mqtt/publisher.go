// Package mqtt mirrors the heater onto an MQTT broker: state snapshots are
// published as retained JSON, Home Assistant discovery is announced on
// connect, and writes to the set topics are applied to the device.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"miheater/internal/heater"
	"miheater/internal/logger"
	"miheater/internal/models"
)

const (
	payloadOnline  = "online"
	payloadOffline = "offline"

	commandTimeout = 10 * time.Second
)

// Config addresses the broker and names the topics of one heater.
type Config struct {
	Broker          string
	ClientID        string
	Username        string
	Password        string
	TopicPrefix     string
	DiscoveryPrefix string
	Device          string
}

func (c Config) baseTopic() string {
	return strings.TrimSuffix(c.TopicPrefix, "/") + "/" + c.Device
}

func (c Config) stateTopic() string        { return c.baseTopic() + "/state" }
func (c Config) availabilityTopic() string { return c.baseTopic() + "/availability" }
func (c Config) setTopic(param string) string {
	return c.baseTopic() + "/set/" + param
}

// Controller applies commands received on the set topics.
type Controller interface {
	Apply(ctx context.Context, cmd heater.Command) (heater.Ack, error)
	Model() heater.ModelSpec
}

// Publisher is a state sink backed by an MQTT session.
type Publisher struct {
	cfg Config
	log *logger.Logger

	mu  sync.Mutex
	b   broker
	ctl Controller
}

// Connect dials the broker and returns a publisher announcing the heater as
// online. Commands are not accepted until HandleCommands is called.
func Connect(cfg Config, log *logger.Logger) (*Publisher, error) {
	p := newPublisher(cfg, log)
	b, err := dial(p.cfg, p.onConnect, p.onConnectionLost)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.b = b
	p.mu.Unlock()
	p.onConnect()
	return p, nil
}

func newPublisher(cfg Config, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "miheater"
	}
	if cfg.DiscoveryPrefix == "" {
		cfg.DiscoveryPrefix = "homeassistant"
	}
	if cfg.Device == "" {
		cfg.Device = "miheater"
	}
	cfg.Device = topicName(cfg.Device)
	return &Publisher{cfg: cfg, log: log}
}

func (p *Publisher) Name() string { return "mqtt" }

// Publish sends the snapshot as retained JSON on the state topic.
func (p *Publisher) Publish(_ context.Context, s models.HeaterState) error {
	b := p.broker()
	if b == nil {
		return ErrConnectionFailed
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := b.Publish(p.cfg.stateTopic(), true, payload); err != nil {
		return fmt.Errorf("publish %s: %w", p.cfg.stateTopic(), err)
	}
	return nil
}

// HandleCommands subscribes to the set topics and applies every accepted
// write through ctl. Discovery is re-announced with ctl's model limits.
func (p *Publisher) HandleCommands(ctl Controller) error {
	p.mu.Lock()
	p.ctl = ctl
	b := p.b
	p.mu.Unlock()
	if b == nil {
		return ErrConnectionFailed
	}
	p.announce(b, ctl)
	return p.subscribe(b)
}

// Close marks the heater offline and disconnects.
func (p *Publisher) Close() {
	b := p.broker()
	if b == nil {
		return
	}
	if err := b.Publish(p.cfg.availabilityTopic(), true, []byte(payloadOffline)); err != nil {
		p.log.Warnw("mqtt_availability_failed", "error", err)
	}
	b.Disconnect()
	p.log.Infow("mqtt_disconnected", "broker", p.cfg.Broker)
}

func (p *Publisher) broker() broker {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.b
}

func (p *Publisher) onConnect() {
	p.mu.Lock()
	b, ctl := p.b, p.ctl
	p.mu.Unlock()
	if b == nil {
		// initial connect; Connect announces once the session is stored
		return
	}
	p.log.Infow("mqtt_connected", "broker", p.cfg.Broker, "topic", p.cfg.baseTopic())
	p.announce(b, ctl)
	if ctl != nil {
		if err := p.subscribe(b); err != nil {
			p.log.Errorw("mqtt_subscribe_failed", "error", err)
		}
	}
}

func (p *Publisher) onConnectionLost(err error) {
	p.log.Warnw("mqtt_connection_lost", "error", err)
}

func (p *Publisher) announce(b broker, ctl Controller) {
	if err := b.Publish(p.cfg.availabilityTopic(), true, []byte(payloadOnline)); err != nil {
		p.log.Warnw("mqtt_availability_failed", "error", err)
	}
	model := heater.ModelSpec{}
	if ctl != nil {
		model = ctl.Model()
	}
	msg := buildDiscovery(p.cfg, model)
	if err := b.Publish(msg.Topic, true, msg.Payload); err != nil {
		p.log.Warnw("mqtt_discovery_failed", "topic", msg.Topic, "error", err)
	}
}

func (p *Publisher) subscribe(b broker) error {
	topic := p.cfg.setTopic("+")
	if err := b.Subscribe(topic, p.handleSet); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

// handleSet applies one write to {prefix}/{device}/set/{param}.
func (p *Publisher) handleSet(topic string, payload []byte) {
	p.mu.Lock()
	ctl := p.ctl
	p.mu.Unlock()
	if ctl == nil {
		return
	}

	param := topic[strings.LastIndex(topic, "/")+1:]
	cmd, err := parseSet(param, payload)
	if err != nil {
		p.log.Warnw("mqtt_command_rejected", "param", param, "payload", string(payload), "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	ack, err := ctl.Apply(ctx, cmd)
	if err != nil {
		p.log.Errorw("mqtt_command_failed", "command", cmd.Kind.String(), "error", err)
		return
	}
	p.log.Infow("mqtt_command_applied", "command", cmd.Kind.String(), "ack", ack)
}

// parseSet accepts any command parameter name plus "mode", which Home
// Assistant's climate entity sends as "heat" or "off".
func parseSet(param string, payload []byte) (heater.Command, error) {
	value := strings.TrimSpace(string(payload))
	if param == "mode" {
		switch strings.ToLower(value) {
		case "heat":
			return heater.Command{Kind: heater.CommandPower, On: true}, nil
		case "off":
			return heater.Command{Kind: heater.CommandPower, On: false}, nil
		}
		return heater.Command{}, fmt.Errorf("unsupported mode %q: %w", value, heater.ErrInvalidParameter)
	}
	return heater.ParseCommand(param, value)
}

// topicName lowercases name and replaces characters unsafe in topics.
func topicName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, strings.ToLower(strings.TrimSpace(name)))
}
