package mqtt

import (
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultOpTimeout      = 5 * time.Second
	reconnectInterval     = 5 * time.Second
	disconnectQuiesceMs   = 250

	qosAtLeastOnce byte = 1
)

var (
	ErrConnectionFailed = errors.New("mqtt: connection failed")
	ErrTimeout          = errors.New("mqtt: operation timed out")
)

// broker is the subset of an MQTT session the publisher needs.
type broker interface {
	Publish(topic string, retained bool, payload []byte) error
	Subscribe(topic string, handler func(topic string, payload []byte)) error
	Disconnect()
}

type pahoBroker struct {
	client pahomqtt.Client
}

func (b *pahoBroker) Publish(topic string, retained bool, payload []byte) error {
	return wait(b.client.Publish(topic, qosAtLeastOnce, retained, payload))
}

func (b *pahoBroker) Subscribe(topic string, handler func(string, []byte)) error {
	return wait(b.client.Subscribe(topic, qosAtLeastOnce, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	}))
}

func (b *pahoBroker) Disconnect() {
	b.client.Disconnect(disconnectQuiesceMs)
}

func wait(t pahomqtt.Token) error {
	if !t.WaitTimeout(defaultOpTimeout) {
		return ErrTimeout
	}
	return t.Error()
}

// dial connects to the broker. onConnect runs after every (re)connect,
// which is where retained announcements and subscriptions are restored.
func dial(cfg Config, onConnect func(), onLost func(error)) (*pahoBroker, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(reconnectInterval).
		SetCleanSession(true).
		SetWill(cfg.availabilityTopic(), payloadOffline, qosAtLeastOnce, true).
		SetOnConnectHandler(func(_ pahomqtt.Client) { onConnect() }).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { onLost(err) })

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return &pahoBroker{client: client}, nil
}
