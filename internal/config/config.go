package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the daemon configuration, read from configs/config.yml and
// overridable through MIHEATER_* environment variables
// (e.g. MIHEATER_DEVICE_HOST).
type Config struct {
	Port     string         `mapstructure:"port"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Device   DeviceConfig   `mapstructure:"device"`
	Poll     PollConfig     `mapstructure:"poll"`
	Auth     AuthConfig     `mapstructure:"auth"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	InfluxDB InfluxDBConfig `mapstructure:"influxdb"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// DeviceConfig addresses the heater. With Simulate set, an in-process
// simulated device is used instead of the gateway.
type DeviceConfig struct {
	Name       string        `mapstructure:"name"`
	BridgeURL  string        `mapstructure:"bridge_url"`
	Host       string        `mapstructure:"host"`
	Token      string        `mapstructure:"token"`
	Model      string        `mapstructure:"model"`
	ModelsFile string        `mapstructure:"models_file"`
	Simulate   bool          `mapstructure:"simulate"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// AuthConfig sets up JWT signing. AdminUser and AdminPassword, when both
// set, seed the first account on an empty database.
type AuthConfig struct {
	SigningKey    string        `mapstructure:"signing_key"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	AdminUser     string        `mapstructure:"admin_user"`
	AdminPassword string        `mapstructure:"admin_password"`
}

type HTTPConfig struct {
	RateLimitPerSec float64       `mapstructure:"rate_limit_per_sec"`
	RateBurst       int           `mapstructure:"rate_burst"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

type MQTTConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Broker          string `mapstructure:"broker"`
	ClientID        string `mapstructure:"client_id"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	TopicPrefix     string `mapstructure:"topic_prefix"`
	DiscoveryPrefix string `mapstructure:"discovery_prefix"`
}

type InfluxDBConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
}

const envPrefix = "MIHEATER"

// Every key gets a default so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "miheater.db")
	v.SetDefault("device.name", "miheater")
	v.SetDefault("device.bridge_url", "")
	v.SetDefault("device.host", "")
	v.SetDefault("device.token", "")
	v.SetDefault("device.model", "")
	v.SetDefault("device.models_file", "")
	v.SetDefault("device.simulate", false)
	v.SetDefault("device.timeout", 5*time.Second)
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("influxdb.enabled", false)
	v.SetDefault("influxdb.url", "")
	v.SetDefault("influxdb.token", "")
	v.SetDefault("influxdb.org", "")
	v.SetDefault("poll.interval", 30*time.Second)
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.admin_user", "")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("http.rate_limit_per_sec", 5.0)
	v.SetDefault("http.rate_burst", 10)
	v.SetDefault("http.cache_ttl", 5*time.Second)
	v.SetDefault("mqtt.client_id", "miheater")
	v.SetDefault("mqtt.topic_prefix", "miheater")
	v.SetDefault("mqtt.discovery_prefix", "homeassistant")
	v.SetDefault("influxdb.bucket", "miheater")
}

// Load reads config.yml from the given directories. A missing file is not an
// error: defaults and environment variables still apply.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if !c.Device.Simulate && c.Device.BridgeURL == "" {
		return errors.New("device.bridge_url is required unless device.simulate is set")
	}
	if c.Auth.SigningKey == "" {
		return errors.New("auth.signing_key is required")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required when mqtt is enabled")
	}
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Org == "") {
		return errors.New("influxdb.url and influxdb.org are required when influxdb is enabled")
	}
	return nil
}
