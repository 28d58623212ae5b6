package fluentdforward

import (
	"fmt"
	"net"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/base/bconfig"
	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/relex/gotils/logger"
)

// Config defines configuration for fluentd-forward output
type Config struct {
	bconfig.Header `yaml:",inline"`
	Tag            string                      `yaml:"tag"`
	MessageMode    forwardprotocol.MessageMode `yaml:"messageMode"`
	Serialization  SerializationConfig         `yaml:"serialization"`
	Upstream       UpstreamConfig              `yaml:"upstream"`
}

// SerializationConfig defines the serialization section in config file
type SerializationConfig struct {
	HiddenPayloadFields []string `yaml:"hiddenPayloadFields"`
}

// UpstreamConfig defines the upstream section in config file
type UpstreamConfig struct {
	Address string `yaml:"address"`
	TLS     bool   `yaml:"tls"`
	Secret  string `yaml:"secret"` // shared key for handshake, no handshake if empty
}

// NewSerializer creates EntrySerializer
func (cfg *Config) NewSerializer(parentLogger logger.Logger) (base.EntrySerializer, error) {
	return NewEventSerializer(parentLogger, cfg.Serialization), nil
}

// NewTransport creates the forwarding client
func (cfg *Config) NewTransport(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.BatchTransport, error) {
	return NewClient(parentLogger, cfg.Tag, cfg.MessageMode, cfg.Upstream, metricFactory)
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	if len(cfg.Tag) == 0 {
		return fmt.Errorf(".tag is unspecified")
	}

	switch cfg.MessageMode {
	case "":
		return fmt.Errorf(".messageMode is unspecified")
	case forwardprotocol.ModeForward:
	case forwardprotocol.ModePackedForward:
	case forwardprotocol.ModeCompressedPackedForward:
	default:
		return fmt.Errorf(".messageMode: '%s' is not a valid mode", cfg.MessageMode)
	}

	if len(cfg.Upstream.Address) == 0 {
		return fmt.Errorf(".upstream.address is unspecified")
	}
	if _, _, err := net.SplitHostPort(cfg.Upstream.Address); err != nil {
		return fmt.Errorf(".upstream.address is invalid: %w", err)
	}

	if cfg.Upstream.TLS && len(cfg.Upstream.Secret) == 0 {
		return fmt.Errorf(".upstream.secret is unspecified when tls=true")
	}
	return nil
}
