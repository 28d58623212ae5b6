// Package eventhub provides output to Azure Event Hubs by the REST API of batch sending
package eventhub

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/base/bconfig"
	"github.com/relex/eventsink/defs"
	"github.com/relex/eventsink/output/shared"
	"github.com/relex/gotils/logger"
)

// defaultKeyEnv is the environment variable to read the shared access key from, if not specified in config
const defaultKeyEnv = "EVENTHUB_SAS_KEY"

// defaultTokenTTL is the default lifetime of generated SAS tokens
const defaultTokenTTL = 1 * time.Hour

// Config defines configuration for Event Hubs output
type Config struct {
	bconfig.Header `yaml:",inline"`
	Serialization  shared.JSONSerializationConfig `yaml:"serialization"`
	Upstream       UpstreamConfig                 `yaml:"upstream"`
}

// UpstreamConfig defines the upstream section in config file
type UpstreamConfig struct {
	Address     string        `yaml:"address"` // URL of event hub, e.g. https://my-ns.servicebus.windows.net/my-hub
	KeyName     string        `yaml:"keyName"` // name of shared access policy
	Key         string        `yaml:"key"`     // shared access key, or read from $EVENTHUB_SAS_KEY if empty
	Gzip        bool          `yaml:"gzip"`    // compress request body
	HTTPTimeout time.Duration `yaml:"httpTimeout"`
	TokenTTL    time.Duration `yaml:"tokenTTL"`
}

// NewSerializer creates a JSON EntrySerializer
func (cfg *Config) NewSerializer(parentLogger logger.Logger) (base.EntrySerializer, error) {
	return shared.NewJSONSerializer(parentLogger, cfg.Serialization), nil
}

// NewTransport creates the HTTP client
func (cfg *Config) NewTransport(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.BatchTransport, error) {
	upstream := cfg.Upstream
	if upstream.Key == "" {
		upstream.Key = os.Getenv(defaultKeyEnv)
	}
	if upstream.HTTPTimeout == 0 {
		upstream.HTTPTimeout = defs.HTTPRequestTimeout
	}
	if upstream.TokenTTL == 0 {
		upstream.TokenTTL = defaultTokenTTL
	}
	return NewClient(parentLogger, upstream, metricFactory)
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	if len(cfg.Upstream.Address) == 0 {
		return fmt.Errorf(".upstream.address is unspecified")
	}
	u, err := url.Parse(cfg.Upstream.Address)
	if err != nil {
		return fmt.Errorf(".upstream.address is invalid: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf(".upstream.address must be a http(s) URL: %s", cfg.Upstream.Address)
	}
	if len(cfg.Upstream.KeyName) == 0 {
		return fmt.Errorf(".upstream.keyName is unspecified")
	}
	if len(cfg.Upstream.Key) == 0 && len(os.Getenv(defaultKeyEnv)) == 0 {
		return fmt.Errorf(".upstream.key is unspecified and $%s is empty", defaultKeyEnv)
	}
	if cfg.Upstream.HTTPTimeout < 0 {
		return fmt.Errorf(".upstream.httpTimeout cannot be negative")
	}
	if cfg.Upstream.TokenTTL < 0 {
		return fmt.Errorf(".upstream.tokenTTL cannot be negative")
	}
	return nil
}
