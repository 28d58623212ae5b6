package eventhub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/defs"
	"github.com/relex/eventsink/output/shared"
	"github.com/relex/gotils/logger"
)

// contentType of batch sending, see https://learn.microsoft.com/en-us/rest/api/eventhub/send-batch-events
const contentType = "application/vnd.microsoft.servicebus.json"

// maxErrorBodyLength is the maximum length of response body to be included in error messages
const maxErrorBodyLength = 1000

type eventMessage struct {
	Body             string            `json:"Body"`
	BrokerProperties *brokerProperties `json:"BrokerProperties,omitempty"`
}

type brokerProperties struct {
	PartitionKey string `json:"PartitionKey"`
}

type client struct {
	logger     logger.Logger
	config     UpstreamConfig
	url        string
	httpClient *http.Client
	tokens     *sasTokenProvider
	metrics    shared.ClientMetrics
}

// NewClient creates a BatchTransport to send batches to Event Hubs, one HTTP request per batch
func NewClient(parentLogger logger.Logger, config UpstreamConfig, metricFactory *base.MetricFactory) (base.BatchTransport, error) {
	address := strings.TrimSuffix(config.Address, "/")
	return &client{
		logger: parentLogger.WithFields(logger.Fields{
			defs.LabelComponent: "EventHubClient",
			defs.LabelServer:    address,
		}),
		config:     config,
		url:        address + "/messages",
		httpClient: &http.Client{Timeout: config.HTTPTimeout},
		tokens:     newSASTokenProvider(address, config.KeyName, config.Key, config.TokenTTL),
		metrics:    shared.NewClientMetrics(metricFactory, "eventHub"),
	}, nil
}

func (c *client) SendBatch(ctx context.Context, batch base.Batch) error {
	body, berr := c.encodeBody(batch)
	if berr != nil {
		return base.NewSerializationError("failed to encode request for %s: %w", batch.ID, berr)
	}

	request, rerr := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if rerr != nil {
		return base.NewTransportError("failed to create request: %w", rerr)
	}
	request.Header.Set("Content-Type", contentType)
	request.Header.Set("Authorization", c.tokens.Token())
	if c.config.Gzip {
		request.Header.Set("Content-Encoding", "gzip")
	}

	c.metrics.OnForwarding()
	c.logger.Debugf("send batch %s", batch.String())
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.metrics.OnError(err)
		if ctx.Err() != nil {
			return fmt.Errorf("send %s: %w", batch.ID, ctx.Err())
		}
		return base.NewTransportError("failed to send %s: %w", batch.ID, err)
	}
	defer response.Body.Close()
	c.metrics.OnForwarded(len(body))

	if response.StatusCode >= 300 {
		c.metrics.OnError(nil)
		responseBody, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyLength)) //nolint:errcheck
		return base.NewTransportError("got status %d for %s with body %s", response.StatusCode, batch.ID, responseBody)
	}
	io.Copy(io.Discard, response.Body) //nolint:errcheck // for connection reuse
	c.metrics.OnAcknowledged(len(body))
	return nil
}

func (c *client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *client) encodeBody(batch base.Batch) ([]byte, error) {
	messages := make([]eventMessage, len(batch.Entries))
	for i, entry := range batch.Entries {
		messages[i].Body = string(entry.Data)
		if entry.PartitionKey != "" {
			messages[i].BrokerProperties = &brokerProperties{PartitionKey: entry.PartitionKey}
		}
	}
	body, err := json.Marshal(messages)
	if err != nil {
		return nil, err
	}
	if c.config.Gzip {
		return shared.GzipCompress(body)
	}
	return body, nil
}
