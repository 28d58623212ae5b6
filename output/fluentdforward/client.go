package fluentdforward

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/defs"
	"github.com/relex/eventsink/output/shared"
	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/relex/gotils/logger"
	"github.com/vmihailenco/msgpack/v4"
)

// client is a BatchTransport sending batches by the Forward protocol, one at a time
//
// The connection is opened at the first send and re-opened at the next send after any failure. Failed batches are not
// retried here.
type client struct {
	logger  logger.Logger
	config  UpstreamConfig
	tag     string
	encoder *messageEncoder
	metrics shared.ClientMetrics
	conn    net.Conn // TLS or TCP connection, nil if not connected
	decoder *msgpack.Decoder
}

// NewClient creates a BatchTransport of Forward protocol
func NewClient(parentLogger logger.Logger, tag string, mode forwardprotocol.MessageMode, config UpstreamConfig,
	metricFactory *base.MetricFactory) (base.BatchTransport, error) {

	encoder, err := newMessageEncoder(mode)
	if err != nil {
		return nil, err
	}
	return &client{
		logger: parentLogger.WithFields(logger.Fields{
			defs.LabelComponent: "FluentdForwardClient",
			defs.LabelServer:    config.Address,
		}),
		config:  config,
		tag:     tag,
		encoder: encoder,
		metrics: shared.NewClientMetrics(metricFactory, "fluentdForward"),
		conn:    nil,
		decoder: nil,
	}, nil
}

func (c *client) SendBatch(ctx context.Context, batch base.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message, eerr := c.encoder.Encode(tagOf(c.tag, batch), batch)
	if eerr != nil {
		return base.NewSerializationError("failed to encode message for %s: %w", batch.ID, eerr)
	}

	c.metrics.OnForwarding()
	if c.conn == nil {
		if err := c.openConnection(ctx); err != nil {
			c.metrics.OnError(err)
			if ctx.Err() != nil {
				return fmt.Errorf("connect: %w", ctx.Err())
			}
			return base.NewTransportError("failed to connect to %s: %w", c.config.Address, err)
		}
	}

	stopWatching := watchContext(ctx, c.conn)
	err := c.sendAndWaitAck(batch, message)
	stopWatching()
	if err != nil {
		c.metrics.OnError(err)
		c.closeConnection()
		if ctx.Err() != nil {
			return fmt.Errorf("send %s: %w", batch.ID, ctx.Err())
		}
		return base.NewTransportError("failed to send %s: %w", batch.ID, err)
	}
	return nil
}

func (c *client) Close() error {
	c.closeConnection()
	return nil
}

func (c *client) sendAndWaitAck(batch base.Batch, message []byte) error {
	c.logger.Debugf("forward batch %s", batch.String())
	timeout := defs.ForwarderBatchSendTimeoutBase + time.Duration(len(message)/defs.ForwarderBatchSendMinimumSpeed)*time.Second
	if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("set write timeout: %w", err)
	}
	if err := writeAll(c.conn, message); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	c.metrics.OnForwarded(len(message))

	ack := forwardprotocol.Ack{}
	if err := c.conn.SetReadDeadline(time.Now().Add(defs.ForwarderBatchAckTimeout)); err != nil {
		return fmt.Errorf("set read timeout: %w", err)
	}
	if err := c.decoder.Decode(&ack); err != nil {
		return fmt.Errorf("read ACK: %w", err)
	}
	if ack.Ack != batch.ID {
		return fmt.Errorf("received unknown ACK '%s'", ack.Ack)
	}
	c.logger.Debugf("received ACK %s", ack.Ack)
	c.metrics.OnAcknowledged(len(message))
	return nil
}

func (c *client) openConnection(ctx context.Context) error {
	dialer := &net.Dialer{Timeout: defs.ForwarderConnectionTimeout}
	var conn net.Conn
	var err error
	if c.config.TLS {
		c.logger.Infof("connecting in TLS mode")
		tlsDialer := &tls.Dialer{
			NetDialer: dialer,
			Config:    &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
		conn, err = tlsDialer.DialContext(ctx, "tcp", c.config.Address)
	} else {
		c.logger.Infof("connecting in TCP mode")
		conn, err = dialer.DialContext(ctx, "tcp", c.config.Address)
	}
	if err != nil {
		return err
	}
	c.metrics.OnOpening()

	if len(c.config.Secret) > 0 {
		c.logger.Infof("handshaking with %s", conn.RemoteAddr())
		success, reason, herr := forwardprotocol.DoClientHandshake(conn, c.config.Secret, defs.ForwarderHandshakeTimeout)
		if herr != nil {
			conn.Close()
			return fmt.Errorf("handshake failed due to network error: %w", herr)
		} else if !success {
			conn.Close()
			return fmt.Errorf("handshake failed due to misconfiguration: %s", reason)
		}
	}
	c.conn = conn
	c.decoder = msgpack.NewDecoder(conn)
	return nil
}

func (c *client) closeConnection() {
	if c.conn == nil {
		return
	}
	c.logger.Infof("close connection")
	c.conn.Close() // ignore error, the connection may be broken already
	c.conn = nil
	c.decoder = nil
}

// watchContext interrupts IO on conn when ctx is done, until the returned stop function is called
func watchContext(ctx context.Context, conn net.Conn) func() {
	stop := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			conn.SetDeadline(time.Now()) //nolint:errcheck
		case <-stop:
		}
	}()
	return func() {
		close(stop)
		<-exited
	}
}

func writeAll(conn io.Writer, data []byte) error {
	for {
		n, err := conn.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
		if len(data) == 0 {
			return nil
		}
	}
}
