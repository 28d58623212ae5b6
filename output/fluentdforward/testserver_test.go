package fluentdforward

import (
	"bytes"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/relex/fluentlib/dump"
	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v4"
)

// testServer is a minimal Forward server which records messages and replies ACKs
type testServer struct {
	listener net.Listener
	mutex    sync.Mutex
	messages []forwardprotocol.Message
	conns    int
	mode     testServerMode
}

type testServerMode int

const (
	serverAck testServerMode = iota
	serverWrongAck
	serverNoAck
	serverDropFirst // close the first connection without ACK
)

func launchTestServer(t *testing.T, mode testServerMode) *testServer {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	server := &testServer{listener: listener, mode: mode}
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			server.mutex.Lock()
			server.conns++
			nth := server.conns
			server.mutex.Unlock()
			go server.serve(conn, nth)
		}
	}()
	t.Cleanup(func() { listener.Close() })
	return server
}

func (server *testServer) serve(conn net.Conn, nth int) {
	defer conn.Close()
	decoder := msgpack.NewDecoder(conn)
	encoder := msgpack.NewEncoder(conn)
	for {
		var message forwardprotocol.Message
		if err := decoder.Decode(&message); err != nil {
			return
		}
		server.mutex.Lock()
		server.messages = append(server.messages, message)
		server.mutex.Unlock()

		switch server.mode {
		case serverAck:
			encoder.Encode(forwardprotocol.Ack{Ack: message.Option.Chunk}) //nolint:errcheck
		case serverWrongAck:
			encoder.Encode(forwardprotocol.Ack{Ack: "foo"}) //nolint:errcheck
		case serverNoAck:
			io.Copy(io.Discard, conn) //nolint:errcheck // until client gives up
			return
		case serverDropFirst:
			if nth == 1 {
				return
			}
			encoder.Encode(forwardprotocol.Ack{Ack: message.Option.Chunk}) //nolint:errcheck
		}
	}
}

func (server *testServer) address() string {
	return server.listener.Addr().String()
}

func (server *testServer) received() []forwardprotocol.Message {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	return append([]forwardprotocol.Message(nil), server.messages...)
}

func (server *testServer) numConnections() int {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	return server.conns
}

// dumpMessage formats all events in a Forward message as JSON lines
func dumpMessage(t *testing.T, message forwardprotocol.Message) string {
	var buffer bytes.Buffer
	for _, event := range message.Entries {
		jbin, err := dump.FormatEventInJSON(event, message.Tag, false)
		require.NoError(t, err)
		buffer.Write(jbin)
		buffer.WriteByte('\n')
	}
	return buffer.String()
}
