package run

import (
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"github.com/relex/eventsink/defs"
	"github.com/relex/eventsink/input/tcplistener"
	"github.com/relex/eventsink/testdata"
	"github.com/relex/eventsink/util"
	"github.com/relex/fluentlib/server"
	"github.com/relex/fluentlib/server/receivers"
	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConf = `
anchors:
  - &defaultLevel Information
name: orders
context:
  deploymentId: d-001
  roleName: OrderService
  instanceName: OrderService_IN_0
sink:
  bufferingInterval: 10s
  bufferingCount: 2
  maxBufferSize: 1000
  partitionKey: orders
inputs:
  - type: tcp
    address: localhost:0
    format: json
    level: *defaultLevel
    exclusions:
      - level: Verbose
output:
  type: fluentdForward
  tag: app.events
  messageMode: CompressedPackedForward
  serialization:
    hiddenPayloadFields: [password]
  upstream:
    address: %s
    tls: false
`

func TestMain(m *testing.M) {
	defs.EnableTestMode()
	os.Exit(m.Run())
}

func TestLoader(t *testing.T) {
	logRecv, outBatchCh := receivers.NewMessageCollector(5 * time.Second)

	runTestEnv(t, logRecv, sampleConf, func(confFile string) {
		ld, confErr := NewLoaderFromConfigFile(confFile, t.Name()+"_")
		require.NoError(t, confErr)
		assert.Equal(t, "orders", ld.Name)
		assert.Equal(t, "OrderService", ld.Context.RoleName)

		snk, sinkErr := ld.LaunchSink(logger.WithField("test", t.Name()))
		require.NoError(t, sinkErr)

		inputAddrs, shutdownInputs, inputErr := ld.LaunchInputs(logger.WithField("test", t.Name()), snk)
		require.NoError(t, inputErr)
		assert.Equal(t, 1, len(inputAddrs))

		conn, connErr := net.Dial("tcp", inputAddrs[0])
		require.NoError(t, connErr)

		// DO NOT use testdata here - need to have different config(s) and different outputs
		_, sendErr := conn.Write([]byte(`{"timestamp":"2024-03-01T10:00:00Z","providerName":"Orders","eventId":1,"message":"Hello Foo","payload":{"user":"u1","password":"secret"}}
{"timestamp":"2024-03-01T10:00:01Z","level":"Verbose","message":"filtered"}
{"timestamp":"2024-03-01T10:00:02Z","level":"Warning","providerName":"Orders","eventId":2,"message":"Hello Bar"}
`))
		assert.NoError(t, sendErr)

		result := <-outBatchCh
		assert.Equal(t, "app.events.orders", result.Tag)
		if assert.Equal(t, 2, len(result.Entries)) {
			assert.Equal(t, "Hello Foo", result.Entries[0].Record["message"])
			assert.Equal(t, "Information", result.Entries[0].Record["level"])
			payload := fmt.Sprint(result.Entries[0].Record["payload"])
			assert.Contains(t, payload, "u1")
			assert.NotContains(t, payload, "secret")
			assert.Equal(t, "Warning", result.Entries[1].Record["level"])
		}
		assert.NoError(t, conn.Close())

		shutdownInputs()
		snk.Shutdown()

		assert.EqualValues(t, 2, snk.Posted())
		metrics, dumpErr := ld.MetricFactory.DumpMetrics(false)
		assert.NoError(t, dumpErr)
		assert.Contains(t, metrics, t.Name()+`_input_dropped_entries_total{input="tcp",reason="filtered"} 1`)
		assert.Contains(t, metrics, t.Name()+`_sink_sent_entries_total{sink="orders"} 2`)
	})
}

func TestLoadSampleConfig(t *testing.T) {
	t.Setenv("EVENTHUB_SAS_KEY", "test-key")
	cfg, err := LoadConfigFile(testdata.GetConfigPath())
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Name)
	if assert.Len(t, cfg.Inputs, 1) {
		input := cfg.Inputs[0].Value.(*tcplistener.Config)
		assert.Equal(t, "Information", input.Level, "alias to anchors section")
		assert.Len(t, input.Exclusions, 2)
		assert.Len(t, input.Transformations, 3)
	}
	assert.Equal(t, "eventHub", cfg.Output.Value.GetType())
}

func TestLoadConfigErrors(t *testing.T) {
	cases := map[string]string{
		"name is unspecified": `
output:
  type: null
`,
		"sink.bufferingCount (20) cannot be larger than .maxBufferSize (10)": `
name: x
sink:
  bufferingCount: 20
  maxBufferSize: 10
output:
  type: null
`,
		"inputs[0]: .format: 'xml' is not one of [json text]": `
name: x
inputs:
  - type: tcp
    address: localhost:0
    format: xml
output:
  type: null
`,
		"output is unspecified": `
name: x
`,
		"output.tag is unspecified": `
name: x
output:
  type: fluentdForward
  messageMode: PackedForward
  upstream:
    address: localhost:24224
`,
	}
	for expected, conf := range cases {
		cfg := &Config{}
		if assert.NoError(t, util.UnmarshalYamlString(conf, cfg), expected) {
			assert.EqualError(t, cfg.VerifyConfig(), expected)
		}
	}

	err := util.UnmarshalYamlString("name: x\noutput:\n  type: kafka\n", &Config{})
	assert.ErrorContains(t, err, ".type: unsupported 'kafka'")
}

func runTestEnv(t *testing.T, logReceiver receivers.Receiver, confYML string, do func(confFile string)) {
	srvConf := server.Config{}
	srvConf.Address = "localhost:0"
	srv, srvAddr := server.LaunchServer(logger.WithField("test", t.Name()), srvConf, logReceiver)
	defer srv.Shutdown()

	confFile, confFileErr := os.CreateTemp(t.TempDir(), "conf-*.yml")
	require.NoError(t, confFileErr)
	_, writeErr := confFile.WriteString(fmt.Sprintf(confYML, srvAddr.String()))
	assert.NoError(t, writeErr)
	assert.NoError(t, confFile.Close())

	do(confFile.Name())
}
