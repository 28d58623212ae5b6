package tredactemail

import (
	"testing"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/util"
	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"
)

func TestRedactEmailTransform(t *testing.T) {
	c := &Config{}
	assert.NoError(t, util.UnmarshalYamlString(`
type: redactEmail
keys: [message, payload.replyTo]
`, c))
	if !assert.NoError(t, c.VerifyConfig()) {
		return
	}
	mfactory := base.NewMetricFactory("testredact_", nil, nil)
	tf := c.NewTransform(logger.WithField("test", t.Name()), mfactory)

	entry := base.LogEntry{
		Message: "reply_to: foo@bar.com, john@x.com something@else.org,",
		Payload: map[string]string{"replyTo": "me@example.org", "id": "a@b"},
	}
	tf.Transform(&entry)
	assert.Equal(t, "reply_to: REDACTED, REDACTED REDACTED,", entry.Message)
	assert.Equal(t, map[string]string{"replyTo": "REDACTED", "id": "a@b"}, entry.Payload)

	metrics, err := mfactory.DumpMetrics(false)
	assert.NoError(t, err)
	assert.Equal(t, `testredact_transform_redacted_emails_total{key="message"} 3
testredact_transform_redacted_emails_total{key="payload.replyTo"} 1
`, metrics)
}

func TestRedactEmailTransformVerify(t *testing.T) {
	assert.EqualError(t, (&Config{}).VerifyConfig(), ".keys is unspecified")
	assert.EqualError(t, (&Config{Keys: []string{"thread"}}).VerifyConfig(), ".keys: 'thread' is invalid: unknown field")
	assert.EqualError(t, (&Config{Keys: []string{"eventId"}}).VerifyConfig(), ".keys: 'eventId' is read-only")
}
