package eventhub

import (
	"net/url"
	"testing"
	"time"

	"github.com/relex/eventsink/util"
	"github.com/stretchr/testify/assert"
)

func TestSASToken(t *testing.T) {
	now := time.Unix(1600000000, 0)
	provider := newSASTokenProvider("https://My-NS.servicebus.windows.net/hub1", "send", "secret", time.Hour)
	provider.now = func() time.Time { return now }

	resource := url.QueryEscape("https://my-ns.servicebus.windows.net/hub1")
	signature := util.HMACSHA256ToBase64("secret", resource+"\n1600003600")
	expected := "SharedAccessSignature sr=" + resource + "&sig=" + url.QueryEscape(signature) + "&se=1600003600&skn=send"
	assert.Equal(t, expected, provider.Token())

	// cached until half of TTL
	now = now.Add(29 * time.Minute)
	assert.Equal(t, expected, provider.Token())

	now = now.Add(2 * time.Minute)
	assert.Contains(t, provider.Token(), "&se=1600005460&")
}
