package eventhub

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/relex/eventsink/util"
)

// sasTokenProvider generates and caches SAS tokens for a resource URI
//
// Tokens are renewed after half of their lifetime. It's used by one sender and not thread-safe.
type sasTokenProvider struct {
	resource string // URL-encoded lowercase resource URI
	keyName  string
	key      string
	ttl      time.Duration
	token    string
	renewAt  time.Time
	now      func() time.Time
}

func newSASTokenProvider(address string, keyName string, key string, ttl time.Duration) *sasTokenProvider {
	return &sasTokenProvider{
		resource: url.QueryEscape(strings.ToLower(address)),
		keyName:  keyName,
		key:      key,
		ttl:      ttl,
		token:    "",
		renewAt:  time.Time{},
		now:      time.Now,
	}
}

// Token returns a valid token for the Authorization header
func (provider *sasTokenProvider) Token() string {
	now := provider.now()
	if provider.token != "" && now.Before(provider.renewAt) {
		return provider.token
	}
	expiry := strconv.FormatInt(now.Add(provider.ttl).Unix(), 10)
	signature := util.HMACSHA256ToBase64(provider.key, provider.resource+"\n"+expiry)
	provider.token = fmt.Sprintf("SharedAccessSignature sr=%s&sig=%s&se=%s&skn=%s",
		provider.resource, url.QueryEscape(signature), expiry, provider.keyName)
	provider.renewAt = now.Add(provider.ttl / 2)
	return provider.token
}
