package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/relex/gotils/logger"
)

// HMACSHA256ToBase64 computes HMAC-SHA256 for given content and returns standard base64
func HMACSHA256ToBase64(key string, content string) string {
	hasher := hmac.New(sha256.New, []byte(key))
	if _, err := hasher.Write([]byte(content)); err != nil {
		logger.Panic(err)
	}
	return base64.StdEncoding.EncodeToString(hasher.Sum(nil))
}
