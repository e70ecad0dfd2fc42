package internal

import (
	"errors"

	"gitee.com/golang-module/dongle"
)

// Signer produces an HMAC-SHA256 signature over a notification payload so the
// webhook receiver can verify origin and integrity. The signature is encoded
// with Base64 and carried in a request header.
type Signer struct {
	secret string
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: secret}
}

// Enabled reports whether a signing secret is configured.
func (s *Signer) Enabled() bool {
	return s.secret != ""
}

func (s *Signer) Sign(payload []byte) (string, error) {
	if s.secret == "" {
		return "", errors.New("signing secret not configured")
	}
	if len(payload) == 0 {
		return "", errors.New("payload cannot be empty")
	}
	signature := dongle.Encrypt.FromBytes(payload).ByHmacSha256(s.secret).ToBase64String()
	return signature, nil
}
