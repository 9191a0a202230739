package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/blues/giftreg/internal/apperr"
	"github.com/blues/giftreg/internal/logger"
)

// Verifier 校验 webhook 签名
type Verifier struct {
	secret []byte
	log    *logger.Logger
}

// NewVerifier 创建签名校验器，secret 为空时不校验
func NewVerifier(secret string, log *logger.Logger) *Verifier {
	return &Verifier{secret: []byte(secret), log: log}
}

// Verify 校验 HMAC-SHA256(secret, body)。merchant_order 通知不带签名，缺失时放行。
func (v *Verifier) Verify(body []byte, header, topic string) error {
	if len(v.secret) == 0 {
		v.log.Warn("Webhook secret not configured, accepting unsigned %s notification", topicOrUnknown(topic))
		return nil
	}

	header = strings.TrimSpace(header)
	if header == "" {
		if topic == TopicMerchantOrder {
			return nil
		}
		return apperr.Authentication("missing signature")
	}

	given, err := hex.DecodeString(signatureValue(header))
	if err != nil {
		return apperr.Authentication("malformed signature")
	}
	if !hmac.Equal(given, Sign(v.secret, body)) {
		return apperr.Authentication("signature mismatch")
	}
	return nil
}

// Sign 计算签名
func Sign(secret, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}

// signatureValue 支持 sha256=<hex>、t=<ts>,v1=<hex> 与纯 hex
func signatureValue(header string) string {
	if strings.Contains(header, "v1=") {
		for _, part := range strings.Split(header, ",") {
			k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
			if ok && k == "v1" {
				return strings.ToLower(val)
			}
		}
	}
	if rest, ok := strings.CutPrefix(header, "sha256="); ok {
		return strings.ToLower(rest)
	}
	return strings.ToLower(header)
}

func topicOrUnknown(topic string) string {
	if topic == "" {
		return "unknown"
	}
	return topic
}
