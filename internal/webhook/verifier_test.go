package webhook

import (
	"encoding/hex"
	"testing"

	"github.com/blues/giftreg/internal/apperr"
	"github.com/blues/giftreg/internal/logger"
)

func signHex(secret, body string) string {
	return hex.EncodeToString(Sign([]byte(secret), []byte(body)))
}

func TestVerifier(t *testing.T) {
	body := `{"type":"payment","data":{"id":"123"}}`
	good := signHex("s3cret", body)

	tests := []struct {
		name     string
		secret   string
		header   string
		topic    string
		wantAuth bool
	}{
		{"no secret accepts anything", "", "", TopicPayment, false},
		{"bare hex", "s3cret", good, TopicPayment, false},
		{"sha256 prefix", "s3cret", "sha256=" + good, TopicPayment, false},
		{"timestamped v1", "s3cret", "t=1700000000,v1=" + good, TopicPayment, false},
		{"uppercase hex", "s3cret", "sha256=" + upper(good), TopicPayment, false},
		{"missing header", "s3cret", "", TopicPayment, true},
		{"missing header merchant order", "s3cret", "", TopicMerchantOrder, false},
		{"wrong secret", "s3cret", signHex("other", body), TopicPayment, true},
		{"not hex", "s3cret", "sha256=zzzz", TopicPayment, true},
		{"bad signature merchant order", "s3cret", "deadbeef", TopicMerchantOrder, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(tt.secret, logger.NewNop())
			err := v.Verify([]byte(body), tt.header, tt.topic)
			if got := apperr.IsAuthentication(err); got != tt.wantAuth {
				t.Errorf("Verify() = %v, want authentication error %v", err, tt.wantAuth)
			}
			if !tt.wantAuth && err != nil {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestVerifierDetectsTamperedBody(t *testing.T) {
	v := NewVerifier("s3cret", logger.NewNop())
	sig := signHex("s3cret", `{"type":"payment","data":{"id":"1"}}`)
	if err := v.Verify([]byte(`{"type":"payment","data":{"id":"2"}}`), sig, TopicPayment); !apperr.IsAuthentication(err) {
		t.Errorf("tampered body accepted: %v", err)
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
