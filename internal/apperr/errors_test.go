package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrappedErrorsAreClassified(t *testing.T) {
	base := errors.New("connection refused")

	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", fmt.Errorf("create: %w", Validation("amount", "must be greater than zero")), IsValidation},
		{"not found", fmt.Errorf("load: %w", NotFound("gift", 7)), IsNotFound},
		{"gateway", fmt.Errorf("checkout: %w", Gateway("create preference", base)), IsGateway},
		{"persistence", Persistence("reconcile", base), IsPersistence},
		{"authentication", Authentication("missing signature"), IsAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("classification failed for %v", tt.err)
			}
		})
	}
}

func TestGatewayUnwrap(t *testing.T) {
	base := errors.New("timeout")
	err := Gateway("get payment", base)
	if !errors.Is(err, base) {
		t.Error("GatewayError should unwrap to its cause")
	}
	if IsValidation(err) {
		t.Error("gateway error must not be classified as validation")
	}
}

func TestIsPermanent(t *testing.T) {
	if !IsPermanent(NotFound("contribution", 1)) {
		t.Error("not found should be permanent")
	}
	if IsPermanent(Gateway("get payment", errors.New("503"))) {
		t.Error("gateway errors should be retried")
	}
	if IsPermanent(Persistence("commit", errors.New("deadlock"))) {
		t.Error("persistence errors should be retried")
	}
}

func TestValidationMessage(t *testing.T) {
	if got := Validation("", "gift is not available").Error(); got != "gift is not available" {
		t.Errorf("unexpected message %q", got)
	}
	if got := Validation("phone", "must have 10 or 11 digits").Error(); got != "phone: must have 10 or 11 digits" {
		t.Errorf("unexpected message %q", got)
	}
}
