package apperr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("generate image err: %w", NewEmptyResponseError("gemini", "no image part"))
	if !IsKind(err, KindEmptyResponse) {
		t.Fatalf("KindOf() = %q, want %q", KindOf(err), KindEmptyResponse)
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatalf("plain error should have no kind")
	}
}

func TestVendorErrorKeepsBody(t *testing.T) {
	err := NewVendorError("volcengine", 403, `{"Error":{"Code":"SignatureDoesNotMatch"}}`)
	msg := err.Error()
	if !strings.Contains(msg, "SignatureDoesNotMatch") || !strings.Contains(msg, "403") || !strings.Contains(msg, "volcengine") {
		t.Fatalf("Error() = %q", msg)
	}
}
