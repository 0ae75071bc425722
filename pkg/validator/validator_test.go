package validator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type sampleEvent struct {
	Recipient string `json:"recipient" validate:"required"`
	MessageID string `json:"messageId" validate:"required,uuid4"`
}

func TestCustomValidator_ValidateReturnsValidationError(t *testing.T) {
	cv := New()

	// Recipient left empty, MessageID not a UUID.
	err := cv.Validate(sampleEvent{MessageID: "abc"})
	if err == nil {
		t.Fatalf("expected validation error, got nil")
	}

	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	if len(ve.Errors) == 0 {
		t.Fatalf("expected at least one validation error, got none")
	}

	if _, exists := ve.Errors["recipient"]; !exists {
		t.Errorf("expected 'recipient' to be in validation errors")
	}
	if _, exists := ve.Errors["messageId"]; !exists {
		t.Errorf("expected 'messageId' to be in validation errors")
	}
}

func TestCustomValidator_AcceptsValidUUID4(t *testing.T) {
	cv := New()

	err := cv.Validate(sampleEvent{
		Recipient: "351912345678",
		MessageID: "0c6a5a19-6b9c-4cfc-9c5e-1f0d3a1f3b5a",
	})
	if err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

func TestHandleValidationError_Returns422WithDetails(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	c := e.NewContext(req, rec)

	cv := New()
	err := cv.Validate(sampleEvent{})

	if err == nil {
		t.Fatalf("expected validation error, got nil")
	}

	if err := HandleValidationError(c, err); err != nil {
		t.Fatalf("HandleValidationError returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	var body ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if body.Success {
		t.Errorf("expected Success=false, got true")
	}
	if body.Error != "Validation failed" {
		t.Errorf("expected error='Validation failed', got %q", body.Error)
	}
	if len(body.Details) == 0 {
		t.Fatalf("expected details in validation response, got none")
	}
}
