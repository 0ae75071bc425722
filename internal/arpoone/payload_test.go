package arpoone

import (
	"errors"
	"strings"
	"testing"

	"github.com/controlink-dev/arpoone-gateway/internal/domain"
)

//
// Test fakes – only for this file.
//

type phoneTarget struct{ phone string }

func (t phoneTarget) PhoneNumber() string { return t.phone }

type emailTarget struct{ email string }

func (t emailTarget) EmailAddress() string { return t.email }

func testConfiguration() *domain.Configuration {
	return &domain.Configuration{
		URL:             "https://api.arpoone.test/v1/",
		APIKey:          "secret",
		OrganizationID:  "11111111-2222-4333-8444-555555555555",
		SmsSender:       "ACME",
		EmailSender:     "noreply@acme.test",
		EmailSenderName: "ACME Notifications",
	}
}

//
// SMS payloads
//

func TestBuildPayload_SmsSuccess(t *testing.T) {
	msg := &domain.OutboundMessage{
		Type:    domain.ChannelSMS,
		Content: "Hello",
	}

	payload, err := BuildPayload(phoneTarget{phone: "+905551234567"}, msg, testConfiguration(), CallbackConfig{})
	if err != nil {
		t.Fatalf("BuildPayload returned error: %v", err)
	}

	if payload.Channel != domain.ChannelSMS {
		t.Errorf("expected channel %q, got %q", domain.ChannelSMS, payload.Channel)
	}
	if payload.Recipient != "905551234567" {
		t.Errorf("expected recipient %q, got %q", "905551234567", payload.Recipient)
	}
	if payload.Body != "Hello" {
		t.Errorf("expected body %q, got %q", "Hello", payload.Body)
	}
	if payload.Envelope.OrganizationID != "11111111-2222-4333-8444-555555555555" {
		t.Errorf("unexpected organization id %q", payload.Envelope.OrganizationID)
	}
	if len(payload.Envelope.Messages) != 1 {
		t.Fatalf("expected 1 message in the envelope, got %d", len(payload.Envelope.Messages))
	}

	message, ok := payload.Envelope.Messages[0].(smsMessage)
	if !ok {
		t.Fatalf("expected smsMessage in envelope, got %T", payload.Envelope.Messages[0])
	}
	if message.From != "ACME" {
		t.Errorf("expected sender %q, got %q", "ACME", message.From)
	}
	if message.To != "905551234567" {
		t.Errorf("expected destination %q, got %q", "905551234567", message.To)
	}
	if message.SmsWebhooks != nil {
		t.Errorf("expected no webhooks when callbacks are disabled")
	}
}

func TestBuildPayload_SmsCallbacks(t *testing.T) {
	msg := &domain.OutboundMessage{
		Type:    domain.ChannelSMS,
		Content: "Hello",
	}
	callbacks := CallbackConfig{BaseURL: "https://gateway.acme.test/", Sms: true}

	payload, err := BuildPayload(phoneTarget{phone: "+905551234567"}, msg, testConfiguration(), callbacks)
	if err != nil {
		t.Fatalf("BuildPayload returned error: %v", err)
	}

	message := payload.Envelope.Messages[0].(smsMessage)
	if len(message.SmsWebhooks) != 3 {
		t.Fatalf("expected 3 registered callbacks, got %d", len(message.SmsWebhooks))
	}

	delivered, ok := message.SmsWebhooks["delivered"]
	if !ok {
		t.Fatalf("expected a delivered callback")
	}
	if !delivered.Enabled {
		t.Errorf("expected the delivered callback to be enabled")
	}
	if delivered.URL != "https://gateway.acme.test/arpoone/webhook/sms/delivered" {
		t.Errorf("unexpected delivered callback URL %q", delivered.URL)
	}

	if !message.SmsWebhooks["not_delivered"].Enabled {
		t.Errorf("expected the not_delivered callback to be enabled")
	}

	// The pending state is set locally when the dispatch is logged, so
	// the pending callback is registered but disabled.
	pending, ok := message.SmsWebhooks["pending"]
	if !ok {
		t.Fatalf("expected a pending callback")
	}
	if pending.Enabled {
		t.Errorf("expected the pending callback to be disabled")
	}
}

func TestBuildPayload_SmsMissingContent(t *testing.T) {
	msg := &domain.OutboundMessage{Type: domain.ChannelSMS}

	_, err := BuildPayload(phoneTarget{phone: "+905551234567"}, msg, testConfiguration(), CallbackConfig{})
	if err == nil {
		t.Fatalf("expected error for SMS without content")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestBuildPayload_SmsMissingRecipient(t *testing.T) {
	msg := &domain.OutboundMessage{
		Type:    domain.ChannelSMS,
		Content: "Hello",
	}

	// The notifiable does not implement PhoneNumberRoutable at all.
	_, err := BuildPayload(struct{}{}, msg, testConfiguration(), CallbackConfig{})
	if err == nil {
		t.Fatalf("expected error for a notifiable without a phone number")
	}

	var recipientErr *RecipientError
	if !errors.As(err, &recipientErr) {
		t.Fatalf("expected RecipientError, got %T: %v", err, err)
	}

	// An empty phone number is just as unusable.
	_, err = BuildPayload(phoneTarget{}, msg, testConfiguration(), CallbackConfig{})
	if !errors.As(err, &recipientErr) {
		t.Fatalf("expected RecipientError for empty phone number, got %T: %v", err, err)
	}
}

//
// Email payloads
//

func TestBuildPayload_EmailSuccess(t *testing.T) {
	msg := &domain.OutboundMessage{
		Type:        domain.ChannelEmail,
		Subject:     "Welcome",
		HTMLContent: "<p>Hello <b>there</b></p>",
		TextContent: "Hello there",
	}

	payload, err := BuildPayload(emailTarget{email: "user@example.com"}, msg, testConfiguration(), CallbackConfig{})
	if err != nil {
		t.Fatalf("BuildPayload returned error: %v", err)
	}

	if payload.Recipient != "user@example.com" {
		t.Errorf("expected recipient %q, got %q", "user@example.com", payload.Recipient)
	}
	if payload.Body != "<p>Hello <b>there</b></p>" {
		t.Errorf("unexpected body %q", payload.Body)
	}

	message, ok := payload.Envelope.Messages[0].(emailMessage)
	if !ok {
		t.Fatalf("expected emailMessage in envelope, got %T", payload.Envelope.Messages[0])
	}
	if message.From != "noreply@acme.test" {
		t.Errorf("expected sender %q, got %q", "noreply@acme.test", message.From)
	}
	if message.DisplayName != "ACME Notifications" {
		t.Errorf("expected display name %q, got %q", "ACME Notifications", message.DisplayName)
	}
	if message.TextContent != "Hello there" {
		t.Errorf("expected explicit text content to be kept, got %q", message.TextContent)
	}
}

func TestBuildPayload_EmailTextFallbackStripsTags(t *testing.T) {
	msg := &domain.OutboundMessage{
		Type:        domain.ChannelEmail,
		HTMLContent: "<p>Hello <b>there</b></p>",
	}

	payload, err := BuildPayload(emailTarget{email: "user@example.com"}, msg, testConfiguration(), CallbackConfig{})
	if err != nil {
		t.Fatalf("BuildPayload returned error: %v", err)
	}

	message := payload.Envelope.Messages[0].(emailMessage)
	if message.TextContent != "Hello there" {
		t.Errorf("expected stripped text content %q, got %q", "Hello there", message.TextContent)
	}
}

func TestBuildPayload_EmailMissingHTMLContent(t *testing.T) {
	msg := &domain.OutboundMessage{
		Type:        domain.ChannelEmail,
		TextContent: "plain only",
	}

	_, err := BuildPayload(emailTarget{email: "user@example.com"}, msg, testConfiguration(), CallbackConfig{})
	if err == nil {
		t.Fatalf("expected error for email without htmlContent")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestBuildPayload_EmailIncompleteAttachment(t *testing.T) {
	msg := &domain.OutboundMessage{
		Type:        domain.ChannelEmail,
		HTMLContent: "<p>Hi</p>",
		Attachments: []domain.Attachment{
			{MimeType: "application/pdf", Name: "invoice.pdf"}, // no content
		},
	}

	_, err := BuildPayload(emailTarget{email: "user@example.com"}, msg, testConfiguration(), CallbackConfig{})
	if err == nil {
		t.Fatalf("expected error for attachment without content")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestBuildPayload_EmailOversizedAttachment(t *testing.T) {
	msg := &domain.OutboundMessage{
		Type:        domain.ChannelEmail,
		HTMLContent: "<p>Hi</p>",
		Attachments: []domain.Attachment{
			{
				MimeType:      "application/pdf",
				Name:          "big.pdf",
				Base64Content: strings.Repeat("A", 6990508), // decodes past 5 MiB
			},
		},
	}

	_, err := BuildPayload(emailTarget{email: "user@example.com"}, msg, testConfiguration(), CallbackConfig{})
	if err == nil {
		t.Fatalf("expected error for oversized attachment")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "big.pdf") {
		t.Errorf("expected the error to name the attachment, got %q", err.Error())
	}
}

func TestBuildPayload_EmailCallbacks(t *testing.T) {
	msg := &domain.OutboundMessage{
		Type:        domain.ChannelEmail,
		HTMLContent: "<p>Hi</p>",
	}
	callbacks := CallbackConfig{BaseURL: "https://gateway.acme.test", Email: true}

	payload, err := BuildPayload(emailTarget{email: "user@example.com"}, msg, testConfiguration(), callbacks)
	if err != nil {
		t.Fatalf("BuildPayload returned error: %v", err)
	}

	message := payload.Envelope.Messages[0].(emailMessage)
	if len(message.EmailWebhooks) != 6 {
		t.Fatalf("expected 6 registered callbacks, got %d", len(message.EmailWebhooks))
	}

	for _, status := range []string{"blocked", "bounced", "clicked", "opened", "spam", "unsubscribed"} {
		setting, ok := message.EmailWebhooks[status]
		if !ok {
			t.Errorf("expected a callback for status %q", status)
			continue
		}
		if !setting.Enabled {
			t.Errorf("expected the %q callback to be enabled", status)
		}
		expected := "https://gateway.acme.test/arpoone/webhook/email/" + status
		if setting.URL != expected {
			t.Errorf("expected callback URL %q, got %q", expected, setting.URL)
		}
	}
}

func TestBuildPayload_UnknownChannel(t *testing.T) {
	msg := &domain.OutboundMessage{Type: domain.Channel("fax")}

	_, err := BuildPayload(phoneTarget{phone: "+905551234567"}, msg, testConfiguration(), CallbackConfig{})
	if err == nil {
		t.Fatalf("expected error for unknown message type")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}
