package arpoone

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/controlink-dev/arpoone-gateway/internal/domain"
)

// CallbackConfig controls which status callbacks are registered with
// the provider and where they point.
type CallbackConfig struct {
	// BaseURL is the public base URL of this service.
	BaseURL string
	Sms     bool
	Email   bool
}

// Envelope is the provider's batch-capable request schema. This gateway
// always sends a batch of one.
type Envelope struct {
	OrganizationID string `json:"organizationId"`
	Messages       []any  `json:"messages"`
}

// Payload is a fully assembled provider request plus the recipient and
// content snapshot the dispatch log records.
type Payload struct {
	Channel   domain.Channel
	Recipient string
	Body      string
	Envelope  Envelope
}

type callbackSetting struct {
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}

type smsMessage struct {
	Text        string                     `json:"text"`
	To          string                     `json:"to"`
	From        string                     `json:"from"`
	SmsWebhooks map[string]callbackSetting `json:"smsWebhooks,omitempty"`
}

type emailMessage struct {
	To            string                     `json:"to"`
	From          string                     `json:"from"`
	DisplayName   string                     `json:"displayName"`
	Subject       string                     `json:"subject"`
	TextContent   string                     `json:"textContent"`
	HTMLContent   string                     `json:"htmlContent"`
	Attachments   []domain.Attachment        `json:"attachments,omitempty"`
	EmailWebhooks map[string]callbackSetting `json:"emailWebhooks,omitempty"`
}

// BuildPayload assembles the provider request for one outbound message.
// The notifiable must implement the routing interface matching the
// message type. All validation happens here, before any network call.
func BuildPayload(
	notifiable any,
	msg *domain.OutboundMessage,
	cfg *domain.Configuration,
	callbacks CallbackConfig,
) (*Payload, error) {
	switch msg.Type {
	case domain.ChannelSMS:
		return buildSmsPayload(notifiable, msg, cfg, callbacks)
	case domain.ChannelEmail:
		return buildEmailPayload(notifiable, msg, cfg, callbacks)
	default:
		return nil, &ValidationError{Msg: fmt.Sprintf("the message type must be either %q or %q", domain.ChannelSMS, domain.ChannelEmail)}
	}
}

func buildSmsPayload(
	notifiable any,
	msg *domain.OutboundMessage,
	cfg *domain.Configuration,
	callbacks CallbackConfig,
) (*Payload, error) {
	routable, ok := notifiable.(domain.PhoneNumberRoutable)
	if !ok || routable.PhoneNumber() == "" {
		return nil, NewMissingRecipient("sms")
	}

	recipient, err := ValidateMobileNumber(routable.PhoneNumber())
	if err != nil {
		return nil, err
	}

	if msg.Content == "" {
		return nil, NewMissingField("content")
	}

	message := smsMessage{
		Text: msg.Content,
		To:   recipient,
		From: cfg.SmsSender,
	}

	if callbacks.Sms {
		message.SmsWebhooks = map[string]callbackSetting{
			"delivered":     {URL: callbacks.statusURL("sms", "delivered"), Enabled: true},
			"not_delivered": {URL: callbacks.statusURL("sms", "not_delivered"), Enabled: true},
			// Registered but disabled: the initial pending state is set
			// locally when the dispatch is logged.
			"pending": {URL: callbacks.statusURL("sms", "pending"), Enabled: false},
		}
	}

	return &Payload{
		Channel:   domain.ChannelSMS,
		Recipient: recipient,
		Body:      msg.Content,
		Envelope: Envelope{
			OrganizationID: cfg.OrganizationID,
			Messages:       []any{message},
		},
	}, nil
}

var emailStatuses = []string{"blocked", "bounced", "clicked", "opened", "spam", "unsubscribed"}

func buildEmailPayload(
	notifiable any,
	msg *domain.OutboundMessage,
	cfg *domain.Configuration,
	callbacks CallbackConfig,
) (*Payload, error) {
	routable, ok := notifiable.(domain.EmailRoutable)
	if !ok || routable.EmailAddress() == "" {
		return nil, NewMissingRecipient("email")
	}

	if msg.HTMLContent == "" {
		return nil, NewMissingField("htmlContent")
	}

	textContent := msg.TextContent
	if textContent == "" {
		textContent = stripTags(msg.HTMLContent)
	}

	message := emailMessage{
		To:          routable.EmailAddress(),
		From:        cfg.EmailSender,
		DisplayName: cfg.EmailSenderName,
		Subject:     msg.Subject,
		TextContent: textContent,
		HTMLContent: msg.HTMLContent,
	}

	for _, attachment := range msg.Attachments {
		if attachment.MimeType == "" || attachment.Name == "" || attachment.Base64Content == "" {
			return nil, NewInvalidAttachment("mimeType, name and base64Content are required")
		}
		if !AttachmentWithinLimit(attachment.Base64Content) {
			return nil, NewAttachmentTooLarge(attachment.Name)
		}
		message.Attachments = append(message.Attachments, attachment)
	}

	if callbacks.Email {
		message.EmailWebhooks = make(map[string]callbackSetting, len(emailStatuses))
		for _, status := range emailStatuses {
			message.EmailWebhooks[status] = callbackSetting{
				URL:     callbacks.statusURL("email", status),
				Enabled: true,
			}
		}
	}

	return &Payload{
		Channel:   domain.ChannelEmail,
		Recipient: message.To,
		Body:      msg.HTMLContent,
		Envelope: Envelope{
			OrganizationID: cfg.OrganizationID,
			Messages:       []any{message},
		},
	}, nil
}

func (c CallbackConfig) statusURL(channel, status string) string {
	return fmt.Sprintf("%s/arpoone/webhook/%s/%s", strings.TrimRight(c.BaseURL, "/"), channel, status)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripTags derives a plain-text fallback from HTML content.
func stripTags(html string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(html, ""))
}
