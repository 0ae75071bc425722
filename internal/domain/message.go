package domain

import "time"

type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// DispatchStatus is the provider-reported delivery status of a message.
// Every record starts as pending; webhook reconciliation overwrites it
// with whatever status the provider reports (last write wins).
type DispatchStatus string

const (
	StatusPending      DispatchStatus = "pending"
	StatusDelivered    DispatchStatus = "delivered"
	StatusNotDelivered DispatchStatus = "not_delivered"

	StatusBlocked      DispatchStatus = "blocked"
	StatusBounced      DispatchStatus = "bounced"
	StatusClicked      DispatchStatus = "clicked"
	StatusOpened       DispatchStatus = "opened"
	StatusSpam         DispatchStatus = "spam"
	StatusUnsubscribed DispatchStatus = "unsubscribed"
)

// Attachment is a base64-encoded file included in an email message.
type Attachment struct {
	MimeType      string `json:"mimeType" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Base64Content string `json:"base64Content" validate:"required,base64"`
}

// OutboundMessage is the caller-supplied description of a message to
// dispatch. Type selects the channel; the remaining fields are
// channel-specific (Content for SMS, Subject/HTMLContent/TextContent
// and Attachments for email).
type OutboundMessage struct {
	Type        Channel
	Content     string
	Subject     string
	HTMLContent string
	TextContent string
	Attachments []Attachment
}

// PhoneNumberRoutable supplies the destination mobile number for an SMS
// dispatch. Callers implement it instead of being probed for accessor
// methods at runtime.
type PhoneNumberRoutable interface {
	PhoneNumber() string
}

// EmailRoutable supplies the destination address for an email dispatch.
type EmailRoutable interface {
	EmailAddress() string
}

// MessageSource produces the outbound message for a dispatch call.
type MessageSource interface {
	ArpooneMessage() (*OutboundMessage, error)
}

// Configuration is the resolved provider configuration used for a
// single dispatch: either the static settings or one tenant's record.
type Configuration struct {
	URL             string  `db:"url"`
	APIKey          string  `db:"api_key"`
	OrganizationID  string  `db:"organization_id"`
	SmsSender       string  `db:"sms_sender"`
	EmailSender     string  `db:"email_sender"`
	EmailSenderName string  `db:"email_sender_name"`
	VerifySSL       bool    `db:"verify_ssl"`
	TenantID        *string `db:"tenant_id"`
}

// DispatchRecord is the persisted outcome of one successful dispatch.
// Status is mutated only by webhook reconciliation; Cost is set for SMS
// records only.
type DispatchRecord struct {
	ID        int64          `db:"id" json:"id"`
	Channel   Channel        `db:"-" json:"channel"`
	MessageID string         `db:"message_id" json:"messageId"`
	Recipient string         `db:"recipient" json:"recipient"`
	Content   string         `db:"content" json:"content"`
	Status    DispatchStatus `db:"status" json:"status"`
	Cost      *float64       `db:"cost" json:"cost,omitempty"`
	TenantID  *string        `db:"tenant_id" json:"tenantId,omitempty"`
	SentAt    time.Time      `db:"sent_at" json:"sentAt"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// WebhookAuditRecord is the write-once audit trail of one inbound
// webhook event, persisted before any reconciliation lookup so the
// trail survives lookup failures.
type WebhookAuditRecord struct {
	ID        int64     `db:"id" json:"id"`
	Headers   string    `db:"headers" json:"headers"`
	Payload   string    `db:"payload" json:"payload"`
	IPAddress string    `db:"ip_address" json:"ipAddress"`
	TenantID  *string   `db:"tenant_id" json:"tenantId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SmsWebhookEvent is one provider SMS status callback. The provider
// posts either a single object or an array of these.
type SmsWebhookEvent struct {
	Msisdn         string `json:"Msisdn" validate:"required"`
	Status         string `json:"Status" validate:"required"`
	MessageID      string `json:"MessageId" validate:"required,uuid4"`
	OrganizationID string `json:"OrganizationId" validate:"required,uuid4"`
}

// EmailWebhookEvent is one provider email event. The provider posts an
// array of these; there is no organization id on the email callback.
type EmailWebhookEvent struct {
	EventType    string         `json:"EventType" validate:"required"`
	Status       string         `json:"Status" validate:"required"`
	MessageID    string         `json:"MessageId" validate:"required,uuid4"`
	EventDetails map[string]any `json:"EventDetails"`
}

// CachedDispatch is the short-lived cache entry kept for freshly
// dispatched messages.
type CachedDispatch struct {
	Channel   Channel   `json:"channel"`
	MessageID string    `json:"messageId"`
	Recipient string    `json:"recipient"`
	SentAt    time.Time `json:"sentAt"`
}
