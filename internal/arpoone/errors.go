package arpoone

import "fmt"

// ValidationError reports malformed caller input: a message missing a
// channel-required field or a structurally invalid attachment.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewMissingField(field string) error {
	return &ValidationError{Msg: fmt.Sprintf("the message must have a %q parameter", field)}
}

func NewInvalidAttachment(reason string) error {
	return &ValidationError{Msg: "invalid attachment: " + reason}
}

func NewAttachmentTooLarge(name string) error {
	return &ValidationError{Msg: fmt.Sprintf("attachment %q exceeds the maximum size of 5 MiB", name)}
}

// RecipientError reports a missing or unusable recipient: no routing
// accessor value, an unparseable phone number, or a non-mobile line.
type RecipientError struct {
	Msg string
}

func (e *RecipientError) Error() string { return e.Msg }

func NewMissingRecipient(channel string) error {
	return &RecipientError{Msg: "the notifiable entity does not provide a recipient for " + channel}
}

func NewInvalidPhoneNumber(reason string) error {
	return &RecipientError{Msg: "invalid phone number: " + reason}
}

func NewNonMobileNumber(number string) error {
	return &RecipientError{Msg: fmt.Sprintf("the phone number %q is not a mobile number", number)}
}

// ConfigurationError reports that no usable provider configuration
// could be resolved for the dispatch.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

func NewMissingConfiguration(field string) error {
	return &ConfigurationError{Msg: fmt.Sprintf("the %s setting is required but not configured", field)}
}

func NewTenantRequired() error {
	return &ConfigurationError{Msg: "a tenant id is required for multi-tenant dispatch"}
}

// TenantNotFoundError reports that the tenant lookup matched no
// configuration record. Key is the tenant id or organization id used
// for the lookup.
type TenantNotFoundError struct {
	Key string
}

func (e *TenantNotFoundError) Error() string {
	return fmt.Sprintf("tenant configuration not found for %q", e.Key)
}

// ProviderError reports a failed provider request. Code is set when the
// provider returned a structured error body; otherwise Msg carries the
// raw failure.
type ProviderError struct {
	Code int
	Msg  string
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("provider rejected the message with error code %d", e.Code)
	}
	return "provider request failed: " + e.Msg
}

// Rejected reports whether the provider returned a structured error
// code, as opposed to a transport-level failure.
func (e *ProviderError) Rejected() bool { return e.Code != 0 }

func NewProviderRejected(code int) error {
	return &ProviderError{Code: code}
}

func NewProviderRequestFailed(msg string) error {
	return &ProviderError{Msg: msg}
}

// PersistenceError wraps a failed durable write. When the write follows
// a successful provider send the caller must not treat it as a dispatch
// failure; the message already left.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewLoggingFailed(err error) error {
	return &PersistenceError{Op: "dispatch logging", Err: err}
}

func NewAuditFailed(err error) error {
	return &PersistenceError{Op: "webhook audit write", Err: err}
}

// RecordNotFoundError reports that a webhook event named a message id
// no dispatch record was ever created for.
type RecordNotFoundError struct {
	MessageID string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("no dispatch record found for message id %q", e.MessageID)
}
