package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/controlink-dev/arpoone-gateway/environments"
	"github.com/controlink-dev/arpoone-gateway/internal/arpoone"
	"github.com/controlink-dev/arpoone-gateway/internal/domain"
	"github.com/controlink-dev/arpoone-gateway/pkg/logger"
)

type configurationRepository interface {
	FindByOrganization(ctx context.Context, organizationID string) (*domain.Configuration, error)
}

type auditRepository interface {
	Create(ctx context.Context, record *domain.WebhookAuditRecord) error
}

// WebhookMeta carries the request-level context persisted with each
// audit record.
type WebhookMeta struct {
	// Headers is the JSON-encoded header map of the inbound request.
	Headers   string
	IPAddress string
}

// ReconcileService applies provider status callbacks to previously
// dispatched messages. Per event: validate, resolve the owning tenant
// (SMS, multi-tenant only), write the audit record, then overwrite the
// matching dispatch record's status. The audit write happens before the
// dispatch lookup so the trail survives lookup failures. A batch fails
// fast on the first unresolved event; earlier events stay applied.
type ReconcileService struct {
	configs  configurationRepository
	logs     dispatchLogRepository
	audits   auditRepository
	settings environments.ArpooneConfig
}

func NewReconcileService(
	configs configurationRepository,
	logs dispatchLogRepository,
	audits auditRepository,
	settings environments.ArpooneConfig,
) *ReconcileService {
	return &ReconcileService{
		configs:  configs,
		logs:     logs,
		audits:   audits,
		settings: settings,
	}
}

// ProcessSmsEvents reconciles a batch of SMS status callbacks.
func (s *ReconcileService) ProcessSmsEvents(ctx context.Context, events []domain.SmsWebhookEvent, meta WebhookMeta) error {
	for _, event := range events {
		if err := validateSmsEvent(event); err != nil {
			return err
		}

		tenantID, err := s.resolveTenant(ctx, event.OrganizationID)
		if err != nil {
			return err
		}

		if err := s.audit(ctx, event, tenantID, meta); err != nil {
			return err
		}

		if err := s.overwriteStatus(ctx, domain.ChannelSMS, event.MessageID, domain.DispatchStatus(event.Status)); err != nil {
			return err
		}
	}

	return nil
}

// ProcessEmailEvents reconciles a batch of email event callbacks. The
// provider's email callback carries no organization id, so no tenant
// lookup is performed and the audit record is stored without a tenant.
func (s *ReconcileService) ProcessEmailEvents(ctx context.Context, events []domain.EmailWebhookEvent, meta WebhookMeta) error {
	for _, event := range events {
		if err := validateEmailEvent(event); err != nil {
			return err
		}

		if err := s.audit(ctx, event, nil, meta); err != nil {
			return err
		}

		if err := s.overwriteStatus(ctx, domain.ChannelEmail, event.MessageID, domain.DispatchStatus(event.Status)); err != nil {
			return err
		}
	}

	return nil
}

// Events are validated here as well as at the HTTP boundary, so the
// state machine holds regardless of how events reach it.
func validateSmsEvent(event domain.SmsWebhookEvent) error {
	if event.Msisdn == "" || event.Status == "" {
		return &arpoone.ValidationError{Msg: "sms webhook event requires Msisdn and Status"}
	}
	if _, err := uuid.Parse(event.MessageID); err != nil {
		return &arpoone.ValidationError{Msg: "sms webhook event MessageId must be a UUID"}
	}
	if _, err := uuid.Parse(event.OrganizationID); err != nil {
		return &arpoone.ValidationError{Msg: "sms webhook event OrganizationId must be a UUID"}
	}
	return nil
}

func validateEmailEvent(event domain.EmailWebhookEvent) error {
	if event.EventType == "" || event.Status == "" {
		return &arpoone.ValidationError{Msg: "email webhook event requires EventType and Status"}
	}
	if _, err := uuid.Parse(event.MessageID); err != nil {
		return &arpoone.ValidationError{Msg: "email webhook event MessageId must be a UUID"}
	}
	return nil
}

// resolveTenant maps a provider organization id back to the owning
// tenant. Only meaningful in multi-tenant mode; the tenant id itself is
// derived only when tenant-column usage is enabled.
func (s *ReconcileService) resolveTenant(ctx context.Context, organizationID string) (*string, error) {
	if !s.settings.MultiTenant {
		return nil, nil
	}

	cfg, err := s.configs.FindByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &arpoone.TenantNotFoundError{Key: organizationID}
	}

	if !s.settings.UseTenantColumn {
		return nil, nil
	}

	if cfg.TenantID == nil || *cfg.TenantID == "" {
		return nil, arpoone.NewTenantRequired()
	}

	return cfg.TenantID, nil
}

func (s *ReconcileService) audit(ctx context.Context, event any, tenantID *string, meta WebhookMeta) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return arpoone.NewAuditFailed(err)
	}

	record := &domain.WebhookAuditRecord{
		Headers:   meta.Headers,
		Payload:   string(payload),
		IPAddress: meta.IPAddress,
		TenantID:  tenantID,
	}

	if err := s.audits.Create(ctx, record); err != nil {
		return arpoone.NewAuditFailed(err)
	}

	return nil
}

func (s *ReconcileService) overwriteStatus(ctx context.Context, channel domain.Channel, messageID string, status domain.DispatchStatus) error {
	rows, err := s.logs.UpdateStatus(ctx, channel, messageID, status)
	if err != nil {
		return err
	}
	if rows == 0 {
		return &arpoone.RecordNotFoundError{MessageID: messageID}
	}

	logger.Infof("Reconciled %s message %s to status %q", channel, messageID, status)

	return nil
}
