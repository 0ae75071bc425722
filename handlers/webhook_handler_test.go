package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/controlink-dev/arpoone-gateway/environments"
	"github.com/controlink-dev/arpoone-gateway/internal/domain"
	"github.com/controlink-dev/arpoone-gateway/internal/service"
	validatorpkg "github.com/controlink-dev/arpoone-gateway/pkg/validator"
)

type fakeConfigurations struct {
	byOrganization map[string]*domain.Configuration
}

func (f *fakeConfigurations) FindByOrganization(ctx context.Context, organizationID string) (*domain.Configuration, error) {
	return f.byOrganization[organizationID], nil
}

type fakeAudits struct {
	records []*domain.WebhookAuditRecord
}

func (f *fakeAudits) Create(ctx context.Context, record *domain.WebhookAuditRecord) error {
	f.records = append(f.records, record)
	return nil
}

const (
	webhookMessageID      = "3f1d8a4e-9c21-4b5a-8d6e-1a2b3c4d5e6f"
	webhookOrganizationID = "11111111-2222-4333-8444-555555555555"
)

func webhookTestService(logs *fakeLogs, audits *fakeAudits) *service.ReconcileService {
	return service.NewReconcileService(&fakeConfigurations{}, logs, audits, environments.ArpooneConfig{})
}

func pendingDispatch() *fakeLogs {
	return &fakeLogs{
		records: map[string]*domain.DispatchRecord{
			webhookMessageID: {ID: 1, MessageID: webhookMessageID, Status: domain.StatusPending},
		},
	}
}

func TestSmsStatus_SingleEventObject(t *testing.T) {
	e := echo.New()
	e.Validator = validatorpkg.New()

	logs := pendingDispatch()
	audits := &fakeAudits{}
	handler := NewWebhookHandler(webhookTestService(logs, audits))

	// The provider posts a bare object here, not an array.
	body := `{"Msisdn": "905551234567", "Status": "delivered", "MessageId": "` + webhookMessageID + `", "OrganizationId": "` + webhookOrganizationID + `"}`
	c, rec := postJSON(t, e, "/arpoone/webhook/sms", body)

	if err := handler.SmsStatus(c); err != nil {
		t.Fatalf("SmsStatus returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d (body: %s)", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if resp["message"] != "Webhook processed successfully." {
		t.Fatalf("unexpected response message %q", resp["message"])
	}

	if logs.records[webhookMessageID].Status != domain.StatusDelivered {
		t.Errorf("expected status %q, got %q", domain.StatusDelivered, logs.records[webhookMessageID].Status)
	}
	if len(audits.records) != 1 {
		t.Errorf("expected 1 audit record, got %d", len(audits.records))
	}
}

func TestSmsStatus_EventArray(t *testing.T) {
	e := echo.New()
	e.Validator = validatorpkg.New()

	logs := pendingDispatch()
	audits := &fakeAudits{}
	handler := NewWebhookHandler(webhookTestService(logs, audits))

	body := `[{"Msisdn": "905551234567", "Status": "not_delivered", "MessageId": "` + webhookMessageID + `", "OrganizationId": "` + webhookOrganizationID + `"}]`
	c, rec := postJSON(t, e, "/arpoone/webhook/sms", body)

	if err := handler.SmsStatus(c); err != nil {
		t.Fatalf("SmsStatus returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d (body: %s)", http.StatusOK, rec.Code, rec.Body.String())
	}
	if logs.records[webhookMessageID].Status != domain.StatusNotDelivered {
		t.Errorf("expected status %q, got %q", domain.StatusNotDelivered, logs.records[webhookMessageID].Status)
	}
}

func TestSmsStatus_BadJSON(t *testing.T) {
	e := echo.New()
	handler := NewWebhookHandler(nil)

	c, rec := postJSON(t, e, "/arpoone/webhook/sms", `{"Msisdn":`)

	if err := handler.SmsStatus(c); err != nil {
		t.Fatalf("SmsStatus returned error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestSmsStatus_NonUUIDMessageID(t *testing.T) {
	e := echo.New()
	e.Validator = validatorpkg.New()
	handler := NewWebhookHandler(nil)

	body := `{"Msisdn": "905551234567", "Status": "delivered", "MessageId": "abc", "OrganizationId": "` + webhookOrganizationID + `"}`
	c, rec := postJSON(t, e, "/arpoone/webhook/sms", body)

	if err := handler.SmsStatus(c); err != nil {
		t.Fatalf("SmsStatus returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d (body: %s)", http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	}

	var resp validatorpkg.ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if _, ok := resp.Details["MessageId"]; !ok {
		t.Fatalf("expected Details to contain 'MessageId' key, got %v", resp.Details)
	}
}

func TestSmsStatus_UnknownMessageReturnsNotFound(t *testing.T) {
	e := echo.New()
	e.Validator = validatorpkg.New()

	logs := &fakeLogs{records: map[string]*domain.DispatchRecord{}}
	audits := &fakeAudits{}
	handler := NewWebhookHandler(webhookTestService(logs, audits))

	body := `{"Msisdn": "905551234567", "Status": "delivered", "MessageId": "` + webhookMessageID + `", "OrganizationId": "` + webhookOrganizationID + `"}`
	c, rec := postJSON(t, e, "/arpoone/webhook/sms", body)

	if err := handler.SmsStatus(c); err != nil {
		t.Fatalf("SmsStatus returned error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d (body: %s)", http.StatusNotFound, rec.Code, rec.Body.String())
	}

	// The audit trail survives the failed lookup.
	if len(audits.records) != 1 {
		t.Errorf("expected the audit record to be written, got %d", len(audits.records))
	}
}

func TestEmailStatus_EventArray(t *testing.T) {
	e := echo.New()
	e.Validator = validatorpkg.New()

	logs := pendingDispatch()
	audits := &fakeAudits{}
	handler := NewWebhookHandler(webhookTestService(logs, audits))

	body := `[{"EventType": "engagement", "Status": "opened", "MessageId": "` + webhookMessageID + `"}]`
	c, rec := postJSON(t, e, "/arpoone/webhook/email", body)

	if err := handler.EmailStatus(c); err != nil {
		t.Fatalf("EmailStatus returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d (body: %s)", http.StatusOK, rec.Code, rec.Body.String())
	}
	if logs.records[webhookMessageID].Status != domain.StatusOpened {
		t.Errorf("expected status %q, got %q", domain.StatusOpened, logs.records[webhookMessageID].Status)
	}
	if len(audits.records) != 1 {
		t.Errorf("expected 1 audit record, got %d", len(audits.records))
	}
}

func TestEmailStatus_RejectsBareObject(t *testing.T) {
	e := echo.New()
	handler := NewWebhookHandler(nil)

	// Unlike the SMS callback, the email callback is array-only.
	body := `{"EventType": "engagement", "Status": "opened", "MessageId": "` + webhookMessageID + `"}`
	c, rec := postJSON(t, e, "/arpoone/webhook/email", body)

	if err := handler.EmailStatus(c); err != nil {
		t.Fatalf("EmailStatus returned error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
