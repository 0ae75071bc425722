package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/controlink-dev/arpoone-gateway/internal/domain"
)

// WebhookAuditRepository persists the write-once audit trail of inbound
// webhook events.
type WebhookAuditRepository struct {
	db     *sqlx.DB
	schema Schema
}

func NewWebhookAuditRepository(db *sqlx.DB, schema Schema) *WebhookAuditRepository {
	return &WebhookAuditRepository{db: db, schema: schema}
}

func (r *WebhookAuditRepository) Create(ctx context.Context, record *domain.WebhookAuditRecord) error {
	columns := "headers, payload, ip_address"
	placeholders := "?, ?, ?"
	args := []any{record.Headers, record.Payload, record.IPAddress}

	if r.schema.UseTenantColumn && record.TenantID != nil {
		columns += fmt.Sprintf(", `%s`", r.schema.WebhookTenantColumn)
		placeholders += ", ?"
		args = append(args, *record.TenantID)
	}

	query := fmt.Sprintf(
		"INSERT INTO `%s` (%s, created_at) VALUES (%s, CURRENT_TIMESTAMP)",
		r.schema.WebhookLogTable, columns, placeholders,
	)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create webhook audit record: %w", err)
	}

	return nil
}
