package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/controlink-dev/arpoone-gateway/internal/domain"
)

// ConfigurationRepository reads tenant configuration records. It owns
// no mutable state; every dispatch resolves a fresh row.
type ConfigurationRepository struct {
	db     *sqlx.DB
	schema Schema
}

func NewConfigurationRepository(db *sqlx.DB, schema Schema) *ConfigurationRepository {
	return &ConfigurationRepository{db: db, schema: schema}
}

func (r *ConfigurationRepository) selectColumns() string {
	columns := "url, api_key, organization_id, sms_sender, email_sender, email_sender_name, verify_ssl"
	if r.schema.UseTenantColumn {
		columns += fmt.Sprintf(", `%s` AS tenant_id", r.schema.TenantColumn)
	} else {
		columns += ", NULL AS tenant_id"
	}
	return columns
}

// FindByTenant returns the configuration record owned by the given
// tenant, or nil when no record matches.
func (r *ConfigurationRepository) FindByTenant(ctx context.Context, tenantID string) (*domain.Configuration, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM `%s` WHERE `%s` = ?",
		r.selectColumns(), r.schema.ConfigurationTable, r.schema.TenantColumn,
	)

	var cfg domain.Configuration
	if err := r.db.GetContext(ctx, &cfg, query, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tenant configuration: %w", err)
	}

	return &cfg, nil
}

// FindByOrganization returns the configuration record for a provider
// organization id, or nil when no record matches. Webhook
// reconciliation uses this to map provider callbacks back to a tenant.
func (r *ConfigurationRepository) FindByOrganization(ctx context.Context, organizationID string) (*domain.Configuration, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM `%s` WHERE organization_id = ?",
		r.selectColumns(), r.schema.ConfigurationTable,
	)

	var cfg domain.Configuration
	if err := r.db.GetContext(ctx, &cfg, query, organizationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get configuration by organization: %w", err)
	}

	return &cfg, nil
}
