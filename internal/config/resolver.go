package config

import (
	"context"

	"github.com/controlink-dev/arpoone-gateway/environments"
	"github.com/controlink-dev/arpoone-gateway/internal/arpoone"
	"github.com/controlink-dev/arpoone-gateway/internal/domain"
)

// tenantConfigurationFinder is the lookup the resolver needs in
// multi-tenant mode; satisfied by repository.ConfigurationRepository.
type tenantConfigurationFinder interface {
	FindByTenant(ctx context.Context, tenantID string) (*domain.Configuration, error)
}

// Resolver produces the provider configuration for one dispatch call.
// Resolution is fresh on every call so configuration edits take effect
// without a restart.
type Resolver struct {
	settings environments.ArpooneConfig
	tenants  tenantConfigurationFinder
}

func NewResolver(settings environments.ArpooneConfig, tenants tenantConfigurationFinder) *Resolver {
	return &Resolver{settings: settings, tenants: tenants}
}

// Resolve returns the static configuration in single-tenant mode, or
// the tenant's configuration record otherwise. In multi-tenant mode a
// missing tenant id or an unknown tenant is an error, never a fallback
// to the static settings.
func (r *Resolver) Resolve(ctx context.Context, tenantID *string) (*domain.Configuration, error) {
	if r.settings.MultiTenant {
		if tenantID == nil || *tenantID == "" {
			return nil, arpoone.NewTenantRequired()
		}

		cfg, err := r.tenants.FindByTenant(ctx, *tenantID)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			return nil, &arpoone.TenantNotFoundError{Key: *tenantID}
		}

		return cfg, nil
	}

	cfg := &domain.Configuration{
		URL:             r.settings.URL,
		APIKey:          r.settings.APIKey,
		OrganizationID:  r.settings.OrganizationID,
		SmsSender:       r.settings.SmsSender,
		EmailSender:     r.settings.EmailSender,
		EmailSenderName: r.settings.EmailSenderName,
		VerifySSL:       r.settings.VerifySSL,
	}

	for _, required := range []struct {
		name  string
		value string
	}{
		{"ARPOONE_API_KEY", cfg.APIKey},
		{"ARPOONE_ORGANIZATION_ID", cfg.OrganizationID},
		{"ARPOONE_SMS_SENDER", cfg.SmsSender},
	} {
		if required.value == "" {
			return nil, arpoone.NewMissingConfiguration(required.name)
		}
	}

	return cfg, nil
}
