package repository

import (
	"fmt"
	"regexp"

	"github.com/controlink-dev/arpoone-gateway/environments"
)

// Schema holds the configurable table and tenant-column names, resolved
// and validated once at startup and passed into the repositories. Table
// and column names are interpolated into SQL, so they are restricted to
// plain identifiers.
type Schema struct {
	ConfigurationTable  string
	SmsLogTable         string
	SmsLogTenantColumn  string
	EmailLogTable       string
	WebhookLogTable     string
	WebhookTenantColumn string
	TenantColumn        string
	UseTenantColumn     bool
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func NewSchema(cfg environments.ArpooneConfig) (Schema, error) {
	schema := Schema{
		ConfigurationTable:  cfg.ConfigurationTable,
		SmsLogTable:         cfg.SmsLogTable,
		SmsLogTenantColumn:  cfg.SmsLogTenantColumn,
		EmailLogTable:       cfg.EmailLogTable,
		WebhookLogTable:     cfg.WebhookLogTable,
		WebhookTenantColumn: cfg.WebhookTenantColumn,
		TenantColumn:        cfg.TenantColumnName,
		UseTenantColumn:     cfg.UseTenantColumn,
	}

	for _, name := range []string{
		schema.ConfigurationTable,
		schema.SmsLogTable,
		schema.SmsLogTenantColumn,
		schema.EmailLogTable,
		schema.WebhookLogTable,
		schema.WebhookTenantColumn,
		schema.TenantColumn,
	} {
		if !identifierPattern.MatchString(name) {
			return Schema{}, fmt.Errorf("invalid table or column name %q", name)
		}
	}

	return schema, nil
}
