package database

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/controlink-dev/arpoone-gateway/environments"
	"github.com/controlink-dev/arpoone-gateway/internal/repository"
	"github.com/controlink-dev/arpoone-gateway/pkg/logger"
)

func NewMySQLDB(cfg environments.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Infof("Connected to MySQL database")
	return db, nil
}

// RunMigrations creates the gateway tables using the startup-resolved
// schema mapping. The configuration table is only created in
// multi-tenant mode; single-tenant deployments resolve configuration
// from static settings.
func RunMigrations(db *sqlx.DB, schema repository.Schema, multiTenant bool) error {
	tenantColumn := func(name string) string {
		if !schema.UseTenantColumn {
			return ""
		}
		return fmt.Sprintf("`%s` VARCHAR(100),\n\t\t", name)
	}

	statements := []string{}

	if multiTenant {
		statements = append(statements, fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		url VARCHAR(255) NOT NULL DEFAULT 'https://api.arpoone.com/v1.1/',
		api_key VARCHAR(255),
		organization_id VARCHAR(100),
		sms_sender VARCHAR(100),
		email_sender VARCHAR(255),
		email_sender_name VARCHAR(255),
		verify_ssl TINYINT(1) NOT NULL DEFAULT 1,
		%screated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_configuration_organization (organization_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
	`, "`"+schema.ConfigurationTable+"`", tenantColumn(schema.TenantColumn)))
	}

	statements = append(statements, fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		message_id VARCHAR(100) NOT NULL,
		recipient_number VARCHAR(20) NOT NULL,
		message TEXT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		cost DECIMAL(10,4),
		sent_at DATETIME NOT NULL,
		%screated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_sms_logs_message_id (message_id),
		INDEX idx_sms_logs_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
	`, "`"+schema.SmsLogTable+"`", tenantColumn(schema.SmsLogTenantColumn)))

	statements = append(statements, fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		message_id VARCHAR(100) NOT NULL,
		`+"`to`"+` VARCHAR(255) NOT NULL,
		html_content TEXT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		sent_at DATETIME NOT NULL,
		%screated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_email_logs_message_id (message_id),
		INDEX idx_email_logs_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
	`, "`"+schema.EmailLogTable+"`", tenantColumn(schema.TenantColumn)))

	statements = append(statements, fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		headers TEXT NOT NULL,
		payload TEXT NOT NULL,
		ip_address VARCHAR(45) NOT NULL,
		%screated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
	`, "`"+schema.WebhookLogTable+"`", tenantColumn(schema.WebhookTenantColumn)))

	for _, statement := range statements {
		if _, err := db.Exec(statement); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	logger.Infof("Database migrations completed")

	return nil
}

// SeedTestData inserts a sample tenant configuration so a fresh
// multi-tenant environment is dispatchable out of the box.
func SeedTestData(db *sqlx.DB, schema repository.Schema, multiTenant bool) error {
	if !multiTenant {
		return nil
	}

	var count int
	if err := db.Get(&count, fmt.Sprintf("SELECT COUNT(*) FROM `%s`", schema.ConfigurationTable)); err != nil {
		return err
	}

	if count > 0 {
		logger.Infof("Configuration table already has %d records, skipping seed", count)
		return nil
	}

	columns := "url, api_key, organization_id, sms_sender, email_sender, email_sender_name, verify_ssl"
	placeholders := "?, ?, ?, ?, ?, ?, ?"
	args := []any{
		"https://api.arpoone.com/v1.1/",
		"test-api-key",
		"11111111-2222-4333-8444-555555555555",
		"TestSender",
		"no-reply@example.com",
		"Test Sender",
		true,
	}

	if schema.UseTenantColumn {
		columns += fmt.Sprintf(", `%s`", schema.TenantColumn)
		placeholders += ", ?"
		args = append(args, "tenant-1")
	}

	query := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s)", schema.ConfigurationTable, columns, placeholders)
	if _, err := db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to seed test data: %w", err)
	}

	logger.Infof("Seeded sample tenant configuration")
	return nil
}
