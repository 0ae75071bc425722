package environments

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Arpoone  ArpooneConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port string
	// Public base URL of this service, used to build the webhook
	// callback URLs registered with the provider.
	AppURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ArpooneConfig carries the static provider settings plus the feature
// flags and table naming used by the persistence layer. In multi-tenant
// mode the credential fields are unused; the effective values come from
// the tenant configuration table instead.
type ArpooneConfig struct {
	URL             string
	APIKey          string
	OrganizationID  string
	SmsSender       string
	EmailSender     string
	EmailSenderName string
	VerifySSL       bool

	MultiTenant      bool
	UseTenantColumn  bool
	TenantColumnName string

	ConfigurationTable  string
	SmsLogTable         string
	SmsLogTenantColumn  string
	EmailLogTable       string
	WebhookLogTable     string
	WebhookTenantColumn string

	LogSms        bool
	LogEmail      bool
	SmsWebhooks   bool
	EmailWebhooks bool

	RequestTimeout time.Duration
}

type AuthConfig struct {
	DispatchAPIKey string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:   GetEnv("SERVER_PORT", "8080"),
			AppURL: GetEnv("APP_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "3306"),
			User:     GetEnv("DB_USER", "arpoone"),
			Password: GetEnv("DB_PASSWORD", "arpoone123"),
			DBName:   GetEnv("DB_NAME", "arpoone_gateway"),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		Arpoone: ArpooneConfig{
			URL:             GetEnv("ARPOONE_URL", "https://api.arpoone.com/v1.1/"),
			APIKey:          GetEnv("ARPOONE_API_KEY", ""),
			OrganizationID:  GetEnv("ARPOONE_ORGANIZATION_ID", ""),
			SmsSender:       GetEnv("ARPOONE_SMS_SENDER", ""),
			EmailSender:     GetEnv("ARPOONE_EMAIL_SENDER", ""),
			EmailSenderName: GetEnv("ARPOONE_EMAIL_SENDER_NAME", ""),
			VerifySSL:       GetEnvAsBool("ARPOONE_VERIFY_SSL", true),

			MultiTenant:      GetEnvAsBool("ARPOONE_MULTI_TENANT", false),
			UseTenantColumn:  GetEnvAsBool("ARPOONE_USE_TENANT_COLUMN", false),
			TenantColumnName: GetEnv("ARPOONE_TENANT_COLUMN_NAME", "tenant_id"),

			ConfigurationTable:  GetEnv("ARPOONE_CONFIGURATION_TABLE", "arpoone_configuration"),
			SmsLogTable:         GetEnv("ARPOONE_SMS_LOG_TABLE", "arpoone_sms_logs"),
			SmsLogTenantColumn:  GetEnv("ARPOONE_SMS_LOG_TENANT_COLUMN", "tenant_id"),
			EmailLogTable:       GetEnv("ARPOONE_EMAIL_LOG_TABLE", "arpoone_email_logs"),
			WebhookLogTable:     GetEnv("ARPOONE_WEBHOOK_LOG_TABLE", "arpoone_webhook_logs"),
			WebhookTenantColumn: GetEnv("ARPOONE_WEBHOOK_TENANT_COLUMN", "tenant_id"),

			LogSms:        GetEnvAsBool("ARPOONE_LOG_SMS", false),
			LogEmail:      GetEnvAsBool("ARPOONE_LOG_EMAIL", false),
			SmsWebhooks:   GetEnvAsBool("ARPOONE_SMS_WEBHOOKS", false),
			EmailWebhooks: GetEnvAsBool("ARPOONE_EMAIL_WEBHOOKS", false),

			RequestTimeout: GetEnvAsDuration("ARPOONE_REQUEST_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			DispatchAPIKey: GetEnv("DISPATCH_API_KEY", ""),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
