package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/controlink-dev/arpoone-gateway/internal/domain"
)

// DispatchLogRepository persists dispatch records. SMS and email logs
// live in separate tables with channel-specific column names; rows are
// read back through aliases into the shared DispatchRecord shape.
type DispatchLogRepository struct {
	db     *sqlx.DB
	schema Schema
}

func NewDispatchLogRepository(db *sqlx.DB, schema Schema) *DispatchLogRepository {
	return &DispatchLogRepository{db: db, schema: schema}
}

// channelTable returns the table plus the recipient/content column
// names for a channel.
func (r *DispatchLogRepository) channelTable(channel domain.Channel) (table, recipientCol, contentCol, tenantCol string, hasCost bool, err error) {
	switch channel {
	case domain.ChannelSMS:
		return r.schema.SmsLogTable, "recipient_number", "message", r.schema.SmsLogTenantColumn, true, nil
	case domain.ChannelEmail:
		return r.schema.EmailLogTable, "to", "html_content", r.schema.TenantColumn, false, nil
	default:
		return "", "", "", "", false, fmt.Errorf("unknown channel %q", channel)
	}
}

func (r *DispatchLogRepository) selectColumns(recipientCol, contentCol, tenantCol string, hasCost bool) string {
	cost := "NULL AS cost"
	if hasCost {
		cost = "cost"
	}
	tenant := "NULL AS tenant_id"
	if r.schema.UseTenantColumn {
		tenant = fmt.Sprintf("`%s` AS tenant_id", tenantCol)
	}
	return fmt.Sprintf(
		"id, message_id, `%s` AS recipient, `%s` AS content, status, %s, %s, sent_at, created_at, updated_at",
		recipientCol, contentCol, cost, tenant,
	)
}

// Create inserts a new dispatch record with status pending and returns
// it with its generated id.
func (r *DispatchLogRepository) Create(ctx context.Context, record *domain.DispatchRecord) (*domain.DispatchRecord, error) {
	table, recipientCol, contentCol, tenantCol, hasCost, err := r.channelTable(record.Channel)
	if err != nil {
		return nil, err
	}

	columns := fmt.Sprintf("message_id, `%s`, `%s`, status, sent_at", recipientCol, contentCol)
	placeholders := "?, ?, ?, ?, ?"
	args := []any{record.MessageID, record.Recipient, record.Content, record.Status, record.SentAt}

	if hasCost {
		columns += ", cost"
		placeholders += ", ?"
		args = append(args, record.Cost)
	}

	if r.schema.UseTenantColumn && record.TenantID != nil {
		columns += fmt.Sprintf(", `%s`", tenantCol)
		placeholders += ", ?"
		args = append(args, *record.TenantID)
	}

	query := fmt.Sprintf(
		"INSERT INTO `%s` (%s, created_at, updated_at) VALUES (%s, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)",
		table, columns, placeholders,
	)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return r.GetByID(ctx, record.Channel, id)
}

func (r *DispatchLogRepository) GetByID(ctx context.Context, channel domain.Channel, id int64) (*domain.DispatchRecord, error) {
	table, recipientCol, contentCol, tenantCol, hasCost, err := r.channelTable(channel)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM `%s` WHERE id = ?",
		r.selectColumns(recipientCol, contentCol, tenantCol, hasCost), table,
	)

	var record domain.DispatchRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get dispatch record: %w", err)
	}

	record.Channel = channel
	return &record, nil
}

// FindByMessageID returns the record for a provider-assigned message
// id, or nil when none exists.
func (r *DispatchLogRepository) FindByMessageID(ctx context.Context, channel domain.Channel, messageID string) (*domain.DispatchRecord, error) {
	table, recipientCol, contentCol, tenantCol, hasCost, err := r.channelTable(channel)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM `%s` WHERE message_id = ?",
		r.selectColumns(recipientCol, contentCol, tenantCol, hasCost), table,
	)

	var record domain.DispatchRecord
	if err := r.db.GetContext(ctx, &record, query, messageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find dispatch record: %w", err)
	}

	record.Channel = channel
	return &record, nil
}

// UpdateStatus overwrites the record's status and reports how many rows
// matched, so the caller can distinguish an unknown message id.
func (r *DispatchLogRepository) UpdateStatus(ctx context.Context, channel domain.Channel, messageID string, status domain.DispatchStatus) (int64, error) {
	table, _, _, _, _, err := r.channelTable(channel)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(
		"UPDATE `%s` SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE message_id = ?",
		table,
	)

	result, err := r.db.ExecContext(ctx, query, status, messageID)
	if err != nil {
		return 0, fmt.Errorf("failed to update dispatch status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

// List returns one channel's dispatch records, newest first.
func (r *DispatchLogRepository) List(ctx context.Context, channel domain.Channel, page, pageSize int) ([]domain.DispatchRecord, int64, error) {
	table, recipientCol, contentCol, tenantCol, hasCost, err := r.channelTable(channel)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize

	var totalCount int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM `%s`", table)
	if err := r.db.GetContext(ctx, &totalCount, countQuery); err != nil {
		return nil, 0, fmt.Errorf("failed to count dispatch records: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM `%s` ORDER BY sent_at DESC LIMIT ? OFFSET ?",
		r.selectColumns(recipientCol, contentCol, tenantCol, hasCost), table,
	)

	var records []domain.DispatchRecord
	if err := r.db.SelectContext(ctx, &records, query, pageSize, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list dispatch records: %w", err)
	}

	for i := range records {
		records[i].Channel = channel
	}

	return records, totalCount, nil
}
