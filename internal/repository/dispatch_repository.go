package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"smsdispatch/internal/models"
)

type dispatchRepository struct {
	db *sql.DB
}

// NewDispatchRepository creates a new dispatch record repository
func NewDispatchRepository(db *sql.DB) DispatchRepository {
	return &dispatchRepository{db: db}
}

// CreatePending inserts a pending dispatch record
func (r *dispatchRepository) CreatePending(ctx context.Context, record *models.DispatchRecord) error {
	query := `
		INSERT INTO sms_message (create_date, message_class, message_body, recipient_no, schedule_date)
		VALUES (NOW(), $1, $2, $3, $4)
		RETURNING smskey, create_date
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		record.MessageClass,
		record.MessageBody,
		record.RecipientNo,
		record.ScheduleDate,
	).Scan(&record.SMSKey, &record.CreateDate)

	if err != nil {
		return fmt.Errorf("failed to create pending dispatch record: %w", err)
	}

	return nil
}

// CreateSent inserts a record whose attempt already happened; send_date and
// the result fields are written in one statement.
func (r *dispatchRepository) CreateSent(ctx context.Context, record *models.DispatchRecord) error {
	query := `
		INSERT INTO sms_message
			(create_date, message_class, message_body, recipient_no, send_date, return_code, return_message, message_id)
		VALUES (NOW(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING smskey, create_date
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		record.MessageClass,
		record.MessageBody,
		record.RecipientNo,
		record.SendDate,
		record.ReturnCode,
		record.ReturnMessage,
		record.MessageID,
	).Scan(&record.SMSKey, &record.CreateDate)

	if err != nil {
		return fmt.Errorf("failed to create sent dispatch record: %w", err)
	}

	return nil
}

// MarkSent applies the terminal outcome to a pending row. The send_date
// guard makes a second call a detectable error instead of a silent
// double-apply.
func (r *dispatchRepository) MarkSent(ctx context.Context, smsKey int, returnCode, returnMessage, messageID string) error {
	query := `
		UPDATE sms_message
		SET send_date = NOW(),
			return_code = $1,
			return_message = $2,
			message_id = $3
		WHERE smskey = $4 AND send_date IS NULL
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		returnCode,
		returnMessage,
		sql.NullString{String: messageID, Valid: messageID != ""},
		smsKey,
	)
	if err != nil {
		return fmt.Errorf("failed to mark dispatch record sent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return ErrAlreadyDispatched
	}

	return nil
}

// GetByID retrieves a dispatch record by its key
func (r *dispatchRepository) GetByID(ctx context.Context, smsKey int) (*models.DispatchRecord, error) {
	query := `
		SELECT smskey, message_class, message_body, recipient_no, schedule_date,
		       send_date, return_code, return_message, message_id, create_date
		FROM sms_message
		WHERE smskey = $1
	`

	record := &models.DispatchRecord{}
	err := r.db.QueryRowContext(ctx, query, smsKey).Scan(
		&record.SMSKey,
		&record.MessageClass,
		&record.MessageBody,
		&record.RecipientNo,
		&record.ScheduleDate,
		&record.SendDate,
		&record.ReturnCode,
		&record.ReturnMessage,
		&record.MessageID,
		&record.CreateDate,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatch record: %w", err)
	}

	return record, nil
}

// ListPendingDue retrieves pending records due at now, in strict
// creation-time order.
func (r *dispatchRepository) ListPendingDue(ctx context.Context, now time.Time) ([]*models.DispatchRecord, error) {
	query := `
		SELECT smskey, message_class, message_body, recipient_no, schedule_date, create_date
		FROM sms_message
		WHERE send_date IS NULL
		AND (schedule_date IS NULL OR schedule_date <= $1)
		ORDER BY create_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending dispatch records: %w", err)
	}
	defer rows.Close()

	records := []*models.DispatchRecord{}
	for rows.Next() {
		record := &models.DispatchRecord{}
		err := rows.Scan(
			&record.SMSKey,
			&record.MessageClass,
			&record.MessageBody,
			&record.RecipientNo,
			&record.ScheduleDate,
			&record.CreateDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dispatch records: %w", err)
	}

	return records, nil
}

// Stats returns aggregate dispatch counts
func (r *dispatchRepository) Stats(ctx context.Context) (*models.DispatchStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_count,
			COUNT(CASE WHEN send_date IS NOT NULL THEN 1 END) AS sent_count,
			COUNT(CASE WHEN send_date IS NULL THEN 1 END) AS pending_count,
			COUNT(CASE WHEN return_code = '00000' THEN 1 END) AS success_count
		FROM sms_message
	`

	stats := &models.DispatchStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalCount,
		&stats.SentCount,
		&stats.PendingCount,
		&stats.SuccessCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatch statistics: %w", err)
	}

	return stats, nil
}
