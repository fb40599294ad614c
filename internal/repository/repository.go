package repository

import (
	"context"
	"errors"
	"time"

	"smsdispatch/internal/models"
)

// ErrAlreadyDispatched is returned by MarkSent when the row already has a
// terminal result. Re-processing a terminal batch must surface, never
// silently double-apply.
var ErrAlreadyDispatched = errors.New("dispatch record already terminal")

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// DispatchRepository defines dispatch record data access operations.
// It is the single source of truth for whether a batch has been attempted.
type DispatchRepository interface {
	// CreatePending inserts a pending row (send_date NULL); the deferred path.
	CreatePending(ctx context.Context, record *models.DispatchRecord) error
	// CreateSent inserts an already-terminal row; the immediate path, which
	// creates the record once the attempt's timestamp and outcome are known.
	CreateSent(ctx context.Context, record *models.DispatchRecord) error
	// MarkSent applies a terminal outcome to a pending row. Returns
	// ErrAlreadyDispatched when the row is already terminal.
	MarkSent(ctx context.Context, smsKey int, returnCode, returnMessage, messageID string) error
	GetByID(ctx context.Context, smsKey int) (*models.DispatchRecord, error)
	// ListPendingDue returns pending rows whose schedule time, if any, is at
	// or before now, oldest first.
	ListPendingDue(ctx context.Context, now time.Time) ([]*models.DispatchRecord, error)
	Stats(ctx context.Context) (*models.DispatchStats, error)
}

// CustomerRepository defines customer directory access operations
type CustomerRepository interface {
	// GetPhoneNumbersByIDs returns mobile numbers for the given customers,
	// excluding contact-refused customers and empty numbers.
	GetPhoneNumbersByIDs(ctx context.Context, custIDs []int) ([]string, error)
	// QueryCustomers runs a read-only query against the customer/order tables
	// and returns rows as column-name keyed maps.
	QueryCustomers(ctx context.Context, query string) ([]map[string]string, error)
}
