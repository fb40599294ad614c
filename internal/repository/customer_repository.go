package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// forbiddenQueryKeywords are statement verbs QueryCustomers refuses to run.
// The query surface is read-only by contract.
var forbiddenQueryKeywords = []string{
	"drop ", "delete ", "update ", "insert ", "alter ", "create ", "truncate ",
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new customer directory repository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// GetPhoneNumbersByIDs returns mobile numbers for the given customer IDs,
// excluding contact-refused customers and customers without a number.
func (r *customerRepository) GetPhoneNumbersByIDs(ctx context.Context, custIDs []int) ([]string, error) {
	if len(custIDs) == 0 {
		return []string{}, nil
	}

	query := `
		SELECT mobile_number
		FROM cust_info
		WHERE cust_id = ANY($1)
		AND mobile_number IS NOT NULL
		AND mobile_number != ''
		AND refuse != true
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(custIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get customer phone numbers: %w", err)
	}
	defer rows.Close()

	phones := []string{}
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return nil, fmt.Errorf("failed to scan phone number: %w", err)
		}
		phones = append(phones, phone)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate phone numbers: %w", err)
	}

	return phones, nil
}

// QueryCustomers executes a caller-supplied SELECT after checking it against
// the forbidden statement verbs, and scans rows generically since the column
// set depends on the query.
func (r *customerRepository) QueryCustomers(ctx context.Context, query string) ([]map[string]string, error) {
	lower := strings.ToLower(query)
	for _, keyword := range forbiddenQueryKeywords {
		if strings.Contains(lower, keyword) {
			return nil, fmt.Errorf("forbidden operation in query: %s", strings.TrimSpace(keyword))
		}
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	results := []map[string]string{}
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		scanArgs := make([]interface{}, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}

		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if values[i].Valid {
				row[col] = values[i].String
			} else {
				row[col] = ""
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customer rows: %w", err)
	}

	return results, nil
}
