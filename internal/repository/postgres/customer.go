package postgres

import (
	"context"
	"fmt"

	"github.com/industriassp/storefront/internal/domain"
	"github.com/industriassp/storefront/pkg/database"
)

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	pool database.DBTX
}

// NewCustomerRepository creates a new PostgreSQL-backed customers repository.
func NewCustomerRepository(pool database.DBTX) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Search matches customers whose name or document starts with or contains the
// query, optionally restricted to a document type. Results are ordered by
// server-side selection frequency (descending), then name, and capped at limit.
func (r *CustomerRepository) Search(ctx context.Context, query, filter string, limit int) ([]domain.OwnerRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	sql := `
		SELECT id, document_type, name, COALESCE(document, ''), COALESCE(address, ''), COALESCE(phone, ''), frequency
		FROM customers
		WHERE (name ILIKE '%' || $1 || '%' OR document LIKE $1 || '%')`

	args := []any{query}
	if filter == domain.FilterDNI || filter == domain.FilterRUC {
		sql += ` AND document_type = $2`
		args = append(args, filter)
	}
	args = append(args, limit)
	sql += fmt.Sprintf(` ORDER BY frequency DESC, name ASC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()

	var records []domain.OwnerRecord
	for rows.Next() {
		var rec domain.OwnerRecord
		var docType string
		if err := rows.Scan(&rec.ID, &docType, &rec.Name, &rec.Document, &rec.Address, &rec.Phone, &rec.Freq); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		rec.Type = domain.DocumentType(docType)
		if rec.Type != domain.DocumentDNI && rec.Type != domain.DocumentRUC {
			rec.Type = domain.DocumentUnknown
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}

	return domain.DedupeOwners(records), nil
}

// IncrementFrequency bumps the server-side selection counter for a customer.
// Unknown IDs are a no-op, matching the best-effort nature of the counter.
func (r *CustomerRepository) IncrementFrequency(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE customers SET frequency = frequency + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment customer frequency: %w", err)
	}
	return nil
}
