package repository

import (
	"context"

	"github.com/industriassp/storefront/internal/domain"
)

// CartStore is the persistent mirror of a session's cart.
//
// Load never fails: an absent key, unreachable store, or corrupt payload
// yields an empty slice, and individual entries that violate the line-item
// invariants are dropped rather than defaulted. This keeps startup safe in
// environments where the backing store is unavailable.
type CartStore interface {
	Load(ctx context.Context, sessionID string) []domain.LineItem

	// Save overwrites the full item slice for the session.
	Save(ctx context.Context, sessionID string, items []domain.LineItem) error

	// Clear removes the persisted cart entirely (not just an empty slice),
	// so stale state cannot be resurrected by a storage-read race.
	Clear(ctx context.Context, sessionID string) error
}

// FrequencyStore persists per-session owner-selection counters keyed by
// OwnerRecord.Key(). Counters only ever grow.
type FrequencyStore interface {
	// Incr increments the counter for key and returns the new value.
	Incr(ctx context.Context, sessionID, key string) (int64, error)

	// All returns the full frequency table for the session.
	All(ctx context.Context, sessionID string) (map[string]int64, error)
}

// CustomerRepository searches the customers directory backing the owner
// autocomplete endpoint.
type CustomerRepository interface {
	// Search matches customers by name or document prefix, optionally
	// restricted to a document type (domain.FilterDNI/FilterRUC/FilterAny).
	Search(ctx context.Context, query, filter string, limit int) ([]domain.OwnerRecord, error)

	// IncrementFrequency bumps the server-side selection counter for a customer.
	IncrementFrequency(ctx context.Context, id string) error
}
